// Command mailbox-mcp serves a mock support mailbox as an MCP stdio server
// backed by a JSON file.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/jewelryops/agent/mcpserver/mailbox"
	_ "github.com/jewelryops/agent/pkg/logger/autoload"
)

func main() {
	dataPath := flag.String("data", "data/emails.json", "path to the mailbox JSON file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := mailbox.NewStore(*dataPath)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Str("data", *dataPath).Msg("failed to initialize mailbox")
	}

	if err := mailbox.NewServer(store).Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
