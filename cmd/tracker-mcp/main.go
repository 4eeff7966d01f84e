// Command tracker-mcp serves a mock issue tracker as an MCP stdio server
// backed by a JSON file.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/jewelryops/agent/mcpserver/tracker"
	_ "github.com/jewelryops/agent/pkg/logger/autoload"
)

func main() {
	dataPath := flag.String("data", "data/issues.json", "path to the issues JSON file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := tracker.NewStore(*dataPath)
	if err := store.Init(); err != nil {
		log.Fatal().Err(err).Str("data", *dataPath).Msg("failed to initialize tracker")
	}

	if err := tracker.NewServer(store).Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
