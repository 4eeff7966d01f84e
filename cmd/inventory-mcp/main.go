// Command inventory-mcp serves the jewelry shop operational data (customers,
// orders, inventory, notes) as an MCP stdio server backed by SQLite.
package main

import (
	"context"
	"flag"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/jewelryops/agent/mcpserver/inventory"
	_ "github.com/jewelryops/agent/pkg/logger/autoload"
)

func main() {
	dbPath := flag.String("db", "data/jewelryops.db", "path to the SQLite database file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := inventory.Open(*dbPath)
	if err != nil {
		log.Fatal().Err(err).Str("db", *dbPath).Msg("failed to open database")
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	if err := inventory.NewServer(store).Run(ctx, &mcp.StdioTransport{}); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
