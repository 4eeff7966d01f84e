package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
	orchestratorx "github.com/jewelryops/agent/agent/orchestrator"
	promptx "github.com/jewelryops/agent/agent/prompt"
	sessionx "github.com/jewelryops/agent/agent/session"
	toolx "github.com/jewelryops/agent/agent/tool"
	configx "github.com/jewelryops/agent/pkg/config"
	llmx "github.com/jewelryops/agent/pkg/llm"
	_ "github.com/jewelryops/agent/pkg/logger/autoload"
	serverx "github.com/jewelryops/agent/server"
)

// mcpConfig holds the startup command line for each optional MCP server.
// An empty command disables that source.
type mcpConfig struct {
	InventoryCmd string `split_words:"true"`
	MailboxCmd   string `split_words:"true"`
	TrackerCmd   string `split_words:"true"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	llmConf := configx.MustNew[llmx.Config]("OPENAI")
	toolConf := configx.MustNew[llmx.Config]("TOOL")
	serverConf := configx.MustNew[serverx.Config]("SERVER")
	redisConf := configx.MustNew[sessionx.RedisConfig]("REDIS")
	mcpConf := configx.MustNew[mcpConfig]("MCP")

	client := llmx.NewClient(*llmConf)
	if client == nil {
		log.Fatal().Msg("OPENAI_API_KEY is required")
	}
	toolClient := llmx.NewClient(*toolConf)
	if toolClient == nil {
		// The in-process tools fall back to the main endpoint.
		toolClient = client
		toolConf.Model = llmConf.Model
	}

	prompts := promptx.Load()

	sources := buildSources(*mcpConf)
	registry := toolx.NewRegistry(toolx.NewLocalTools(toolClient, toolConf.Model, prompts), sources...)
	executor := toolx.NewExecutor(registry)

	// Load remote schemas now so the first chat turn does not wait on
	// MCP subprocess startup; unreachable sources retry on first use.
	log.Info().Int("tools", len(registry.Descriptors(ctx))).Msg("tool catalog preloaded")

	sessions := sessionx.NewStore()
	var contexts sessionx.ContextStore
	if redisConf.Enabled() {
		store, err := sessionx.NewRedisContextStore(*redisConf)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid redis configuration")
		}
		contexts = store
		log.Info().Msg("session context persistence enabled")
	}

	orc, err := orchestratorx.New(client, sessions, contexts, registry, executor, prompts, orchestratorx.Config{
		Model:       llmConf.Model,
		Temperature: llmConf.Temperature,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build agent")
	}

	srv, err := serverx.New(*serverConf, orc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build server")
	}

	if err := srv.Run(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func buildSources(conf mcpConfig) []contractx.ToolSource {
	configured := []struct {
		name string
		cmd  string
	}{
		{"inventory", conf.InventoryCmd},
		{"mailbox", conf.MailboxCmd},
		{"tracker", conf.TrackerCmd},
	}

	var sources []contractx.ToolSource
	for _, c := range configured {
		if c.cmd == "" {
			continue
		}
		source, err := toolx.NewMCPSource(c.name, c.cmd)
		if err != nil {
			log.Fatal().Err(err).Str("source", c.name).Msg("invalid mcp command")
		}
		log.Info().Str("source", c.name).Str("command", c.cmd).Msg("mcp source configured")
		sources = append(sources, source)
	}
	return sources
}
