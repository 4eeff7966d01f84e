package tool

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
)

// Executor resolves a tool-call name against the registry and invokes it.
// In-process tools are called directly and their errors propagate; remote
// sources are probed one by one in configured order, and a source that is
// unreachable or does not advertise the name is skipped, never fatal.
type Executor struct {
	registry *Registry
}

var _ contractx.ToolExecutor = (*Executor)(nil)

func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	log.Info().Str("tool", name).Msg("executing tool")

	if local, ok := e.registry.Local(name); ok {
		return local.Run(ctx, args)
	}

	for _, src := range e.registry.Sources() {
		descriptors, err := src.ListTools(ctx)
		if err != nil {
			log.Debug().Err(err).Str("source", src.Name()).Str("tool", name).
				Msg("mcp source did not provide tool")
			continue
		}
		if !advertises(descriptors, name) {
			continue
		}

		log.Info().Str("source", src.Name()).Str("tool", name).Msg("calling mcp tool")
		result, err := src.CallTool(ctx, name, args)
		if err != nil {
			log.Debug().Err(err).Str("source", src.Name()).Str("tool", name).
				Msg("mcp source did not provide tool")
			continue
		}
		return result, nil
	}

	log.Error().Str("tool", name).Msg("tool not found on any source")
	return fmt.Sprintf("Error: Tool %s not found", name), nil
}

func advertises(descriptors []contractx.ToolDescriptor, name string) bool {
	for _, d := range descriptors {
		if d.Name == name {
			return true
		}
	}
	return false
}
