package tool

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	contractx "github.com/jewelryops/agent/agent/contract"
)

// Registry is the union of in-process tools and remote tool sources.
// Resolution order is explicit: local tools first, then sources in their
// configured order, so a name collision is won by the local tool and
// otherwise by the first configured source.
type Registry struct {
	local       []LocalTool
	localByName map[string]LocalTool
	sources     []contractx.ToolSource

	mu          sync.Mutex
	remoteCache map[string][]contractx.ToolDescriptor
}

func NewRegistry(local []LocalTool, sources ...contractx.ToolSource) *Registry {
	byName := make(map[string]LocalTool, len(local))
	for _, lt := range local {
		if lt.Descriptor.Name == "" {
			continue
		}
		if _, exists := byName[lt.Descriptor.Name]; exists {
			continue
		}
		byName[lt.Descriptor.Name] = lt
	}

	return &Registry{
		local:       local,
		localByName: byName,
		sources:     sources,
		remoteCache: make(map[string][]contractx.ToolDescriptor),
	}
}

// Local returns the in-process tool registered under name.
func (r *Registry) Local(name string) (LocalTool, bool) {
	lt, ok := r.localByName[name]
	return lt, ok
}

// Sources returns the remote sources in configured order.
func (r *Registry) Sources() []contractx.ToolSource {
	return r.sources
}

// Descriptors returns the merged tool list: local tools followed by each
// source's advertised tools. Remote schemas are cached for the process
// lifetime after the first successful load; a failed source is retried on
// every call since remote availability may change.
func (r *Registry) Descriptors(ctx context.Context) []contractx.ToolDescriptor {
	merged := make([]contractx.ToolDescriptor, 0, len(r.local))
	for _, lt := range r.local {
		merged = append(merged, lt.Descriptor)
	}

	for _, src := range r.sources {
		descriptors, err := r.sourceDescriptors(ctx, src)
		if err != nil {
			log.Warn().Err(err).Str("source", src.Name()).Msg("mcp source unavailable")
			continue
		}
		merged = append(merged, descriptors...)
	}
	return merged
}

func (r *Registry) sourceDescriptors(ctx context.Context, src contractx.ToolSource) ([]contractx.ToolDescriptor, error) {
	r.mu.Lock()
	cached, ok := r.remoteCache[src.Name()]
	r.mu.Unlock()
	if ok {
		return cached, nil
	}

	descriptors, err := src.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.remoteCache[src.Name()] = descriptors
	r.mu.Unlock()
	return descriptors, nil
}
