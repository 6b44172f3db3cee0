// Package ai implements the AI collaborator driver (spec.md §4.8): a
// provider registry, a prompt-context builder, subprocess transport, a
// response sanitizer, and the type-check-and-retry loop that feeds
// generated scripts into internal/dsl.
package ai

import (
	"fmt"
	"sort"

	"github.com/xonecas/revel/internal/config"
)

// Registry holds the configured provider roster, keyed by id. It mirrors
// the teacher's internal/provider.Registry (RegisterFactory/Create/List)
// generalized from "factory returns an HTTP client" to "lookup returns a
// subprocess invocation spec" — there is no per-provider Go code here, so
// registration is data (a config.ProviderConfig), not a factory function.
type Registry struct {
	byID map[string]config.ProviderConfig
}

// NewRegistry builds a Registry from a loaded provider roster
// (config.LoadProviders). Later entries with a duplicate id overwrite
// earlier ones, same as the config package's own merge rule.
func NewRegistry(providers []config.ProviderConfig) *Registry {
	r := &Registry{byID: make(map[string]config.ProviderConfig, len(providers))}
	for _, p := range providers {
		r.byID[p.ID] = p
	}
	return r
}

// List returns every registered provider id, sorted for stable display.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the provider config for id.
func (r *Registry) Get(id string) (config.ProviderConfig, bool) {
	cfg, ok := r.byID[id]
	return cfg, ok
}

// Create builds a Provider for id, applying a CLI path override if one is
// set. Returns an error if id isn't registered.
func (r *Registry) Create(id string, cliOverride string) (*Provider, error) {
	cfg, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("ai: provider %q not found", id)
	}
	if cliOverride != "" {
		cfg.Binary = cliOverride
	}
	return &Provider{cfg: cfg}, nil
}
