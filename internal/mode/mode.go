// Package mode holds the catalogue of assistant modes: built-in bundles of
// role definition, allowed tool groups and custom instructions, plus
// user-defined modes that may override built-ins by slug.
package mode

import (
	"fmt"
	"sync"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// DefaultSlug is the mode used when a session names none.
const DefaultSlug = "ask"

// BuiltIn returns the immutable built-in mode catalogue.
func BuiltIn() []types.Mode {
	return []types.Mode{
		{
			Slug:           "ask",
			Name:           "Ask",
			RoleDefinition: "You are vaultmind, a knowledgeable assistant for the user's document vault. You answer questions about notes, summarize content, and explain ideas. You read and reference vault content but do not modify it.",
			Groups:         []types.GroupName{types.GroupRead},
			IsBuiltIn:      true,
		},
		{
			Slug:           "write",
			Name:           "Write",
			RoleDefinition: "You are vaultmind, a skilled writing collaborator inside the user's document vault. You draft, restructure and edit notes directly, keeping the vault's organization, links and formatting conventions intact.",
			Groups:         []types.GroupName{types.GroupRead, types.GroupEdit},
			IsBuiltIn:      true,
		},
		{
			Slug:           "research",
			Name:           "Research",
			RoleDefinition: "You are vaultmind, a research assistant for the user's document vault. You gather information from vault notes and the web, compare sources, and synthesize findings into clear summaries.",
			Groups:         []types.GroupName{types.GroupRead, types.GroupWeb},
			IsBuiltIn:      true,
		},
	}
}

// Registry is the mode lookup table. Built-ins are fixed; user modes are
// appended and may mask a built-in of the same slug, last registered wins.
type Registry struct {
	mu    sync.RWMutex
	order []string
	modes map[string]types.Mode
}

// NewRegistry creates a registry seeded with the built-in catalogue.
func NewRegistry() *Registry {
	r := &Registry{modes: make(map[string]types.Mode)}
	for _, m := range BuiltIn() {
		r.register(m)
	}
	return r
}

// Register adds a user-defined mode. A slug collision overrides the
// earlier registration.
func (r *Registry) Register(m types.Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.IsBuiltIn = false
	r.register(m)
}

func (r *Registry) register(m types.Mode) {
	if _, exists := r.modes[m.Slug]; !exists {
		r.order = append(r.order, m.Slug)
	}
	r.modes[m.Slug] = m
}

// Get resolves a slug to exactly one mode.
func (r *Registry) Get(slug string) (types.Mode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if slug == "" {
		slug = DefaultSlug
	}
	m, ok := r.modes[slug]
	if !ok {
		return types.Mode{}, fmt.Errorf("unknown mode: %q", slug)
	}
	return m, nil
}

// List returns all modes in first-registration order, overrides applied.
func (r *Registry) List() []types.Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.Mode, 0, len(r.order))
	for _, slug := range r.order {
		out = append(out, r.modes[slug])
	}
	return out
}
