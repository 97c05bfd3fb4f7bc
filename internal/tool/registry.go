package tool

import (
	"sync"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Registry holds the built-in descriptor set, fixed at process start, and
// a secondary override table for user-registered tools consulted only
// when no built-in variant matches the name.
type Registry struct {
	mu            sync.RWMutex
	builtins      []Descriptor
	overrides     map[string]Descriptor
	overrideOrder []string
}

// NewRegistry creates a registry seeded with the built-in tools.
func NewRegistry() *Registry {
	return &Registry{
		builtins:  builtinDescriptors(),
		overrides: make(map[string]Descriptor),
	}
}

// RegisterOverride adds or replaces a user-defined tool by name. The
// built-in variant set always wins lookups for its own names.
func (r *Registry) RegisterOverride(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.overrides[d.Name]; !exists {
		r.overrideOrder = append(r.overrideOrder, d.Name)
	}
	r.overrides[d.Name] = d
}

// Get resolves a directive name to its descriptor: built-ins first, then
// the override table.
func (r *Registry) Get(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.builtins {
		if d.Name == name {
			return d, true
		}
	}
	d, ok := r.overrides[name]
	return d, ok
}

// Description is one entry of the compiled tool catalogue.
type Description struct {
	Name string
	Text string
}

// CatalogueFor selects the ordered tool descriptions exposed to the model
// for a mode. A tool is included when it belongs to an allowed group or is
// always-available, its applicability gate passes, and its description
// generator returns non-empty text. Ordering is insertion order of
// first-seen name during group iteration; duplicates collapse.
//
// The filter is pure: identical (mode, experiments, ctx) yields identical
// output. It is re-run on every compilation, never cached.
func (r *Registry) CatalogueFor(mode types.Mode, experiments map[string]bool, ctx DescribeContext) []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Descriptor, 0, len(r.builtins)+len(r.overrideOrder))
	all = append(all, r.builtins...)
	for _, name := range r.overrideOrder {
		all = append(all, r.overrides[name])
	}

	seen := make(map[string]bool)
	var selected []Descriptor
	for _, g := range mode.Groups {
		for _, d := range all {
			if d.inGroup(g) && !seen[d.Name] {
				seen[d.Name] = true
				selected = append(selected, d)
			}
		}
	}
	for _, d := range all {
		if d.AlwaysAvailable && !seen[d.Name] {
			seen[d.Name] = true
			selected = append(selected, d)
		}
	}

	var out []Description
	for _, d := range selected {
		if !d.applies(mode, experiments) {
			continue
		}
		text := ""
		if d.Describe != nil {
			text = d.Describe(ctx)
		}
		if text == "" {
			continue
		}
		out = append(out, Description{Name: d.Name, Text: text})
	}
	return out
}

// Allowed reports whether name survives the catalogue filter for the
// given mode. Used by the strict dispatch policy.
func (r *Registry) Allowed(name string, mode types.Mode, experiments map[string]bool, ctx DescribeContext) bool {
	for _, desc := range r.CatalogueFor(mode, experiments, ctx) {
		if desc.Name == name {
			return true
		}
	}
	return false
}
