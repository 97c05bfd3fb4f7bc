// Package policy decides what happens when the model emits a directive
// that the compiled tool catalogue did not advertise.
package policy

import (
	"fmt"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// Policy is the dispatch gating strategy.
type Policy string

const (
	// Trust executes any directive the registry knows, even when the
	// current catalogue did not advertise it to the model.
	Trust Policy = "trust"

	// Strict rejects directives outside the current catalogue.
	Strict Policy = "strict"
)

// Parse maps a configured policy string to a Policy. Empty means Trust.
func Parse(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return Trust, nil
	case Trust, Strict:
		return Policy(s), nil
	default:
		return "", &types.ConfigurationError{Field: "dispatchPolicy", Msg: fmt.Sprintf("unknown policy %q", s)}
	}
}

// Check gates one directive. inCatalogue reports whether the catalogue
// filter currently exposes the tool to the model.
func (p Policy) Check(toolName string, inCatalogue bool) error {
	if p == Strict && !inCatalogue {
		return &types.DispatchError{Tool: toolName, Msg: "not available in the current mode"}
	}
	return nil
}
