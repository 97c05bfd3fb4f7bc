package mode

import (
	"testing"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

func TestGetDefaultsToAsk(t *testing.T) {
	r := NewRegistry()
	m, err := r.Get("")
	if err != nil {
		t.Fatal(err)
	}
	if m.Slug != "ask" {
		t.Errorf("default mode %q, want ask", m.Slug)
	}
}

func TestGetUnknownSlug(t *testing.T) {
	r := NewRegistry()
	if _, err := r.Get("no-such-mode"); err == nil {
		t.Fatal("expected error for unknown slug")
	}
}

func TestUserModeOverridesBuiltIn(t *testing.T) {
	r := NewRegistry()
	r.Register(types.Mode{
		Slug:           "ask",
		Name:           "Custom Ask",
		RoleDefinition: "custom",
		Groups:         []types.GroupName{types.GroupRead},
	})

	m, err := r.Get("ask")
	if err != nil {
		t.Fatal(err)
	}
	if m.Name != "Custom Ask" || m.IsBuiltIn {
		t.Errorf("override not applied: %+v", m)
	}

	// Overriding must not duplicate the slug in the listing.
	seen := 0
	for _, listed := range r.List() {
		if listed.Slug == "ask" {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("ask listed %d times", seen)
	}
}

func TestListPreservesRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	r.Register(types.Mode{Slug: "summarize", Name: "Summarize"})

	list := r.List()
	if len(list) != 4 {
		t.Fatalf("expected 4 modes, got %d", len(list))
	}
	want := []string{"ask", "write", "research", "summarize"}
	for i, slug := range want {
		if list[i].Slug != slug {
			t.Errorf("position %d: got %s, want %s", i, list[i].Slug, slug)
		}
	}
}
