package tool

import (
	"testing"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

func askMode() types.Mode {
	return types.Mode{Slug: "ask", Groups: []types.GroupName{types.GroupRead}}
}

func writeMode() types.Mode {
	return types.Mode{Slug: "write", Groups: []types.GroupName{types.GroupRead, types.GroupEdit}}
}

func researchMode() types.Mode {
	return types.Mode{Slug: "research", Groups: []types.GroupName{types.GroupRead, types.GroupWeb}}
}

func names(catalogue []Description) []string {
	out := make([]string, 0, len(catalogue))
	for _, d := range catalogue {
		out = append(out, d.Name)
	}
	return out
}

func contains(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func TestCatalogueIsDeterministic(t *testing.T) {
	r := NewRegistry()
	ctx := DescribeContext{VaultRoot: "/vault"}

	first := r.CatalogueFor(writeMode(), nil, ctx)
	second := r.CatalogueFor(writeMode(), nil, ctx)
	if len(first) != len(second) {
		t.Fatalf("catalogue size changed: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("entry %d differs between runs", i)
		}
	}
}

func TestCatalogueFiltersByGroup(t *testing.T) {
	r := NewRegistry()
	ctx := DescribeContext{}

	ask := names(r.CatalogueFor(askMode(), nil, ctx))
	if contains(ask, NameWriteToFile) || contains(ask, NameInsertContent) {
		t.Errorf("ask mode exposes edit tools: %v", ask)
	}
	if !contains(ask, NameReadFile) || !contains(ask, NameListFiles) {
		t.Errorf("ask mode missing read tools: %v", ask)
	}

	write := names(r.CatalogueFor(writeMode(), nil, ctx))
	for _, n := range []string{NameWriteToFile, NameInsertContent, NameSearchAndReplace} {
		if !contains(write, n) {
			t.Errorf("write mode missing %s: %v", n, write)
		}
	}
	if contains(write, NameFetchURLsContent) {
		t.Errorf("write mode exposes web tools: %v", write)
	}
}

func TestAlwaysAvailableToolsInEveryMode(t *testing.T) {
	r := NewRegistry()
	ctx := DescribeContext{}

	for _, m := range []types.Mode{askMode(), writeMode(), researchMode()} {
		got := names(r.CatalogueFor(m, nil, ctx))
		for _, n := range []string{NameAskFollowupQuestion, NameAttemptCompletion, NameSwitchMode} {
			if !contains(got, n) {
				t.Errorf("mode %s missing always-available %s", m.Slug, n)
			}
		}
	}
}

func TestExperimentDisablesWebTool(t *testing.T) {
	r := NewRegistry()
	ctx := DescribeContext{}

	enabled := names(r.CatalogueFor(researchMode(), nil, ctx))
	if !contains(enabled, NameFetchURLsContent) {
		t.Fatalf("research mode missing %s: %v", NameFetchURLsContent, enabled)
	}

	disabled := names(r.CatalogueFor(researchMode(), map[string]bool{"disable_web": true}, ctx))
	if contains(disabled, NameFetchURLsContent) {
		t.Errorf("disable_web experiment did not remove %s", NameFetchURLsContent)
	}
}

func TestEmptyDescriptionExcludesTool(t *testing.T) {
	r := NewRegistry()
	r.RegisterOverride(Descriptor{
		Name:            "silent_tool",
		AlwaysAvailable: true,
		Describe:        func(DescribeContext) string { return "" },
	})

	got := names(r.CatalogueFor(askMode(), nil, DescribeContext{}))
	if contains(got, "silent_tool") {
		t.Error("tool with empty description leaked into catalogue")
	}
	if _, ok := r.Get("silent_tool"); !ok {
		t.Error("registered override not resolvable by name")
	}
}

func TestBuiltinWinsOverOverride(t *testing.T) {
	r := NewRegistry()
	r.RegisterOverride(Descriptor{
		Name:     NameReadFile,
		Describe: func(DescribeContext) string { return "shadow" },
	})

	d, ok := r.Get(NameReadFile)
	if !ok {
		t.Fatal("read_file not found")
	}
	if d.Kind != KindReadFile {
		t.Error("override shadowed a built-in tool")
	}
}

func TestAllowedMatchesCatalogue(t *testing.T) {
	r := NewRegistry()
	ctx := DescribeContext{}

	if r.Allowed(NameWriteToFile, askMode(), nil, ctx) {
		t.Error("write_to_file allowed in ask mode")
	}
	if !r.Allowed(NameWriteToFile, writeMode(), nil, ctx) {
		t.Error("write_to_file rejected in write mode")
	}
	if !r.Allowed(NameSwitchMode, askMode(), nil, ctx) {
		t.Error("switch_mode rejected despite always-available")
	}
}
