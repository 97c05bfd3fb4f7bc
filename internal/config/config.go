// Package config loads vaultmind settings from layered JSONC files and
// environment variables.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/tidwall/jsonc"

	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

// ProviderSettings configures one LLM provider.
type ProviderSettings struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`
}

// Settings is the merged configuration for a vaultmind process.
type Settings struct {
	// VaultDir is the root of the document vault.
	VaultDir string `json:"vaultDir,omitempty"`

	// Mode is the default mode slug for new sessions.
	Mode string `json:"mode,omitempty"`

	// Model is the default provider/model selection.
	Model types.ModelSelection `json:"model"`

	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`

	// GlobalInstructions are appended after mode-level custom
	// instructions, mode-level winning on conflict.
	GlobalInstructions string `json:"globalInstructions,omitempty"`

	// Experiments gates experimental tools in the catalogue filter.
	Experiments map[string]bool `json:"experiments,omitempty"`

	// Providers holds credentials keyed by provider id.
	Providers map[string]ProviderSettings `json:"providers,omitempty"`

	// Modes are user-defined modes; a slug matching a built-in overrides it.
	Modes []types.Mode `json:"modes,omitempty"`

	// DispatchPolicy is "trust" (default) or "strict"; strict hard-rejects
	// directives outside the compiled catalogue.
	DispatchPolicy string `json:"dispatchPolicy,omitempty"`

	// Ignore lists doublestar globs excluded from vault tree listings.
	Ignore []string `json:"ignore,omitempty"`
}

// Load merges configuration from, in priority order (later wins):
//  1. ~/.vaultmind/settings.json(c)
//  2. <vaultDir>/.vaultmind/settings.json(c)
//  3. VAULTMIND_* environment variables
func Load(vaultDir string) (*Settings, error) {
	s := &Settings{
		Mode:        "ask",
		MaxTokens:   8192,
		Temperature: 0.7,
		Experiments: make(map[string]bool),
		Providers:   make(map[string]ProviderSettings),
	}

	if home, err := os.UserHomeDir(); err == nil {
		loadFile(filepath.Join(home, ".vaultmind", "settings.json"), s)
		loadFile(filepath.Join(home, ".vaultmind", "settings.jsonc"), s)
	}
	if vaultDir != "" {
		loadFile(filepath.Join(vaultDir, ".vaultmind", "settings.json"), s)
		loadFile(filepath.Join(vaultDir, ".vaultmind", "settings.jsonc"), s)
		s.VaultDir = vaultDir
	}

	applyEnv(s)
	return s, nil
}

// loadFile merges one settings file into s. Missing files are skipped.
func loadFile(path string, s *Settings) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	data = jsonc.ToJSON(data)
	data = interpolateEnv(data)

	var layer Settings
	if err := json.Unmarshal(data, &layer); err != nil {
		return
	}
	merge(s, &layer)
}

var envPattern = regexp.MustCompile(`\{env:([^}]+)\}`)

// interpolateEnv expands {env:VAR} placeholders in raw settings data.
func interpolateEnv(data []byte) []byte {
	return envPattern.ReplaceAllFunc(data, func(match []byte) []byte {
		name := envPattern.FindSubmatch(match)[1]
		return []byte(os.Getenv(string(name)))
	})
}

func merge(dst, src *Settings) {
	if src.VaultDir != "" {
		dst.VaultDir = src.VaultDir
	}
	if src.Mode != "" {
		dst.Mode = src.Mode
	}
	if src.Model.ProviderID != "" {
		dst.Model.ProviderID = src.Model.ProviderID
	}
	if src.Model.ModelID != "" {
		dst.Model.ModelID = src.Model.ModelID
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.GlobalInstructions != "" {
		dst.GlobalInstructions = src.GlobalInstructions
	}
	if src.DispatchPolicy != "" {
		dst.DispatchPolicy = src.DispatchPolicy
	}
	for k, v := range src.Experiments {
		dst.Experiments[k] = v
	}
	for id, p := range src.Providers {
		have := dst.Providers[id]
		if p.APIKey != "" {
			have.APIKey = p.APIKey
		}
		if p.BaseURL != "" {
			have.BaseURL = p.BaseURL
		}
		dst.Providers[id] = have
	}
	dst.Modes = append(dst.Modes, src.Modes...)
	dst.Ignore = append(dst.Ignore, src.Ignore...)
}

func applyEnv(s *Settings) {
	setProviderKey := func(id, env string) {
		if v := os.Getenv(env); v != "" {
			p := s.Providers[id]
			p.APIKey = v
			s.Providers[id] = p
		}
	}
	setProviderKey("anthropic", "ANTHROPIC_API_KEY")
	setProviderKey("openai", "OPENAI_API_KEY")

	if v := os.Getenv("VAULTMIND_MODE"); v != "" {
		s.Mode = v
	}
	if v := os.Getenv("VAULTMIND_PROVIDER"); v != "" {
		s.Model.ProviderID = v
	}
	if v := os.Getenv("VAULTMIND_MODEL"); v != "" {
		s.Model.ModelID = v
	}
	if v := os.Getenv("VAULTMIND_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			s.MaxTokens = n
		}
	}
	if v := os.Getenv("VAULTMIND_DISPATCH_POLICY"); v != "" {
		s.DispatchPolicy = v
	}
}

// Validate checks that an exchange can be issued with these settings.
func (s *Settings) Validate() error {
	if s.Model.ProviderID == "" {
		return &types.ConfigurationError{Field: "model.providerId", Msg: "no provider selected"}
	}
	if s.Model.ModelID == "" {
		return &types.ConfigurationError{Field: "model.modelId", Msg: "no model selected"}
	}
	p, ok := s.Providers[s.Model.ProviderID]
	if !ok || p.APIKey == "" {
		return &types.ConfigurationError{Field: "providers." + s.Model.ProviderID + ".apiKey", Msg: "missing API key"}
	}
	return nil
}
