// Package commands implements the vaultmind command line interface.
package commands

import (
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vaultmind-ai/vaultmind/internal/config"
	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/history"
	"github.com/vaultmind-ai/vaultmind/internal/logging"
	"github.com/vaultmind-ai/vaultmind/internal/mode"
	"github.com/vaultmind-ai/vaultmind/internal/policy"
	"github.com/vaultmind-ai/vaultmind/internal/prompt"
	"github.com/vaultmind-ai/vaultmind/internal/provider"
	"github.com/vaultmind-ai/vaultmind/internal/session"
	"github.com/vaultmind-ai/vaultmind/internal/tool"
	"github.com/vaultmind-ai/vaultmind/internal/vault"
)

var (
	flagVault    string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   "vaultmind",
	Short: "Conversational assistant for your document vault",
	Long:  "vaultmind answers questions about, edits and researches the notes in a document vault, driven by an LLM with vault-aware tools.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		logging.Init(logging.Config{Level: logging.ParseLevel(flagLogLevel), Console: true})
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagVault, "vault", "v", ".", "vault root directory")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(modesCmd)
	rootCmd.AddCommand(sessionsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// app bundles the wired engine components for one invocation.
type app struct {
	settings  *config.Settings
	bus       *event.Bus
	vault     *vault.Vault
	modes     *mode.Registry
	tools     *tool.Registry
	store     *history.Store
	providers *provider.Registry
	service   *session.Service
}

func buildApp() (*app, error) {
	settings, err := config.Load(flagVault)
	if err != nil {
		return nil, err
	}

	bus := event.NewBus()
	v := vault.New(settings.VaultDir, settings.Ignore)

	modes := mode.NewRegistry()
	for _, m := range settings.Modes {
		modes.Register(m)
	}

	tools := tool.NewRegistry()
	compiler := prompt.NewCompiler(v, modes, tools, settings, v.ActivePath)

	store, err := history.NewStore(filepath.Join(settings.VaultDir, ".vaultmind"), bus)
	if err != nil {
		return nil, err
	}

	pol, err := policy.Parse(settings.DispatchPolicy)
	if err != nil {
		return nil, err
	}
	dispatcher := session.NewDispatcher(v, v, v.ActivePath, modes, tools, pol)

	providers := provider.FromSettings(settings)
	svc := session.NewService(store, compiler, providers, dispatcher, bus, settings)

	return &app{
		settings:  settings,
		bus:       bus,
		vault:     v,
		modes:     modes,
		tools:     tools,
		store:     store,
		providers: providers,
		service:   svc,
	}, nil
}
