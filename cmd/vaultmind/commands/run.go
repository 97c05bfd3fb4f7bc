package commands

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vaultmind-ai/vaultmind/internal/event"
	"github.com/vaultmind-ai/vaultmind/internal/vault"
	"github.com/vaultmind-ai/vaultmind/pkg/types"
)

var (
	flagSession string
	flagMode    string
	flagActive  string
	flagAttach  []string
	flagURLs    []string
)

var runCmd = &cobra.Command{
	Use:   "run [query]",
	Short: "Submit one query and stream the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.bus.Close()

		if flagActive != "" {
			app.vault.SetActive(flagActive)
		}

		sess, err := resumeOrCreate(app)
		if err != nil {
			return err
		}

		var attachments []types.Mentionable
		for _, p := range flagAttach {
			attachments = append(attachments, mentionableForPath(p))
		}
		for _, u := range flagURLs {
			attachments = append(attachments, types.Mentionable{Kind: types.MentionURL, URL: u})
		}

		unsubscribe := app.bus.SubscribeAll(printEvent)
		defer unsubscribe()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if watcher, werr := vault.NewWatcher(app.vault, app.bus); werr == nil {
			go watcher.Run(ctx)
		}

		query := strings.Join(args, " ")
		if err := app.service.Submit(ctx, sess, query, attachments); err != nil {
			return err
		}
		fmt.Println()
		fmt.Fprintf(os.Stderr, "session: %s\n", sess.ID)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&flagSession, "session", "s", "", "resume an existing session by id")
	runCmd.Flags().StringVarP(&flagMode, "mode", "m", "", "mode slug for this session")
	runCmd.Flags().StringVar(&flagActive, "active", "", "vault-relative path of the active note")
	runCmd.Flags().StringArrayVarP(&flagAttach, "attach", "a", nil, "attach a file, folder or path#L1-L9 block (repeatable)")
	runCmd.Flags().StringArrayVar(&flagURLs, "url", nil, "attach a web page (repeatable)")
}

func resumeOrCreate(app *app) (*types.Session, error) {
	if flagSession != "" {
		sess, err := app.store.Load(flagSession)
		if err != nil {
			return nil, err
		}
		if flagMode != "" {
			sess.ModeSlug = flagMode
		}
		return sess, nil
	}
	modeSlug := flagMode
	if modeSlug == "" {
		modeSlug = app.settings.Mode
	}
	return app.store.NewSession(modeSlug, app.settings.Model)
}

// mentionableForPath maps an --attach argument to its mentionable variant:
// "dir/" is a folder, "path#L3-L9" is a block range, anything else a file.
func mentionableForPath(arg string) types.Mentionable {
	if strings.HasSuffix(arg, "/") {
		return types.Mentionable{Kind: types.MentionFolder, Path: strings.TrimSuffix(arg, "/")}
	}
	if path, rangeSpec, ok := strings.Cut(arg, "#L"); ok {
		var start, end int
		if n, err := fmt.Sscanf(rangeSpec, "%d-L%d", &start, &end); err == nil && n == 2 {
			return types.Mentionable{Kind: types.MentionBlock, Path: path, StartLine: start, EndLine: end}
		}
	}
	return types.Mentionable{Kind: types.MentionFile, Path: arg}
}

// printEvent renders streamed engine events for the terminal: content to
// stdout, reasoning and progress to stderr.
func printEvent(ev event.Event) {
	switch ev.Type {
	case event.TurnUpdated:
		if data, ok := ev.Data.(event.TurnUpdatedData); ok {
			fmt.Print(data.Delta)
		}
	case event.ReasoningUpdated:
		if data, ok := ev.Data.(event.ReasoningUpdatedData); ok {
			fmt.Fprint(os.Stderr, data.Delta)
		}
	case event.TurnCreated:
		if data, ok := ev.Data.(event.TurnCreatedData); ok && data.Turn.IsToolResult {
			fmt.Printf("\n%s\n", data.Turn.Content)
		}
	case event.ProgressChanged:
		if data, ok := ev.Data.(event.ProgressChangedData); ok {
			p := data.Progress
			if p.Phase == types.PhaseReadingAttachments && p.Total > 0 {
				fmt.Fprintf(os.Stderr, "reading attachments %d/%d\n", p.Completed, p.Total)
			}
			if p.Phase == types.PhaseError {
				fmt.Fprintf(os.Stderr, "error: %s\n", p.Message)
			}
		}
	}
}
