package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List stored sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.bus.Close()

		sessions, err := app.store.List()
		if err != nil {
			return err
		}
		for _, s := range sessions {
			updated := time.UnixMilli(s.UpdatedAt).Format("2006-01-02 15:04")
			title := s.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Printf("%s  %s  %-6s %s\n", s.ID, updated, s.ModeSlug, title)
		}
		return nil
	},
}
