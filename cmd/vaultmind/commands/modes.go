package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List available modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := buildApp()
		if err != nil {
			return err
		}
		defer app.bus.Close()

		for _, m := range app.modes.List() {
			groups := make([]string, 0, len(m.Groups))
			for _, g := range m.Groups {
				groups = append(groups, string(g))
			}
			origin := "user"
			if m.IsBuiltIn {
				origin = "built-in"
			}
			fmt.Printf("%-12s %-10s [%s] %s\n", m.Slug, origin, strings.Join(groups, ","), m.Name)
		}
		return nil
	},
}
