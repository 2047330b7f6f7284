package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all available systems",
	Long: `Shows every registered system: built-in catalogues, YAML files in the
configured catalog directory and ~/.orrery/systems, and systems stored in
the database.`,
	RunE: runList,
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	systems := a.registry.List()
	if len(systems) == 0 {
		fmt.Println("No systems available.")
		return nil
	}

	fmt.Println("Available systems:")
	fmt.Println()

	maxIDLen, maxTitleLen := 2, 5 // "ID", "Title" headers
	for _, s := range systems {
		maxIDLen = max(maxIDLen, len(s.ID))
		maxTitleLen = max(maxTitleLen, len(s.Title))
	}

	fmt.Printf("  %-*s  %-*s  %6s  %s\n", maxIDLen, "ID", maxTitleLen, "Title", "Bodies", "Source")
	fmt.Printf("  %-*s  %-*s  %6s  %s\n", maxIDLen, "--", maxTitleLen, "-----", "------", "------")
	for _, s := range systems {
		fmt.Printf("  %-*s  %-*s  %6d  %s\n", maxIDLen, s.ID, maxTitleLen, s.Title, s.Bodies, s.Source)
	}

	fmt.Println()
	fmt.Println("Run 'orrery view <id>' to view a system.")
	return nil
}
