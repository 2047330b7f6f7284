package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/orrery/internal/catalog"
)

var importCmd = &cobra.Command{
	Use:   "import <file.yaml>...",
	Short: "Store system catalogues in the database",
	Long: `Validate YAML system catalogues and store them in the database. A
stored system replaces a built-in or directory system with the same id.

Examples:
  orrery import ./my-system.yaml
  orrery import systems/*.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImport,
}

var removeCmd = &cobra.Command{
	Use:   "remove <system>",
	Short: "Delete a stored system and its perf runs",
	Args:  cobra.ExactArgs(1),
	RunE:  runRemove,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, appOptions{requireStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	for _, path := range args {
		sys, err := catalog.LoadFile(path)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := a.store.SaveSystem(ctx, sys); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("Imported %s (%s, %d bodies)\n", sys.ID, sys.Title(), len(sys.Bodies))
	}
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, appOptions{requireStore: true})
	if err != nil {
		return err
	}
	defer a.Close()

	ok, err := a.store.DeleteSystem(ctx, args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("system %q is not stored in the database", args[0])
	}
	fmt.Printf("Removed %s\n", args[0])
	return nil
}
