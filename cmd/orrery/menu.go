package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/platform/tui"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pick systems interactively",
	Long: `Start a menu listing every registered system. Leaving the viewer with
Esc returns to the menu; Tab in the menu opens the perf run table.`,
	RunE: runMenu,
}

func runMenu(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, appOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer a.Close()

	width, height := terminalSize()
	cfg := core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: a.cfg.Render.FPS,
		Seed:     flagSeed,
	}

	for {
		result, err := tui.RunMenu(a.registry, cfg)
		if err != nil {
			return err
		}
		cfg = result.Config

		switch {
		case result.Quit:
			return nil

		case result.WantsRuns:
			goBack, err := tui.RunRuns(a.store, a.registry, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				return err
			}
			if !goBack {
				return nil
			}

		case result.SystemID != "":
			quit, err := viewSystem(cmd, a, result.SystemID, true)
			if err != nil {
				a.logger.Error("viewer failed", "id", result.SystemID, "err", err)
				return err
			}
			if quit {
				return nil
			}
		}
	}
}
