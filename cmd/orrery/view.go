package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/orrery/internal/core"
	"github.com/vovakirdan/orrery/internal/platform/tui"
)

var viewCmd = &cobra.Command{
	Use:   "view <system>",
	Short: "View a system",
	Long: `Open the viewer on the specified system.

Controls:
  Arrows/hjkl   - Orbit the camera
  +/-, wheel    - Zoom
  Drag          - Orbit (left button) or pan (right button)
  Click         - Select the body under the cursor
  Tab/Shift+Tab - Select next/previous body
  Enter/f       - Focus the selected body
  r             - Reset the view
  o             - Toggle orbit lines
  Space/p       - Pause animation
  [ / ]         - Slower/faster time
  Ctrl+S        - Save a text screenshot to ~/.orrery/screenshots
  ?             - Full help
  q/Ctrl+C      - Quit

The session's frame statistics are saved as a perf run on exit.

Examples:
  orrery view sol
  orrery view kepler-16 --quality medium
  orrery view sol --seed 42 --fps 20`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

// terminalSize returns the size of stdout, or the runtime defaults.
func terminalSize() (int, int) {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		return w, h
	}
	return cfg.ScreenW, cfg.ScreenH
}

func runView(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, appOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSystem(args[0]); err != nil {
		return err
	}
	_, err = viewSystem(cmd, a, args[0], false)
	return err
}

// viewSystem runs the viewer on id and records the run. It reports whether
// the user quit rather than going back.
func viewSystem(cmd *cobra.Command, a *app, id string, embedded bool) (quit bool, err error) {
	width, height := terminalSize()
	vm, err := tui.Run(cmd.Context(), tui.ViewerOptions{
		SystemID: id,
		Config:   a.cfg,
		Registry: a.registry,
		Loader:   a.loader,
		Logger:   a.logger,
		Seed:     flagSeed,
		Width:    width,
		Height:   height,
		Embedded: embedded,
	})
	if err != nil {
		return false, err
	}
	if runID, err := tui.RecordRun(cmd.Context(), a.store, vm); err != nil {
		a.logger.Warn("cannot save run", "err", err)
	} else if runID != "" {
		a.logger.Info("run saved", "id", runID, "system", id)
	}
	return vm.IsQuitting(), nil
}
