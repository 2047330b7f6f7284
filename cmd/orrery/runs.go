package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/orrery/internal/platform/tui"
)

var (
	flagRunsLimit int
	flagRunsPlain bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [system]",
	Short: "Show recorded perf runs",
	Long: `Display recorded performance runs, newest first, optionally for one
system. On a terminal the interactive run table opens; --plain prints text.

Examples:
  orrery runs
  orrery runs sol --plain
  orrery runs --limit 50 --plain`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Maximum runs to print")
	runsCmd.Flags().BoolVar(&flagRunsPlain, "plain", false, "Print text instead of the interactive table")
}

func runRuns(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := setup(ctx, appOptions{requireStore: true, logToFile: !flagRunsPlain})
	if err != nil {
		return err
	}
	defer a.Close()

	if !flagRunsPlain && len(args) == 0 && term.IsTerminal(int(os.Stdout.Fd())) {
		width, height := terminalSize()
		_, err := tui.RunRuns(a.store, a.registry, width, height)
		return err
	}

	var systemID string
	if len(args) > 0 {
		systemID = args[0]
	}
	runs, err := a.store.RecentRuns(ctx, systemID, flagRunsLimit)
	if err != nil {
		return err
	}

	title := "all systems"
	if systemID != "" {
		title = systemID
	}
	fmt.Printf("Perf runs - %s\n", title)
	fmt.Println()

	if len(runs) == 0 {
		fmt.Println("  No runs recorded yet.")
		return nil
	}

	fmt.Printf("  %-14s  %-16s  %-6s  %7s  %7s  %9s  %9s\n", "When", "System", "Mode", "Frames", "AvgFPS", "Frame", "Memory")
	fmt.Printf("  %-14s  %-16s  %-6s  %7s  %7s  %9s  %9s\n", "----", "------", "----", "------", "------", "-----", "------")
	now := time.Now()
	for _, r := range runs {
		fmt.Printf("  %-14s  %-16s  %-6s  %7s  %7.1f  %9s  %9s\n",
			humanize.RelTime(r.CreatedAt, now, "ago", "from now"),
			r.SystemID,
			r.Mode,
			humanize.Comma(int64(r.Frames)),
			r.AvgFPS,
			r.AvgFrameTime.Round(100*time.Microsecond),
			humanize.IBytes(uint64(r.PeakMemoryMB*1024*1024)),
		)
	}

	if systemID != "" {
		if best, err := a.store.BestRun(ctx, systemID); err == nil {
			fmt.Println()
			fmt.Printf("  Best: %.1f fps in %s mode (%s)\n", best.AvgFPS, best.Mode, humanize.Time(best.CreatedAt))
		}
	}
	return nil
}
