package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/orrery/internal/perf"
	"github.com/vovakirdan/orrery/internal/platform/tui"
	"github.com/vovakirdan/orrery/internal/renderer"
)

var (
	flagBenchFrames int
	flagBenchWidth  int
	flagBenchHeight int
	flagBenchMode   string
	flagBenchPaced  bool
	flagBenchNoSave bool
)

var benchCmd = &cobra.Command{
	Use:   "bench <system>",
	Short: "Render headless frames and record a perf run",
	Long: `Render a system off-screen for a fixed number of frames and print the
performance summary. The run is saved to the database unless --no-save.

Without --paced frames are drawn back to back, which measures raw frame
cost; with --paced they follow the configured frame rate like the viewer.

Examples:
  orrery bench sol
  orrery bench sol --frames 900 --mode low
  orrery bench kepler-16 --width 200 --height 60 --paced`,
	Args: cobra.ExactArgs(1),
	RunE: runBench,
}

func init() {
	benchCmd.Flags().IntVar(&flagBenchFrames, "frames", 300, "Number of frames to render")
	benchCmd.Flags().IntVar(&flagBenchWidth, "width", 160, "Surface width in cells")
	benchCmd.Flags().IntVar(&flagBenchHeight, "height", 48, "Surface height in cells")
	benchCmd.Flags().StringVar(&flagBenchMode, "mode", "", "Performance mode override: high, medium, low")
	benchCmd.Flags().BoolVar(&flagBenchPaced, "paced", false, "Pace frames at the configured frame rate")
	benchCmd.Flags().BoolVar(&flagBenchNoSave, "no-save", false, "Do not record the run")
}

func runBench(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id := args[0]

	a, err := setup(ctx, appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.requireSystem(id); err != nil {
		return err
	}

	rcfg := a.cfg.RendererConfig(flagBenchWidth, flagBenchHeight, flagSeed)
	if flagBenchMode != "" {
		mode, err := renderer.ParsePerformanceMode(flagBenchMode)
		if err != nil {
			return err
		}
		rcfg.PerformanceMode = mode
	}

	var suggestions int
	r, err := renderer.New(rcfg,
		renderer.WithLogger(a.logger),
		renderer.WithRegistry(a.registry),
		renderer.WithLoader(a.loader),
		renderer.WithCallbacks(renderer.Callbacks{
			OnSuggestion: func(s perf.Suggestion) {
				suggestions++
				a.logger.Warn("suggestion", "metric", s.Metric, "severity", s.Severity, "msg", s.Message)
			},
			OnError: func(err error) {
				a.logger.Warn("renderer error", "err", err)
			},
		}),
	)
	if err != nil {
		return err
	}
	defer r.Dispose()

	if err := r.InitializeID(ctx, id); err != nil {
		return err
	}

	var tick <-chan time.Time
	if flagBenchPaced {
		ticker := time.NewTicker(a.cfg.FrameInterval())
		defer ticker.Stop()
		tick = ticker.C
	}

	r.Start()
	start := time.Now()
	frames := 0
	for frames < flagBenchFrames && ctx.Err() == nil {
		if tick != nil {
			<-tick
		}
		if !r.Frame(time.Now()) {
			break
		}
		frames++
	}
	elapsed := time.Since(start)
	r.Stop()

	sum := r.Summary()
	fmt.Printf("Benchmark - %s (%s, %dx%d)\n", r.System().Title(), rcfg.PerformanceMode, flagBenchWidth, flagBenchHeight)
	fmt.Println()
	fmt.Printf("  Frames:          %s in %s\n", humanize.Comma(int64(frames)), elapsed.Round(time.Millisecond))
	if elapsed > 0 {
		fmt.Printf("  Throughput:      %.1f frames/s\n", float64(frames)/elapsed.Seconds())
	}
	fmt.Printf("  Avg FPS:         %.1f (min %.1f)\n", sum.AvgFPS, sum.MinFPS)
	fmt.Printf("  Frame time:      avg %s, max %s\n", sum.AvgFrameTime.Round(time.Microsecond), sum.MaxFrameTime.Round(time.Microsecond))
	fmt.Printf("  Render time:     avg %s\n", sum.AvgRenderTime.Round(time.Microsecond))
	fmt.Printf("  Peak memory:     %s\n", humanize.IBytes(uint64(sum.PeakMemoryMB*1024*1024)))
	fmt.Printf("  Draw calls:      %d max\n", sum.MaxDrawCalls)
	fmt.Printf("  Triangles:       %s max\n", humanize.Comma(int64(sum.MaxTriangles)))
	fmt.Printf("  Suggestions:     %d\n", suggestions)

	if flagBenchNoSave || a.store == nil || frames == 0 {
		return nil
	}
	runID, err := a.store.SaveRun(ctx, tui.NewRun(id, r, suggestions))
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Println()
	fmt.Printf("Run saved as %s\n", runID)
	return nil
}
