// orrery is a terminal viewer for procedurally shaded planetary systems.
//
// Usage:
//
//	orrery list               - List available systems
//	orrery view <system>      - View a system
//	orrery menu               - Pick systems interactively
//	orrery serve              - Start SSH server for remote viewing
//	orrery bench <system>     - Render headless frames and record a perf run
//	orrery runs [system]      - Show recorded perf runs
//	orrery import <file>      - Store a system catalogue in the database
//	orrery remove <system>    - Delete a stored system
//	orrery config             - Print the effective configuration
//
// Global flags:
//
//	--fps <rate>        - Override the frame rate
//	--seed <value>      - Seed procedural placement (0 keeps catalogue seeds)
//	--db <path>         - Set database path (default: ~/.orrery/orrery.db)
//	--config <path>     - Use a specific config file
//	--quality <preset>  - Apply a quality preset: low, medium, high
//	--log-level <lvl>   - debug, info, warn, error
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	flagFPS      int
	flagSeed     int64
	flagDBPath   string
	flagConfig   string
	flagQuality  string
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "orrery",
	Short: "Orrery - planetary systems in your terminal",
	Long: `Orrery renders planetary systems in the terminal: orbiting bodies with
procedural terrain, rings, orbit lines and a starfield, with an orbit camera
you drive from the keyboard or mouse.

Available commands:
  list     - Show all available systems
  view     - View a specific system directly
  menu     - Interactive system picker
  serve    - Start SSH server for remote viewing
  bench    - Headless benchmark, recorded as a perf run
  runs     - Show recorded perf runs
  import   - Store a system YAML in the database
  remove   - Delete a stored system
  config   - Print the effective configuration

Examples:
  orrery list
  orrery view sol
  orrery view sol --quality low
  orrery serve
  orrery bench kepler-16 --frames 600`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 0, "Frame rate (0 = config value)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "Procedural seed (0 = catalogue seeds)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.orrery/orrery.db", "Path to the database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagQuality, "quality", "", "Quality preset: low, medium, high")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(viewCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(configCmd)
}
