package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/orrery/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the orrery SSH server",
	Long: `Start an SSH server that lets users connect and view systems.

Each SSH connection gets its own session with a system picker and its own
renderer. Perf runs from every session go to the shared database.

Host key handling:
  - --host-key or server.host_key_path from the config selects the key file
  - relative paths are resolved against ~/.orrery
  - a missing key is generated

Examples:
  orrery serve                           # Listen on the configured address
  orrery serve --ssh :2222               # Listen on port 2222
  orrery serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 2222`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port, default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (default from config)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := setup(cmd.Context(), appOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := tui.DefaultSSHServerConfig(a.cfg.Server)
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute

	server, err := tui.NewSSHServer(cfg, tui.Deps{
		Registry: a.registry,
		Store:    a.store,
		Loader:   a.loader,
		Viewer:   a.cfg,
		Seed:     flagSeed,
		Logger:   a.logger,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	fmt.Printf("Starting orrery SSH server on %s\n", server.Addr())
	fmt.Println("Press Ctrl+C to stop")

	return server.ListenAndServe()
}
