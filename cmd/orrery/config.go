package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/orrery/internal/config"
)

var flagConfigDefaults bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	Long: `Print the configuration after applying the config file and the global
flags, as YAML. Save the output to ~/.orrery/config.yaml to customise it.

Examples:
  orrery config
  orrery config --quality low
  orrery config --defaults > ~/.orrery/config.yaml`,
	RunE: runConfig,
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigDefaults, "defaults", false, "Print the built-in defaults")
}

func runConfig(_ *cobra.Command, _ []string) error {
	if flagConfigDefaults {
		fmt.Print(string(config.DefaultYAML()))
		return nil
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	if flagQuality != "" {
		config.ApplyQualityPreset(&cfg, config.QualityPreset(flagQuality))
	}
	if flagFPS > 0 {
		cfg.Render.FPS = flagFPS
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}
