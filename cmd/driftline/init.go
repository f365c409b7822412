package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stillharbor/driftline/internal/engine"
	"github.com/stillharbor/driftline/internal/threshold"
)

var initConfigOut string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the driftline database and write a starter config",
	Long: `Create the driftline database (if it does not exist yet) and write a
starter YAML config file with every tunable at its default, ready to edit.

Example:
  driftline init
  driftline init --config-out ./driftline.yaml
  driftline generate --config ./driftline.yaml -i export.json`,
	Run: func(cmd *cobra.Command, args []string) {
		// The database itself was created by opening the store.
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Database ready at %s\n", green("✓"), dbPath)

		if initConfigOut == "" {
			return
		}
		if _, err := os.Stat(initConfigOut); err == nil {
			fmt.Fprintf(os.Stderr, "Error: %s already exists, refusing to overwrite\n", initConfigOut)
			os.Exit(1)
		}

		cfg := engine.DefaultConfig()
		cfg.Thresholds = threshold.DefaultDefinitions()
		raw, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(initConfigOut, raw, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to write config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Wrote starter config to %s\n", green("✓"), initConfigOut)
	},
}

func init() {
	initCmd.Flags().StringVar(&initConfigOut, "config-out", "", "Write a starter YAML config to this path")
	rootCmd.AddCommand(initCmd)
}
