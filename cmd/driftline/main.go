package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/stillharbor/driftline/internal/engine"
	"github.com/stillharbor/driftline/internal/storage"
)

var (
	dbPath     string
	userID     string
	configPath string

	// store is opened by the root PersistentPreRunE and shared by every
	// subcommand.
	store *storage.Store
)

var rootCmd = &cobra.Command{
	Use:   "driftline",
	Short: "Personalized insight generation from behavioral logs",
	Long: `Driftline turns raw behavioral logs (work-session check-ins, breathing
exercises, journal notes) into a ranked list of personalized insights.

Thresholds adapt to each user over time, so the same week of data reads
differently for a chronic overworker than for someone ramping up.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
		s, err := storage.Open(dbPath)
		if err != nil {
			return fmt.Errorf("opening database %s: %w", dbPath, err)
		}
		store = s
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "driftline.db"
	}
	return filepath.Join(home, ".driftline", "driftline.db")
}

// loadEngineConfig reads the optional YAML config file, returning the
// defaults when no path was given.
func loadEngineConfig() (engine.Config, error) {
	cfg := engine.DefaultConfig()
	if configPath == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(configPath)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", configPath, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", configPath, err)
	}
	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", defaultDBPath(), "Path to the driftline database")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "default", "User whose data to operate on")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML engine config file")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
