package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/splitstat/splitstat/internal/config"
)

var (
	cfgPath string
	dbPath  string
)

var rootCmd = &cobra.Command{
	Use:   "splitstat",
	Short: "splitstat - a self-hosted A/B test analysis tool",
	Long: `splitstat synthesizes A/B experiment datasets with a known planted effect,
runs the full statistical readout (two-proportion z-test, Welch's t-test,
confidence intervals, power analysis) and derives a rollout recommendation.
Single Go binary, embedded SQLite, no external dependencies.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", getEnvOrDefault("SPLITSTAT_CONFIG", ""), "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "database path (overrides config)")
}

// loadConfig resolves the effective configuration for a command run:
// defaults, then YAML file, then environment, then command-line flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
