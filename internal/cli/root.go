// Package cli implements the lorasched command-line interface.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/opencode-ai/lorasched/internal/config"
	"github.com/opencode-ai/lorasched/internal/db"
	"github.com/opencode-ai/lorasched/internal/logging"
	"github.com/spf13/cobra"
)

// Version is set at build time.
var Version = "dev"

var (
	configFile  string
	jsonOutput  bool
	jsonlOutput bool
	logLevel    string
	noColor     bool
	noProgress  bool

	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "lorasched",
	Short: "Step-wise LoRA strength scheduling",
	Long: `lorasched turns compact per-adapter strength schedules into per-step
strength plans and the hooks a diffusion sampler consumes.

Schedules are written as "<run_length> : <strength>" lines or as JSON, and
grouped into named stacks of adapters.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ~/.config/lorasched/config.yaml)")
	flags.BoolVar(&jsonOutput, "json", false, "output JSON")
	flags.BoolVar(&jsonlOutput, "jsonl", false, "output JSON lines")
	flags.StringVar(&logLevel, "log-level", "", "log level override (trace, debug, info, warn, error)")
	flags.BoolVar(&noColor, "no-color", false, "disable colored output")
	flags.BoolVar(&noProgress, "no-progress", false, "disable progress output")
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, formatError(err))
	}
	return err
}

func initConfig() error {
	if jsonOutput && jsonlOutput {
		return fmt.Errorf("--json and --jsonl are mutually exclusive")
	}

	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.Logging.Level = logLevel
	}
	appConfig = cfg

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})
	return nil
}

// GetConfig returns the loaded configuration, or defaults before loading.
func GetConfig() *config.Config {
	if appConfig == nil {
		return config.DefaultConfig()
	}
	return appConfig
}

// IsJSONOutput reports whether --json was requested.
func IsJSONOutput() bool {
	return jsonOutput
}

// IsJSONLOutput reports whether --jsonl was requested.
func IsJSONLOutput() bool {
	return jsonlOutput
}

func openDatabase() (*db.DB, error) {
	path := GetConfig().History.Path
	database, err := db.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database %s: %w", path, err)
	}
	if err := database.Migrate(context.Background()); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}
	return database, nil
}
