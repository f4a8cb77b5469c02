package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"SignalDesk/internal/config"
	"SignalDesk/internal/logx"
)

const defaultConfigPath = "configs/config.yaml"

var configPath string

// rootCmd runs the signal service when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "signald",
	Short: "Market signal desk",
	Long: `Signal desk streams simulated or live OHLCV bars, scores them with a
panel of technical indicators and publishes weighted BUY/SELL signals.

Running without a subcommand starts the service (same as "signald serve").`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")
}

// loadConfig resolves the config path, loads, validates and sets up logging.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := logx.Setup(cfg.Log.Level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	return cfg, nil
}
