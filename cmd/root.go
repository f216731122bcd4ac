package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/couriersim/config"
	coremon "github.com/kilianp07/couriersim/core/monitoring"
	"github.com/kilianp07/couriersim/infra/logger"
	"github.com/kilianp07/couriersim/infra/monitoring"
)

var (
	cfgPath string
	envFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:               "couriersim",
	Short:             "Courier dispatch simulator",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

const flushTimeout = 2 * time.Second

var newMonitor = monitoring.NewSentryMonitor

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (defaults and K_ environment overrides when empty)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the configuration")
}

// Execute runs the CLI and flushes pending error reports, including those
// captured by a failing command.
func Execute() error {
	defer coremon.Flush(flushTimeout)
	return rootCmd.Execute()
}

// setup loads the environment file and configuration, then configures logging
// and error monitoring for every sub-command.
func setup(cmd *cobra.Command, _ []string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	c, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg = c
	if err := logger.Configure(cfg.Log.Level, cfg.Log.Format, cmd.ErrOrStderr()); err != nil {
		return err
	}
	mon, err := newMonitor(cfg.Sentry)
	if err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)
	return nil
}
