package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/config"
	"github.com/opscart/tkgi-app-tracker/pkg/logging"
)

var (
	cfgFile  string
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "tkgi-tracker",
	Short: "Tracks application namespaces across TKGI foundations",
	Long: `tkgi-tracker inventories application namespaces across TKGI foundations
and assesses their migration readiness.

collect gathers the raw inventory from one cluster, aggregate turns the
collected files into a scored snapshot with drift, analytics and trend
outputs, report renders the latest analytics for people, and history queries
past runs from the tracking database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default tracker.yaml in . or /etc/tkgi-tracker)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"log level: debug, info, warn, error (overrides config)")
}

// setup resolves the configuration and logger for one command invocation.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}
