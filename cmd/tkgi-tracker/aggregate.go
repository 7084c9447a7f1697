package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/config"
	"github.com/opscart/tkgi-app-tracker/pkg/metrics"
	"github.com/opscart/tkgi-app-tracker/pkg/pipeline"
	"github.com/opscart/tkgi-app-tracker/pkg/storage"
)

var (
	aggregateDataDir    string
	aggregateConfigRepo string
	aggregateOutputDir  string
	aggregateWindow     string
	aggregateSave       bool
	aggregatePush       bool
)

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Aggregate collected inventory files into a scored snapshot",
	Long: `aggregate reads every raw inventory file in the data directory, validates
and consolidates the records, cross-references them against the namespace
configuration repository, classifies and scores each namespace, and compares
the result against the previous snapshot. All outputs of the run are written
only after every stage has succeeded.`,
	RunE: runAggregate,
}

func init() {
	aggregateCmd.Flags().StringVar(&aggregateDataDir, "data-dir", "",
		"directory of raw inventory files (overrides config)")
	aggregateCmd.Flags().StringVar(&aggregateConfigRepo, "config-repo", "",
		"namespace configuration repository checkout (overrides config)")
	aggregateCmd.Flags().StringVar(&aggregateOutputDir, "output-dir", "",
		"directory for run outputs (overrides config)")
	aggregateCmd.Flags().StringVar(&aggregateWindow, "inactivity-window", "",
		"activity window, e.g. 30d or 720h (overrides config)")
	aggregateCmd.Flags().BoolVar(&aggregateSave, "save", false,
		"persist the run to the tracking database")
	aggregateCmd.Flags().BoolVar(&aggregatePush, "push-metrics", false,
		"push run metrics to the configured Pushgateway")
	rootCmd.AddCommand(aggregateCmd)
}

func runAggregate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if aggregateDataDir != "" {
		cfg.DataDir = aggregateDataDir
	}
	if aggregateConfigRepo != "" {
		cfg.ConfigRepoDir = aggregateConfigRepo
	}
	if aggregateOutputDir != "" {
		cfg.OutputDir = aggregateOutputDir
	}
	if aggregateWindow != "" {
		cfg.InactivityWindow = aggregateWindow
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	recorder := metrics.NewRecorder()
	runner := pipeline.New(pipeline.Config{
		DataDir:          cfg.DataDir,
		ConfigRepo:       cfg.ConfigRepoDir,
		OutputDir:        cfg.OutputDir,
		InactivityWindow: cfg.Window,
	}, logger, recorder)

	result, err := runner.Run(time.Now().UTC())
	if err != nil {
		return err
	}

	// The run's outputs are on disk; save and push are best effort.
	if aggregateSave {
		saveRun(cmd.Context(), cfg, logger, result)
	}
	if aggregatePush {
		pushMetrics(cfg, logger, recorder, result)
	}

	printExecutiveSummary(os.Stdout, result)
	return nil
}

func saveRun(ctx context.Context, cfg *config.Config, logger *zap.Logger, result *pipeline.Result) {
	if cfg.DatabaseURL == "" {
		logger.Warn("skipping history save, database_url not configured")
		return
	}
	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Warn("history save failed", zap.Error(err))
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, result.Snapshot, result.Trend); err != nil {
		logger.Warn("history save failed", zap.Error(err))
		return
	}
	logger.Info("run saved to history",
		zap.String("run_id", result.Snapshot.RunID))
}

func pushMetrics(cfg *config.Config, logger *zap.Logger, recorder *metrics.Recorder, result *pipeline.Result) {
	if cfg.PushgatewayURL == "" {
		logger.Warn("skipping metrics push, pushgateway_url not configured")
		return
	}
	if err := recorder.Push(cfg.PushgatewayURL, result.Snapshot.RunID); err != nil {
		logger.Warn("metrics push failed", zap.Error(err))
		return
	}
	logger.Info("run metrics pushed",
		zap.String("gateway", cfg.PushgatewayURL))
}

func printExecutiveSummary(w io.Writer, result *pipeline.Result) {
	summary := result.Analytics.Summary
	line := "============================================================"

	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "EXECUTIVE SUMMARY")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Total Applications: %d\n", summary.Totals.Applications)
	fmt.Fprintf(w, "  Active: %d\n", summary.Totals.ActiveApplications)
	fmt.Fprintf(w, "  Inactive: %d\n", summary.Totals.InactiveApplications)
	fmt.Fprintf(w, "  Ready for Migration: %d\n", summary.Migration.ReadyForMigration)
	fmt.Fprintf(w, "  Needs Analysis: %d\n", summary.Migration.NeedsMetadataAnalysis)
	if result.Snapshot.Quality.EnrichmentSkipped {
		fmt.Fprintln(w, "  (configuration source unavailable, enrichment skipped)")
	}
	if result.Snapshot.Quality.BaselineRun {
		fmt.Fprintln(w, "  (baseline run, no previous snapshot)")
	}
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Snapshot saved to: %s\n", result.SnapshotPath)
}
