package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/reporter"
)

var (
	reportOutputDir  string
	reportReportsDir string
	reportFormat     string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate reports from the latest aggregation run",
	Long: `report renders the newest analytics output in the output directory into
the application, cluster, executive summary and migration priority reports.`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOutputDir, "output-dir", "",
		"directory holding aggregation outputs (overrides config)")
	reportCmd.Flags().StringVar(&reportReportsDir, "reports-dir", "",
		"directory for generated reports (overrides config)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "all",
		"report format: csv, json, html, or all")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if reportOutputDir != "" {
		cfg.OutputDir = reportOutputDir
	}
	if reportReportsDir != "" {
		cfg.ReportsDir = reportReportsDir
	}

	format, err := reporter.ParseFormat(reportFormat)
	if err != nil {
		return err
	}

	analytics, path, err := reporter.LatestAnalytics(cfg.OutputDir)
	if err != nil {
		return err
	}
	logger.Info("loaded analytics",
		zap.String("file", path),
		zap.String("run_id", analytics.RunID))

	files, err := reporter.New(cfg.ReportsDir, format, logger).WriteAll(analytics, time.Now().UTC())
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Println("Report saved to:", f)
	}
	return nil
}
