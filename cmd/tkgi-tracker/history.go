package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/opscart/tkgi-app-tracker/pkg/storage"
)

var (
	historyFoundation string
	historyLimit      int
	historyWeeks      int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past aggregation runs from the tracking database",
	Long: `history lists recent aggregation runs, newest first. With --weeks it
prints the week-over-week readiness trend instead. Both views can be
narrowed to one foundation.`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFoundation, "foundation", "",
		"restrict to runs covering this foundation")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10,
		"maximum number of runs to list")
	historyCmd.Flags().IntVar(&historyWeeks, "weeks", 0,
		"print the weekly readiness trend over this many weeks")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("history requires database_url (config file or TRACKER_DATABASE_URL)")
	}

	store, err := storage.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	if historyWeeks > 0 {
		points, err := store.GetScoreTrend(ctx, historyFoundation, historyWeeks)
		if err != nil {
			return err
		}
		printScoreTrend(os.Stdout, points)
		return nil
	}

	runs, err := store.ListRuns(ctx, historyFoundation, historyLimit)
	if err != nil {
		return err
	}
	printRuns(os.Stdout, runs)
	return nil
}

func printRuns(w io.Writer, runs []*storage.RunSummary) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN ID\tGENERATED\tRECORDS\tDROPPED\tFILES\tFLAGS")
	for _, run := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n",
			run.RunID,
			run.GeneratedAt.UTC().Format("2006-01-02 15:04"),
			run.RecordCount,
			run.RecordsDropped,
			run.FilesRead,
			runFlags(run))
	}
	tw.Flush()
}

func runFlags(run *storage.RunSummary) string {
	switch {
	case run.BaselineRun && run.EnrichmentSkipped:
		return "baseline, degraded"
	case run.BaselineRun:
		return "baseline"
	case run.EnrichmentSkipped:
		return "degraded"
	default:
		return "-"
	}
}

func printScoreTrend(w io.Writer, points []*storage.ScoreTrendPoint) {
	if len(points) == 0 {
		fmt.Fprintln(w, "No trend data recorded.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WEEK\tAVG SCORE\tNAMESPACES\tACTIVE")
	for _, p := range points {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\t%d\n",
			p.Week.UTC().Format("2006-01-02"),
			p.AverageScore,
			p.TotalNamespaces,
			p.ActiveNamespaces)
	}
	tw.Flush()
}
