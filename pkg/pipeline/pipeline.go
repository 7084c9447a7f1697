// Package pipeline orchestrates one aggregation run end to end: validate,
// consolidate, cross-reference, classify, score, trend, then write the
// outputs. Nothing is written until every stage has succeeded, and the
// snapshot is written last, so a snapshot on disk always means a complete
// run.
package pipeline

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/classifier"
	"github.com/opscart/tkgi-app-tracker/pkg/configsource"
	"github.com/opscart/tkgi-app-tracker/pkg/consolidator"
	"github.com/opscart/tkgi-app-tracker/pkg/metrics"
	"github.com/opscart/tkgi-app-tracker/pkg/models"
	"github.com/opscart/tkgi-app-tracker/pkg/reporter"
	"github.com/opscart/tkgi-app-tracker/pkg/scorer"
	"github.com/opscart/tkgi-app-tracker/pkg/snapshot"
	"github.com/opscart/tkgi-app-tracker/pkg/trend"
	"github.com/opscart/tkgi-app-tracker/pkg/validator"
)

// DefaultInactivityWindow is how long a namespace may go without observed
// activity and still count as active.
const DefaultInactivityWindow = 30 * 24 * time.Hour

const fileTimeLayout = "20060102_150405"

// Config locates one run's inputs and outputs.
type Config struct {
	// DataDir holds the raw per-cluster inventory files.
	DataDir string

	// ConfigRepo is the configuration repository checkout. An empty or
	// missing path degrades enrichment rather than failing the run.
	ConfigRepo string

	// OutputDir receives every output file, snapshots included.
	OutputDir string

	// InactivityWindow overrides DefaultInactivityWindow when positive.
	InactivityWindow time.Duration

	// Rules overrides the default system-namespace rule table.
	Rules *classifier.RuleTable
}

// FoundationStats is the per-foundation slice of the run metadata.
type FoundationStats struct {
	Namespaces         int `json:"namespaces"`
	Applications       int `json:"applications"`
	ActiveApplications int `json:"active_applications"`
}

// RunMetadata is the accounting record written beside the analytical
// outputs, one per run.
type RunMetadata struct {
	RunID                   string                     `json:"run_id"`
	GeneratedAt             time.Time                  `json:"generated_at"`
	RuleTableVersion        string                     `json:"rule_table_version"`
	InactivityWindowDays    int                        `json:"inactivity_window_days"`
	Quality                 models.RunQuality          `json:"quality"`
	FoundationsProcessed    []string                   `json:"foundations_processed"`
	FoundationStats         map[string]FoundationStats `json:"foundation_stats"`
	OutputFiles             map[string]string          `json:"output_files"`
	TotalFoundations        int                        `json:"total_foundations"`
	TotalApplications       int                        `json:"total_applications"`
	TotalActiveApplications int                        `json:"total_active_applications"`
}

// Result is everything one run computed and where it was written.
type Result struct {
	Snapshot     *models.FoundationSnapshot
	Drift        *models.DriftReport
	Analytics    *models.AnalyticsReport
	Trend        *models.TrendReport
	Metadata     *RunMetadata
	SnapshotPath string
	Files        []string
	Duration     time.Duration
}

// Runner executes aggregation runs. The recorder must be non-nil; whether
// its metrics ever leave the process is the caller's concern.
type Runner struct {
	cfg      Config
	logger   *zap.Logger
	recorder *metrics.Recorder
}

// New returns a Runner.
func New(cfg Config, logger *zap.Logger, recorder *metrics.Recorder) *Runner {
	return &Runner{cfg: cfg, logger: logger, recorder: recorder}
}

// Run executes one aggregation run as of now.
func (r *Runner) Run(now time.Time) (*Result, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := r.logger.With(zap.String("run_id", runID))

	files, err := listInputFiles(r.cfg.DataDir)
	if err != nil {
		return nil, err
	}
	logger.Info("starting aggregation run",
		zap.String("data_dir", r.cfg.DataDir),
		zap.Int("files", len(files)))

	v := validator.New(logger)
	results := make([]validator.FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, v.ValidateFile(f))
	}

	collection, err := consolidator.New(logger).Consolidate(results)
	if err != nil {
		return nil, err
	}

	enriched, drift := r.enrich(collection, logger, now)

	window := r.cfg.InactivityWindow
	if window <= 0 {
		window = DefaultInactivityWindow
	}
	table := classifier.DefaultRuleTable()
	if r.cfg.Rules != nil {
		table = *r.cfg.Rules
	}
	cls := classifier.New(table, window, logger)
	for i := range enriched {
		cls.Classify(&enriched[i].NamespaceRecord, now)
	}
	scorer.Apply(enriched, now)

	snap := &models.FoundationSnapshot{
		RunID:            runID,
		GeneratedAt:      now,
		RuleTableVersion: table.Version,
		Records:          enriched,
		Quality:          collection.Quality,
	}

	repo := snapshot.NewRepository(r.cfg.OutputDir, logger)
	previous, previousPath, err := repo.LatestBefore(now)
	switch {
	case errors.Is(err, snapshot.ErrNoSnapshots):
		previous = nil
	case err != nil:
		return nil, err
	default:
		logger.Info("comparing against previous snapshot",
			zap.String("path", previousPath))
	}

	trendReport := trend.New(logger).Analyze(snap, previous, now)
	snap.Quality.BaselineRun = trendReport.BaselineRun

	analytics := reporter.BuildAnalytics(enriched, runID, now)

	ts := now.UTC().Format(fileTimeLayout)
	outputNames := map[string]string{
		"snapshot":      snapshot.FileName(now),
		"drift_report":  "drift_report_" + ts + ".json",
		"analytics":     "analytics_" + ts + ".json",
		"trend_summary": "trend_summary_" + ts + ".json",
		"run_metadata":  "consolidation_metadata_" + ts + ".json",
	}
	outputPaths := make(map[string]string, len(outputNames))
	for kind, name := range outputNames {
		outputPaths[kind] = filepath.Join(r.cfg.OutputDir, name)
	}

	metadata := buildMetadata(snap, analytics, window, outputPaths)

	r.recorder.ObserveQuality(snap.Quality)
	r.recorder.ObserveDrift(drift)
	r.recorder.ObserveAnalytics(analytics)
	r.recorder.ObserveTrend(trendReport)

	// Every stage is done; only now does anything reach disk.
	result := &Result{
		Snapshot:  snap,
		Drift:     drift,
		Analytics: analytics,
		Trend:     trendReport,
		Metadata:  metadata,
	}
	writes := []struct {
		kind string
		v    any
	}{
		{"drift_report", drift},
		{"analytics", analytics},
		{"trend_summary", trendReport},
		{"run_metadata", metadata},
	}
	for _, w := range writes {
		path := outputPaths[w.kind]
		if err := snapshot.WriteJSONAtomic(path, w.v); err != nil {
			return nil, fmt.Errorf("writing %s: %w", w.kind, err)
		}
		result.Files = append(result.Files, path)
	}

	snapPath, err := repo.Save(snap)
	if err != nil {
		return nil, err
	}
	result.SnapshotPath = snapPath
	result.Files = append(result.Files, snapPath)

	result.Duration = time.Since(start)
	r.recorder.ObserveDuration(result.Duration)

	logger.Info("aggregation run complete",
		zap.Duration("duration", result.Duration),
		zap.Int("records", len(snap.Records)),
		zap.Int("applications", analytics.Summary.Totals.Applications),
		zap.Bool("baseline_run", snap.Quality.BaselineRun),
		zap.Bool("enrichment_skipped", snap.Quality.EnrichmentSkipped))
	return result, nil
}

// enrich cross-references the collection against the configuration
// repository, degrading to unenriched records when the repository cannot be
// read at all.
func (r *Runner) enrich(collection *consolidator.Collection, logger *zap.Logger, now time.Time) ([]models.EnrichedRecord, *models.DriftReport) {
	configs, err := configsource.NewLoader(r.cfg.ConfigRepo, logger).Load()
	if err != nil {
		logger.Warn("configuration source unavailable, skipping enrichment",
			zap.String("config_repo", r.cfg.ConfigRepo),
			zap.Error(err))
		enriched, drift := configsource.Degraded(collection.Records, now)
		collection.Quality.EnrichmentSkipped = true
		return enriched, drift
	}
	return configsource.CrossReference(collection.Records, configs, now)
}

func buildMetadata(snap *models.FoundationSnapshot, analytics *models.AnalyticsReport, window time.Duration, outputFiles map[string]string) *RunMetadata {
	stats := make(map[string]FoundationStats)
	for i := range snap.Records {
		s := stats[snap.Records[i].Foundation]
		s.Namespaces++
		stats[snap.Records[i].Foundation] = s
	}
	for foundation, fs := range analytics.Summary.ByFoundation {
		s := stats[foundation]
		s.Applications = fs.Applications
		s.ActiveApplications = fs.Active
		stats[foundation] = s
	}

	foundations := snap.Foundations()
	return &RunMetadata{
		RunID:                   snap.RunID,
		GeneratedAt:             snap.GeneratedAt,
		RuleTableVersion:        snap.RuleTableVersion,
		InactivityWindowDays:    int(window.Hours() / 24),
		Quality:                 snap.Quality,
		FoundationsProcessed:    foundations,
		FoundationStats:         stats,
		OutputFiles:             outputFiles,
		TotalFoundations:        len(foundations),
		TotalApplications:       analytics.Summary.Totals.Applications,
		TotalActiveApplications: analytics.Summary.Totals.ActiveApplications,
	}
}

// listInputFiles returns the raw inventory files sorted by name, so
// timestamped newer exports supersede older ones on duplicate namespaces.
func listInputFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing input files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
