// Package reporter renders analytics output as CSV and JSON reports for
// migration planning.
package reporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
	"github.com/opscart/tkgi-app-tracker/pkg/snapshot"
)

const fileTimeLayout = "20060102_150405"

// ReportFormat selects which report files to write.
type ReportFormat string

const (
	FormatCSV  ReportFormat = "csv"
	FormatJSON ReportFormat = "json"
	FormatHTML ReportFormat = "html"
	FormatAll  ReportFormat = "all"
)

// completeReport mirrors the combined JSON layout consumers already parse.
type completeReport struct {
	Timestamp    string                     `json:"timestamp"`
	Summary      models.ExecutiveSummary    `json:"summary"`
	Applications []models.ApplicationRollup `json:"applications"`
	Clusters     []models.ClusterRollup     `json:"clusters"`
}

// Reporter writes report files into a single directory.
type Reporter struct {
	reportsDir string
	format     ReportFormat
	logger     *zap.Logger
}

// New creates a Reporter writing to reportsDir.
func New(reportsDir string, format ReportFormat, logger *zap.Logger) *Reporter {
	return &Reporter{reportsDir: reportsDir, format: format, logger: logger}
}

// WriteAll renders the analytics report into the configured formats and
// returns the paths written.
func (r *Reporter) WriteAll(report *models.AnalyticsReport, now time.Time) ([]string, error) {
	if err := os.MkdirAll(r.reportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating reports directory: %w", err)
	}
	stamp := now.UTC().Format(fileTimeLayout)
	var written []string

	if r.format == FormatCSV || r.format == FormatAll {
		csvReports := []struct {
			name     string
			generate func(*models.AnalyticsReport, *os.File) error
		}{
			{"application_report_" + stamp + ".csv", func(rep *models.AnalyticsReport, f *os.File) error {
				return GenerateApplicationCSV(rep, f)
			}},
			{"cluster_report_" + stamp + ".csv", func(rep *models.AnalyticsReport, f *os.File) error {
				return GenerateClusterCSV(rep, f)
			}},
			{"executive_summary_" + stamp + ".csv", func(rep *models.AnalyticsReport, f *os.File) error {
				return GenerateExecutiveCSV(rep, now, f)
			}},
			{"migration_priority_" + stamp + ".csv", func(rep *models.AnalyticsReport, f *os.File) error {
				return GenerateMigrationPriorityCSV(rep, f)
			}},
		}
		for _, cr := range csvReports {
			path := filepath.Join(r.reportsDir, cr.name)
			f, err := os.Create(path)
			if err != nil {
				return written, fmt.Errorf("creating %s: %w", cr.name, err)
			}
			err = cr.generate(report, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return written, fmt.Errorf("writing %s: %w", cr.name, err)
			}
			written = append(written, path)
		}
	}

	if r.format == FormatJSON || r.format == FormatAll {
		path := filepath.Join(r.reportsDir, "complete_report_"+stamp+".json")
		combined := completeReport{
			Timestamp:    stamp,
			Summary:      report.Summary,
			Applications: report.Applications,
			Clusters:     report.Clusters,
		}
		if err := snapshot.WriteJSONAtomic(path, combined); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if r.format == FormatHTML || r.format == FormatAll {
		name := "migration_report_" + stamp + ".html"
		path := filepath.Join(r.reportsDir, name)
		f, err := os.Create(path)
		if err != nil {
			return written, fmt.Errorf("creating %s: %w", name, err)
		}
		err = GenerateHTML(report, f)
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
		if err != nil {
			return written, fmt.Errorf("writing %s: %w", name, err)
		}
		written = append(written, path)
	}

	r.logger.Info("reports written",
		zap.String("dir", r.reportsDir),
		zap.Int("files", len(written)))
	return written, nil
}

// LatestAnalytics loads the newest analytics file from dir. The pipeline
// names them analytics_<timestamp>.json, so lexical order is chronological.
func LatestAnalytics(dir string) (*models.AnalyticsReport, string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "analytics_*.json"))
	if err != nil {
		return nil, "", fmt.Errorf("listing analytics files: %w", err)
	}
	if len(matches) == 0 {
		return nil, "", fmt.Errorf("no analytics files in %s", dir)
	}
	sort.Strings(matches)
	path := matches[len(matches)-1]
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", path, err)
	}
	var report models.AnalyticsReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", path, err)
	}
	return &report, path, nil
}

// ParseFormat validates a --format flag value.
func ParseFormat(s string) (ReportFormat, error) {
	switch ReportFormat(strings.ToLower(s)) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatHTML:
		return FormatHTML, nil
	case FormatAll:
		return FormatAll, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want csv, json, html, or all)", s)
	}
}
