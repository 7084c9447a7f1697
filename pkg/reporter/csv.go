package reporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// GenerateApplicationCSV writes the per-application report.
func GenerateApplicationCSV(report *models.AnalyticsReport, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"Application ID",
		"Status",
		"Environment",
		"Foundations",
		"Clusters",
		"Namespaces",
		"Total Pods",
		"Running Pods",
		"Deployments",
		"Services",
		"Last Activity",
		"Days Since Activity",
		"Migration Readiness Score",
		"Data Quality",
		"Recommendation",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, app := range report.Applications {
		row := []string{
			app.AppID,
			statusLabel(app.IsActive),
			environmentLabel(app.Environments),
			strings.Join(app.Foundations, ", "),
			strings.Join(app.Clusters, ", "),
			joinNamespaces(app.Namespaces),
			strconv.Itoa(app.PodCount),
			strconv.Itoa(app.RunningPods),
			strconv.Itoa(app.DeploymentCount),
			strconv.Itoa(app.ServiceCount),
			lastActivityLabel(app.LastActivity),
			daysLabel(app.DaysSinceActivity),
			strconv.Itoa(app.ReadinessScore),
			titleCase(string(app.DataQuality)),
			app.Recommendation,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// GenerateClusterCSV writes the cluster utilization report.
func GenerateClusterCSV(report *models.AnalyticsReport, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"Cluster",
		"Foundation",
		"Environment",
		"Total Namespaces",
		"Application Namespaces",
		"System Namespaces",
		"Total Applications",
		"Total Pods",
		"Running Pods",
		"Utilization",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, cluster := range report.Clusters {
		utilization := "Low"
		if cluster.TotalPods > 100 {
			utilization = "High"
		} else if cluster.TotalPods > 50 {
			utilization = "Medium"
		}
		row := []string{
			cluster.Cluster,
			cluster.Foundation,
			titleCase(string(cluster.Environment)),
			strconv.Itoa(cluster.TotalNamespaces),
			strconv.Itoa(cluster.AppNamespaces),
			strconv.Itoa(cluster.SystemNamespaces),
			strconv.Itoa(cluster.ApplicationCount),
			strconv.Itoa(cluster.TotalPods),
			strconv.Itoa(cluster.RunningPods),
			utilization,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// GenerateExecutiveCSV writes the management summary as metric/value rows.
func GenerateExecutiveCSV(report *models.AnalyticsReport, now time.Time, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	totals := report.Summary.Totals
	migration := report.Summary.Migration

	rows := [][]string{
		{"Metric", "Value"},
		{"Report Date", now.Format("2006-01-02 15:04")},
		{"Total Applications", strconv.Itoa(totals.Applications)},
		{"Active Applications", strconv.Itoa(totals.ActiveApplications)},
		{"Inactive Applications", strconv.Itoa(totals.InactiveApplications)},
		{"Production Applications", strconv.Itoa(totals.ProductionApplications)},
		{"Non-Production Applications", strconv.Itoa(totals.NonProductionApplications)},
		{""},
		{"Migration Readiness", "Count"},
		{"Ready for Migration (Score >= 70)", strconv.Itoa(migration.ReadyForMigration)},
		{"Needs Planning (Active Apps)", strconv.Itoa(migration.NeedsPlanning)},
		{"Needs Metadata Analysis", strconv.Itoa(migration.NeedsMetadataAnalysis)},
		{""},
		{"Foundation Breakdown", ""},
		{"Foundation", "Total Apps", "Active", "Inactive"},
	}

	foundations := make([]string, 0, len(report.Summary.ByFoundation))
	for foundation := range report.Summary.ByFoundation {
		foundations = append(foundations, foundation)
	}
	sort.Strings(foundations)
	for _, foundation := range foundations {
		fs := report.Summary.ByFoundation[foundation]
		rows = append(rows, []string{
			strings.ToUpper(foundation),
			strconv.Itoa(fs.Applications),
			strconv.Itoa(fs.Active),
			strconv.Itoa(fs.Inactive),
		})
	}

	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

// GenerateMigrationPriorityCSV writes applications ordered by readiness,
// highest score first.
func GenerateMigrationPriorityCSV(report *models.AnalyticsReport, writer io.Writer) error {
	w := csv.NewWriter(writer)
	defer w.Flush()

	header := []string{
		"Priority",
		"Application ID",
		"Migration Score",
		"Status",
		"Environment",
		"Complexity",
		"Action Required",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	apps := make([]models.ApplicationRollup, len(report.Applications))
	copy(apps, report.Applications)
	sort.SliceStable(apps, func(i, j int) bool {
		if apps[i].ReadinessScore != apps[j].ReadinessScore {
			return apps[i].ReadinessScore > apps[j].ReadinessScore
		}
		return apps[i].AppID < apps[j].AppID
	})

	for priority, app := range apps {
		complexity := "Low"
		if app.PodCount > 10 || app.ServiceCount > 5 {
			complexity = "High"
		} else if app.PodCount > 5 || app.ServiceCount > 2 {
			complexity = "Medium"
		}
		row := []string{
			strconv.Itoa(priority + 1),
			app.AppID,
			strconv.Itoa(app.ReadinessScore),
			statusLabel(app.IsActive),
			environmentLabel(app.Environments),
			complexity,
			actionLabel(app.ReadinessScore),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	return nil
}

func actionLabel(score int) string {
	switch {
	case score >= 80:
		return "Ready - Schedule Migration"
	case score >= 60:
		return "Review - Minor Planning Needed"
	case score >= 40:
		return "Analyze - Significant Planning Required"
	default:
		return "Complex - Detailed Analysis Required"
	}
}

func statusLabel(active bool) string {
	if active {
		return "Active"
	}
	return "Inactive"
}

func environmentLabel(environments []string) string {
	if len(environments) > 1 {
		return "Mixed"
	}
	if len(environments) == 0 {
		return "Unknown"
	}
	return titleCase(environments[0])
}

func lastActivityLabel(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.UTC().Format(time.RFC3339)
}

func daysLabel(days int) string {
	if days < 0 {
		return ""
	}
	return strconv.Itoa(days)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func joinNamespaces(keys []models.RecordKey) string {
	names := make([]string, len(keys))
	for i, key := range keys {
		names[i] = key.Namespace
	}
	return strings.Join(names, ", ")
}
