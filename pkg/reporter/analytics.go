package reporter

import (
	"sort"
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

type appGroup struct {
	namespaces   []models.RecordKey
	foundations  map[string]struct{}
	environments map[string]struct{}
	clusters     map[string]struct{}
	pods         int
	runningPods  int
	deployments  int
	statefulsets int
	services     int
	lastActivity *time.Time
	isActive     bool
	incomplete   bool
	minScore     int
	scored       bool
}

type clusterKey struct {
	foundation string
	cluster    string
}

type clusterGroup struct {
	foundation  string
	cluster     string
	environment models.Environment
	total       int
	app         int
	system      int
	apps        map[string]struct{}
	pods        int
	runningPods int
}

// BuildAnalytics aggregates scored records into per-application and
// per-cluster rollups and derives the executive summary. System namespaces
// count toward cluster totals but never form applications.
func BuildAnalytics(records []models.EnrichedRecord, runID string, now time.Time) *models.AnalyticsReport {
	apps := make(map[string]*appGroup)
	clusters := make(map[clusterKey]*clusterGroup)
	foundations := make(map[string]struct{})

	for i := range records {
		rec := &records[i]
		foundations[rec.Foundation] = struct{}{}

		ck := clusterKey{foundation: rec.Foundation, cluster: rec.Cluster}
		cg, ok := clusters[ck]
		if !ok {
			cg = &clusterGroup{
				foundation:  rec.Foundation,
				cluster:     rec.Cluster,
				environment: rec.Environment,
				apps:        make(map[string]struct{}),
			}
			clusters[ck] = cg
		}
		cg.total++
		cg.pods += rec.PodCount
		cg.runningPods += rec.RunningPods
		if rec.IsSystem {
			cg.system++
			continue
		}
		cg.app++
		if rec.AppID != "unknown" {
			cg.apps[rec.AppID] = struct{}{}
		}

		ag, ok := apps[rec.AppID]
		if !ok {
			ag = &appGroup{
				foundations:  make(map[string]struct{}),
				environments: make(map[string]struct{}),
				clusters:     make(map[string]struct{}),
			}
			apps[rec.AppID] = ag
		}
		ag.namespaces = append(ag.namespaces, rec.Key())
		ag.foundations[rec.Foundation] = struct{}{}
		ag.environments[string(rec.Environment)] = struct{}{}
		ag.clusters[rec.Cluster] = struct{}{}
		ag.pods += rec.PodCount
		ag.runningPods += rec.RunningPods
		ag.deployments += rec.DeploymentCount
		ag.statefulsets += rec.StatefulSetCount
		ag.services += rec.ServiceCount
		if rec.LastActivity != nil {
			if ag.lastActivity == nil || rec.LastActivity.After(*ag.lastActivity) {
				ag.lastActivity = rec.LastActivity
			}
		}
		ag.isActive = ag.isActive || rec.IsActive
		ag.incomplete = ag.incomplete || rec.DataQuality == models.DataQualityIncomplete
		if rec.Score != nil {
			if !ag.scored || rec.Score.Value < ag.minScore {
				ag.minScore = rec.Score.Value
			}
			ag.scored = true
		}
	}

	report := &models.AnalyticsReport{
		RunID:        runID,
		GeneratedAt:  now,
		Applications: buildApplicationRollups(apps, now),
		Clusters:     buildClusterRollups(clusters),
	}
	report.Summary = buildSummary(report.Applications, report.Clusters, foundations)
	return report
}

func buildApplicationRollups(apps map[string]*appGroup, now time.Time) []models.ApplicationRollup {
	rollups := make([]models.ApplicationRollup, 0, len(apps))
	for appID, g := range apps {
		sort.Slice(g.namespaces, func(i, j int) bool { return g.namespaces[i].Less(g.namespaces[j]) })

		quality := models.DataQualityComplete
		if g.incomplete || appID == "unknown" {
			quality = models.DataQualityIncomplete
		}
		rollup := models.ApplicationRollup{
			AppID:             appID,
			Namespaces:        g.namespaces,
			Foundations:       sortedKeys(g.foundations),
			Environments:      sortedKeys(g.environments),
			Clusters:          sortedKeys(g.clusters),
			PodCount:          g.pods,
			RunningPods:       g.runningPods,
			DeploymentCount:   g.deployments,
			StatefulSetCount:  g.statefulsets,
			ServiceCount:      g.services,
			LastActivity:      g.lastActivity,
			DaysSinceActivity: models.DaysSince(g.lastActivity, now),
			IsActive:          g.isActive,
			DataQuality:       quality,
		}
		if g.scored {
			rollup.ReadinessScore = g.minScore
		}
		rollup.Recommendation = recommendationFor(rollup)
		rollups = append(rollups, rollup)
	}
	sort.Slice(rollups, func(i, j int) bool { return rollups[i].AppID < rollups[j].AppID })
	return rollups
}

func buildClusterRollups(clusters map[clusterKey]*clusterGroup) []models.ClusterRollup {
	rollups := make([]models.ClusterRollup, 0, len(clusters))
	for _, g := range clusters {
		rollups = append(rollups, models.ClusterRollup{
			Cluster:          g.cluster,
			Foundation:       g.foundation,
			Environment:      g.environment,
			TotalNamespaces:  g.total,
			AppNamespaces:    g.app,
			SystemNamespaces: g.system,
			ApplicationCount: len(g.apps),
			TotalPods:        g.pods,
			RunningPods:      g.runningPods,
		})
	}
	sort.Slice(rollups, func(i, j int) bool {
		if rollups[i].Foundation != rollups[j].Foundation {
			return rollups[i].Foundation < rollups[j].Foundation
		}
		return rollups[i].Cluster < rollups[j].Cluster
	})
	return rollups
}

func buildSummary(apps []models.ApplicationRollup, clusters []models.ClusterRollup, foundations map[string]struct{}) models.ExecutiveSummary {
	summary := models.ExecutiveSummary{
		ByFoundation: make(map[string]models.FoundationSummary),
	}
	summary.Totals.Applications = len(apps)
	summary.Totals.Clusters = len(clusters)
	for _, c := range clusters {
		summary.Totals.TotalPods += c.TotalPods
	}
	for foundation := range foundations {
		summary.ByFoundation[foundation] = models.FoundationSummary{}
	}

	for _, app := range apps {
		if app.IsActive {
			summary.Totals.ActiveApplications++
		}
		if containsEnvironment(app.Environments, models.EnvProd) {
			summary.Totals.ProductionApplications++
		}
		if app.ReadinessScore >= 70 {
			summary.Migration.ReadyForMigration++
		}
		if app.DataQuality == models.DataQualityIncomplete {
			summary.Migration.NeedsMetadataAnalysis++
		}
		for _, foundation := range app.Foundations {
			fs := summary.ByFoundation[foundation]
			fs.Applications++
			if app.IsActive {
				fs.Active++
			} else {
				fs.Inactive++
			}
			summary.ByFoundation[foundation] = fs
		}
	}
	summary.Totals.InactiveApplications = summary.Totals.Applications - summary.Totals.ActiveApplications
	summary.Totals.NonProductionApplications = summary.Totals.Applications - summary.Totals.ProductionApplications
	summary.Migration.NeedsPlanning = summary.Totals.ActiveApplications
	return summary
}

// recommendationFor maps an application's score and state to the guidance
// string shown to migration planners.
func recommendationFor(app models.ApplicationRollup) string {
	switch {
	case app.ReadinessScore >= 80:
		if !app.IsActive {
			return "Immediate migration candidate - inactive app"
		}
		return "Good migration candidate - plan coordination"
	case app.ReadinessScore >= 60:
		if app.DaysSinceActivity > 60 {
			return "Consider decommissioning if no longer needed"
		}
		return "Moderate complexity - needs planning"
	case app.ReadinessScore >= 40:
		return "Complex migration - detailed analysis required"
	default:
		if app.IsActive && containsEnvironment(app.Environments, models.EnvProd) {
			return "Critical app - careful migration planning needed"
		}
		return "High complexity - consider phased approach"
	}
}

func containsEnvironment(environments []string, env models.Environment) bool {
	for _, e := range environments {
		if e == string(env) {
			return true
		}
	}
	return false
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
