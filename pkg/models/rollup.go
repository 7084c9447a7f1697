package models

import "time"

// ApplicationRollup groups an application's namespaces across every
// foundation and cluster it runs on. Namespaces whose application could not
// be identified roll up under the "unknown" group.
type ApplicationRollup struct {
	AppID             string      `json:"app_id"`
	Namespaces        []RecordKey `json:"namespaces"`
	Foundations       []string    `json:"foundations"`
	Environments      []string    `json:"environments"`
	Clusters          []string    `json:"clusters"`
	PodCount          int         `json:"total_pods"`
	RunningPods       int         `json:"running_pods"`
	DeploymentCount   int         `json:"total_deployments"`
	StatefulSetCount  int         `json:"total_statefulsets"`
	ServiceCount      int         `json:"total_services"`
	LastActivity      *time.Time  `json:"last_activity,omitempty"`
	DaysSinceActivity int         `json:"days_since_activity"`
	IsActive          bool        `json:"is_active"`
	DataQuality       DataQuality `json:"data_quality"`

	// ReadinessScore is the lowest member namespace score, so a single hard
	// namespace keeps the whole application flagged.
	ReadinessScore int    `json:"migration_readiness"`
	Recommendation string `json:"recommendation"`
}

// ClusterRollup aggregates one cluster's namespaces.
type ClusterRollup struct {
	Cluster          string      `json:"cluster"`
	Foundation       string      `json:"foundation"`
	Environment      Environment `json:"environment"`
	TotalNamespaces  int         `json:"total_namespaces"`
	AppNamespaces    int         `json:"app_namespaces"`
	SystemNamespaces int         `json:"system_namespaces"`
	ApplicationCount int         `json:"application_count"`
	TotalPods        int         `json:"total_pods"`
	RunningPods      int         `json:"running_pods"`
}

// SummaryTotals are the headline counts of the executive summary.
type SummaryTotals struct {
	Applications              int `json:"applications"`
	ActiveApplications        int `json:"active_applications"`
	InactiveApplications      int `json:"inactive_applications"`
	ProductionApplications    int `json:"production_applications"`
	NonProductionApplications int `json:"nonproduction_applications"`
	Clusters                  int `json:"clusters"`
	TotalPods                 int `json:"total_pods"`
}

// MigrationSummary counts applications by how much migration work they need.
type MigrationSummary struct {
	ReadyForMigration     int `json:"ready_for_migration"`
	NeedsPlanning         int `json:"needs_planning"`
	NeedsMetadataAnalysis int `json:"needs_metadata_analysis"`
}

// FoundationSummary is the per-foundation slice of the executive summary.
type FoundationSummary struct {
	Applications int `json:"applications"`
	Active       int `json:"active"`
	Inactive     int `json:"inactive"`
}

// ExecutiveSummary is the management view of one run.
type ExecutiveSummary struct {
	Totals       SummaryTotals                `json:"totals"`
	Migration    MigrationSummary             `json:"migration"`
	ByFoundation map[string]FoundationSummary `json:"by_foundation"`
}

// AnalyticsReport is the analytics output of one run: application and
// cluster rollups plus the executive summary derived from them. Rollups are
// sorted by their identifier so repeated runs over the same snapshot write
// identical files.
type AnalyticsReport struct {
	RunID        string              `json:"run_id"`
	GeneratedAt  time.Time           `json:"generated_at"`
	Applications []ApplicationRollup `json:"applications"`
	Clusters     []ClusterRollup     `json:"clusters"`
	Summary      ExecutiveSummary    `json:"summary"`
}
