package models

import "time"

// ActivityChange records a namespace whose activity state flipped between
// two runs.
type ActivityChange struct {
	RecordKey
	AppID     string `json:"app_id"`
	WasActive bool   `json:"was_active"`
	IsActive  bool   `json:"is_active"`
}

// ScoreBucketChange records a namespace that moved between reporting bands.
type ScoreBucketChange struct {
	RecordKey
	AppID          string `json:"app_id"`
	PreviousScore  int    `json:"previous_score"`
	CurrentScore   int    `json:"current_score"`
	PreviousBucket string `json:"previous_bucket"`
	CurrentBucket  string `json:"current_bucket"`
}

// FoundationTrend aggregates one foundation's application namespaces in the
// current run.
type FoundationTrend struct {
	Total          int     `json:"total"`
	Active         int     `json:"active"`
	Inactive       int     `json:"inactive"`
	ScoreHistogram [4]int  `json:"score_histogram"`
	AverageScore   float64 `json:"average_score"`
}

// TrendReport compares the current snapshot against the previous one.
// A baseline run has no previous snapshot and reports empty change sets.
type TrendReport struct {
	GeneratedAt   time.Time `json:"generated_at"`
	BaselineRun   bool      `json:"baseline_run"`
	CurrentRunID  string    `json:"current_run_id"`
	PreviousRunID string    `json:"previous_run_id,omitempty"`

	NewApplications               []RecordKey         `json:"new_applications"`
	MigratedOrRemovedApplications []RecordKey         `json:"migrated_or_removed_applications"`
	ActivityChanges               []ActivityChange    `json:"activity_changes"`
	ScoreBucketChanges            []ScoreBucketChange `json:"score_bucket_changes"`

	Foundations map[string]FoundationTrend `json:"foundations"`
}
