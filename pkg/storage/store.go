// Package storage persists run history to PostgreSQL for week-over-week
// reporting across scheduled runs.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// ErrNotFound is returned when a run id has no stored row.
var ErrNotFound = errors.New("run not found")

// RunSummary is the stored run-level view: identity, quality counters, and
// the number of namespace records persisted with it.
type RunSummary struct {
	RunID             string
	GeneratedAt       time.Time
	RuleTableVersion  string
	FilesRead         int
	FilesSkipped      int
	RecordsValid      int
	RecordsDropped    int
	EnrichmentSkipped bool
	BaselineRun       bool
	RecordCount       int
}

// ScoreTrendPoint is one week of readiness history for a foundation.
type ScoreTrendPoint struct {
	Week             time.Time
	AverageScore     float64
	TotalNamespaces  int
	ActiveNamespaces int
}

// Store defines the persistence interface for run history.
type Store interface {
	SaveRun(ctx context.Context, snapshot *models.FoundationSnapshot, trend *models.TrendReport) error
	GetRun(ctx context.Context, runID string) (*RunSummary, error)
	ListRuns(ctx context.Context, foundation string, limit int) ([]*RunSummary, error)
	GetScoreTrend(ctx context.Context, foundation string, weeks int) ([]*ScoreTrendPoint, error)

	Ping(ctx context.Context) error
	Close() error
}
