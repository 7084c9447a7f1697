// Package trend compares the current snapshot against the previous run's
// snapshot and aggregates per-foundation readiness.
package trend

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// Analyzer computes run-over-run deltas.
type Analyzer struct {
	logger *zap.Logger
}

// New returns an Analyzer.
func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger}
}

// Analyze diffs current against previous. A nil previous snapshot is the
// baseline case: change sets stay empty and the report says so. System
// namespaces never enter the change sets; platform infrastructure moving
// between runs is not application drift.
func (a *Analyzer) Analyze(current *models.FoundationSnapshot, previous *models.FoundationSnapshot, now time.Time) *models.TrendReport {
	report := &models.TrendReport{
		GeneratedAt:                   now,
		CurrentRunID:                  current.RunID,
		NewApplications:               []models.RecordKey{},
		MigratedOrRemovedApplications: []models.RecordKey{},
		ActivityChanges:               []models.ActivityChange{},
		ScoreBucketChanges:            []models.ScoreBucketChange{},
		Foundations:                   foundationAggregates(current),
	}

	if previous == nil {
		report.BaselineRun = true
		a.logger.Info("no previous snapshot, baseline run",
			zap.String("run_id", current.RunID))
		return report
	}
	report.PreviousRunID = previous.RunID

	cur := applicationRecords(current)
	prev := applicationRecords(previous)

	for key, rec := range cur {
		before, existed := prev[key]
		if !existed {
			report.NewApplications = append(report.NewApplications, key)
			continue
		}
		if before.IsActive != rec.IsActive {
			report.ActivityChanges = append(report.ActivityChanges, models.ActivityChange{
				RecordKey: key,
				AppID:     rec.AppID,
				WasActive: before.IsActive,
				IsActive:  rec.IsActive,
			})
		}
		if before.Score != nil && rec.Score != nil {
			prevBucket := models.ScoreBucket(before.Score.Value)
			curBucket := models.ScoreBucket(rec.Score.Value)
			if prevBucket != curBucket {
				report.ScoreBucketChanges = append(report.ScoreBucketChanges, models.ScoreBucketChange{
					RecordKey:      key,
					AppID:          rec.AppID,
					PreviousScore:  before.Score.Value,
					CurrentScore:   rec.Score.Value,
					PreviousBucket: models.ScoreBucketLabels[prevBucket],
					CurrentBucket:  models.ScoreBucketLabels[curBucket],
				})
			}
		}
	}

	for key := range prev {
		if _, exists := cur[key]; !exists {
			report.MigratedOrRemovedApplications = append(report.MigratedOrRemovedApplications, key)
		}
	}

	sortKeys(report.NewApplications)
	sortKeys(report.MigratedOrRemovedApplications)
	sort.Slice(report.ActivityChanges, func(i, j int) bool {
		return report.ActivityChanges[i].RecordKey.Less(report.ActivityChanges[j].RecordKey)
	})
	sort.Slice(report.ScoreBucketChanges, func(i, j int) bool {
		return report.ScoreBucketChanges[i].RecordKey.Less(report.ScoreBucketChanges[j].RecordKey)
	})

	a.logger.Info("trend computed",
		zap.String("current_run", current.RunID),
		zap.String("previous_run", previous.RunID),
		zap.Int("new", len(report.NewApplications)),
		zap.Int("removed", len(report.MigratedOrRemovedApplications)),
		zap.Int("activity_changes", len(report.ActivityChanges)))

	return report
}

func applicationRecords(s *models.FoundationSnapshot) map[models.RecordKey]*models.EnrichedRecord {
	out := make(map[models.RecordKey]*models.EnrichedRecord)
	for i := range s.Records {
		if s.Records[i].IsSystem {
			continue
		}
		out[s.Records[i].Key()] = &s.Records[i]
	}
	return out
}

func foundationAggregates(s *models.FoundationSnapshot) map[string]models.FoundationTrend {
	out := make(map[string]models.FoundationTrend)
	sums := make(map[string]int)
	scored := make(map[string]int)

	for i := range s.Records {
		rec := &s.Records[i]
		if rec.IsSystem {
			continue
		}
		agg := out[rec.Foundation]
		agg.Total++
		if rec.IsActive {
			agg.Active++
		} else {
			agg.Inactive++
		}
		if rec.Score != nil {
			agg.ScoreHistogram[models.ScoreBucket(rec.Score.Value)]++
			sums[rec.Foundation] += rec.Score.Value
			scored[rec.Foundation]++
		}
		out[rec.Foundation] = agg
	}

	for foundation, agg := range out {
		if n := scored[foundation]; n > 0 {
			avg := float64(sums[foundation]) / float64(n)
			agg.AverageScore = math.Round(avg*100) / 100
			out[foundation] = agg
		}
	}
	return out
}

func sortKeys(keys []models.RecordKey) {
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
}
