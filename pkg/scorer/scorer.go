// Package scorer computes migration-readiness scores for application
// namespaces. Scoring is a pure function of the enriched record and the run
// time; higher scores mean easier migrations.
package scorer

import (
	"fmt"
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// Score rates one record. Every deduction and bonus applies independently;
// the sum is clamped to [0,100] once at the end, never in between, and each
// rule that fired is recorded for audit.
func Score(rec models.EnrichedRecord, now time.Time) models.ReadinessScore {
	score := models.ReadinessScore{Value: 100}
	apply := func(rule string, delta int, detail string) {
		score.Value += delta
		score.Factors = append(score.Factors, models.ScoreFactor{
			Rule:   rule,
			Delta:  delta,
			Detail: detail,
		})
	}

	if rec.IsActive {
		apply("active", -30, "activity within the inactivity window")
	}

	switch {
	case rec.PodCount > 10:
		apply("pod_count", -20, fmt.Sprintf("%d pods", rec.PodCount))
	case rec.PodCount > 5:
		apply("pod_count", -10, fmt.Sprintf("%d pods", rec.PodCount))
	}

	switch rec.Environment {
	case models.EnvProd:
		apply("environment", -20, "production workload")
	case models.EnvNonProd:
		apply("environment", -10, "non-production workload")
	}

	if rec.ServiceCount > 5 {
		apply("service_count", -10, fmt.Sprintf("%d services", rec.ServiceCount))
	}

	// One penalty even when both metadata gaps hold.
	if !rec.HasConfig || rec.AppID == "unknown" {
		apply("missing_metadata", -15, missingMetadataDetail(rec))
	}

	if age := models.DaysSince(rec.CreationTimestamp, now); age > 180 {
		apply("age_bonus", 5, fmt.Sprintf("created %d days ago", age))
	}

	// The bonus needs a known last activity; an unknown one already
	// classified the record inactive without evidence either way.
	if !rec.IsActive && rec.LastActivity != nil {
		days := models.DaysSince(rec.LastActivity, now)
		if days > 60 {
			apply("inactivity_bonus", 20, fmt.Sprintf("inactive %d days", days))
		} else if days > 30 {
			apply("inactivity_bonus", 10, fmt.Sprintf("inactive %d days", days))
		}
	}

	if score.Value > 100 {
		score.Value = 100
	}
	if score.Value < 0 {
		score.Value = 0
	}
	return score
}

// Apply scores every application record in place. System namespaces are not
// migration candidates and stay unscored.
func Apply(records []models.EnrichedRecord, now time.Time) {
	for i := range records {
		if records[i].IsSystem {
			continue
		}
		s := Score(records[i], now)
		records[i].Score = &s
	}
}

func missingMetadataDetail(rec models.EnrichedRecord) string {
	switch {
	case !rec.HasConfig && rec.AppID == "unknown":
		return "no configuration entry and unknown application id"
	case !rec.HasConfig:
		return "no configuration entry"
	default:
		return "unknown application id"
	}
}
