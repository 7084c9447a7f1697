package configsource

import (
	"time"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// CrossReference enriches every record with its configuration entry and
// builds the drift report between what runs and what is configured.
// Partition invariant: len(OnlyInActual) + Matched == len(records), and
// len(OnlyInConfig) + Matched == len(configs).
func CrossReference(records []models.NamespaceRecord, configs []models.ConfiguredNamespace, now time.Time) ([]models.EnrichedRecord, *models.DriftReport) {
	byKey := make(map[models.RecordKey]*models.ConfiguredNamespace, len(configs))
	for i := range configs {
		byKey[configs[i].Key()] = &configs[i]
	}

	report := &models.DriftReport{
		GeneratedAt: now,
		ActualTotal: len(records),
		ConfigTotal: len(configs),
	}

	enriched := make([]models.EnrichedRecord, 0, len(records))
	seen := make(map[models.RecordKey]bool, len(records))

	for _, rec := range records {
		er := models.EnrichedRecord{NamespaceRecord: rec}
		key := rec.Key()
		seen[key] = true

		cfg, ok := byKey[key]
		if !ok {
			report.OnlyInActual = append(report.OnlyInActual, models.DriftEntry{
				RecordKey: key,
				AppID:     rec.AppID,
			})
			enriched = append(enriched, er)
			continue
		}

		matches := rec.AppID == cfg.AppID
		er.HasConfig = true
		er.ConfiguredAppID = cfg.AppID
		er.AppIDMatches = &matches
		er.Config = cfg
		report.Matched++

		if !matches {
			report.AppIDDrift = append(report.AppIDDrift, models.AppIDDriftEntry{
				RecordKey:       key,
				ActualAppID:     rec.AppID,
				ConfiguredAppID: cfg.AppID,
				Source:          cfg.Source,
			})
		}
		enriched = append(enriched, er)
	}

	for i := range configs {
		if seen[configs[i].Key()] {
			continue
		}
		report.OnlyInConfig = append(report.OnlyInConfig, models.DriftEntry{
			RecordKey: configs[i].Key(),
			AppID:     configs[i].AppID,
			Source:    configs[i].Source,
		})
	}

	return enriched, report
}

// Degraded enriches records as if no configuration entry existed for any of
// them, with an empty drift report flagged as skipped. Used when the
// configuration source is unavailable.
func Degraded(records []models.NamespaceRecord, now time.Time) ([]models.EnrichedRecord, *models.DriftReport) {
	enriched := make([]models.EnrichedRecord, 0, len(records))
	for _, rec := range records {
		enriched = append(enriched, models.EnrichedRecord{NamespaceRecord: rec})
	}
	return enriched, &models.DriftReport{
		GeneratedAt:    now,
		ActualTotal:    len(records),
		EnrichmentSkip: true,
	}
}
