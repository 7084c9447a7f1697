package models

import (
	"sort"
	"time"
)

// RunQuality aggregates the non-fatal conditions observed during a run.
// Downstream consumers use it to decide how much to trust the output.
type RunQuality struct {
	FilesRead         int            `json:"files_read"`
	FilesSkipped      int            `json:"files_skipped"`
	SkippedFiles      []string       `json:"skipped_files,omitempty"`
	RecordsValid      int            `json:"records_valid"`
	RecordsDropped    int            `json:"records_dropped"`
	DroppedByFile     map[string]int `json:"dropped_by_file,omitempty"`
	EnrichmentSkipped bool           `json:"enrichment_skipped,omitempty"`
	BaselineRun       bool           `json:"baseline_run,omitempty"`
}

// FoundationSnapshot is the consolidated, enriched, scored view of the whole
// estate produced by one pipeline run. Snapshots are written once and never
// modified; the next run reads the newest one as its comparison baseline.
type FoundationSnapshot struct {
	RunID            string           `json:"run_id"`
	GeneratedAt      time.Time        `json:"generated_at"`
	RuleTableVersion string           `json:"rule_table_version"`
	Records          []EnrichedRecord `json:"records"`
	Quality          RunQuality       `json:"quality"`
}

// Foundations lists the distinct foundations present in the snapshot, sorted.
func (s *FoundationSnapshot) Foundations() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range s.Records {
		f := s.Records[i].Foundation
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
