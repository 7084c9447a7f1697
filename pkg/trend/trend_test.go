package trend

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

func record(foundation, cluster, namespace, appID string, active, system bool, score int) models.EnrichedRecord {
	rec := models.EnrichedRecord{
		NamespaceRecord: models.NamespaceRecord{
			Namespace:  namespace,
			Cluster:    cluster,
			Foundation: foundation,
			AppID:      appID,
			IsActive:   active,
			IsSystem:   system,
		},
	}
	if score >= 0 {
		rec.Score = &models.ReadinessScore{Value: score}
	}
	return rec
}

func snapshot(runID string, records ...models.EnrichedRecord) *models.FoundationSnapshot {
	return &models.FoundationSnapshot{
		RunID:            runID,
		GeneratedAt:      time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
		RuleTableVersion: "v1",
		Records:          records,
	}
}

func TestAnalyzeBaseline(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	current := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "billing-api", "billing", true, false, 55),
		record("dc01-k8s-n-01", "cluster-a", "kube-system", "unknown", true, true, -1),
	)

	report := analyzer.Analyze(current, nil, now)

	if !report.BaselineRun {
		t.Error("expected baseline run flag")
	}
	if report.PreviousRunID != "" {
		t.Errorf("expected empty previous run id, got %q", report.PreviousRunID)
	}
	if report.CurrentRunID != "run-1" {
		t.Errorf("expected current run id run-1, got %q", report.CurrentRunID)
	}
	if len(report.NewApplications) != 0 || len(report.MigratedOrRemovedApplications) != 0 {
		t.Errorf("baseline run must not report changes, got new=%d removed=%d",
			len(report.NewApplications), len(report.MigratedOrRemovedApplications))
	}
	agg, ok := report.Foundations["dc01-k8s-n-01"]
	if !ok {
		t.Fatal("expected foundation aggregate for dc01-k8s-n-01")
	}
	if agg.Total != 1 {
		t.Errorf("system namespaces must not count, got total %d", agg.Total)
	}
}

func TestAnalyzeNewAndRemoved(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "billing-api", "billing", true, false, 55),
		record("dc01-k8s-n-01", "cluster-a", "legacy-app", "legacy", false, false, 90),
	)
	current := snapshot("run-2",
		record("dc01-k8s-n-01", "cluster-a", "billing-api", "billing", true, false, 55),
		record("dc01-k8s-n-01", "cluster-a", "payments-api", "payments", true, false, 40),
	)

	report := analyzer.Analyze(current, previous, now)

	if report.BaselineRun {
		t.Error("unexpected baseline flag with a previous snapshot")
	}
	if report.PreviousRunID != "run-1" {
		t.Errorf("expected previous run id run-1, got %q", report.PreviousRunID)
	}
	if len(report.NewApplications) != 1 {
		t.Fatalf("expected 1 new application, got %d", len(report.NewApplications))
	}
	if report.NewApplications[0].Namespace != "payments-api" {
		t.Errorf("expected payments-api as new, got %q", report.NewApplications[0].Namespace)
	}
	if len(report.MigratedOrRemovedApplications) != 1 {
		t.Fatalf("expected 1 removed application, got %d", len(report.MigratedOrRemovedApplications))
	}
	if report.MigratedOrRemovedApplications[0].Namespace != "legacy-app" {
		t.Errorf("expected legacy-app as removed, got %q", report.MigratedOrRemovedApplications[0].Namespace)
	}
}

func TestAnalyzeActivityChanges(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "went-quiet", "quiet", true, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "woke-up", "awake", false, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "steady", "steady", true, false, 50),
	)
	current := snapshot("run-2",
		record("dc01-k8s-n-01", "cluster-a", "went-quiet", "quiet", false, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "woke-up", "awake", true, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "steady", "steady", true, false, 50),
	)

	report := analyzer.Analyze(current, previous, now)

	if len(report.ActivityChanges) != 2 {
		t.Fatalf("expected 2 activity changes, got %d", len(report.ActivityChanges))
	}
	byNS := map[string]models.ActivityChange{}
	for _, change := range report.ActivityChanges {
		byNS[change.Namespace] = change
	}
	quiet, ok := byNS["went-quiet"]
	if !ok {
		t.Fatal("expected change entry for went-quiet")
	}
	if !quiet.WasActive || quiet.IsActive {
		t.Errorf("went-quiet should flip active->inactive, got was=%v is=%v", quiet.WasActive, quiet.IsActive)
	}
	awake, ok := byNS["woke-up"]
	if !ok {
		t.Fatal("expected change entry for woke-up")
	}
	if awake.WasActive || !awake.IsActive {
		t.Errorf("woke-up should flip inactive->active, got was=%v is=%v", awake.WasActive, awake.IsActive)
	}
}

func TestAnalyzeScoreBucketChanges(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "improved", "up", false, false, 75),
		record("dc01-k8s-n-01", "cluster-a", "same-bucket", "flat", false, false, 62),
		record("dc01-k8s-n-01", "cluster-a", "unscored", "none", false, false, -1),
	)
	current := snapshot("run-2",
		record("dc01-k8s-n-01", "cluster-a", "improved", "up", false, false, 85),
		record("dc01-k8s-n-01", "cluster-a", "same-bucket", "flat", false, false, 79),
		record("dc01-k8s-n-01", "cluster-a", "unscored", "none", false, false, 50),
	)

	report := analyzer.Analyze(current, previous, now)

	if len(report.ScoreBucketChanges) != 1 {
		t.Fatalf("expected 1 score bucket change, got %d", len(report.ScoreBucketChanges))
	}
	change := report.ScoreBucketChanges[0]
	if change.Namespace != "improved" {
		t.Errorf("expected improved to change bucket, got %q", change.Namespace)
	}
	if change.PreviousScore != 75 || change.CurrentScore != 85 {
		t.Errorf("expected scores 75->85, got %d->%d", change.PreviousScore, change.CurrentScore)
	}
	if change.PreviousBucket != "60-79" || change.CurrentBucket != "80-100" {
		t.Errorf("expected buckets 60-79 -> 80-100, got %q -> %q", change.PreviousBucket, change.CurrentBucket)
	}
}

func TestAnalyzeIgnoresSystemNamespaces(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "kube-system", "unknown", true, true, -1),
	)
	current := snapshot("run-2",
		record("dc01-k8s-n-01", "cluster-a", "pks-system", "unknown", false, true, -1),
	)

	report := analyzer.Analyze(current, previous, now)

	if len(report.NewApplications) != 0 {
		t.Errorf("system namespaces must not appear as new, got %d", len(report.NewApplications))
	}
	if len(report.MigratedOrRemovedApplications) != 0 {
		t.Errorf("system namespaces must not appear as removed, got %d", len(report.MigratedOrRemovedApplications))
	}
	if len(report.Foundations) != 0 {
		t.Errorf("system namespaces must not produce aggregates, got %d foundations", len(report.Foundations))
	}
}

func TestAnalyzePartition(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "shared-1", "a", true, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "shared-2", "b", true, false, 50),
		record("dc01-k8s-n-01", "cluster-b", "old-only", "c", true, false, 50),
		record("dc02-k8s-p-01", "cluster-a", "shared-1", "a", true, false, 50),
	)
	current := snapshot("run-2",
		record("dc01-k8s-n-01", "cluster-a", "shared-1", "a", true, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "shared-2", "b", true, false, 50),
		record("dc01-k8s-n-01", "cluster-b", "new-only", "d", true, false, 50),
		record("dc02-k8s-p-01", "cluster-a", "shared-1", "a", true, false, 50),
	)

	report := analyzer.Analyze(current, previous, now)

	newSet := map[models.RecordKey]bool{}
	for _, key := range report.NewApplications {
		newSet[key] = true
	}
	removedSet := map[models.RecordKey]bool{}
	for _, key := range report.MigratedOrRemovedApplications {
		removedSet[key] = true
	}
	for key := range newSet {
		if removedSet[key] {
			t.Errorf("key %s reported both new and removed", key)
		}
	}
	for i := range current.Records {
		key := current.Records[i].Key()
		if removedSet[key] {
			t.Errorf("key %s present in current run but reported removed", key)
		}
	}
	for i := range previous.Records {
		key := previous.Records[i].Key()
		if newSet[key] {
			t.Errorf("key %s present in previous run but reported new", key)
		}
	}
	if len(newSet) != 1 || len(removedSet) != 1 {
		t.Errorf("expected exactly one new and one removed key, got %d and %d", len(newSet), len(removedSet))
	}
}

func TestAnalyzeDeterministicOrdering(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	previous := snapshot("run-1")
	current := snapshot("run-2",
		record("dc02-k8s-p-01", "cluster-a", "zeta", "z", true, false, 50),
		record("dc01-k8s-n-01", "cluster-b", "alpha", "a", true, false, 50),
		record("dc01-k8s-n-01", "cluster-a", "mid", "m", true, false, 50),
	)

	report := analyzer.Analyze(current, previous, now)

	if len(report.NewApplications) != 3 {
		t.Fatalf("expected 3 new applications, got %d", len(report.NewApplications))
	}
	for i := 1; i < len(report.NewApplications); i++ {
		if !report.NewApplications[i-1].Less(report.NewApplications[i]) {
			t.Errorf("new applications out of order at %d: %s before %s",
				i, report.NewApplications[i-1], report.NewApplications[i])
		}
	}
}

func TestFoundationAggregates(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	current := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "ns-1", "a", true, false, 85),
		record("dc01-k8s-n-01", "cluster-a", "ns-2", "b", false, false, 70),
		record("dc01-k8s-n-01", "cluster-b", "ns-3", "c", false, false, 45),
		record("dc01-k8s-n-01", "cluster-b", "ns-4", "d", false, false, 30),
		record("dc02-k8s-p-01", "cluster-a", "ns-5", "e", true, false, 100),
	)

	report := analyzer.Analyze(current, nil, now)

	agg, ok := report.Foundations["dc01-k8s-n-01"]
	if !ok {
		t.Fatal("missing aggregate for dc01-k8s-n-01")
	}
	if agg.Total != 4 || agg.Active != 1 || agg.Inactive != 3 {
		t.Errorf("expected total=4 active=1 inactive=3, got total=%d active=%d inactive=%d",
			agg.Total, agg.Active, agg.Inactive)
	}
	wantHistogram := [4]int{1, 1, 1, 1}
	if agg.ScoreHistogram != wantHistogram {
		t.Errorf("expected histogram %v, got %v", wantHistogram, agg.ScoreHistogram)
	}
	if agg.AverageScore != 57.5 {
		t.Errorf("expected average 57.5, got %v", agg.AverageScore)
	}

	prod, ok := report.Foundations["dc02-k8s-p-01"]
	if !ok {
		t.Fatal("missing aggregate for dc02-k8s-p-01")
	}
	if prod.Total != 1 || prod.AverageScore != 100 {
		t.Errorf("expected total=1 average=100, got total=%d average=%v", prod.Total, prod.AverageScore)
	}
}

func TestFoundationAverageRounding(t *testing.T) {
	analyzer := New(zap.NewNop())
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	current := snapshot("run-1",
		record("dc01-k8s-n-01", "cluster-a", "ns-1", "a", true, false, 33),
		record("dc01-k8s-n-01", "cluster-a", "ns-2", "b", true, false, 33),
		record("dc01-k8s-n-01", "cluster-a", "ns-3", "c", true, false, 34),
	)

	report := analyzer.Analyze(current, nil, now)

	agg := report.Foundations["dc01-k8s-n-01"]
	if agg.AverageScore != 33.33 {
		t.Errorf("expected average rounded to 33.33, got %v", agg.AverageScore)
	}
}
