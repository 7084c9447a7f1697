// Package metrics exposes run-quality gauges and pushes them to a
// Pushgateway after each batch run.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

const jobName = "tkgi-app-tracker"

// Recorder collects one run's gauges on a private registry so repeated runs
// in one process never double-register.
type Recorder struct {
	registry *prometheus.Registry

	runDuration    prometheus.Gauge
	filesRead      prometheus.Gauge
	filesSkipped   prometheus.Gauge
	recordsValid   prometheus.Gauge
	recordsDropped prometheus.Gauge

	namespaces *prometheus.GaugeVec

	appsTotal    prometheus.Gauge
	appsActive   prometheus.Gauge
	scoreBuckets *prometheus.GaugeVec

	driftOnlyActual   prometheus.Gauge
	driftOnlyConfig   prometheus.Gauge
	driftAppMismatch  prometheus.Gauge
	enrichmentSkipped prometheus.Gauge
	baselineRun       prometheus.Gauge
}

// NewRecorder builds a Recorder with all gauges registered.
func NewRecorder() *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.runDuration = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_run_duration_seconds",
		Help: "Wall-clock duration of the aggregation run.",
	})
	r.filesRead = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_files_read",
		Help: "Input files read this run.",
	})
	r.filesSkipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_files_skipped",
		Help: "Input files skipped as unreadable or corrupt.",
	})
	r.recordsValid = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_records_valid",
		Help: "Namespace records accepted into the snapshot.",
	})
	r.recordsDropped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_records_dropped",
		Help: "Malformed namespace records dropped during validation.",
	})
	r.namespaces = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tkgi_tracker_namespaces",
		Help: "Application namespaces in the snapshot by foundation.",
	}, []string{"foundation"})
	r.appsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_applications_total",
		Help: "Distinct applications in the snapshot.",
	})
	r.appsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_applications_active",
		Help: "Applications with activity inside the window.",
	})
	r.scoreBuckets = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "tkgi_tracker_score_bucket_count",
		Help: "Applications per readiness score bucket.",
	}, []string{"bucket"})
	r.driftOnlyActual = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_drift_only_in_actual",
		Help: "Namespaces observed on clusters but absent from platform config.",
	})
	r.driftOnlyConfig = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_drift_only_in_config",
		Help: "Namespaces declared in platform config but not observed.",
	})
	r.driftAppMismatch = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_drift_app_id_mismatches",
		Help: "Namespaces whose observed app id disagrees with platform config.",
	})
	r.enrichmentSkipped = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_enrichment_skipped",
		Help: "1 when the run degraded because the config source was unavailable.",
	})
	r.baselineRun = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "tkgi_tracker_baseline_run",
		Help: "1 when no previous snapshot existed for trend analysis.",
	})

	r.registry.MustRegister(
		r.runDuration,
		r.filesRead, r.filesSkipped,
		r.recordsValid, r.recordsDropped,
		r.namespaces,
		r.appsTotal, r.appsActive, r.scoreBuckets,
		r.driftOnlyActual, r.driftOnlyConfig, r.driftAppMismatch,
		r.enrichmentSkipped, r.baselineRun,
	)
	return r
}

// ObserveQuality records validator and consolidator counters.
func (r *Recorder) ObserveQuality(q models.RunQuality) {
	r.filesRead.Set(float64(q.FilesRead))
	r.filesSkipped.Set(float64(q.FilesSkipped))
	r.recordsValid.Set(float64(q.RecordsValid))
	r.recordsDropped.Set(float64(q.RecordsDropped))
	r.enrichmentSkipped.Set(boolGauge(q.EnrichmentSkipped))
	r.baselineRun.Set(boolGauge(q.BaselineRun))
}

// ObserveDrift records cross-reference partition sizes.
func (r *Recorder) ObserveDrift(d *models.DriftReport) {
	r.driftOnlyActual.Set(float64(len(d.OnlyInActual)))
	r.driftOnlyConfig.Set(float64(len(d.OnlyInConfig)))
	r.driftAppMismatch.Set(float64(len(d.AppIDDrift)))
}

// ObserveAnalytics records application-level gauges.
func (r *Recorder) ObserveAnalytics(a *models.AnalyticsReport) {
	r.appsTotal.Set(float64(a.Summary.Totals.Applications))
	r.appsActive.Set(float64(a.Summary.Totals.ActiveApplications))

	buckets := make(map[string]int, len(models.ScoreBucketLabels))
	for _, label := range models.ScoreBucketLabels {
		buckets[label] = 0
	}
	for _, app := range a.Applications {
		buckets[models.ScoreBucketLabels[models.ScoreBucket(app.ReadinessScore)]]++
	}
	for label, count := range buckets {
		r.scoreBuckets.WithLabelValues(label).Set(float64(count))
	}
}

// ObserveTrend records per-foundation namespace counts.
func (r *Recorder) ObserveTrend(t *models.TrendReport) {
	for foundation, agg := range t.Foundations {
		r.namespaces.WithLabelValues(foundation).Set(float64(agg.Total))
	}
}

// ObserveDuration records the run's wall-clock time.
func (r *Recorder) ObserveDuration(d time.Duration) {
	r.runDuration.Set(d.Seconds())
}

// Push sends the collected gauges to the Pushgateway, grouped by run id so
// concurrent foundations never clobber each other.
func (r *Recorder) Push(gatewayURL, runID string) error {
	if err := push.New(gatewayURL, jobName).
		Gatherer(r.registry).
		Grouping("run_id", runID).
		Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", gatewayURL, err)
	}
	return nil
}

// Registry exposes the run's registry for tests and local scraping.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
