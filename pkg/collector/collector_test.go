package collector

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	kfake "k8s.io/client-go/kubernetes/fake"
	metricsv1beta1 "k8s.io/metrics/pkg/apis/metrics/v1beta1"
	metricsfake "k8s.io/metrics/pkg/client/clientset/versioned/fake"

	"github.com/opscart/tkgi-app-tracker/pkg/validator"
)

func namespaceObj(name string, labels map[string]string, created time.Time) *corev1.Namespace {
	return &corev1.Namespace{
		ObjectMeta: metav1.ObjectMeta{
			Name:              name,
			Labels:            labels,
			CreationTimestamp: metav1.Time{Time: created},
		},
	}
}

func podObj(namespace, name string, phase corev1.PodPhase, started *time.Time) *corev1.Pod {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: name, Namespace: namespace},
		Status:     corev1.PodStatus{Phase: phase},
	}
	if started != nil {
		pod.Status.StartTime = &metav1.Time{Time: *started}
	}
	return pod
}

func newTestCollector(t *testing.T, objects []runtime.Object, metricsObjects []runtime.Object) *Collector {
	t.Helper()
	clientset := kfake.NewSimpleClientset(objects...)
	metricsClient := metricsfake.NewSimpleClientset(metricsObjects...)
	return NewWithClients(clientset, metricsClient, "dc02-k8s-n-01", "dc02-cluster-n-01", zap.NewNop())
}

func TestCollectInventoriesNamespace(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	created := now.Add(-90 * 24 * time.Hour)
	oldStart := now.Add(-72 * time.Hour)
	newStart := now.Add(-2 * time.Hour)

	objects := []runtime.Object{
		namespaceObj("payments-1234", map[string]string{"app-id": "payments-api"}, created),
		podObj("payments-1234", "api-1", corev1.PodRunning, &oldStart),
		podObj("payments-1234", "api-2", corev1.PodRunning, &newStart),
		podObj("payments-1234", "stuck", corev1.PodPending, nil),
		&appsv1.Deployment{ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "payments-1234"}},
		&appsv1.StatefulSet{ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "payments-1234"}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "api", Namespace: "payments-1234"}},
		&corev1.Service{ObjectMeta: metav1.ObjectMeta{Name: "db", Namespace: "payments-1234"}},
	}

	c := newTestCollector(t, objects, nil)
	records, err := c.Collect(context.Background(), now)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}

	rec := records[0]
	if rec.Namespace != "payments-1234" {
		t.Errorf("Namespace = %q", rec.Namespace)
	}
	if rec.Cluster != "dc02-cluster-n-01" || rec.Foundation != "dc02-k8s-n-01" {
		t.Errorf("identity = %q/%q", rec.Foundation, rec.Cluster)
	}
	if rec.Datacenter != "dc02" || rec.Environment != "nonprod" {
		t.Errorf("datacenter/environment = %q/%q", rec.Datacenter, rec.Environment)
	}
	if rec.PodCount != 3 || rec.RunningPods != 2 {
		t.Errorf("pods = %d running %d, want 3 running 2", rec.PodCount, rec.RunningPods)
	}
	if rec.DeploymentCount != 1 || rec.StatefulSetCount != 1 || rec.ServiceCount != 2 {
		t.Errorf("workloads = %d/%d/%d, want 1/1/2",
			rec.DeploymentCount, rec.StatefulSetCount, rec.ServiceCount)
	}
	if rec.LastActivity != newStart.Format(time.RFC3339) {
		t.Errorf("LastActivity = %q, want newest pod start %q",
			rec.LastActivity, newStart.Format(time.RFC3339))
	}
	if rec.CreationTimestamp != created.Format(time.RFC3339) {
		t.Errorf("CreationTimestamp = %q", rec.CreationTimestamp)
	}
	if rec.AppID != "payments-api" {
		t.Errorf("AppID = %q, want payments-api", rec.AppID)
	}
	if rec.IsSystem {
		t.Error("payments-1234 flagged as system")
	}
}

func TestCollectFlagsSystemNamespaces(t *testing.T) {
	objects := []runtime.Object{
		namespaceObj("kube-system", nil, time.Time{}),
		namespaceObj("pks-system", nil, time.Time{}),
		namespaceObj("team-apps", nil, time.Time{}),
	}

	c := newTestCollector(t, objects, nil)
	records, err := c.Collect(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	system := map[string]bool{}
	for _, rec := range records {
		system[rec.Namespace] = rec.IsSystem
	}
	if !system["kube-system"] || !system["pks-system"] {
		t.Errorf("system namespaces not flagged: %v", system)
	}
	if system["team-apps"] {
		t.Error("team-apps flagged as system")
	}
}

func TestCollectLastActivityFromMetrics(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	objects := []runtime.Object{
		namespaceObj("batch-jobs", nil, time.Time{}),
		podObj("batch-jobs", "worker-1", corev1.PodRunning, nil),
	}
	metricsObjects := []runtime.Object{
		&metricsv1beta1.PodMetrics{
			ObjectMeta: metav1.ObjectMeta{Name: "worker-1", Namespace: "batch-jobs"},
		},
	}

	c := newTestCollector(t, objects, metricsObjects)
	records, err := c.Collect(context.Background(), now)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].LastActivity != now.Format(time.RFC3339) {
		t.Errorf("LastActivity = %q, want collection time %q",
			records[0].LastActivity, now.Format(time.RFC3339))
	}
}

func TestCollectLastActivityUnknown(t *testing.T) {
	objects := []runtime.Object{namespaceObj("idle-ns", nil, time.Time{})}

	c := newTestCollector(t, objects, nil)
	records, err := c.Collect(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if records[0].LastActivity != "" {
		t.Errorf("LastActivity = %q, want empty for unknown", records[0].LastActivity)
	}
}

func TestWriteInventoryRoundTripsThroughValidator(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	started := now.Add(-time.Hour)
	objects := []runtime.Object{
		namespaceObj("billing-5678", map[string]string{"app-id": "billing-api"}, now.Add(-time.Hour)),
		podObj("billing-5678", "api-1", corev1.PodRunning, &started),
		namespaceObj("kube-system", nil, time.Time{}),
	}

	c := newTestCollector(t, objects, nil)
	records, err := c.Collect(context.Background(), now)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	dir := t.TempDir()
	path, err := c.WriteInventory(dir, records, now)
	if err != nil {
		t.Fatalf("WriteInventory: %v", err)
	}
	want := filepath.Join(dir, "dc02-k8s-n-01_dc02-cluster-n-01_20240315_103000.json")
	if path != want {
		t.Errorf("path = %q, want %q", path, want)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("inventory file missing: %v", err)
	}

	res := validator.New(zap.NewNop()).ValidateFile(path)
	if res.Skipped {
		t.Fatal("validator skipped collector output")
	}
	if res.Dropped != 0 {
		t.Fatalf("validator dropped %d collector records", res.Dropped)
	}
	if len(res.Records) != 2 {
		t.Fatalf("got %d validated records, want 2", len(res.Records))
	}

	for _, rec := range res.Records {
		if rec.Namespace != "billing-5678" {
			continue
		}
		if rec.AppID != "billing-api" {
			t.Errorf("AppID = %q after validation", rec.AppID)
		}
		if rec.LastActivity == nil || !rec.LastActivity.Equal(started) {
			t.Errorf("LastActivity = %v, want %v", rec.LastActivity, started)
		}
	}
}
