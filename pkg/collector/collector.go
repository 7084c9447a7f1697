// Package collector gathers the raw namespace inventory for one TKGI
// cluster. It produces the input files the aggregation pipeline consumes;
// all coercion, app ID resolution and classification stay downstream in the
// validator and classifier.
package collector

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
	metricsv "k8s.io/metrics/pkg/client/clientset/versioned"

	"github.com/opscart/tkgi-app-tracker/pkg/classifier"
	"github.com/opscart/tkgi-app-tracker/pkg/models"
	"github.com/opscart/tkgi-app-tracker/pkg/snapshot"
	"github.com/opscart/tkgi-app-tracker/pkg/validator"
)

const fileTimeLayout = "20060102_150405"

// Record is the raw inventory written for one namespace. Timestamps are
// RFC3339 strings in UTC; unknown values are omitted so the validator maps
// them to nil instead of a zero time.
type Record struct {
	Namespace         string            `json:"namespace"`
	Cluster           string            `json:"cluster"`
	Foundation        string            `json:"foundation"`
	Datacenter        string            `json:"datacenter"`
	Environment       string            `json:"environment"`
	Labels            map[string]string `json:"labels,omitempty"`
	Annotations       map[string]string `json:"annotations,omitempty"`
	CreationTimestamp string            `json:"creation_timestamp,omitempty"`
	PodCount          int               `json:"pod_count"`
	RunningPods       int               `json:"running_pods"`
	DeploymentCount   int               `json:"deployment_count"`
	StatefulSetCount  int               `json:"statefulset_count"`
	ServiceCount      int               `json:"service_count"`
	LastActivity      string            `json:"last_activity,omitempty"`
	AppID             string            `json:"app_id"`
	IsSystem          bool              `json:"is_system"`
}

// Collector walks every namespace on one cluster and inventories its
// workloads.
type Collector struct {
	clientset     kubernetes.Interface
	metricsClient metricsv.Interface
	rules         *classifier.Classifier
	foundation    string
	cluster       string
	logger        *zap.Logger
}

// New connects to the cluster the kubeconfig points at. An empty path falls
// back to ~/.kube/config.
func New(kubeconfig, foundation, cluster string, logger *zap.Logger) (*Collector, error) {
	if kubeconfig == "" {
		if home := homedir.HomeDir(); home != "" {
			kubeconfig = filepath.Join(home, ".kube", "config")
		}
	}

	config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to build config: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	metricsClient, err := metricsv.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics client: %w", err)
	}

	return NewWithClients(clientset, metricsClient, foundation, cluster, logger), nil
}

// NewWithClients builds a Collector over already-constructed clients.
func NewWithClients(clientset kubernetes.Interface, metricsClient metricsv.Interface, foundation, cluster string, logger *zap.Logger) *Collector {
	return &Collector{
		clientset:     clientset,
		metricsClient: metricsClient,
		rules:         classifier.New(classifier.DefaultRuleTable(), 0, logger),
		foundation:    foundation,
		cluster:       cluster,
		logger:        logger,
	}
}

// Collect inventories every namespace on the cluster. A namespace that fails
// to list is logged and skipped; one broken namespace must not lose the
// cluster.
func (c *Collector) Collect(ctx context.Context, now time.Time) ([]Record, error) {
	version, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cluster: %w", err)
	}
	c.logger.Info("connected to cluster",
		zap.String("cluster", c.cluster),
		zap.String("foundation", c.foundation),
		zap.String("version", version.GitVersion))

	nsList, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	records := make([]Record, 0, len(nsList.Items))
	for _, ns := range nsList.Items {
		rec, err := c.collectNamespace(ctx, ns, now)
		if err != nil {
			c.logger.Warn("skipping namespace",
				zap.String("namespace", ns.Name),
				zap.Error(err))
			continue
		}
		records = append(records, rec)
	}

	c.logger.Info("collected namespace inventory",
		zap.String("cluster", c.cluster),
		zap.Int("namespaces", len(records)))
	return records, nil
}

func (c *Collector) collectNamespace(ctx context.Context, ns corev1.Namespace, now time.Time) (Record, error) {
	pods, err := c.clientset.CoreV1().Pods(ns.Name).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("failed to list pods: %w", err)
	}

	deployments, err := c.clientset.AppsV1().Deployments(ns.Name).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("failed to list deployments: %w", err)
	}

	statefulSets, err := c.clientset.AppsV1().StatefulSets(ns.Name).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("failed to list statefulsets: %w", err)
	}

	services, err := c.clientset.CoreV1().Services(ns.Name).List(ctx, metav1.ListOptions{})
	if err != nil {
		return Record{}, fmt.Errorf("failed to list services: %w", err)
	}

	running := 0
	for _, pod := range pods.Items {
		if pod.Status.Phase == corev1.PodRunning {
			running++
		}
	}

	info := models.ParseFoundation(c.foundation)
	rec := Record{
		Namespace:        ns.Name,
		Cluster:          c.cluster,
		Foundation:       c.foundation,
		Datacenter:       info.Datacenter,
		Environment:      string(info.Environment),
		Labels:           ns.Labels,
		Annotations:      ns.Annotations,
		PodCount:         len(pods.Items),
		RunningPods:      running,
		DeploymentCount:  len(deployments.Items),
		StatefulSetCount: len(statefulSets.Items),
		ServiceCount:     len(services.Items),
		LastActivity:     c.lastActivity(ctx, ns.Name, pods.Items, now),
		AppID:            validator.DeriveAppID("", ns.Labels, ns.Annotations, ns.Name),
		IsSystem:         c.rules.IsSystem(ns.Name),
	}
	if !ns.CreationTimestamp.IsZero() {
		rec.CreationTimestamp = ns.CreationTimestamp.UTC().Format(time.RFC3339)
	}
	return rec, nil
}

// lastActivity is the newest pod start time in the namespace. When no pod
// carries a start time but the metrics API still reports live pod usage, the
// namespace is active right now and the collection time stands in. Empty
// means unknown.
func (c *Collector) lastActivity(ctx context.Context, namespace string, pods []corev1.Pod, now time.Time) string {
	var newest time.Time
	for _, pod := range pods {
		if pod.Status.StartTime == nil {
			continue
		}
		if start := pod.Status.StartTime.Time; start.After(newest) {
			newest = start
		}
	}
	if !newest.IsZero() {
		return newest.UTC().Format(time.RFC3339)
	}

	podMetrics, err := c.metricsClient.MetricsV1beta1().PodMetricses(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		// Metrics-server is optional on lab foundations.
		c.logger.Debug("pod metrics unavailable",
			zap.String("namespace", namespace),
			zap.Error(err))
		return ""
	}
	if len(podMetrics.Items) > 0 {
		return now.UTC().Format(time.RFC3339)
	}
	return ""
}

// WriteInventory writes the collected records as one inventory file named
// <foundation>_<cluster>_<timestamp>.json and returns its path.
func (c *Collector) WriteInventory(dir string, records []Record, now time.Time) (string, error) {
	name := fmt.Sprintf("%s_%s_%s.json", c.foundation, c.cluster, now.UTC().Format(fileTimeLayout))
	path := filepath.Join(dir, name)
	if err := snapshot.WriteJSONAtomic(path, records); err != nil {
		return "", fmt.Errorf("failed to write inventory: %w", err)
	}
	c.logger.Info("wrote cluster inventory",
		zap.String("file", path),
		zap.Int("records", len(records)))
	return path, nil
}
