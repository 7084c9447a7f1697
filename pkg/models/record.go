package models

import (
	"fmt"
	"time"
)

// DataQuality marks whether a record carried every field the scorer needs
type DataQuality string

const (
	DataQualityComplete   DataQuality = "complete"
	DataQualityIncomplete DataQuality = "incomplete"
)

// NamespaceRecord is one namespace observed on one cluster, as reported by a
// collection run. This is the unit the whole pipeline operates on.
type NamespaceRecord struct {
	Namespace         string            `json:"namespace"`
	Cluster           string            `json:"cluster"`
	Foundation        string            `json:"foundation"`
	Datacenter        string            `json:"datacenter,omitempty"`
	Environment       Environment       `json:"environment"`
	Labels            map[string]string `json:"labels,omitempty"`
	Annotations       map[string]string `json:"annotations,omitempty"`
	CreationTimestamp *time.Time        `json:"creation_timestamp,omitempty"`
	PodCount          int               `json:"pod_count"`
	RunningPods       int               `json:"running_pods"`
	DeploymentCount   int               `json:"deployment_count"`
	StatefulSetCount  int               `json:"statefulset_count"`
	ServiceCount      int               `json:"service_count"`

	// LastActivity is nil when the collector could not determine it; the
	// classifier then treats the namespace as inactive and flags the record
	// incomplete.
	LastActivity *time.Time  `json:"last_activity,omitempty"`
	AppID        string      `json:"app_id"`
	IsSystem     bool        `json:"is_system"`
	IsActive     bool        `json:"is_active"`
	DataQuality  DataQuality `json:"data_quality"`
}

// RecordKey identifies a namespace record across the whole estate. Two
// records with the same key describe the same namespace.
type RecordKey struct {
	Namespace  string `json:"namespace"`
	Cluster    string `json:"cluster"`
	Foundation string `json:"foundation"`
}

// Key returns the identity of the record.
func (r *NamespaceRecord) Key() RecordKey {
	return RecordKey{Namespace: r.Namespace, Cluster: r.Cluster, Foundation: r.Foundation}
}

func (k RecordKey) String() string {
	return fmt.Sprintf("%s/%s/%s", k.Foundation, k.Cluster, k.Namespace)
}

// Less orders keys by foundation, then cluster, then namespace.
func (k RecordKey) Less(other RecordKey) bool {
	if k.Foundation != other.Foundation {
		return k.Foundation < other.Foundation
	}
	if k.Cluster != other.Cluster {
		return k.Cluster < other.Cluster
	}
	return k.Namespace < other.Namespace
}

// DaysSince returns whole days elapsed from t to now, or -1 when t is nil.
func DaysSince(t *time.Time, now time.Time) int {
	if t == nil {
		return -1
	}
	d := now.Sub(*t)
	if d < 0 {
		return 0
	}
	return int(d.Hours() / 24)
}
