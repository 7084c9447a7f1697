package models

import (
	"time"

	corev1 "k8s.io/api/core/v1"
)

// ResourceSettings carries the quota requests and limits a namespace was
// provisioned with in the configuration repository.
type ResourceSettings struct {
	Requests corev1.ResourceList `json:"requests,omitempty"`
	Limits   corev1.ResourceList `json:"limits,omitempty"`
}

// ConfiguredNamespace is one namespace definition from the configuration
// repository, the provisioning side of the estate.
type ConfiguredNamespace struct {
	Namespace   string           `json:"namespace"`
	Cluster     string           `json:"cluster"`
	Foundation  string           `json:"foundation"`
	AppID       string           `json:"app_id"`
	AppGUID     string           `json:"app_guid,omitempty"`
	Environment Environment      `json:"environment,omitempty"`
	Resources   ResourceSettings `json:"resources,omitempty"`
	Usergroups  []string         `json:"usergroups,omitempty"`

	// Source is the repository path the definition was loaded from.
	Source string `json:"source,omitempty"`
}

// Key returns the identity of the configured namespace.
func (c *ConfiguredNamespace) Key() RecordKey {
	return RecordKey{Namespace: c.Namespace, Cluster: c.Cluster, Foundation: c.Foundation}
}

// DriftEntry is a namespace present on one side of the cross-reference only.
type DriftEntry struct {
	RecordKey
	AppID  string `json:"app_id,omitempty"`
	Source string `json:"source,omitempty"`
}

// AppIDDriftEntry is a namespace whose observed application identifier
// disagrees with the configured one.
type AppIDDriftEntry struct {
	RecordKey
	ActualAppID     string `json:"actual_app_id"`
	ConfiguredAppID string `json:"configured_app_id"`
	Source          string `json:"source,omitempty"`
}

// DriftReport is the outcome of cross-referencing observed namespaces
// against the configuration repository.
type DriftReport struct {
	GeneratedAt    time.Time         `json:"generated_at"`
	Matched        int               `json:"matched"`
	OnlyInActual   []DriftEntry      `json:"only_in_actual"`
	OnlyInConfig   []DriftEntry      `json:"only_in_config"`
	AppIDDrift     []AppIDDriftEntry `json:"app_id_drift"`
	ActualTotal    int               `json:"actual_total"`
	ConfigTotal    int               `json:"config_total"`
	EnrichmentSkip bool              `json:"enrichment_skipped,omitempty"`
}
