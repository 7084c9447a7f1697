// Package validator turns raw collected inventory files into schema-valid
// namespace records. Invalid records are dropped and counted, never
// repaired into the output; unreadable files are skipped so one bad cluster
// export cannot lose the rest of the batch.
package validator

import (
	"bytes"
	"encoding/json"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// FileResult is the outcome of validating one input file.
type FileResult struct {
	Source  string
	Skipped bool
	Records []models.NamespaceRecord
	Dropped int
}

// Validator normalizes raw collector output into NamespaceRecords.
type Validator struct {
	logger *zap.Logger
}

// New returns a Validator.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger}
}

// rawRecord decodes one candidate permissively. Fields that tolerate type
// drift across collector versions stay raw and are coerced afterwards.
type rawRecord struct {
	Namespace         string            `json:"namespace"`
	Cluster           string            `json:"cluster"`
	ClusterFull       string            `json:"cluster_full"`
	Foundation        string            `json:"foundation"`
	Datacenter        string            `json:"datacenter"`
	Environment       string            `json:"environment"`
	Labels            map[string]string `json:"labels"`
	Annotations       map[string]string `json:"annotations"`
	CreationTimestamp json.RawMessage   `json:"creation_timestamp"`
	PodCount          json.RawMessage   `json:"pod_count"`
	RunningPods       json.RawMessage   `json:"running_pods"`
	DeploymentCount   json.RawMessage   `json:"deployment_count"`
	StatefulSetCount  json.RawMessage   `json:"statefulset_count"`
	ServiceCount      json.RawMessage   `json:"service_count"`
	LastActivity      json.RawMessage   `json:"last_activity"`
	AppID             string            `json:"app_id"`
	IsSystem          bool              `json:"is_system"`
}

// ValidateFile reads and validates one raw inventory file. Unreadable or
// structurally corrupt files come back Skipped; they are never fatal.
func (v *Validator) ValidateFile(path string) FileResult {
	data, err := os.ReadFile(path)
	if err != nil {
		v.logger.Warn("skipping unreadable input file",
			zap.String("file", path),
			zap.Error(err))
		return FileResult{Source: path, Skipped: true}
	}
	return v.ValidateBytes(data, path)
}

// ValidateBytes validates one file's content. The source name is carried
// into logs and drop accounting.
func (v *Validator) ValidateBytes(data []byte, source string) FileResult {
	res := FileResult{Source: source}

	candidates, err := splitCandidates(data)
	if err != nil {
		v.logger.Warn("skipping corrupt input file",
			zap.String("file", source),
			zap.Error(err))
		res.Skipped = true
		return res
	}

	for i, candidate := range candidates {
		rec, ok := v.validateCandidate(candidate, source, i)
		if !ok {
			res.Dropped++
			continue
		}
		res.Records = append(res.Records, rec)
	}

	if res.Dropped > 0 {
		v.logger.Warn("dropped invalid records",
			zap.String("file", source),
			zap.Int("dropped", res.Dropped),
			zap.Int("valid", len(res.Records)))
	}
	return res
}

// splitCandidates accepts either a JSON array of records or a single record
// object; collectors have produced both shapes.
func splitCandidates(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one json.RawMessage
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return nil, err
		}
		return []json.RawMessage{one}, nil
	}
	var many []json.RawMessage
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return nil, err
	}
	return many, nil
}

func (v *Validator) validateCandidate(candidate json.RawMessage, source string, index int) (models.NamespaceRecord, bool) {
	var raw rawRecord
	if err := json.Unmarshal(candidate, &raw); err != nil {
		v.logger.Debug("dropping malformed record",
			zap.String("file", source),
			zap.Int("index", index),
			zap.Error(err))
		return models.NamespaceRecord{}, false
	}

	namespace := strings.TrimSpace(raw.Namespace)
	cluster := strings.TrimSpace(raw.ClusterFull)
	if cluster == "" {
		cluster = strings.TrimSpace(raw.Cluster)
	}
	foundation := strings.TrimSpace(raw.Foundation)

	if namespace == "" || cluster == "" || foundation == "" {
		v.logger.Debug("dropping record missing identity fields",
			zap.String("file", source),
			zap.Int("index", index),
			zap.String("namespace", namespace),
			zap.String("cluster", cluster),
			zap.String("foundation", foundation))
		return models.NamespaceRecord{}, false
	}

	info := models.ParseFoundation(foundation)

	env := models.NormalizeEnvironment(raw.Environment)
	if env == models.EnvUnknown {
		env = info.Environment
	}
	datacenter := strings.TrimSpace(raw.Datacenter)
	if datacenter == "" {
		datacenter = info.Datacenter
	}

	appID := DeriveAppID(raw.AppID, raw.Labels, raw.Annotations, namespace)

	rec := models.NamespaceRecord{
		Namespace:         namespace,
		Cluster:           cluster,
		Foundation:        foundation,
		Datacenter:        datacenter,
		Environment:       env,
		Labels:            raw.Labels,
		Annotations:       raw.Annotations,
		CreationTimestamp: coerceTime(raw.CreationTimestamp),
		PodCount:          coerceCount(raw.PodCount),
		RunningPods:       coerceCount(raw.RunningPods),
		DeploymentCount:   coerceCount(raw.DeploymentCount),
		StatefulSetCount:  coerceCount(raw.StatefulSetCount),
		ServiceCount:      coerceCount(raw.ServiceCount),
		LastActivity:      coerceTime(raw.LastActivity),
		AppID:             appID,
		IsSystem:          raw.IsSystem,
		DataQuality:       models.DataQualityComplete,
	}

	if rec.AppID == "unknown" || len(rec.Labels) == 0 {
		rec.DataQuality = models.DataQualityIncomplete
	}
	return rec, true
}

// coerceCount accepts a JSON number or a numeric string. Anything negative
// or unparseable counts as zero rather than poisoning the record.
func coerceCount(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		if n < 0 {
			return 0
		}
		return n
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		if f < 0 {
			return 0
		}
		return int(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n >= 0 {
			return n
		}
	}
	return 0
}

// Collector exports have carried both RFC3339 timestamps and naive ISO
// timestamps without a zone; naive times are taken as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// coerceTime parses a timestamp field. The literal "unknown", an empty
// value, or an unparseable one all map to nil.
func coerceTime(raw json.RawMessage) *time.Time {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "unknown") {
		return nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
