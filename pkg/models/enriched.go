package models

// ScoreFactor is one scoring rule that fired, with its contribution. Factors
// are recorded in rule order so a score can be audited back to its inputs.
type ScoreFactor struct {
	Rule   string `json:"rule"`
	Delta  int    `json:"delta"`
	Detail string `json:"detail,omitempty"`
}

// ReadinessScore is a migration-readiness assessment for one namespace.
// Higher means easier to migrate.
type ReadinessScore struct {
	Value   int           `json:"value"`
	Factors []ScoreFactor `json:"factors"`
}

// ScoreBucketLabels are the reporting bands, best first.
var ScoreBucketLabels = [4]string{"80-100", "60-79", "40-59", "0-39"}

// ScoreBucket maps a score to its reporting band index.
func ScoreBucket(value int) int {
	switch {
	case value >= 80:
		return 0
	case value >= 60:
		return 1
	case value >= 40:
		return 2
	default:
		return 3
	}
}

// EnrichedRecord is a namespace record after cross-referencing against the
// configuration repository and, for application namespaces, scoring.
type EnrichedRecord struct {
	NamespaceRecord

	HasConfig       bool   `json:"has_config"`
	ConfiguredAppID string `json:"configured_app_id,omitempty"`

	// AppIDMatches is nil when the namespace has no configuration entry, so
	// agreement is unknown rather than false.
	AppIDMatches *bool                `json:"app_id_matches,omitempty"`
	Config       *ConfiguredNamespace `json:"config,omitempty"`

	// Score is set for application namespaces only; system namespaces are
	// not migration candidates.
	Score *ReadinessScore `json:"score,omitempty"`
}
