package models

import "strings"

// Environment classifies where a namespace runs
type Environment string

const (
	EnvLab     Environment = "lab"
	EnvNonProd Environment = "nonprod"
	EnvProd    Environment = "prod"
	EnvUnknown Environment = "unknown"
)

// NormalizeEnvironment folds the spellings seen in collected data and config
// repos into the canonical set.
func NormalizeEnvironment(s string) Environment {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "lab", "laboratory", "sandbox":
		return EnvLab
	case "nonprod", "non-prod", "non-production", "nonproduction", "dev", "development", "test", "staging", "qa":
		return EnvNonProd
	case "prod", "production":
		return EnvProd
	default:
		return EnvUnknown
	}
}

// FoundationInfo is the metadata encoded in a TKGI foundation name, for
// example dc01-k8s-n-01.
type FoundationInfo struct {
	Foundation  string      `json:"foundation"`
	Datacenter  string      `json:"datacenter"`
	Type        string      `json:"type"`
	Environment Environment `json:"environment"`
	Instance    string      `json:"instance"`
}

// ParseFoundation decodes a foundation name of the form
// <datacenter>-<type>-<env code>-<instance>. The dc01 datacenter is the lab
// datacenter regardless of its env code; otherwise p means prod, n nonprod
// and l lab. Names that do not follow the convention come back with every
// field set to "unknown" except the original name.
func ParseFoundation(name string) FoundationInfo {
	info := FoundationInfo{
		Foundation:  name,
		Datacenter:  "unknown",
		Type:        "unknown",
		Environment: EnvUnknown,
		Instance:    "unknown",
	}
	parts := strings.Split(name, "-")
	if len(parts) < 4 {
		return info
	}
	info.Datacenter = parts[0]
	info.Type = parts[1]
	info.Instance = parts[3]

	switch {
	case parts[0] == "dc01":
		info.Environment = EnvLab
	case parts[2] == "p":
		info.Environment = EnvProd
	case parts[2] == "n":
		info.Environment = EnvNonProd
	case parts[2] == "l":
		info.Environment = EnvLab
	}
	return info
}
