package classifier

// MatchKind is how a rule compares against a namespace name.
type MatchKind string

const (
	MatchExact  MatchKind = "exact"
	MatchPrefix MatchKind = "prefix"
)

// Rule marks namespaces matching it as platform infrastructure. Matching is
// case-sensitive; Kubernetes namespace names are lowercase by definition.
type Rule struct {
	Match MatchKind `json:"match"`
	Value string    `json:"value"`
	Note  string    `json:"note,omitempty"`
}

// RuleTable is an ordered, versioned set of system-namespace rules. The
// version is stamped into every snapshot so classification changes across
// runs can be told apart from real estate changes.
type RuleTable struct {
	Version string `json:"version"`
	Rules   []Rule `json:"rules"`
}

// DefaultRuleTable returns the system-namespace rules for TKGI foundations.
func DefaultRuleTable() RuleTable {
	return RuleTable{
		Version: "v1",
		Rules: []Rule{
			{Match: MatchExact, Value: "default"},
			{Match: MatchExact, Value: "cert-manager"},
			{Match: MatchExact, Value: "ingress-nginx"},
			{Match: MatchExact, Value: "velero"},
			{Match: MatchPrefix, Value: "kube-"},
			{Match: MatchPrefix, Value: "pks-"},
			{Match: MatchPrefix, Value: "nsx-"},
			{Match: MatchPrefix, Value: "istio-"},
			// Tenant namespaces that happen to share this prefix classify
			// as system. Known approximation; an allowlist would need the
			// tenant inventory this pipeline is trying to build.
			{Match: MatchPrefix, Value: "vmware-"},
		},
	}
}
