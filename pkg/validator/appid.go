package validator

import (
	"regexp"
	"strings"
)

// Label and annotation keys checked for an application identifier, in order.
var appIDKeys = []string{"app-id", "app_id", "app"}

// Namespace name patterns that encode an application identifier, tried in
// order. Both capture the identifier in their first two groups.
var appIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^([a-zA-Z]+)-(\d{4,6})`),
	regexp.MustCompile(`^([a-zA-Z]+)-([a-zA-Z]+)-(\d{4,6})`),
}

// DeriveAppID resolves the application identifier for a namespace: the
// explicit field if the record carries one, then labels, then annotations,
// then namespace naming conventions. "unknown" when nothing matches.
func DeriveAppID(explicit string, labels, annotations map[string]string, namespace string) string {
	if id := strings.TrimSpace(explicit); id != "" && id != "unknown" {
		return id
	}
	for _, key := range appIDKeys {
		if id := strings.TrimSpace(labels[key]); id != "" {
			return id
		}
	}
	for _, key := range appIDKeys {
		if id := strings.TrimSpace(annotations[key]); id != "" {
			return id
		}
	}
	return appIDFromName(namespace)
}

func appIDFromName(name string) string {
	for _, re := range appIDPatterns {
		if m := re.FindStringSubmatch(name); m != nil {
			return m[1] + "-" + m[2]
		}
	}
	if parts := strings.Split(name, "-"); len(parts) > 1 {
		return parts[0]
	}
	return "unknown"
}
