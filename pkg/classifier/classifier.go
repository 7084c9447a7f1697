// Package classifier decides whether a namespace is platform infrastructure
// and whether it still shows signs of life. Classification depends only on
// the namespace name, the rule table and the activity window, never on
// external state.
package classifier

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

// Classifier applies a rule table and an inactivity window to records.
type Classifier struct {
	table  RuleTable
	window time.Duration
	logger *zap.Logger
}

// New returns a Classifier over the given rule table. The window is how long
// a namespace may go without observed activity and still count as active.
func New(table RuleTable, window time.Duration, logger *zap.Logger) *Classifier {
	return &Classifier{table: table, window: window, logger: logger}
}

// Table returns the rule table in use.
func (c *Classifier) Table() RuleTable {
	return c.table
}

// IsSystem reports whether the name matches a system rule. First matching
// rule wins; no rule means application namespace.
func (c *Classifier) IsSystem(name string) bool {
	for _, rule := range c.table.Rules {
		switch rule.Match {
		case MatchExact:
			if name == rule.Value {
				return true
			}
		case MatchPrefix:
			if strings.HasPrefix(name, rule.Value) {
				return true
			}
		}
	}
	return false
}

// Classify stamps the record with its system and activity state as of now.
// A record with no known last activity is inactive and marked incomplete.
func (c *Classifier) Classify(rec *models.NamespaceRecord, now time.Time) {
	rec.IsSystem = c.IsSystem(rec.Namespace)

	if rec.LastActivity == nil {
		rec.IsActive = false
		rec.DataQuality = models.DataQualityIncomplete
		return
	}
	rec.IsActive = now.Sub(*rec.LastActivity) <= c.window
}
