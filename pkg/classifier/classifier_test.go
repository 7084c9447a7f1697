package classifier

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/opscart/tkgi-app-tracker/pkg/models"
)

func TestIsSystem(t *testing.T) {
	c := New(DefaultRuleTable(), 30*24*time.Hour, zap.NewNop())

	tests := []struct {
		namespace string
		want      bool
	}{
		{"default", true},
		{"cert-manager", true},
		{"ingress-nginx", true},
		{"velero", true},
		{"kube-system", true},
		{"kube-public", true},
		{"pks-system", true},
		{"nsx-system", true},
		{"istio-system", true},
		{"vmware-system", true},
		// Prefix rules match tenant namespaces too; accepted approximation.
		{"vmware-tanzu-demo", true},
		{"billing-api-prod", false},
		{"defaults", false},
		{"my-default", false},
		{"certmanager", false},
		// Matching is case-sensitive.
		{"Default", false},
		{"KUBE-system", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := c.IsSystem(tt.namespace); got != tt.want {
			t.Errorf("IsSystem(%q) = %v, want %v", tt.namespace, got, tt.want)
		}
	}
}

func TestIsSystemDeterministic(t *testing.T) {
	c := New(DefaultRuleTable(), 30*24*time.Hour, zap.NewNop())

	for i := 0; i < 100; i++ {
		if !c.IsSystem("kube-system") {
			t.Fatal("IsSystem flipped for the same input")
		}
		if c.IsSystem("billing-api") {
			t.Fatal("IsSystem flipped for the same input")
		}
	}
}

func TestClassifyActivity(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	window := 30 * 24 * time.Hour
	c := New(DefaultRuleTable(), window, zap.NewNop())

	ts := func(daysAgo int) *time.Time {
		t := now.Add(-time.Duration(daysAgo) * 24 * time.Hour)
		return &t
	}

	tests := []struct {
		name         string
		lastActivity *time.Time
		wantActive   bool
		wantQuality  models.DataQuality
	}{
		{"recent activity", ts(5), true, models.DataQualityComplete},
		{"exactly at window", ts(30), true, models.DataQualityComplete},
		{"just past window", func() *time.Time {
			t := now.Add(-window - time.Second)
			return &t
		}(), false, models.DataQualityComplete},
		{"long inactive", ts(90), false, models.DataQualityComplete},
		{"future timestamp counts as active", ts(-1), true, models.DataQualityComplete},
		{"unknown activity", nil, false, models.DataQualityIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := models.NamespaceRecord{
				Namespace:    "orders-4411",
				Cluster:      "c1",
				Foundation:   "dc01-k8s-n-01",
				LastActivity: tt.lastActivity,
				DataQuality:  models.DataQualityComplete,
			}
			c.Classify(&rec, now)

			if rec.IsActive != tt.wantActive {
				t.Errorf("Expected active=%v, got %v", tt.wantActive, rec.IsActive)
			}
			if rec.DataQuality != tt.wantQuality {
				t.Errorf("Expected quality %s, got %s", tt.wantQuality, rec.DataQuality)
			}
		})
	}
}

func TestClassifyConfigurableWindow(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	tenDaysAgo := now.Add(-10 * 24 * time.Hour)

	rec := models.NamespaceRecord{
		Namespace:    "orders-4411",
		LastActivity: &tenDaysAgo,
		DataQuality:  models.DataQualityComplete,
	}

	wide := New(DefaultRuleTable(), 30*24*time.Hour, zap.NewNop())
	wide.Classify(&rec, now)
	if !rec.IsActive {
		t.Error("Expected active under 30d window")
	}

	narrow := New(DefaultRuleTable(), 7*24*time.Hour, zap.NewNop())
	narrow.Classify(&rec, now)
	if rec.IsActive {
		t.Error("Expected inactive under 7d window")
	}
}

func TestClassifyOverridesCollectorFlags(t *testing.T) {
	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	c := New(DefaultRuleTable(), 30*24*time.Hour, zap.NewNop())

	// The collector said system and active; the record says otherwise.
	rec := models.NamespaceRecord{
		Namespace:   "billing-api-prod",
		IsSystem:    true,
		IsActive:    true,
		DataQuality: models.DataQualityComplete,
	}
	c.Classify(&rec, now)

	if rec.IsSystem {
		t.Error("Expected rule table to override collector is_system flag")
	}
	if rec.IsActive {
		t.Error("Expected unknown activity to classify inactive")
	}
}

func TestCustomRuleTable(t *testing.T) {
	table := RuleTable{
		Version: "v2-test",
		Rules: []Rule{
			{Match: MatchExact, Value: "observability"},
			{Match: MatchPrefix, Value: "infra-"},
		},
	}
	c := New(table, 30*24*time.Hour, zap.NewNop())

	if c.Table().Version != "v2-test" {
		t.Errorf("Expected table version v2-test, got %s", c.Table().Version)
	}
	if !c.IsSystem("observability") || !c.IsSystem("infra-dns") {
		t.Error("Custom rules did not match")
	}
	if c.IsSystem("kube-system") {
		t.Error("Default rules leaked into custom table")
	}
}
