package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func testConfig() *Config {
	return &Config{
		DataDir:          "./data",
		OutputDir:        "./output",
		ReportsDir:       "./reports",
		LogLevel:         "info",
		InactivityWindow: "30d",
	}
}

func TestLoadDefaults(t *testing.T) {
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "./data" {
		t.Errorf("Expected default data dir ./data, got %s", cfg.DataDir)
	}
	if cfg.OutputDir != "./output" {
		t.Errorf("Expected default output dir ./output, got %s", cfg.OutputDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.StorageEnabled {
		t.Error("Expected storage disabled by default")
	}
	if cfg.Window != 30*24*time.Hour {
		t.Errorf("Expected default window 720h, got %v", cfg.Window)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	viper.Reset()
	t.Setenv("TRACKER_DATA_DIR", "/srv/collect")
	t.Setenv("TRACKER_INACTIVITY_WINDOW", "14d")
	t.Setenv("TRACKER_LOG_LEVEL", "debug")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.DataDir != "/srv/collect" {
		t.Errorf("Expected data dir from env, got %s", cfg.DataDir)
	}
	if cfg.Window != 14*24*time.Hour {
		t.Errorf("Expected window 336h from env, got %v", cfg.Window)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected log level debug from env, got %s", cfg.LogLevel)
	}
}

func TestLoadExplicitFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "tracker.yaml")
	content := "data_dir: /var/lib/tracker/data\noutput_dir: /var/lib/tracker/output\ninactivity_window: 60d\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DataDir != "/var/lib/tracker/data" {
		t.Errorf("Expected data dir from file, got %s", cfg.DataDir)
	}
	if cfg.Window != 60*24*time.Hour {
		t.Errorf("Expected window 1440h, got %v", cfg.Window)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	viper.Reset()
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		setupConfig   func(*Config)
		expectError   bool
		errorContains string
	}{
		{
			name:        "valid defaults",
			setupConfig: func(c *Config) {},
			expectError: false,
		},
		{
			name: "missing data dir",
			setupConfig: func(c *Config) {
				c.DataDir = ""
			},
			expectError:   true,
			errorContains: "data_dir",
		},
		{
			name: "missing output dir",
			setupConfig: func(c *Config) {
				c.OutputDir = ""
			},
			expectError:   true,
			errorContains: "output_dir",
		},
		{
			name: "unparseable window",
			setupConfig: func(c *Config) {
				c.InactivityWindow = "soon"
			},
			expectError:   true,
			errorContains: "inactivity_window",
		},
		{
			name: "zero window",
			setupConfig: func(c *Config) {
				c.InactivityWindow = "0d"
			},
			expectError:   true,
			errorContains: "positive",
		},
		{
			name: "storage without database url",
			setupConfig: func(c *Config) {
				c.StorageEnabled = true
			},
			expectError:   true,
			errorContains: "database_url",
		},
		{
			name: "hours window",
			setupConfig: func(c *Config) {
				c.InactivityWindow = "720h"
			},
			expectError: false,
		},
		{
			name: "week window",
			setupConfig: func(c *Config) {
				c.InactivityWindow = "1w"
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.setupConfig(cfg)

			err := cfg.Validate()

			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error but got: %v", err)
			}
			if tt.expectError && err != nil && !strings.Contains(err.Error(), tt.errorContains) {
				t.Errorf("Expected error containing %q, got %q", tt.errorContains, err.Error())
			}
		})
	}
}

func TestValidateResolvesWindow(t *testing.T) {
	cfg := testConfig()
	cfg.InactivityWindow = "7d"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if cfg.Window != 7*24*time.Hour {
		t.Errorf("Expected window 168h, got %v", cfg.Window)
	}
}
