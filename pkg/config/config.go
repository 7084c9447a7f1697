// Package config resolves runtime configuration once at startup. The
// resolved Config is passed explicitly to every component; nothing else in
// the process reads configuration files or the environment.
package config

import (
	"fmt"
	"time"

	"github.com/prometheus/common/model"
	"github.com/spf13/viper"
)

// Config holds every tunable of the tracker. Values come from defaults, an
// optional config file, and TRACKER_* environment variables, in that order.
type Config struct {
	// DataDir holds the raw per-cluster inventory files to aggregate.
	DataDir string `mapstructure:"data_dir"`

	// ConfigRepoDir is the root of the namespace configuration repository
	// checkout. Empty means no configuration source is available and
	// enrichment is skipped.
	ConfigRepoDir string `mapstructure:"config_repo"`

	// OutputDir receives snapshots, drift reports, trend summaries and run
	// metadata.
	OutputDir string `mapstructure:"output_dir"`

	// ReportsDir receives the CSV and JSON reports.
	ReportsDir string `mapstructure:"reports_dir"`

	LogLevel string `mapstructure:"log_level"`

	// InactivityWindow is how long a namespace may go without observed
	// activity and still count as active. Accepts prometheus duration
	// syntax ("30d", "720h").
	InactivityWindow string `mapstructure:"inactivity_window"`

	StorageEnabled bool   `mapstructure:"storage_enabled"`
	DatabaseURL    string `mapstructure:"database_url"`

	// PushgatewayURL enables pushing run metrics when set.
	PushgatewayURL string `mapstructure:"pushgateway_url"`

	// Window is InactivityWindow parsed; Validate resolves it.
	Window time.Duration `mapstructure:"-"`
}

// Load resolves the configuration from defaults, a config file, and
// TRACKER_* environment variables. An empty path searches for tracker.yaml
// in the working directory and under /etc/tkgi-tracker; a non-empty path
// must exist.
func Load(path string) (*Config, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("tracker")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/tkgi-tracker/")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("data_dir", "./data")
	viper.SetDefault("config_repo", "")
	viper.SetDefault("output_dir", "./output")
	viper.SetDefault("reports_dir", "./reports")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("inactivity_window", "30d")
	viper.SetDefault("storage_enabled", false)
	viper.SetDefault("database_url", "")
	viper.SetDefault("pushgateway_url", "")

	viper.SetEnvPrefix("TRACKER")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// No config file; defaults and env vars apply.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and resolves derived fields.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}
	if c.ReportsDir == "" {
		return fmt.Errorf("reports_dir must not be empty")
	}

	window, err := model.ParseDuration(c.InactivityWindow)
	if err != nil {
		return fmt.Errorf("invalid inactivity_window %q: %w", c.InactivityWindow, err)
	}
	if window <= 0 {
		return fmt.Errorf("inactivity_window must be positive, got %q", c.InactivityWindow)
	}
	c.Window = time.Duration(window)

	if c.StorageEnabled && c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required when storage_enabled is set")
	}
	return nil
}
