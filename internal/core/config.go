// Package core contains the business logic for staffplan, including
// recurrence expansion, demand matrix construction, filtering, revenue
// annotation, export, validation, and configuration.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/valter-silva-au/staffplan/pkg/models"
)

// ConfigFileName is the name of the configuration file, without extension.
const ConfigFileName = ".staffplan"

// ConfigurationManager loads and validates the .staffplan.yaml configuration.
type ConfigurationManager interface {
	LoadGlobalConfig() (*models.GlobalConfig, error)
	ValidateConfig(cfg *models.GlobalConfig) error
}

// viperConfigManager implements ConfigurationManager using Viper.
type viperConfigManager struct {
	basePath string
}

// NewConfigurationManager creates a ConfigurationManager that reads
// .staffplan.yaml from basePath.
func NewConfigurationManager(basePath string) ConfigurationManager {
	return &viperConfigManager{basePath: basePath}
}

// DefaultGlobalConfig returns a GlobalConfig populated with defaults.
func DefaultGlobalConfig() *models.GlobalConfig {
	return &models.GlobalConfig{
		Dataset: models.DatasetConfig{
			Driver: "file",
			Path:   "staffplan.yaml",
		},
		Horizon:         models.HorizonConfig{Months: DefaultHorizonMonths},
		DefaultGrouping: models.GroupBySkill,
		Log:             models.LogConfig{Level: "info"},
		Export: models.ExportConfig{
			Dir: ".",
			Options: models.ExportOptions{
				IncludeTaskBreakdown: true,
				IncludeClientSummary: true,
			},
		},
		Cache: models.CacheConfig{MaxEntries: DefaultCacheEntries},
	}
}

// LoadGlobalConfig reads .staffplan.yaml from the base path. Environment
// variables prefixed STAFFPLAN_ override file values. If the file does not
// exist, defaults are returned.
func (cm *viperConfigManager) LoadGlobalConfig() (*models.GlobalConfig, error) {
	cfg := DefaultGlobalConfig()

	v := viper.New()
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(cm.basePath)
	v.SetEnvPrefix("STAFFPLAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("dataset.driver", cfg.Dataset.Driver)
	v.SetDefault("dataset.path", cfg.Dataset.Path)
	v.SetDefault("horizon.start", cfg.Horizon.Start)
	v.SetDefault("horizon.months", cfg.Horizon.Months)
	v.SetDefault("default_grouping", string(cfg.DefaultGrouping))
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.file", cfg.Log.File)
	v.SetDefault("export.dir", cfg.Export.Dir)
	v.SetDefault("export.options.include_task_breakdown", cfg.Export.Options.IncludeTaskBreakdown)
	v.SetDefault("export.options.include_client_summary", cfg.Export.Options.IncludeClientSummary)
	v.SetDefault("export.options.include_revenue", cfg.Export.Options.IncludeRevenue)
	v.SetDefault("export.options.include_recurrence_summary", cfg.Export.Options.IncludeRecurrenceSummary)
	v.SetDefault("export.options.include_trend_analysis", cfg.Export.Options.IncludeTrendAnalysis)
	v.SetDefault("cache.max_entries", cfg.Cache.MaxEntries)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading %s.yaml: %w", ConfigFileName, err)
		}
	}

	cfg.Dataset.Driver = v.GetString("dataset.driver")
	cfg.Dataset.Path = v.GetString("dataset.path")
	cfg.Horizon.Start = v.GetString("horizon.start")
	cfg.Horizon.Months = v.GetInt("horizon.months")
	cfg.DefaultGrouping = models.GroupingMode(v.GetString("default_grouping"))
	cfg.Log.Level = v.GetString("log.level")
	cfg.Log.File = v.GetString("log.file")
	cfg.Export.Dir = v.GetString("export.dir")
	cfg.Export.Options = models.ExportOptions{
		IncludeTaskBreakdown:     v.GetBool("export.options.include_task_breakdown"),
		IncludeClientSummary:     v.GetBool("export.options.include_client_summary"),
		IncludeRevenue:           v.GetBool("export.options.include_revenue"),
		IncludeRecurrenceSummary: v.GetBool("export.options.include_recurrence_summary"),
		IncludeTrendAnalysis:     v.GetBool("export.options.include_trend_analysis"),
	}
	cfg.Cache.MaxEntries = v.GetInt("cache.max_entries")

	return cfg, nil
}

var validDrivers = map[string]bool{"file": true, "sqlite": true}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// ValidateConfig checks cfg for invalid values and names every problem.
func (cm *viperConfigManager) ValidateConfig(cfg *models.GlobalConfig) error {
	if cfg == nil {
		return fmt.Errorf("configuration is nil")
	}

	var errs []string

	if !validDrivers[cfg.Dataset.Driver] {
		errs = append(errs, fmt.Sprintf("dataset.driver %q is invalid, must be one of: file, sqlite", cfg.Dataset.Driver))
	}
	if cfg.Dataset.Path == "" {
		errs = append(errs, "dataset.path must not be empty")
	}
	if cfg.Horizon.Start != "" {
		if _, err := ParseMonthKey(cfg.Horizon.Start); err != nil {
			errs = append(errs, fmt.Sprintf("horizon.start %q is invalid, must be YYYY-MM", cfg.Horizon.Start))
		}
	}
	if cfg.Horizon.Months < 1 {
		errs = append(errs, fmt.Sprintf("horizon.months must be at least 1, got %d", cfg.Horizon.Months))
	}
	if !ValidGroupingMode(cfg.DefaultGrouping) {
		errs = append(errs, fmt.Sprintf("default_grouping %q is invalid, must be one of: skill, client", cfg.DefaultGrouping))
	}
	if !validLogLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level %q is invalid, must be one of: debug, info, warn, error", cfg.Log.Level))
	}
	if cfg.Cache.MaxEntries < 1 {
		errs = append(errs, fmt.Sprintf("cache.max_entries must be at least 1, got %d", cfg.Cache.MaxEntries))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
