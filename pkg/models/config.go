package models

// DatasetConfig locates the source records.
type DatasetConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // file | sqlite
	Path   string `yaml:"path" mapstructure:"path"`
}

// HorizonConfig defines the default reporting horizon.
type HorizonConfig struct {
	Start  string `yaml:"start,omitempty" mapstructure:"start"` // YYYY-MM, empty = current month
	Months int    `yaml:"months" mapstructure:"months"`
}

// LogConfig configures the runtime logger.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file,omitempty" mapstructure:"file"`
}

// ExportConfig holds export defaults.
type ExportConfig struct {
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"`
	Options ExportOptions `yaml:"options" mapstructure:"options"`
}

// CacheConfig bounds the computed-matrix memo cache.
type CacheConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
}

// GlobalConfig holds settings read from .staffplan.yaml via Viper.
type GlobalConfig struct {
	Dataset         DatasetConfig `yaml:"dataset" mapstructure:"dataset"`
	Horizon         HorizonConfig `yaml:"horizon" mapstructure:"horizon"`
	DefaultGrouping GroupingMode  `yaml:"default_grouping" mapstructure:"default_grouping"`
	Log             LogConfig     `yaml:"log" mapstructure:"log"`
	Export          ExportConfig  `yaml:"export" mapstructure:"export"`
	Cache           CacheConfig   `yaml:"cache" mapstructure:"cache"`
}
