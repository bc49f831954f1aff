// Package config provides centralized configuration management for the importer.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

// Config holds all importer configuration.
// All settings can be configured via environment variables.
type Config struct {
	Import  ImportConfig
	Mapping MappingConfig
	Dedupe  DedupeConfig
	Logging LoggingConfig
}

// ImportConfig holds file intake and batching settings.
type ImportConfig struct {
	// MaxFileSize is the maximum allowed file size in bytes (default: 100MB)
	// Supports both IMPORT_MAX_FILE_SIZE and MAX_FILE_SIZE env vars for compatibility
	MaxFileSize int64 `env:"IMPORT_MAX_FILE_SIZE" envAlt:"MAX_FILE_SIZE" default:"104857600"`

	// BatchSize is the number of rows processed between progress updates (default: 1000)
	BatchSize int `env:"IMPORT_BATCH_SIZE" default:"1000"`

	// SampleBytes is how much of the file the encoding detector inspects (default: 8KiB)
	SampleBytes int `env:"IMPORT_SAMPLE_BYTES" default:"8192"`

	// SampleRows is how many data rows column detection samples (default: 20)
	SampleRows int `env:"IMPORT_SAMPLE_ROWS" default:"20"`
}

// MappingConfig holds column detection thresholds.
type MappingConfig struct {
	// TemplateAdopt is the template score at which its mapping is taken wholesale (default: 0.7)
	TemplateAdopt float64 `env:"MAPPING_TEMPLATE_ADOPT" default:"0.7"`

	// TemplateAssist is the template score at which strong template fields seed
	// the heuristic pass (default: 0.4)
	TemplateAssist float64 `env:"MAPPING_TEMPLATE_ASSIST" default:"0.4"`

	// FieldFloor is the minimum per-field score for a column assignment (default: 0.3)
	FieldFloor float64 `env:"MAPPING_FIELD_FLOOR" default:"0.3"`
}

// DedupeConfig holds duplicate detection thresholds.
// These values are hand-tuned, not derived; keeping them here lets operators
// adjust grouping aggressiveness without a code change.
type DedupeConfig struct {
	// GroupThreshold is the pairwise similarity at which rows join a duplicate
	// group (default: 0.65)
	GroupThreshold float64 `env:"DEDUPE_GROUP_THRESHOLD" default:"0.65"`

	// MergeThreshold is the group confidence at which an automatic merge is
	// suggested (default: 0.9)
	MergeThreshold float64 `env:"DEDUPE_MERGE_THRESHOLD" default:"0.9"`

	// DateDecayDays is how many days apart applied dates can be before the
	// proximity signal reaches zero (default: 7)
	DateDecayDays int `env:"DEDUPE_DATE_DECAY_DAYS" default:"7"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}
