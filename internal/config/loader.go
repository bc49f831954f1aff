package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
// Returns an error if required values are missing or validation fails.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := loadStruct(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration and panics on error.
// Use this only in main() where early termination is desired.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}

// loadStruct recursively populates struct fields from environment variables.
func loadStruct(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		fieldVal := v.Field(i)

		// Skip unexported fields
		if !fieldVal.CanSet() {
			continue
		}

		// Recurse into nested structs
		if field.Type.Kind() == reflect.Struct {
			if err := loadStruct(fieldVal); err != nil {
				return err
			}
			continue
		}

		// Get tags
		envName := field.Tag.Get("env")
		envAlt := field.Tag.Get("envAlt")
		defaultVal := field.Tag.Get("default")
		required := field.Tag.Get("required") == "true"

		if envName == "" {
			continue
		}

		// Try primary env var, then alternate
		value := os.Getenv(envName)
		if value == "" && envAlt != "" {
			value = os.Getenv(envAlt)
		}

		// Apply default if not set
		if value == "" {
			if required {
				return fmt.Errorf("required environment variable %s is not set", envName)
			}
			value = defaultVal
		}

		if value == "" {
			continue
		}

		// Set the field value
		if err := setField(fieldVal, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", envName, value, err)
		}
	}

	return nil
}

// setField sets a reflect.Value from a string based on its type.
func setField(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(i)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Import validation
	if c.Import.MaxFileSize <= 0 {
		errs = append(errs, "IMPORT_MAX_FILE_SIZE must be positive")
	}
	if c.Import.BatchSize <= 0 {
		errs = append(errs, "IMPORT_BATCH_SIZE must be positive")
	}
	if c.Import.SampleBytes <= 0 {
		errs = append(errs, "IMPORT_SAMPLE_BYTES must be positive")
	}
	if c.Import.SampleRows <= 0 {
		errs = append(errs, "IMPORT_SAMPLE_ROWS must be positive")
	}

	// Mapping validation
	if c.Mapping.TemplateAdopt <= 0 || c.Mapping.TemplateAdopt > 1 {
		errs = append(errs, fmt.Sprintf("MAPPING_TEMPLATE_ADOPT (%g) must be in (0, 1]", c.Mapping.TemplateAdopt))
	}
	if c.Mapping.TemplateAssist <= 0 || c.Mapping.TemplateAssist > 1 {
		errs = append(errs, fmt.Sprintf("MAPPING_TEMPLATE_ASSIST (%g) must be in (0, 1]", c.Mapping.TemplateAssist))
	}
	if c.Mapping.TemplateAssist > c.Mapping.TemplateAdopt {
		errs = append(errs, fmt.Sprintf("MAPPING_TEMPLATE_ASSIST (%g) must be <= MAPPING_TEMPLATE_ADOPT (%g)",
			c.Mapping.TemplateAssist, c.Mapping.TemplateAdopt))
	}
	if c.Mapping.FieldFloor <= 0 || c.Mapping.FieldFloor > 1 {
		errs = append(errs, fmt.Sprintf("MAPPING_FIELD_FLOOR (%g) must be in (0, 1]", c.Mapping.FieldFloor))
	}

	// Dedupe validation
	if c.Dedupe.GroupThreshold <= 0 || c.Dedupe.GroupThreshold > 1 {
		errs = append(errs, fmt.Sprintf("DEDUPE_GROUP_THRESHOLD (%g) must be in (0, 1]", c.Dedupe.GroupThreshold))
	}
	if c.Dedupe.MergeThreshold <= 0 || c.Dedupe.MergeThreshold > 1 {
		errs = append(errs, fmt.Sprintf("DEDUPE_MERGE_THRESHOLD (%g) must be in (0, 1]", c.Dedupe.MergeThreshold))
	}
	if c.Dedupe.GroupThreshold > c.Dedupe.MergeThreshold {
		errs = append(errs, fmt.Sprintf("DEDUPE_GROUP_THRESHOLD (%g) must be <= DEDUPE_MERGE_THRESHOLD (%g)",
			c.Dedupe.GroupThreshold, c.Dedupe.MergeThreshold))
	}
	if c.Dedupe.DateDecayDays <= 0 {
		errs = append(errs, "DEDUPE_DATE_DECAY_DAYS must be positive")
	}

	// Logging validation
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a string representation of the config for startup logging.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	b.WriteString(fmt.Sprintf("Import: {MaxFileSize: %d, BatchSize: %d, SampleBytes: %d, SampleRows: %d}, ",
		c.Import.MaxFileSize, c.Import.BatchSize, c.Import.SampleBytes, c.Import.SampleRows))
	b.WriteString(fmt.Sprintf("Mapping: {TemplateAdopt: %g, TemplateAssist: %g, FieldFloor: %g}, ",
		c.Mapping.TemplateAdopt, c.Mapping.TemplateAssist, c.Mapping.FieldFloor))
	b.WriteString(fmt.Sprintf("Dedupe: {GroupThreshold: %g, MergeThreshold: %g, DateDecayDays: %d}, ",
		c.Dedupe.GroupThreshold, c.Dedupe.MergeThreshold, c.Dedupe.DateDecayDays))
	b.WriteString(fmt.Sprintf("Logging: {Level: %q, Format: %q}",
		c.Logging.Level, c.Logging.Format))
	b.WriteString("}")
	return b.String()
}
