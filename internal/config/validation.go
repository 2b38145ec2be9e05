package config

import (
	"fmt"
	"strings"

	"vigcrack/internal/logging"
)

// maxKeyLengthLimit bounds the configurable search range.
const maxKeyLengthLimit = 4096

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Has reports whether any error concerns field.
func (e ValidationErrors) Has(field string) bool {
	for _, err := range e {
		if err.Field == field {
			return true
		}
	}
	return false
}

// ValidateConfig performs comprehensive validation of the configuration.
func ValidateConfig(c *Config) error {
	var errs ValidationErrors

	if c.Version < 1 || c.Version > Version {
		errs = append(errs, ValidationError{
			Field:   "version",
			Message: fmt.Sprintf("unsupported version %d (current: %d)", c.Version, Version),
		})
	}

	errs = append(errs, validateAnalysis(&c.Analysis)...)
	errs = append(errs, validateOutput(&c.Output)...)
	errs = append(errs, validateStorage(&c.Storage)...)
	errs = append(errs, validateWatch(&c.Watch)...)
	errs = append(errs, validateLogging(&c.Logging)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateAnalysis(a *AnalysisConfig) ValidationErrors {
	var errs ValidationErrors

	if a.MinKeyLength < 2 {
		errs = append(errs, *RangeError("analysis.min_key_length", 2, maxKeyLengthLimit))
	}
	if a.MaxKeyLength < a.MinKeyLength || a.MaxKeyLength > maxKeyLengthLimit {
		errs = append(errs, *RangeError("analysis.max_key_length", a.MinKeyLength, maxKeyLengthLimit))
	}
	if a.ParallelThreshold < 0 {
		errs = append(errs, ValidationError{
			Field:   "analysis.parallel_threshold",
			Message: "must not be negative",
		})
	}
	if a.ExpectedIoC < 0 || a.ExpectedIoC >= 1 {
		errs = append(errs, *RangeError("analysis.expected_ioc", 0, 1))
	}
	if a.Tolerance < 0 || a.Tolerance >= 1 {
		errs = append(errs, *RangeError("analysis.tolerance", 0, 1))
	} else if a.ExpectedIoC > 0 && a.Tolerance >= a.ExpectedIoC {
		errs = append(errs, ValidationError{
			Field:   "analysis.tolerance",
			Message: fmt.Sprintf("tolerance %v must be below expected_ioc %v", a.Tolerance, a.ExpectedIoC),
		})
	}
	return errs
}

func validateOutput(o *OutputConfig) ValidationErrors {
	switch strings.ToLower(o.Format) {
	case "text", "json", "markdown", "md":
		return nil
	}
	return ValidationErrors{{
		Field:   "output.format",
		Message: fmt.Sprintf("unknown format %q (want text, json or markdown)", o.Format),
	}}
}

func validateStorage(s *StorageConfig) ValidationErrors {
	var errs ValidationErrors
	if s.Enabled && s.Path == "" {
		errs = append(errs, *RequiredFieldError("storage.path"))
	}
	if s.BusyTimeoutMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "storage.busy_timeout_ms",
			Message: "must not be negative",
		})
	}
	return errs
}

func validateWatch(w *WatchConfig) ValidationErrors {
	var errs ValidationErrors
	if w.DebounceMs < 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.debounce_ms",
			Message: "must not be negative",
		})
	}
	if w.MaxFileSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "watch.max_file_size",
			Message: "must be positive",
		})
	}
	for i, ext := range w.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("watch.extensions[%d]", i),
				Message: fmt.Sprintf("extension %q must start with a dot", ext),
			})
		}
	}
	return errs
}

func validateLogging(l *LoggingConfig) ValidationErrors {
	var errs ValidationErrors

	if _, err := logging.ParseLevel(l.Level); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: err.Error(),
		})
	}
	if _, err := logging.ParseFormat(l.Format); err != nil {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: err.Error(),
		})
	}

	switch l.Output {
	case "stderr", "stdout", "discard":
	case "file":
		if l.FilePath == "" {
			errs = append(errs, *RequiredFieldError("logging.file_path"))
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "logging.output",
			Message: fmt.Sprintf("unknown output %q", l.Output),
		})
	}
	return errs
}

// RequiredFieldError creates a validation error for a required field.
func RequiredFieldError(field string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: "required field is missing",
	}
}

// RangeError creates a validation error for an out-of-range value.
func RangeError(field string, min, max any) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("value must be between %v and %v", min, max),
	}
}
