// Package config handles configuration loading, validation, and management for vigcrack.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"vigcrack/internal/language"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete tool configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Analysis tunes the statistical attack.
	Analysis AnalysisConfig `toml:"analysis" json:"analysis" yaml:"analysis"`

	// Output selects how results are rendered.
	Output OutputConfig `toml:"output" json:"output" yaml:"output"`

	// Storage configures the analysis history database.
	Storage StorageConfig `toml:"storage" json:"storage" yaml:"storage"`

	// Watch configures directory watching.
	Watch WatchConfig `toml:"watch" json:"watch" yaml:"watch"`

	// Logging configuration.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`
}

// AnalysisConfig holds the key length search and language model settings.
type AnalysisConfig struct {
	// MinKeyLength is the smallest key length tried. Never below 2.
	MinKeyLength int `toml:"min_key_length" json:"min_key_length" yaml:"min_key_length"`

	// MaxKeyLength is the largest key length tried. The search is further
	// capped at half the ciphertext length.
	MaxKeyLength int `toml:"max_key_length" json:"max_key_length" yaml:"max_key_length"`

	// ParallelThreshold is the ciphertext length from which cosets are
	// processed concurrently. 0 disables concurrency.
	ParallelThreshold int `toml:"parallel_threshold" json:"parallel_threshold" yaml:"parallel_threshold"`

	// ModelPath is an optional language model file (TOML, JSON or YAML).
	// Empty selects the built-in English model.
	ModelPath string `toml:"model_path" json:"model_path" yaml:"model_path"`

	// ExpectedIoC overrides the model's expected IoC when non-zero.
	ExpectedIoC float64 `toml:"expected_ioc" json:"expected_ioc" yaml:"expected_ioc"`

	// Tolerance overrides the model's tolerance when non-zero.
	Tolerance float64 `toml:"tolerance" json:"tolerance" yaml:"tolerance"`
}

// OutputConfig holds rendering settings.
type OutputConfig struct {
	// Format is "text", "json" or "markdown".
	Format string `toml:"format" json:"format" yaml:"format"`
}

// StorageConfig holds persistence configuration.
type StorageConfig struct {
	// Enabled records every analysis in the history database.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the path to the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// BusyTimeoutMs is the SQLite busy timeout in milliseconds.
	BusyTimeoutMs int `toml:"busy_timeout_ms" json:"busy_timeout_ms" yaml:"busy_timeout_ms"`
}

// WatchConfig holds directory watching configuration.
type WatchConfig struct {
	// Paths is a list of directories to watch for ciphertext files.
	Paths []string `toml:"paths" json:"paths" yaml:"paths"`

	// Extensions are the file extensions that hold ciphertext.
	Extensions []string `toml:"extensions" json:"extensions" yaml:"extensions"`

	// DebounceMs is how long a file must stay unchanged before it is read.
	DebounceMs int `toml:"debounce_ms" json:"debounce_ms" yaml:"debounce_ms"`

	// MaxFileSize is the largest file processed, in bytes.
	MaxFileSize int64 `toml:"max_file_size" json:"max_file_size" yaml:"max_file_size"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is "stderr", "stdout", "file" or "discard".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the log file when Output is "file".
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	dir := DataDir()

	return &Config{
		Version: Version,
		Analysis: AnalysisConfig{
			MinKeyLength:      2,
			MaxKeyLength:      64,
			ParallelThreshold: 4096,
		},
		Output: OutputConfig{
			Format: "text",
		},
		Storage: StorageConfig{
			Enabled:       true,
			Path:          filepath.Join(dir, "history.db"),
			BusyTimeoutMs: 5000,
		},
		Watch: WatchConfig{
			Paths:       []string{},
			Extensions:  []string{".txt", ".ct"},
			DebounceMs:  500,
			MaxFileSize: 10 * 1024 * 1024,
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "text",
			Output:   "stderr",
			FilePath: filepath.Join(dir, "vigcrack.log"),
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// DataDir returns the base vigcrack data directory.
// VIGCRACK_DATA_DIR overrides the platform default.
func DataDir() string {
	if envDir := os.Getenv("VIGCRACK_DATA_DIR"); envDir != "" {
		return envDir
	}
	return PlatformDataDir()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}

// EnsureDirectories creates the directories the configuration writes to.
func (c *Config) EnsureDirectories() error {
	var dirs []string
	if c.Storage.Enabled {
		dirs = append(dirs, filepath.Dir(c.Storage.Path))
	}
	if c.Logging.Output == "file" {
		dirs = append(dirs, filepath.Dir(c.Logging.FilePath))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables are prefixed with VIGCRACK_ and use underscores.
// Unparseable numbers are ignored.
func (c *Config) ApplyEnvOverrides() {
	// Analysis overrides
	if v := os.Getenv("VIGCRACK_MAX_KEY_LENGTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Analysis.MaxKeyLength = n
		}
	}
	if v := os.Getenv("VIGCRACK_MODEL"); v != "" {
		c.Analysis.ModelPath = v
	}

	// Output overrides
	if v := os.Getenv("VIGCRACK_FORMAT"); v != "" {
		c.Output.Format = v
	}

	// Storage overrides
	if v := os.Getenv("VIGCRACK_STORAGE_PATH"); v != "" {
		c.Storage.Path = v
	}

	// Logging overrides
	if v := os.Getenv("VIGCRACK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("VIGCRACK_LOG_PATH"); v != "" {
		c.Logging.FilePath = v
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Watch.Paths = append([]string{}, c.Watch.Paths...)
	clone.Watch.Extensions = append([]string{}, c.Watch.Extensions...)
	return &clone
}

// Model returns the configured language model: the file at ModelPath or
// the built-in English model, with the IoC window overrides applied. The
// result is validated, so an override cannot widen the window past the
// expected IoC.
func (c *Config) Model() (*language.Model, error) {
	model := language.English()
	if c.Analysis.ModelPath != "" {
		m, err := language.Load(c.Analysis.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("load model: %w", err)
		}
		model = m
	}
	model = model.WithWindow(c.Analysis.ExpectedIoC, c.Analysis.Tolerance)
	if err := model.Validate(); err != nil {
		return nil, fmt.Errorf("analysis window: %w", err)
	}
	return model, nil
}
