// Package config loads the tenure.yaml configuration file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/coolbeans/tenure/pkg/inbox"
	"github.com/coolbeans/tenure/pkg/locale"
)

// DefaultFile is read from the working directory when no path is given.
const DefaultFile = "tenure.yaml"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the complete tenure configuration.
type Config struct {
	// Locale is the default locale code for dates and documents.
	Locale string `yaml:"locale"`

	// LocalesDir holds YAML locale tables that override the built-in ones.
	LocalesDir string `yaml:"locales_dir"`

	// Strict fails a document on its first unparseable date instead of
	// keeping the raw text.
	Strict bool `yaml:"strict"`

	// Concurrency bounds the documents processed at once; 0 means unlimited.
	Concurrency int `yaml:"concurrency"`

	// Format is the output format, text or json.
	Format string `yaml:"format"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	Inbox InboxConfig `yaml:"inbox"`
}

// InboxConfig configures the watch command.
type InboxConfig struct {
	inbox.Config `yaml:",inline"`

	// StateFile remembers processed documents between runs.
	StateFile string `yaml:"state_file"`

	// OutputDir receives one result file per processed document. Empty
	// means results are printed.
	OutputDir string `yaml:"output_dir"`
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() *Config {
	return &Config{
		Locale:      locale.DefaultCode,
		Concurrency: 4,
		Format:      FormatText,
		LogLevel:    "info",
		Inbox: InboxConfig{
			Config: inbox.Config{
				Pattern:  inbox.DefaultPattern,
				Debounce: inbox.DefaultDebounce,
			},
		},
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.Locale == "" {
		return fmt.Errorf("locale is required")
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative")
	}
	if !slices.Contains([]string{FormatText, FormatJSON}, c.Format) {
		return fmt.Errorf("format must be %s or %s, got %q", FormatText, FormatJSON, c.Format)
	}
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.Inbox.Debounce < 0 {
		return fmt.Errorf("inbox.debounce must not be negative")
	}
	return nil
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Load reads the configuration at path over the defaults. An empty path
// reads DefaultFile if it exists and otherwise returns the defaults.
// Relative directories in the file are resolved against its location.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	base := filepath.Dir(path)
	config.LocalesDir = resolve(base, config.LocalesDir)
	config.Inbox.Dir = resolve(base, config.Inbox.Dir)
	config.Inbox.StateFile = resolve(base, config.Inbox.StateFile)
	config.Inbox.OutputDir = resolve(base, config.Inbox.OutputDir)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return config, nil
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Registry returns the built-in locales, overridden by LocalesDir when set.
func (c *Config) Registry(logger *slog.Logger) (*locale.DefaultRegistry, error) {
	if c.LocalesDir == "" {
		return locale.Builtin(), nil
	}
	registry, err := locale.NewBuiltinRegistry(logger)
	if err != nil {
		return nil, err
	}
	if err := registry.LoadDirectory(c.LocalesDir); err != nil {
		return nil, err
	}
	return registry, nil
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
