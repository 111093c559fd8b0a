package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"ngexpr-go/packages/compiler/src/expression_parser"
)

// ErrInvalidConfig wraps every configuration problem: schema violations,
// bad environment values and out of range settings.
var ErrInvalidConfig = errors.New("invalid config")

const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config holds the settings shared by the CLI and the language server.
type Config struct {
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
	Color     string `yaml:"color"`
	// Format is the output format of `parse`
	Format string `yaml:"format"`
	// Extensions selects the template files `check` visits.
	Extensions []string      `yaml:"extensions"`
	Workers    int           `yaml:"workers"`
	Debounce   time.Duration `yaml:"debounce"`
}

// NewConfig creates a new Config with optional parameters
func NewConfig(opts ...ConfigOption) *Config {
	config := &Config{
		LogLevel:   logrus.InfoLevel.String(),
		LogFormat:  LogFormatText,
		Color:      ColorAuto,
		Format:     string(expression_parser.FormatText),
		Extensions: []string{".html"},
		Workers:    runtime.NumCPU(),
		Debounce:   100 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(config)
	}

	return config
}

// ConfigOption is a function that modifies Config
type ConfigOption func(*Config)

// WithLogLevel sets the log level
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithLogFormat sets the log formatter, text or json
func WithLogFormat(format string) ConfigOption {
	return func(c *Config) {
		c.LogFormat = format
	}
}

// WithColor sets the color mode
func WithColor(color string) ConfigOption {
	return func(c *Config) {
		c.Color = color
	}
}

// WithFormat sets the tree output format
func WithFormat(format string) ConfigOption {
	return func(c *Config) {
		c.Format = format
	}
}

// WithExtensions sets the template file extensions
func WithExtensions(extensions ...string) ConfigOption {
	return func(c *Config) {
		c.Extensions = extensions
	}
}

// WithWorkers sets how many files are checked concurrently
func WithWorkers(workers int) ConfigOption {
	return func(c *Config) {
		c.Workers = workers
	}
}

// WithDebounce sets the delay between a change and a re-check in watch mode
func WithDebounce(d time.Duration) ConfigOption {
	return func(c *Config) {
		c.Debounce = d
	}
}

// Apply runs opts on c.
func (c *Config) Apply(opts ...ConfigOption) *Config {
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Validate checks the values the schema cannot: those set by options and
// environment variables.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.LogFormat != LogFormatText && c.LogFormat != LogFormatJSON {
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%w: unknown color mode %q", ErrInvalidConfig, c.Color)
	}
	if !isFormat(c.Format) {
		hint := ""
		if s := expression_parser.Suggest(c.Format, expression_parser.Formats()); s != "" {
			hint = fmt.Sprintf(", did you mean %q?", s)
		}
		return fmt.Errorf("%w: unknown output format %q%s", ErrInvalidConfig, c.Format, hint)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.Debounce < 0 {
		return fmt.Errorf("%w: negative debounce %s", ErrInvalidConfig, c.Debounce)
	}
	for _, ext := range c.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, ext)
		}
	}
	return nil
}

// MatchesExtension reports whether path is a template file to check.
func (c *Config) MatchesExtension(path string) bool {
	for _, ext := range c.Extensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

func isFormat(format string) bool {
	for _, f := range expression_parser.Formats() {
		if f == format {
			return true
		}
	}
	return false
}
