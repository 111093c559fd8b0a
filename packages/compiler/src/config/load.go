package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mstoykov/envconfig"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var schemaSource string

const schemaURL = "ngexpr://config.schema.json"

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
		return nil, err
	}
	return compiler.Compile(schemaURL)
})

// LookupFunc reads one environment variable.
type LookupFunc func(key string) (string, bool)

// envConfig lists the variables that override the file. Fields stay nil
// unless their variable is set.
type envConfig struct {
	LogLevel   *string        `envconfig:"NGEXPR_LOG_LEVEL"`
	LogFormat  *string        `envconfig:"NGEXPR_LOG_FORMAT"`
	Color      *string        `envconfig:"NGEXPR_COLOR"`
	Format     *string        `envconfig:"NGEXPR_FORMAT"`
	Extensions []string       `envconfig:"NGEXPR_EXTENSIONS"`
	Workers    *int           `envconfig:"NGEXPR_WORKERS"`
	Debounce   *time.Duration `envconfig:"NGEXPR_DEBOUNCE"`
}

// Load builds the effective config: defaults, then the YAML file at path (if
// path is not empty), then environment variables, then opts.
func Load(fs afero.Fs, path string, lookup LookupFunc, opts ...ConfigOption) (*Config, error) {
	c := NewConfig()
	if path != "" {
		if err := c.LoadFile(fs, path); err != nil {
			return nil, err
		}
	}
	if err := c.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	c.Apply(opts...)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile reads a YAML config file, validates it against the config schema
// and merges the fields it sets into c.
func (c *Config) LoadFile(fs afero.Fs, path string) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := validateDocument(data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return nil
}

func validateDocument(data []byte) error {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if doc == nil {
		// an empty file sets nothing
		return nil
	}
	// the validator wants plain JSON values
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value interface{}
	if err := dec.Decode(&value); err != nil {
		return err
	}

	schema, err := compileSchema()
	if err != nil {
		return err
	}
	return schema.Validate(value)
}

// ApplyEnv overrides c with the NGEXPR_* variables found by lookup. A nil
// lookup reads the process environment.
func (c *Config) ApplyEnv(lookup LookupFunc) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var env envConfig
	if err := envconfig.Process("", &env, lookup); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if env.LogLevel != nil {
		c.LogLevel = *env.LogLevel
	}
	if env.LogFormat != nil {
		c.LogFormat = *env.LogFormat
	}
	if env.Color != nil {
		c.Color = *env.Color
	}
	if env.Format != nil {
		c.Format = *env.Format
	}
	if env.Extensions != nil {
		c.Extensions = env.Extensions
	}
	if env.Workers != nil {
		c.Workers = *env.Workers
	}
	if env.Debounce != nil {
		c.Debounce = *env.Debounce
	}
	return nil
}
