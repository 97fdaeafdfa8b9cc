// Package config loads asksort settings from an optional YAML file and the
// environment. Command-line flags are applied on top by the cli package.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds every setting a command can take from a file.
type Config struct {
	// Strict makes the prompt re-ask on anything other than y or n.
	Strict bool `koanf:"strict"`

	// Journal is the SQLite journal path; empty disables journaling.
	Journal string `koanf:"journal"`

	// Format is the output format, "text" or "json".
	Format string `koanf:"format"`

	// MaxAttempts bounds invalid replies per question in strict mode.
	MaxAttempts int `koanf:"max_attempts"`

	// MaxQueries caps oracle questions per session; zero means unlimited.
	MaxQueries int `koanf:"max_queries"`

	// Color enables styled prompts.
	Color bool `koanf:"color"`
}

// Environment variables read by Load. They override file values.
const (
	EnvJournal = "ASKSORT_JOURNAL"
	EnvStrict  = "ASKSORT_STRICT"
)

// Defaults.
const (
	DefaultFormat      = "text"
	DefaultMaxAttempts = 3
	DefaultColor       = true
)

// Validation errors.
var (
	ErrInvalidFormat      = errors.New(`format must be "text" or "json"`)
	ErrInvalidMaxAttempts = errors.New("max_attempts must be at least 1")
	ErrInvalidMaxQueries  = errors.New("max_queries must not be negative")
)

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Format:      DefaultFormat,
		MaxAttempts: DefaultMaxAttempts,
		Color:       DefaultColor,
	}
}

// Load reads the optional config file at path, then applies environment
// overrides. An empty path skips the file; a path that cannot be read or
// parsed is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	cfg := Default()
	if k.Exists("strict") {
		cfg.Strict = k.Bool("strict")
	}
	if k.Exists("journal") {
		cfg.Journal = k.String("journal")
	}
	if k.Exists("format") {
		cfg.Format = k.String("format")
	}
	if k.Exists("max_attempts") {
		cfg.MaxAttempts = k.Int("max_attempts")
	}
	if k.Exists("max_queries") {
		cfg.MaxQueries = k.Int("max_queries")
	}
	if k.Exists("color") {
		cfg.Color = k.Bool("color")
	}

	if val := os.Getenv(EnvJournal); val != "" {
		cfg.Journal = val
	}
	if val := os.Getenv(EnvStrict); val != "" {
		strict, err := strconv.ParseBool(val)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvStrict, err)
		}
		cfg.Strict = strict
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Format != "text" && c.Format != "json" {
		errs = append(errs, fmt.Errorf("%w, got %q", ErrInvalidFormat, c.Format))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, ErrInvalidMaxAttempts)
	}
	if c.MaxQueries < 0 {
		errs = append(errs, ErrInvalidMaxQueries)
	}
	return errors.Join(errs...)
}
