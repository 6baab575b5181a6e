// Package config loads the nsmigrate run configuration (nsmigrate.toml).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up in the working directory
// when no explicit path is given.
const FileName = "nsmigrate.toml"

// ErrInvalid is returned when a configuration file has unknown keys or
// out-of-range values.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the run configuration. Zero values select built-in defaults.
type Config struct {
	// Mapping is the package mapping file.
	Mapping string `toml:"mapping"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log-level"`

	// Workers bounds concurrent entry and file processing; 0 means GOMAXPROCS.
	Workers int `toml:"workers"`

	Modules Modules `toml:"modules"`

	// Dir is the directory containing the file (set at load time).
	Dir string `toml:"-"`
}

// Modules configures module repository rewriting.
type Modules struct {
	// Mapping is the module mapping file.
	Mapping string `toml:"mapping"`

	// Artifacts enables rewriting of archives inside the repository.
	Artifacts bool `toml:"artifacts"`
}

// Load parses the configuration file at path. Relative mapping paths are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.Mapping = c.resolve(c.Mapping)
	c.Modules.Mapping = c.resolve(c.Modules.Mapping)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// LoadOptional loads path if set, otherwise FileName from the working
// directory if present. It returns an empty Config when neither exists.
func LoadOptional(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if _, err := os.Stat(FileName); err == nil {
		return Load(FileName)
	}
	return &Config{}, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers must not be negative", ErrInvalid)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level returns the configured log level, info if unset.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log-level %q", ErrInvalid, c.LogLevel)
	}
	return l, nil
}

func (c *Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir, p)
}
