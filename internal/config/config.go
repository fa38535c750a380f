package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/funvibe/envx/internal/logging"
)

var log = logging.Get("config")

// Config represents an envx.yaml / envx.toml project configuration.
type Config struct {
	// Env is the environment used when neither -e nor an environment
	// variable selects one.
	Env string `yaml:"env" toml:"env"`

	// Dir holds the {env}.envx files, relative to the config file.
	Dir string `yaml:"dir" toml:"dir"`

	// Format is the default output format for `envx run`.
	Format string `yaml:"format" toml:"format"`

	// Color is auto, always or never.
	Color string `yaml:"color" toml:"color"`

	History HistoryConfig `yaml:"history" toml:"history"`
	Log     LogConfig     `yaml:"log" toml:"log"`

	// Path is the file the config was loaded from, empty for defaults.
	Path string `yaml:"-" toml:"-"`
}

// HistoryConfig controls the snapshot database.
type HistoryConfig struct {
	Path string `yaml:"path" toml:"path"`
	Keep int    `yaml:"keep" toml:"keep"`
}

type LogConfig struct {
	Verbosity int    `yaml:"verbosity" toml:"verbosity"`
	File      string `yaml:"file" toml:"file"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultHistoryPath is relative to the config directory.
const DefaultHistoryPath = ".envx/history.db"

// DefaultHistoryKeep is the number of snapshots kept per environment.
const DefaultHistoryKeep = 20

// Default returns the configuration used when no config file exists.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// LoadConfig reads and parses a config file, picking the decoder by extension.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses config content. The path selects yaml or toml and is
// used in error messages.
func ParseConfig(data []byte, path string) (*Config, error) {
	var cfg Config
	if strings.HasSuffix(path, ".toml") {
		md, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%s: unknown key %q", path, undecoded[0].String())
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	cfg.Path = path
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for a config file starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			return "", nil
		}
		dir = parent
	}
}

// FindAndLoad loads the nearest config above dir, or the defaults when
// there is none.
func FindAndLoad(dir string) (*Config, error) {
	path, err := FindConfig(dir)
	if err != nil {
		return nil, err
	}
	if path == "" {
		log.Debugf("no config above %s, using defaults", dir)
		return Default(), nil
	}
	log.Debugf("config: %s", path)
	return LoadConfig(path)
}

func (c *Config) validate(path string) error {
	switch c.Color {
	case "", ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, c.Color)
	}
	if c.History.Keep < 0 {
		return fmt.Errorf("%s: history.keep must not be negative", path)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("%s: log.verbosity must not be negative", path)
	}
	if c.Env != "" && !isEnvName(c.Env) {
		return fmt.Errorf("%s: invalid env name %q", path, c.Env)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Dir == "" {
		c.Dir = "."
	}
	if c.Color == "" {
		c.Color = ColorAuto
	}
	if c.History.Path == "" {
		c.History.Path = DefaultHistoryPath
	}
	if c.History.Keep == 0 {
		c.History.Keep = DefaultHistoryKeep
	}
}

// BaseDir is the directory relative paths in the config resolve against.
func (c *Config) BaseDir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

func (c *Config) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.BaseDir(), p)
}

// SourceDir returns the directory holding the environment scripts.
func (c *Config) SourceDir() string {
	return c.resolve(c.Dir)
}

// HistoryPath returns the snapshot database path.
func (c *Config) HistoryPath() string {
	return c.resolve(c.History.Path)
}

// LogFile returns the log destination, or "" for stderr.
func (c *Config) LogFile() string {
	if c.Log.File == "" {
		return ""
	}
	return c.resolve(c.Log.File)
}

// SourceFile returns the script for env: {dir}/{env}.envx.
func (c *Config) SourceFile(env string) string {
	return filepath.Join(c.SourceDir(), env+SourceFileExt)
}

// ResolveEnv picks the environment name: the flag value first, then
// ENVX_ENV, NODE_ENV, the config and finally DefaultEnvName.
func ResolveEnv(flag string, cfg *Config) string {
	return resolveEnv(flag, cfg, os.Getenv)
}

func resolveEnv(flag string, cfg *Config, getenv func(string) string) string {
	if flag != "" {
		return flag
	}
	for _, name := range EnvNameVariables {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			return v
		}
	}
	if cfg != nil && cfg.Env != "" {
		return cfg.Env
	}
	return DefaultEnvName
}

// IsEnvName reports whether s can name an environment.
func IsEnvName(s string) bool {
	return isEnvName(s)
}

// isEnvName accepts names usable as a file stem.
func isEnvName(s string) bool {
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			return false
		}
	}
	return s != "" && s != "." && s != ".."
}
