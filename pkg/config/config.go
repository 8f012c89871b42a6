// Package config loads navgraph settings from TOML.
//
// A config file is optional. Every setting has a default, and a file only
// needs the keys it overrides:
//
//	[log]
//	level = "debug"
//
//	[journal]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//
//	[inspect]
//	addr = ":8080"
package config

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/journal"
)

const appName = "navgraph"

// Defaults.
const (
	DefaultLogLevel    = "info"
	DefaultInspectAddr = "127.0.0.1:8080"
	DefaultRedisAddr   = "localhost:6379"
	DefaultMongoURI    = "mongodb://localhost:27017"
)

// Config is the complete navgraph configuration.
type Config struct {
	Log     LogConfig       `toml:"log"`
	Journal journal.Options `toml:"journal"`
	Inspect InspectConfig   `toml:"inspect"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// InspectConfig configures the HTTP inspector.
type InspectConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	_ = c.ValidateAndSetDefaults()
	return c
}

// Load reads the TOML file at path and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML data and applies defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := c.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadOrDefault loads path when it is set, the file at [DefaultPath] when it
// exists, and falls back to [Default] otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return Load(path)
	}
	if p, err := DefaultPath(); err == nil {
		if _, err := os.Stat(p); err == nil {
			return Load(p)
		}
	}
	return Default(), nil
}

// ValidateAndSetDefaults fills unset fields and checks the result.
func (c *Config) ValidateAndSetDefaults() error {
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.New(errors.ErrCodeInvalidConfig, "invalid log level %q", c.Log.Level)
	}

	j := &c.Journal
	if j.Backend == "" {
		j.Backend = journal.BackendNone
	}
	if !slices.Contains(journal.Backends, j.Backend) {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown journal backend %q (want one of %v)", j.Backend, journal.Backends)
	}
	if j.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "journal limit must not be negative")
	}
	switch j.Backend {
	case journal.BackendFile:
		if j.Path == "" {
			dir, err := StateDir()
			if err != nil {
				return errors.Wrap(errors.ErrCodeInvalidConfig, err, "resolve journal path")
			}
			j.Path = filepath.Join(dir, "journal.jsonl")
		}
	case journal.BackendRedis:
		if j.RedisAddr == "" {
			j.RedisAddr = DefaultRedisAddr
		}
		if j.RedisKey == "" {
			j.RedisKey = journal.DefaultRedisKey
		}
	case journal.BackendMongo:
		if j.MongoURI == "" {
			j.MongoURI = DefaultMongoURI
		}
		if j.MongoDatabase == "" {
			j.MongoDatabase = journal.DefaultMongoDatabase
		}
		if j.MongoCollection == "" {
			j.MongoCollection = journal.DefaultMongoCollection
		}
	}

	if c.Inspect.Addr == "" {
		c.Inspect.Addr = DefaultInspectAddr
	}
	return nil
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns the config file location using the XDG standard
// (~/.config/navgraph/config.toml).
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// StateDir returns the directory for persistent state using the XDG standard
// (~/.local/state/navgraph/).
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "state", appName), nil
}
