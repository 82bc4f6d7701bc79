// Package config loads symvibe settings from defaults, an optional YAML file
// and SYMVIBE_ environment variables.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/sqlvibe/symvibe/internal/SF/errors"
	"github.com/sqlvibe/symvibe/internal/log"
	"github.com/sqlvibe/symvibe/pkg/symvibe"
)

// EnvPrefix prefixes every environment override, e.g. SYMVIBE_ARENA_MAX_BYTES.
const EnvPrefix = "SYMVIBE"

type ArenaConfig struct {
	ChunkSize int   `mapstructure:"chunk_size" yaml:"chunk_size"`
	SlabSize  int   `mapstructure:"slab_size" yaml:"slab_size"`
	MaxBytes  int64 `mapstructure:"max_bytes" yaml:"max_bytes"`
}

type RegistryConfig struct {
	InitialCapacity int  `mapstructure:"initial_capacity" yaml:"initial_capacity"`
	ValidateSymbols bool `mapstructure:"validate_symbols" yaml:"validate_symbols"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type StressConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
	Keys    int `mapstructure:"keys" yaml:"keys"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

// Config is the complete CLI configuration.
type Config struct {
	Arena    ArenaConfig    `mapstructure:"arena" yaml:"arena"`
	Registry RegistryConfig `mapstructure:"registry" yaml:"registry"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Stress   StressConfig   `mapstructure:"stress" yaml:"stress"`
	Serve    ServeConfig    `mapstructure:"serve" yaml:"serve"`
}

// SetDefaults registers the default of every key on v. Keys must be known to
// v for AutomaticEnv to apply during Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("arena.chunk_size", 0)
	v.SetDefault("arena.slab_size", 0)
	v.SetDefault("arena.max_bytes", 0)
	v.SetDefault("registry.initial_capacity", symvibe.DefaultOptions().InitialCapacity)
	v.SetDefault("registry.validate_symbols", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("stress.workers", 8)
	v.SetDefault("stress.keys", 10000)
	v.SetDefault("serve.addr", ":9464")
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the YAML file at path, if path is not empty, and decodes v into a
// validated Config.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.SVDB_ERROR, err, "read config file "+path)
		}
		log.Debug("config: loaded %s", path)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.SVDB_ERROR, err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section. Out-of-range values yield SVDB_RANGE.
func (c *Config) Validate() error {
	if err := c.RegistryOptions().Validate(); err != nil {
		return err
	}
	if _, ok := log.ParseLevel(c.Log.Level); !ok {
		return errors.Errorf(errors.SVDB_RANGE, "unknown log level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return errors.Errorf(errors.SVDB_RANGE, "unknown log format %q", c.Log.Format)
	}
	if c.Stress.Workers <= 0 {
		return errors.Errorf(errors.SVDB_RANGE, "stress workers must be positive, got %d", c.Stress.Workers)
	}
	if c.Stress.Keys <= 0 {
		return errors.Errorf(errors.SVDB_RANGE, "stress keys must be positive, got %d", c.Stress.Keys)
	}
	if c.Serve.Addr == "" {
		return errors.NewError(errors.SVDB_RANGE, "serve address is empty")
	}
	return nil
}

// RegistryOptions converts the arena and registry sections.
func (c *Config) RegistryOptions() symvibe.Options {
	return symvibe.Options{
		ChunkSize:       c.Arena.ChunkSize,
		SlabSize:        c.Arena.SlabSize,
		MaxBytes:        c.Arena.MaxBytes,
		InitialCapacity: c.Registry.InitialCapacity,
		ValidateSymbols: c.Registry.ValidateSymbols,
	}
}

// ApplyLogging configures the process logger from the log section.
func (c *Config) ApplyLogging() {
	level, _ := log.ParseLevel(c.Log.Level)
	log.SetFormat(c.Log.Format == "json")
	log.SetLevel(level)
}
