// Package config loads the gatewalk configuration file.
//
// The file is TOML and lives at $XDG_CONFIG_HOME/gatewalk/config.toml, or
// ~/.config/gatewalk/config.toml when XDG_CONFIG_HOME is unset. Every field
// is optional; missing fields keep their [Default] values:
//
//	library = "cells/xilinx.toml"
//	workers = 8
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[render]
//	rankdir = "TB"
package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/gatewalk/pkg/errors"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config is the resolved configuration.
type Config struct {
	// Library is the gate library file; empty selects the built-in library.
	Library string `toml:"library"`
	// Workers bounds batch query parallelism.
	Workers int         `toml:"workers" validate:"gte=1,lte=1024"`
	Cache   CacheConfig `toml:"cache"`
	Render  Render      `toml:"render"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend" validate:"oneof=file redis none"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr" validate:"omitempty,hostname_port"`
	TTL       Duration `toml:"ttl"`
}

// Render holds diagram defaults.
type Render struct {
	RankDir string `toml:"rankdir" validate:"oneof=LR RL TB BT"`
}

// Duration is a time.Duration written as a string ("90m", "24h") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Workers: runtime.NumCPU(),
		Cache: CacheConfig{
			Backend: BackendFile,
			TTL:     Duration{24 * time.Hour},
		},
		Render: Render{RankDir: "LR"},
	}
}

// Path returns the default location of the configuration file.
func Path() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gatewalk", "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gatewalk", "config.toml"), nil
}

// Load reads path over the defaults and validates the result. An empty path
// loads the default location, where a missing file is not an error; an
// explicit path that does not exist fails with FILE_NOT_FOUND.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := Path()
		if err != nil {
			return Default(), nil
		}
		path = p
	}

	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			if explicit {
				return nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return cfg, nil
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode config %s", path)
	}
	if cfg.Library != "" && !filepath.IsAbs(cfg.Library) {
		cfg.Library = filepath.Join(filepath.Dir(path), cfg.Library)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Context(err, "config %s", path)
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and the cache backend settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid configuration")
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidInput, "invalid configuration: redis backend needs redis_addr")
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "invalid configuration: negative cache ttl %s", c.Cache.TTL)
	}
	return nil
}
