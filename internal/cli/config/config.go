package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"contesthub/internal/identity"
	"contesthub/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL      = "http://127.0.0.1:8000"
	DefaultTimeout      = 10 * time.Second
	DefaultIdentityPath = ".contesthub/identity.json"
	DefaultHistoryFile  = ".contesthub/history"

	DriverFile   = "file"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config holds client configuration.
type Config struct {
	BaseURL     string         `yaml:"baseURL"`
	Timeout     time.Duration  `yaml:"timeout"`
	Identity    IdentityConfig `yaml:"identity"`
	Logger      logger.Config  `yaml:"logger"`
	HistoryFile string         `yaml:"historyFile"`
}

// IdentityConfig selects where the login identity is kept between runs.
type IdentityConfig struct {
	Driver string               `yaml:"driver"`
	Path   string               `yaml:"path"`
	Redis  identity.RedisConfig `yaml:"redis"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// Load reads path. A missing file yields Default().
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return cfg, fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HistoryFile == "" {
		cfg.HistoryFile = DefaultHistoryFile
	}
	if cfg.Identity.Driver == "" {
		cfg.Identity.Driver = DriverFile
	}
	if cfg.Identity.Path == "" {
		cfg.Identity.Path = DefaultIdentityPath
	}
	redisDefaults := identity.DefaultRedisConfig()
	if cfg.Identity.Redis.KeyPrefix == "" {
		cfg.Identity.Redis.KeyPrefix = redisDefaults.KeyPrefix
	}
	if cfg.Identity.Redis.DialTimeout == 0 {
		cfg.Identity.Redis.DialTimeout = redisDefaults.DialTimeout
	}
	if cfg.Identity.Redis.ReadTimeout == 0 {
		cfg.Identity.Redis.ReadTimeout = redisDefaults.ReadTimeout
	}
	if cfg.Identity.Redis.WriteTimeout == 0 {
		cfg.Identity.Redis.WriteTimeout = redisDefaults.WriteTimeout
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "warn"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "console"
	}
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = "stderr"
	}
}

// Validate checks the settings; run it again after applying overrides.
func (c Config) Validate() error {
	switch c.Identity.Driver {
	case DriverFile, DriverMemory:
	case DriverRedis:
		if c.Identity.Redis.Addr == "" {
			return fmt.Errorf("identity.redis.addr is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown identity driver %q", c.Identity.Driver)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}
	return nil
}

// OpenIdentityStore builds the configured Store. The returned close func is never nil.
func (c IdentityConfig) OpenIdentityStore() (identity.Store, func() error, error) {
	noop := func() error { return nil }
	switch c.Driver {
	case DriverRedis:
		store, err := identity.NewRedisStore(c.Redis)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case DriverMemory:
		return identity.NewMemoryStore(), noop, nil
	case DriverFile:
		return identity.NewFileStore(c.Path), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown identity driver %q", c.Driver)
	}
}
