package main

import (
	"fmt"
	"os"
	"time"

	"contesthub/internal/mockjudge"
	"contesthub/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	defaultHTTPAddr        = "127.0.0.1:8000"
	defaultReadTimeout     = 5 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultMaxHeaderBytes  = 1 << 20
	defaultFixturesPath    = "configs/fixtures.yaml"
)

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	Mode           string        `yaml:"mode"` // gin mode: debug | release | test
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	IdleTimeout    time.Duration `yaml:"idleTimeout"`
	MaxHeaderBytes int           `yaml:"maxHeaderBytes"`
}

// JudgeConfig controls how submissions are answered.
type JudgeConfig struct {
	Verdict  string             `yaml:"verdict"`
	Behavior mockjudge.Behavior `yaml:"behavior"`
	Latency  time.Duration      `yaml:"latency"`
}

// AppConfig holds the judge stand-in configuration.
type AppConfig struct {
	Server   ServerConfig         `yaml:"server"`
	Logger   logger.Config        `yaml:"logger"`
	Fixtures string               `yaml:"fixtures"`
	Judge    JudgeConfig          `yaml:"judge"`
	CORS     mockjudge.CORSConfig `yaml:"cors"`
}

func loadAppConfig(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file failed: %w", err)
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file failed: %w", err)
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultHTTPAddr
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = defaultIdleTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = defaultMaxHeaderBytes
	}
	if cfg.Fixtures == "" {
		cfg.Fixtures = defaultFixturesPath
	}
	if cfg.Judge.Behavior == "" {
		cfg.Judge.Behavior = mockjudge.BehaviorResolve
	}
}

func validate(cfg *AppConfig) error {
	switch cfg.Judge.Behavior {
	case mockjudge.BehaviorResolve, mockjudge.BehaviorPending, mockjudge.BehaviorMalformed:
	default:
		return fmt.Errorf("unknown judge behavior %q", cfg.Judge.Behavior)
	}
	if cfg.Judge.Latency < 0 {
		return fmt.Errorf("judge latency must not be negative")
	}
	return nil
}
