// Package config loads application settings with the usual precedence:
// environment variables over an optional YAML file over built-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// DefaultPath is probed when no config file is named explicitly.
const DefaultPath = "stepwise.yaml"

// Config is the full application configuration.
type Config struct {
	LogLevel string        `yaml:"log_level" env:"STEPWISE_LOG_LEVEL"`
	MaxSteps int           `yaml:"max_steps" env:"STEPWISE_MAX_STEPS"`
	Timeout  time.Duration `yaml:"timeout" env:"STEPWISE_TIMEOUT"`

	HTTP  HTTPConfig  `yaml:"http"`
	Redis RedisConfig `yaml:"redis"`
	MCP   MCPConfig   `yaml:"mcp"`
}

// HTTPConfig configures the REST server.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"STEPWISE_HTTP_ADDR"`
}

// RedisConfig configures the optional result store. An empty Addr disables it.
type RedisConfig struct {
	Addr   string        `yaml:"addr" env:"STEPWISE_REDIS_ADDR"`
	Prefix string        `yaml:"prefix" env:"STEPWISE_REDIS_PREFIX"`
	TTL    time.Duration `yaml:"ttl" env:"STEPWISE_REDIS_TTL"`
}

// MCPConfig configures the MCP front end.
type MCPConfig struct {
	Transport string `yaml:"transport" env:"STEPWISE_MCP_TRANSPORT"`
	Port      int    `yaml:"port" env:"STEPWISE_MCP_PORT"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		LogLevel: "info",
		MaxSteps: 64,
		Timeout:  3 * time.Second,
		HTTP:     HTTPConfig{Addr: ":8080"},
		Redis:    RedisConfig{Prefix: "stepwise:result:", TTL: 24 * time.Hour},
		MCP:      MCPConfig{Transport: "stdio", Port: 8081},
	}
}

// Load resolves the configuration. A missing file at the default path is a
// valid setup; a missing file named explicitly is an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// Env and defaults carry it.
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
