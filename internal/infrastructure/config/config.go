package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all trussfs configuration.
type Config struct {
	Logging   LogConfig       `yaml:"logging" toml:"logging"`
	Watcher   WatcherConfig   `yaml:"watcher" toml:"watcher"`
	Server    ServerConfig    `yaml:"server" toml:"server"`
	RateLimit RateLimitConfig `yaml:"rate_limit" toml:"rate_limit"`
	Metrics   MetricsConfig   `yaml:"metrics" toml:"metrics"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string   `envconfig:"TRUSSFS_LOG_LEVEL" default:"info" yaml:"level" toml:"level"`
	Development bool     `envconfig:"TRUSSFS_LOG_DEV" default:"false" yaml:"development" toml:"development"`
	OutputPaths []string `envconfig:"TRUSSFS_LOG_OUTPUT" default:"stderr" yaml:"output" toml:"output"`
}

// WatcherConfig holds change-notification configuration.
type WatcherConfig struct {
	MaxPending     int      `envconfig:"TRUSSFS_WATCH_MAX_PENDING" default:"65536" yaml:"max_pending" toml:"max_pending"`
	Ignore         []string `envconfig:"TRUSSFS_WATCH_IGNORE" yaml:"ignore" toml:"ignore"`
	BackendBuffer  uint     `envconfig:"TRUSSFS_WATCH_BUFFER" default:"0" yaml:"backend_buffer" toml:"backend_buffer"`
	StopTimeoutSec int      `envconfig:"TRUSSFS_WATCH_STOP_TIMEOUT" default:"5" yaml:"stop_timeout_sec" toml:"stop_timeout_sec"`
}

// ServerConfig holds HTTP bridge configuration.
type ServerConfig struct {
	Host           string        `envconfig:"TRUSSFS_HOST" default:"127.0.0.1" yaml:"host" toml:"host"`
	Port           string        `envconfig:"TRUSSFS_PORT" default:"8470" yaml:"port" toml:"port"`
	AllowedOrigins []string      `envconfig:"TRUSSFS_CORS_ORIGINS" default:"*" yaml:"allowed_origins" toml:"allowed_origins"`
	SessionTTL     time.Duration `envconfig:"TRUSSFS_SESSION_TTL" default:"30m" yaml:"session_ttl" toml:"session_ttl"`
	MaxReadBytes   int64         `envconfig:"TRUSSFS_MAX_READ_BYTES" default:"67108864" yaml:"max_read_bytes" toml:"max_read_bytes"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"TRUSSFS_RATE_LIMIT_RPS" default:"100" yaml:"rps" toml:"rps"`
	Burst             int  `envconfig:"TRUSSFS_RATE_LIMIT_BURST" default:"200" yaml:"burst" toml:"burst"`
	Enabled           bool `envconfig:"TRUSSFS_RATE_LIMIT_ENABLED" default:"true" yaml:"enabled" toml:"enabled"`
}

// MetricsConfig toggles Prometheus instrumentation.
type MetricsConfig struct {
	Enabled bool `envconfig:"TRUSSFS_METRICS" default:"true" yaml:"enabled" toml:"enabled"`
}

// Addr returns host:port for the bridge listener.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// StopTimeout returns the watcher stop deadline.
func (w WatcherConfig) StopTimeout() time.Duration {
	return time.Duration(w.StopTimeoutSec) * time.Second
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// LoadFile reads a YAML or TOML file over Default. The format follows the
// file extension (.yaml, .yml, .toml).
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := Default()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Logging: LogConfig{
			Level:       "info",
			Development: false,
			OutputPaths: []string{"stderr"},
		},
		Watcher: WatcherConfig{
			MaxPending:     65536,
			StopTimeoutSec: 5,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           "8470",
			AllowedOrigins: []string{"*"},
			SessionTTL:     30 * time.Minute,
			MaxReadBytes:   64 << 20,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
