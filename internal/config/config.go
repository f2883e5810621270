package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Auth      AuthConfig      `yaml:"auth"`
	NATS      NATSConfig      `yaml:"nats"`
	Cache     CacheConfig     `yaml:"cache"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// Path, when set, sends logs to a size-capped file.
	Path string `yaml:"path"`
}

type TransportConfig struct {
	Mode string `yaml:"mode"` // "http" or "stdio"
}

type AuthConfig struct {
	// Token enables bearer auth over HTTP when non-empty.
	Token string `yaml:"token"`
}

type NATSConfig struct {
	// URL is empty to disable event publishing.
	URL    string `yaml:"url"`
	Prefix string `yaml:"prefix"`
}

type CacheConfig struct {
	// MaxCost is the snapshot cache budget in bytes; zero disables the cache.
	MaxCost int64         `yaml:"max_cost"`
	TTL     time.Duration `yaml:"ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "project365.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Transport: TransportConfig{
			Mode: "http",
		},
		NATS: NATSConfig{
			Prefix: "project365",
		},
		Cache: CacheConfig{
			MaxCost: 8 << 20,
			TTL:     5 * time.Minute,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("PROJECT365_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	stringVars := map[string]*string{
		"PROJECT365_SERVER_HOST":    &cfg.Server.Host,
		"PROJECT365_DB_PATH":        &cfg.DB.Path,
		"PROJECT365_LOG_LEVEL":      &cfg.Log.Level,
		"PROJECT365_LOG_PATH":       &cfg.Log.Path,
		"PROJECT365_TRANSPORT_MODE": &cfg.Transport.Mode,
		"PROJECT365_AUTH_TOKEN":     &cfg.Auth.Token,
		"PROJECT365_NATS_URL":       &cfg.NATS.URL,
		"PROJECT365_NATS_PREFIX":    &cfg.NATS.Prefix,
	}
	for name, dst := range stringVars {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	if portStr := os.Getenv("PROJECT365_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECT365_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if costStr := os.Getenv("PROJECT365_CACHE_MAX_COST"); costStr != "" {
		cost, err := strconv.ParseInt(costStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECT365_CACHE_MAX_COST: %w", err)
		}
		cfg.Cache.MaxCost = cost
	}
	if ttlStr := os.Getenv("PROJECT365_CACHE_TTL"); ttlStr != "" {
		ttl, err := time.ParseDuration(ttlStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid PROJECT365_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = ttl
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Transport.Mode {
	case "http", "stdio":
	default:
		return fmt.Errorf("invalid transport mode %q: want http or stdio", c.Transport.Mode)
	}
	if c.Transport.Mode == "http" && (c.Server.Port <= 0 || c.Server.Port > 65535) {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Cache.MaxCost < 0 {
		return fmt.Errorf("invalid cache max cost %d", c.Cache.MaxCost)
	}
	return nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
