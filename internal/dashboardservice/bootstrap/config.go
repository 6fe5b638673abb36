package bootstrap

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr           string        `yaml:"http_addr"`
	GRPCHealthAddr     string        `yaml:"grpc_health_addr"`
	UserServiceURL     string        `yaml:"user_service_url"`
	DocumentServiceURL string        `yaml:"document_service_url"`
	AuthTimeout        time.Duration `yaml:"auth_timeout"`
	DataTimeout        time.Duration `yaml:"data_timeout"`
	TokenCacheTTL      time.Duration `yaml:"token_cache_ttl"`
	TokenCacheRedis    string        `yaml:"token_cache_redis"`
	Version            string        `yaml:"version"`
	LogLevel           string        `yaml:"log_level"`
}

// Load resolves configuration as defaults, then an optional YAML file named
// by CONFIG_FILE, then environment overrides.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:           ":8003",
		GRPCHealthAddr:     ":9003",
		UserServiceURL:     "http://localhost:8001",
		DocumentServiceURL: "http://localhost:8002",
		AuthTimeout:        5 * time.Second,
		DataTimeout:        10 * time.Second,
		TokenCacheTTL:      300 * time.Second,
		Version:            "1.0.0",
		LogLevel:           "info",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file: %w", err)
		}
	}

	cfg.HTTPAddr = envOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.GRPCHealthAddr = envOrDefault("GRPC_HEALTH_ADDR", cfg.GRPCHealthAddr)
	cfg.UserServiceURL = envOrDefault("USER_SERVICE_URL", cfg.UserServiceURL)
	cfg.DocumentServiceURL = envOrDefault("DOCUMENT_SERVICE_URL", cfg.DocumentServiceURL)
	cfg.AuthTimeout = envDuration("AUTH_TIMEOUT", cfg.AuthTimeout)
	cfg.DataTimeout = envDuration("DATA_TIMEOUT", cfg.DataTimeout)
	cfg.TokenCacheTTL = envDuration("TOKEN_CACHE_TTL", cfg.TokenCacheTTL)
	cfg.TokenCacheRedis = envOrDefault("TOKEN_CACHE_REDIS", cfg.TokenCacheRedis)
	cfg.Version = envOrDefault("SERVICE_VERSION", cfg.Version)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return value
}
