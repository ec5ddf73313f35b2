package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		URL           string `yaml:"url"`
		Timeout       string `yaml:"timeout"`
		SlowThreshold string `yaml:"slow_threshold"`
	} `yaml:"api"`
	Storage struct {
		// Backend is one of file, redis or memory.
		Backend string `yaml:"backend"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Topics struct {
		TTL string `yaml:"ttl"`
	} `yaml:"topics"`
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Log struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

const (
	DefaultAPIURL  = "http://localhost:8080/api"
	DefaultBackend = "file"
	DefaultPort    = "8090"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	cfg := Config{}
	cfg.API.URL = DefaultAPIURL
	cfg.Storage.Backend = DefaultBackend
	cfg.Server.Port = DefaultPort
	cfg.Log.Level = "info"
	return cfg
}

// Load reads YAML config from path on top of Default. A missing file is not an
// error. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BRAINQUEST_API_URL"); v != "" {
		cfg.API.URL = v
	}
	if v := os.Getenv("BRAINQUEST_STORAGE"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("BRAINQUEST_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// TTLDuration parses a duration string or returns the fallback if empty.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
