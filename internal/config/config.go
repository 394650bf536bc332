package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Tracking TrackingConfig `yaml:"tracking"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with environment override
func (c ServerConfig) GetHost() string {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// TrackingConfig holds tracker settings: where the store file lives and
// the public base URL baked into pixel and redirect links.
type TrackingConfig struct {
	// PublicBaseURL is the externally reachable origin for tracking
	// URLs. It is configured explicitly rather than inferred from
	// request headers, so the service works behind arbitrary proxies.
	PublicBaseURL string `yaml:"public_base_url"`
	DataDir       string `yaml:"data_dir"`
	DatabasePath  string `yaml:"database_path"`
	StaticDir     string `yaml:"static_dir"`
}

// DBPath returns the resolved path of the SQLite store file.
func (c TrackingConfig) DBPath() string {
	if c.DatabasePath != "" {
		return c.DatabasePath
	}
	return filepath.Join(c.DataDir, "tracking.db")
}

// Load reads and parses the configuration file. A missing file is not
// an error: the service runs on defaults plus environment overrides.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, err
		}
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Tracking.DataDir == "" {
		cfg.Tracking.DataDir = "."
	}
	if cfg.Tracking.PublicBaseURL == "" {
		cfg.Tracking.PublicBaseURL = "http://localhost:8080"
	}
	if cfg.Tracking.StaticDir == "" {
		cfg.Tracking.StaticDir = "./web/dist"
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so settings can live in .env locally and in real env vars in
// production.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if port := os.Getenv("PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("PUBLIC_BASE_URL"); v != "" {
		cfg.Tracking.PublicBaseURL = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Tracking.DataDir = v
	}
	if v := os.Getenv("TRACKER_DB_PATH"); v != "" {
		cfg.Tracking.DatabasePath = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.Tracking.StaticDir = v
	}

	return cfg, nil
}
