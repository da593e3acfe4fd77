package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/gamekit/internal/game/fog"
)

// Server holds all configuration for the gamekit server.
type Server struct {
	LogLevel string `yaml:"log_level"`

	// Simulation
	TickRate time.Duration `yaml:"tick_rate"`
	// DataPath is a YAML table file. Empty uses the embedded tables.
	DataPath string `yaml:"data_path"`

	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Fog       fog.Config      `yaml:"fog"`

	// Targeting
	DebugTargeting bool `yaml:"debug_targeting"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	URL      string `yaml:"url"` // overrides the fields below
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// RedisConfig selects the cooldown ledger store. An empty URL keeps
// cooldowns in memory.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// TelemetryConfig configures OTLP trace export. An empty endpoint disables it.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		LogLevel: "info",
		TickRate: 33 * time.Millisecond,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "gamekit",
			Password: "gamekit",
			DBName:   "gamekit",
			SSLMode:  "disable",
		},
		Fog: fog.DefaultConfig(),
	}
}

// LoadServer loads config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.TickRate <= 0 {
		return cfg, fmt.Errorf("config %s: tick_rate must be positive", path)
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from DATABASE_URL and REDIS_URL.
// A DATABASE_URL enables the database.
func (s *Server) ApplyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		s.Database.URL = v
		s.Database.Enabled = true
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		s.Redis.URL = v
	}
}
