// Package config loads service settings from the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverMemory   = "memory"
	DriverFile     = "file"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port     string
	LogLevel string

	StorageDriver string
	StorageDir    string
	StorageKey    string
	DatabaseURL   string
	SQLitePath    string

	AdminJWTSecret string

	MetricsEnabled bool
	MetricsToken   string

	RabbitMQURL string
	EventsQueue string

	WriteLimit  int
	WriteWindow time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8082")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE_DRIVER", DriverMemory)
	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("STORAGE_KEY", "products")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "catalog.db")
	v.SetDefault("ADMIN_JWT_SECRET", "")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_TOKEN", "")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("EVENTS_QUEUE", "catalog_events")
	v.SetDefault("WRITE_LIMIT_PER_MIN", 30)
}

// Load reads configuration from the environment. A nil viper uses a fresh
// instance so tests can set values without touching process env.
func Load(v *viper.Viper) (Config, error) {
	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		Port:           v.GetString("PORT"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		StorageDriver:  strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_DRIVER"))),
		StorageDir:     v.GetString("STORAGE_DIR"),
		StorageKey:     v.GetString("STORAGE_KEY"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		SQLitePath:     v.GetString("SQLITE_PATH"),
		AdminJWTSecret: v.GetString("ADMIN_JWT_SECRET"),
		MetricsEnabled: v.GetBool("METRICS_ENABLED"),
		MetricsToken:   v.GetString("METRICS_TOKEN"),
		RabbitMQURL:    v.GetString("RABBITMQ_URL"),
		EventsQueue:    v.GetString("EVENTS_QUEUE"),
		WriteLimit:     v.GetInt("WRITE_LIMIT_PER_MIN"),
		WriteWindow:    time.Minute,
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch c.StorageDriver {
	case DriverMemory:
	case DriverFile:
		if c.StorageDir == "" {
			return fmt.Errorf("STORAGE_DIR is required for driver %q", c.StorageDriver)
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for driver %q", c.StorageDriver)
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	if c.StorageKey == "" {
		return fmt.Errorf("STORAGE_KEY must not be empty")
	}
	if c.AdminJWTSecret != "" && len(c.AdminJWTSecret) < 32 {
		return fmt.Errorf("ADMIN_JWT_SECRET must be at least 32 chars")
	}
	return nil
}
