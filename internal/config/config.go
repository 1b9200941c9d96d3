package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort    string `mapstructure:"SERVER_PORT"`
	SessionSecret string `mapstructure:"SESSION_SECRET"`
	Environment   string `mapstructure:"ENVIRONMENT"` // development, production
	LogLevel      string `mapstructure:"LOG_LEVEL"`

	// пусто -> встроенный демо-бэкенд
	BackendURL     string        `mapstructure:"BACKEND_URL"`
	BackendTimeout time.Duration `mapstructure:"BACKEND_TIMEOUT"`

	NotifyInterval time.Duration `mapstructure:"NOTIFY_INTERVAL"`
	SessionIdle    time.Duration `mapstructure:"SESSION_IDLE"`

	// журнал аудита, необязательно
	DBDSN string `mapstructure:"DB_DSN"`
}

func (c *Config) Demo() bool { return c.BackendURL == "" }

func (c *Config) Production() bool { return c.Environment == "production" }

var keys = []string{
	"SERVER_PORT", "SESSION_SECRET", "ENVIRONMENT", "LOG_LEVEL",
	"BACKEND_URL", "BACKEND_TIMEOUT", "NOTIFY_INTERVAL", "SESSION_IDLE", "DB_DSN",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("BACKEND_URL", "")
	v.SetDefault("BACKEND_TIMEOUT", 10*time.Second)
	v.SetDefault("NOTIFY_INTERVAL", 30*time.Second)
	v.SetDefault("SESSION_IDLE", 2*time.Hour)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("SESSION_SECRET", "")
}

func Load() *Config {
	cfg, err := load()
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}

func load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	cfg.BackendURL = strings.TrimRight(strings.TrimSpace(cfg.BackendURL), "/")

	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is not set")
	}
	if cfg.BackendTimeout <= 0 {
		return nil, fmt.Errorf("BACKEND_TIMEOUT must be positive")
	}
	if cfg.NotifyInterval <= 0 {
		return nil, fmt.Errorf("NOTIFY_INTERVAL must be positive")
	}
	if cfg.SessionIdle < time.Minute {
		return nil, fmt.Errorf("SESSION_IDLE must be at least 1m")
	}
	return &cfg, nil
}
