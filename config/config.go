package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type Config struct {
	Server ServerConfig
	Store  StoreConfig
	Cache  CacheConfig
	Events EventsConfig
	SMTP   SMTPConfig
	App    AppConfig
}

type ServerConfig struct {
	Port           string   `env:"PORT" envDefault:"5000"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

type StoreConfig struct {
	Driver         string        `env:"STORE_DRIVER" envDefault:"mongo"`
	MongoURI       string        `env:"MONGO_URI"`
	MongoDatabase  string        `env:"MONGO_DATABASE" envDefault:"projectsDB"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

// CacheConfig enables the Redis read cache when Addr is set.
type CacheConfig struct {
	Addr string        `env:"REDIS_ADDR"`
	TTL  time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// EventsConfig enables event publishing when URL is set.
type EventsConfig struct {
	URL   string `env:"RABBITMQ_URL"`
	Queue string `env:"EVENTS_QUEUE" envDefault:"project_events"`
	// NotificationsQueue receives a copy of project.added for the mailer.
	NotificationsQueue string `env:"NOTIFICATIONS_QUEUE" envDefault:"project_notifications"`
}

// SMTPConfig enables project notifications when Host is set.
type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	User     string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
}

type AppConfig struct {
	Environment string `env:"APP_ENV" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file and then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment without touching .env.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	switch c.Store.Driver {
	case DriverMongo:
		if c.Store.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER is %s", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", DriverMongo, DriverMemory, c.Store.Driver)
	}
	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.Events.URL != "" && c.Events.Queue == "" {
		return fmt.Errorf("EVENTS_QUEUE is required when RABBITMQ_URL is set")
	}
	if c.Events.URL != "" && c.SMTP.Host != "" {
		switch c.Events.NotificationsQueue {
		case "":
			return fmt.Errorf("NOTIFICATIONS_QUEUE is required when SMTP_HOST is set")
		case c.Events.Queue:
			return fmt.Errorf("NOTIFICATIONS_QUEUE must differ from EVENTS_QUEUE")
		}
	}
	if _, err := logrus.ParseLevel(c.App.LogLevel); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// NewLogger builds the process logger: text in development, JSON elsewhere.
func (c *Config) NewLogger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.App.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	if !c.IsDevelopment() {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	return log
}
