package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort         = 8080
	DefaultCleanupDelay = 60 * time.Second
	DefaultNatsSubject  = "battleship.matches"
)

type Config struct {
	Port         int
	LogLevel     string
	Development  bool
	CleanupDelay time.Duration
	DatabaseURL  string
	NatsURL      string
	NatsSubject  string
}

func (c Config) Addr() string { return fmt.Sprintf(":%d", c.Port) }

// Load reads an optional .env file and then the environment. Variables
// already set in the environment win over the file.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}
	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, applying defaults.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Config{
		Port:         DefaultPort,
		LogLevel:     "info",
		CleanupDelay: DefaultCleanupDelay,
		NatsSubject:  DefaultNatsSubject,
	}

	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("invalid PORT %q", v)
		}
		cfg.Port = port
	}
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		cfg.LogLevel = v
	}
	if v, ok := lookup("APP_ENV"); ok {
		switch v {
		case "", "production":
		case "development":
			cfg.Development = true
		default:
			return Config{}, fmt.Errorf("invalid APP_ENV %q", v)
		}
	}
	if v, ok := lookup("CLEANUP_DELAY"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return Config{}, fmt.Errorf("invalid CLEANUP_DELAY %q", v)
		}
		cfg.CleanupDelay = d
	}
	if v, ok := lookup("DATABASE_URL"); ok {
		cfg.DatabaseURL = v
	}
	if v, ok := lookup("NATS_URL"); ok {
		cfg.NatsURL = v
	}
	if v, ok := lookup("NATS_SUBJECT"); ok && v != "" {
		cfg.NatsSubject = v
	}
	return cfg, nil
}
