package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all server configuration, loaded from the environment
type Config struct {
	Port        int    `env:"PORT" envDefault:"8080"`
	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"svp.db"`

	LobbyDeadlineSec      int  `env:"LOBBY_DEADLINE_SEC" envDefault:"90"`
	CollectingDeadlineSec int  `env:"COLLECTING_DEADLINE_SEC" envDefault:"60"`
	DecidingDeadlineSec   int  `env:"DECIDING_DEADLINE_SEC" envDefault:"30"`
	MinPerCategory        int  `env:"MIN_PER_CATEGORY" envDefault:"2"`
	MaxPerCategory        int  `env:"MAX_PER_CATEGORY" envDefault:"3"`
	AutoStartOnMin        bool `env:"AUTO_START_ON_MIN" envDefault:"true"`
}

// Load parses configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints
func (c Config) Validate() error {
	if c.MinPerCategory < 1 {
		return fmt.Errorf("MIN_PER_CATEGORY must be at least 1, got %d", c.MinPerCategory)
	}
	if c.MaxPerCategory < c.MinPerCategory {
		return fmt.Errorf("MAX_PER_CATEGORY (%d) must be >= MIN_PER_CATEGORY (%d)",
			c.MaxPerCategory, c.MinPerCategory)
	}
	return nil
}

// LobbyDeadline returns the lobby deadline as a duration
func (c Config) LobbyDeadline() time.Duration {
	return time.Duration(c.LobbyDeadlineSec) * time.Second
}

// CollectingDeadline returns the response-collection deadline as a duration
func (c Config) CollectingDeadline() time.Duration {
	return time.Duration(c.CollectingDeadlineSec) * time.Second
}

// DecidingDeadline returns the decision deadline as a duration
func (c Config) DecidingDeadline() time.Duration {
	return time.Duration(c.DecidingDeadlineSec) * time.Second
}
