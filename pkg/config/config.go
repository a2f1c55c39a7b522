package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration, parsed from the environment.
type Config struct {
	HTTPPort         int           `env:"HTTP_PORT" envDefault:"8080"`
	LogLevel         string        `env:"LOG_LEVEL" envDefault:"info"`
	DatabaseDriver   string        `env:"DATABASE_DRIVER" envDefault:"sqlite3"`
	DatabaseURL      string        `env:"DATABASE_URL" envDefault:"cardtable.db"`
	CORSOrigins      []string      `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	RoomTTL          time.Duration `env:"ROOM_TTL" envDefault:"30m"`
	EvictionInterval time.Duration `env:"EVICTION_INTERVAL" envDefault:"1m"`
	SendTimeout      time.Duration `env:"SEND_TIMEOUT" envDefault:"5s"`
}

// Load parses the configuration from the environment.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}
	return cfg, nil
}
