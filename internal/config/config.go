// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// MinAdminTokenLength is the minimum required length for the admin API token.
const MinAdminTokenLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"SP_DB_PATH" envDefault:"./data/structpages.db"`
	AdminToken string `env:"SP_ADMIN_TOKEN,required"`
	ServerHost string `env:"SP_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SP_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"SP_ENV" envDefault:"development"`
	LogLevel   string `env:"SP_LOG_LEVEL" envDefault:"info"`
	BaseURL    string `env:"SP_BASE_URL" envDefault:"http://localhost:8080"`

	// Cache configuration. RedisURL selects the distributed backend;
	// TTL is in seconds, CacheSize caps memory cache entries.
	RedisURL    string `env:"SP_REDIS_URL"`
	CachePrefix string `env:"SP_CACHE_PREFIX" envDefault:"sp:"`
	CacheTTL    int    `env:"SP_CACHE_TTL" envDefault:"3600"`
	CacheSize   int    `env:"SP_CACHE_MAX_SIZE" envDefault:"1000"`

	// Rate limiting for write endpoints
	WriteRPS   float64 `env:"SP_WRITE_RPS" envDefault:"5"`
	WriteBurst int     `env:"SP_WRITE_BURST" envDefault:"10"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.AdminToken) < MinAdminTokenLength {
		return nil, fmt.Errorf("SP_ADMIN_TOKEN must be at least %d bytes long, got %d bytes; "+
			"generate a secure token with: openssl rand -base64 32",
			MinAdminTokenLength, len(cfg.AdminToken))
	}

	return cfg, nil
}
