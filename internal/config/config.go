package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds settings shared by the bot, API and CLI binaries.
type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`

	Telegram struct {
		BotToken  string  `env:"BOT_TOKEN"`
		AdminIDs  []int64 `env:"ADMIN_IDS" envSeparator:","`
		CreatorID int64   `env:"CREATOR_ID" envDefault:"0"`
	}

	Database struct {
		Driver   string `env:"DB_DRIVER" envDefault:"postgres"`
		URL      string `env:"DATABASE_URL"`
		Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
		Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
		User     string `env:"POSTGRES_USER" envDefault:"postgres"`
		Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
		Name     string `env:"POSTGRES_DB" envDefault:"tapbot"`
		SSLMode  string `env:"POSTGRES_SSLMODE" envDefault:"disable"`
		Path     string `env:"DB_PATH" envDefault:"tapbot.db"`
	}

	API struct {
		Host        string   `env:"API_HOST" envDefault:"0.0.0.0"`
		Port        int      `env:"API_PORT" envDefault:"8000"`
		Prefix      string   `env:"API_PREFIX" envDefault:"/api/v1"`
		CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	}

	// Redis backs the registration conversation state.
	Redis struct {
		Host     string        `env:"FSM_REDIS_HOST" envDefault:"localhost"`
		Port     int           `env:"FSM_REDIS_PORT" envDefault:"6379"`
		DB       int           `env:"FSM_REDIS_DB" envDefault:"1"`
		Password string        `env:"FSM_REDIS_PASSWORD"`
		StateTTL time.Duration `env:"FSM_STATE_TTL" envDefault:"24h"`
	}

	Digest struct {
		Schedule string `env:"DIGEST_SCHEDULE" envDefault:"0 20 * * *"`
		Timezone string `env:"DIGEST_TIMEZONE" envDefault:"UTC"`
		TopN     int    `env:"DIGEST_TOP_N" envDefault:"5"`
	}

	LeaderboardLimit int    `env:"LEADERBOARD_LIMIT" envDefault:"10"`
	MetricsAddr      string `env:"METRICS_ADDR" envDefault:":9090"`
}

// Load reads a .env file when present and parses the environment.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Digest.TopN <= 0 {
		return fmt.Errorf("DIGEST_TOP_N must be positive")
	}
	if c.LeaderboardLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_LIMIT must be positive")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.Database.Driver == DriverSQLite {
		return c.Database.Path
	}
	if c.Database.URL != "" {
		return c.Database.URL
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Database.User, c.Database.Password),
		Host:     net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port)),
		Path:     "/" + c.Database.Name,
		RawQuery: "sslmode=" + c.Database.SSLMode,
	}
	return u.String()
}

// RedisAddr returns host:port of the conversation state store.
func (c *Config) RedisAddr() string {
	return net.JoinHostPort(c.Redis.Host, strconv.Itoa(c.Redis.Port))
}

// APIAddr returns the listen address of the HTTP API.
func (c *Config) APIAddr() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// IsAdmin reports whether the Telegram user may run admin-only bot commands.
func (c *Config) IsAdmin(telegramID int64) bool {
	if c.Telegram.CreatorID != 0 && telegramID == c.Telegram.CreatorID {
		return true
	}
	for _, id := range c.Telegram.AdminIDs {
		if id == telegramID {
			return true
		}
	}
	return false
}
