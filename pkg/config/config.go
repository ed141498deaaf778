package config

import (
	"errors"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// envPaths are tried in order; the first existing file is loaded
var envPaths = []string{".env", "../.env", "../../.env"}

// Config holds the process configuration read from the environment
type Config struct {
	Port     string `env:"PORT" envDefault:"8000"`
	GinMode  string `env:"GIN_MODE"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	DatabaseURL string `env:"DATABASE_URL"`
	DataPath    string `env:"DATA_PATH" envDefault:"scheduler.db"`

	JWTSecret       string `env:"JWT_SECRET"`
	APIMasterSecret string `env:"API_MASTER_SECRET"`
	TokenTTLHours   int    `env:"TOKEN_TTL_HOURS" envDefault:"24"`
	BcryptCost      int    `env:"BCRYPT_COST" envDefault:"14"`

	Admin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD" envDefault:"admin123"`
	} `envPrefix:"ADMIN_"`

	DefaultRateLimit int `env:"DEFAULT_RATE_LIMIT" envDefault:"10000"`
}

// LoadDotEnv loads the first .env file found next to or above the working directory
func LoadDotEnv() {
	for _, p := range envPaths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads an optional .env file and parses the environment into a Config
func Load() (*Config, error) {
	LoadDotEnv()
	return Parse()
}

// Parse reads the current environment without touching .env files
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
			// only the first error keeps logs readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}
	return cfg, nil
}

// TokenTTL is the admin token lifetime
func (c *Config) TokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
