package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const minProductionSecret = 32

// Config is the service configuration, read from the environment after an
// optional .env file.
type Config struct {
	Env      string `env:"GO_ENV" envDefault:"development"`
	Port     string `env:"PORT" envDefault:"8080"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	MongoURI     string `env:"MONGODB_URI,required"`
	DatabaseName string `env:"DATABASE_NAME" envDefault:"civic_welfare"`

	JWTSecret      string        `env:"JWT_SECRET,required"`
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"30m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	RedisAddress  string `env:"REDIS_ADDRESS"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	ReportLimitPrefix string `env:"REPORT_LIMIT_PREFIX" envDefault:"report_limit"`
	ReportDailyLimit  int64  `env:"REPORT_DAILY_LIMIT" envDefault:"20"`

	AuthRateLimit  int64         `env:"AUTH_RATE_LIMIT" envDefault:"10"`
	AuthRatePeriod time.Duration `env:"AUTH_RATE_PERIOD" envDefault:"1m"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// IsProduction reports whether GO_ENV names a production deployment.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// RedisEnabled reports whether a Redis address was configured.
func (c *Config) RedisEnabled() bool {
	return c.RedisAddress != ""
}

// Load reads the given .env files, if present, and parses the environment.
// Missing files are not an error.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.IsProduction() && len(c.JWTSecret) < minProductionSecret {
		return fmt.Errorf("JWT_SECRET must be at least %d bytes in production", minProductionSecret)
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.ReportDailyLimit < 1 {
		return errors.New("REPORT_DAILY_LIMIT must be at least 1")
	}
	if c.AuthRateLimit < 1 || c.AuthRatePeriod <= 0 {
		return errors.New("AUTH_RATE_LIMIT and AUTH_RATE_PERIOD must be positive")
	}
	return nil
}
