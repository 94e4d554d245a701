package app

import (
	"time"

	"github.com/plannerhq/planner/auth"
	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/server"
	"github.com/plannerhq/planner/integration/database/pg"
)

// Config aggregates every subsystem's environment-sourced settings.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	Server    server.Config
	Cookie    cookie.Config
	Auth      auth.Config
	Database  pg.Config
	RateLimit RateLimitConfig
}

// RateLimitConfig holds the three admission classes plus store selection.
// Each class refills to full capacity once per period.
type RateLimitConfig struct {
	// Store selects the bucket backend: "memory" or "redis".
	Store      string `env:"RATE_LIMIT_STORE" envDefault:"memory"`
	MaxEntries int    `env:"RATE_LIMIT_MAX_ENTRIES" envDefault:"10000"`

	LoginCapacity int           `env:"RATE_LIMIT_LOGIN_CAPACITY" envDefault:"5"`
	LoginPeriod   time.Duration `env:"RATE_LIMIT_LOGIN_PERIOD" envDefault:"1m"`

	RegisterCapacity int           `env:"RATE_LIMIT_REGISTER_CAPACITY" envDefault:"3"`
	RegisterPeriod   time.Duration `env:"RATE_LIMIT_REGISTER_PERIOD" envDefault:"1m"`

	APICapacity int           `env:"RATE_LIMIT_API_CAPACITY" envDefault:"100"`
	APIPeriod   time.Duration `env:"RATE_LIMIT_API_PERIOD" envDefault:"1m"`
}
