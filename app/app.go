// Package app wires the service together: configuration, logging, database,
// rate limiting, the middleware chain and the HTTP surface. cmd/server is a
// thin shell around it.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"

	"github.com/plannerhq/planner/auth"
	"github.com/plannerhq/planner/core/config"
	"github.com/plannerhq/planner/core/cookie"
	"github.com/plannerhq/planner/core/logger"
	"github.com/plannerhq/planner/core/router"
	"github.com/plannerhq/planner/core/server"
	"github.com/plannerhq/planner/integration/database/pg"
	"github.com/plannerhq/planner/integration/database/redis"
	"github.com/plannerhq/planner/migrations"
	"github.com/plannerhq/planner/organizer"
	"github.com/plannerhq/planner/pkg/ratelimiter"
	"github.com/plannerhq/planner/user"
)

// App is the assembled service.
type App struct {
	cfg    Config
	log    *slog.Logger
	pool   *pgxpool.Pool
	redis  *goredis.Client
	router *router.Router
	server *server.Server

	ready []func(context.Context) error
}

// New loads configuration, connects the backing stores, runs migrations and
// assembles the HTTP surface.
func New(ctx context.Context) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}

	log := newLogger(cfg)
	slog.SetDefault(log)

	pool, err := pg.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("app: connect postgres: %w", err)
	}
	if err := pg.Migrate(ctx, pool, migrations.FS, migrations.Dir, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: migrate: %w", err)
	}

	a := &App{
		cfg:   cfg,
		log:   log,
		pool:  pool,
		ready: []func(context.Context) error{pg.Healthcheck(pool)},
	}

	limiters, err := a.buildLimiters(ctx)
	if err != nil {
		pool.Close()
		return nil, err
	}

	tokens, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("app: token service: %w", err)
	}

	users := user.NewPostgresDirectory(pool)
	svc := auth.NewService(tokens, users, log)
	cookies := cookie.NewFromConfig(cfg.Cookie)

	a.router = newRouter(routerDeps{
		cfg:       cfg,
		log:       log,
		cookies:   cookies,
		auth:      svc,
		authH:     auth.NewHandler(svc, cookies),
		orgH:      organizer.NewHandler(organizer.NewPostgresStores(pool)),
		limiters:  limiters,
		readiness: a.readiness,
	})

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		pool.Close()
		return nil, err
	}
	a.server = srv

	return a, nil
}

// Run serves HTTP until ctx is canceled, then releases backing connections.
func (a *App) Run(ctx context.Context) error {
	defer a.close()
	return a.server.Run(ctx, a.router)
}

// Router exposes the assembled handler, primarily for tests.
func (a *App) Router() *router.Router {
	return a.router
}

func (a *App) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("closing redis", slog.Any("error", err))
		}
	}
	a.pool.Close()
}

// readiness runs every backing-store probe and returns the first failure.
func (a *App) readiness(ctx context.Context) error {
	for _, check := range a.ready {
		if err := check(ctx); err != nil {
			return err
		}
	}
	return nil
}

// classLimiters holds one token bucket per admission class.
type classLimiters struct {
	login    ratelimiter.RateLimiter
	register ratelimiter.RateLimiter
	api      ratelimiter.RateLimiter
}

// buildLimiters creates the three admission classes. Each class gets its own
// store so identical keys (the same IP hitting login and register) never
// share a bucket.
func (a *App) buildLimiters(ctx context.Context) (classLimiters, error) {
	cfg := a.cfg.RateLimit

	var client *goredis.Client
	if strings.EqualFold(cfg.Store, "redis") {
		var redisCfg redis.Config
		if err := config.Load(&redisCfg); err != nil {
			return classLimiters{}, err
		}
		c, err := redis.Connect(ctx, redisCfg)
		if err != nil {
			return classLimiters{}, fmt.Errorf("app: connect redis: %w", err)
		}
		a.redis = c
		a.ready = append(a.ready, redis.Healthcheck(c))
		client = c
	}

	newClass := func(class string, bucket ratelimiter.Config) (ratelimiter.RateLimiter, error) {
		var store ratelimiter.Store
		if client != nil {
			s, err := ratelimiter.NewRedisStore(client, ratelimiter.WithKeyPrefix("ratelimit:"+class+":"))
			if err != nil {
				return nil, err
			}
			store = s
		} else {
			store = ratelimiter.NewMemoryStore(ratelimiter.WithMaxEntries(cfg.MaxEntries))
		}
		return ratelimiter.NewBucket(store, bucket)
	}

	login, err := newClass("login", ratelimiter.Config{
		Capacity: cfg.LoginCapacity, RefillRate: cfg.LoginCapacity, RefillInterval: cfg.LoginPeriod,
	})
	if err != nil {
		return classLimiters{}, err
	}
	register, err := newClass("register", ratelimiter.Config{
		Capacity: cfg.RegisterCapacity, RefillRate: cfg.RegisterCapacity, RefillInterval: cfg.RegisterPeriod,
	})
	if err != nil {
		return classLimiters{}, err
	}
	api, err := newClass("api", ratelimiter.Config{
		Capacity: cfg.APICapacity, RefillRate: cfg.APICapacity, RefillInterval: cfg.APIPeriod,
	})
	if err != nil {
		return classLimiters{}, err
	}

	return classLimiters{login: login, register: register, api: api}, nil
}

// newLogger builds the process logger: JSON lines with secret-bearing
// attributes masked before they reach the sink.
func newLogger(cfg Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	inner := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(logger.NewMaskingHandler(inner)).With(
		slog.String("env", cfg.Env),
	)
}
