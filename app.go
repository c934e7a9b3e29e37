package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"items-api/config"
	"items-api/controllers"
	"items-api/docs"
	"items-api/framework"
	"items-api/middleware"
	"items-api/routes"
	"items-api/store"
)

const limiterSweepInterval = time.Minute

// application owns the adapter and every connection opened to build it.
type application struct {
	cfg     *config.Config
	logger  *slog.Logger
	adapter framework.Adapter
	closers []func()
}

func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Env == "development" {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// newApplication wires storage, middleware and docs into the configured
// adapter. ctx bounds background work such as the limiter sweep.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*application, error) {
	app := &application{cfg: cfg, logger: logger}

	var redisClient *redis.Client
	if cfg.RedisEnabled() {
		client, err := config.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		redisClient = client
		app.closers = append(app.closers, func() { _ = client.Close() })
	}

	items, err := app.itemStore(ctx, redisClient)
	if err != nil {
		app.Close()
		return nil, err
	}

	auth, err := app.authMiddleware()
	if err != nil {
		app.Close()
		return nil, err
	}

	docsHandler, err := docs.NewHandler(docs.Build(fmt.Sprintf("http://localhost:%d", cfg.Port)), routes.DocsPath)
	if err != nil {
		app.Close()
		return nil, err
	}

	adapter, err := framework.New(cfg.Framework, framework.Dependencies{
		Controller:  controllers.NewItemController(items, logger),
		Limiter:     app.limiter(ctx, redisClient),
		CORS:        middleware.DefaultCORSOptions(cfg.CORSOrigin),
		Logger:      logger,
		LogRequests: cfg.LoggingEnabled(),
		TrustProxy:  cfg.TrustProxy,
		Auth:        auth,
		Docs:        docsHandler,
	})
	if err != nil {
		app.Close()
		return nil, err
	}
	app.adapter = adapter
	return app, nil
}

func (a *application) itemStore(ctx context.Context, redisClient *redis.Client) (store.ItemStore, error) {
	var items store.ItemStore
	switch a.cfg.Storage.Driver {
	case "mongo":
		client, err := config.ConnectMongoDB(ctx, a.cfg.Mongo)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = client.Disconnect(context.Background()) })
		items = store.NewMongoItemStore(client.Database(a.cfg.Mongo.Database).Collection(a.cfg.Mongo.Collection))
		if a.cfg.CacheEnabled() && redisClient != nil {
			items = store.NewCachedItemStore(items, redisClient, a.cfg.Redis.CacheTTL, a.logger)
		}
	default:
		items = store.NewMemoryItemStore()
	}
	return items, nil
}

func (a *application) limiter(ctx context.Context, redisClient *redis.Client) middleware.Limiter {
	rl := a.cfg.RateLimit
	if rl.Store == "redis" && redisClient != nil {
		return middleware.NewRedisLimiter(redisClient, rl.Window(), rl.MaxRequests)
	}
	l := middleware.NewFixedWindowLimiter(rl.Window(), rl.MaxRequests)
	go l.Run(ctx, limiterSweepInterval)
	return l
}

func (a *application) authMiddleware() (func(next http.Handler) http.Handler, error) {
	switch a.cfg.Auth.Mode {
	case "jwt":
		return middleware.NewJWTAuth(a.cfg.Auth.JWTSecret).Require, nil
	case "apikey":
		return middleware.APIKeyAuth(a.cfg.Auth.APIKey), nil
	case "", "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", a.cfg.Auth.Mode)
	}
}

// Run serves until ctx is cancelled.
func (a *application) Run(ctx context.Context) error {
	return a.adapter.Listen(ctx, a.cfg.Port, func(addr string) {
		a.logger.Info("server listening",
			"port", a.cfg.Port,
			"addr", addr,
			"framework", a.adapter.Name(),
			"docs", fmt.Sprintf("http://localhost:%d%s", a.cfg.Port, routes.DocsPath))
	})
}

// Close releases connections in reverse order of opening.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func frameworkList() string {
	return strings.Join(framework.Supported(), ", ")
}

func exitOnError(logger *slog.Logger, msg string, err error) {
	if err == nil {
		return
	}
	logger.Error(msg, "error", err)
	os.Exit(1)
}
