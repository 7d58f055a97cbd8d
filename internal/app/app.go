package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/redis/go-redis/v9"
	"github.com/vadimbarashkov/short-links/internal/config"
	"github.com/vadimbarashkov/short-links/internal/database/memory"
	"github.com/vadimbarashkov/short-links/internal/metrics"
	"github.com/vadimbarashkov/short-links/internal/ratelimit"
	"github.com/vadimbarashkov/short-links/internal/service"
	"github.com/vadimbarashkov/short-links/pkg/postgres"
	"golang.org/x/sync/errgroup"

	myhttp "github.com/vadimbarashkov/short-links/internal/api/http"
	dbpostgres "github.com/vadimbarashkov/short-links/internal/database/postgres"
)

// newRepository opens the configured storage. The returned cleanup must be
// called once the server has stopped.
func newRepository(ctx context.Context, cfg *config.Config) (service.URLRepository, func() error, error) {
	const op = "app.newRepository"

	if cfg.Storage.Driver == config.StorageMemory {
		return memory.NewURLRepository(), func() error { return nil }, nil
	}

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	if err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN()); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	return dbpostgres.NewURLRepository(db), db.Close, nil
}

// newHandler wires the service and its collaborators behind the HTTP router.
func newHandler(cfg *config.Config, logger *httplog.Logger, repo service.URLRepository, limiter myhttp.Limiter) http.Handler {
	m := metrics.New()

	urlSvc := service.NewURLService(repo, logger.Logger,
		service.WithMaxRetries(cfg.Shortener.MaxRetries),
		service.WithRecorder(m),
	)

	opts := []myhttp.Option{
		myhttp.WithBaseURL(cfg.Shortener.BaseURL),
		myhttp.WithMetrics(m),
		myhttp.WithRequestTimeout(cfg.HTTPServer.RequestTimeout),
	}
	if limiter != nil {
		opts = append(opts, myhttp.WithLimiter(limiter))
	}

	return myhttp.NewRouter(logger, urlSvc, opts...)
}

func Run(ctx context.Context, cfg *config.Config, logger *httplog.Logger) error {
	const op = "app.Run"

	repo, closeRepo, err := newRepository(ctx, cfg)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer closeRepo()

	var limiter myhttp.Limiter

	if cfg.RateLimit.Enabled {
		rdb, err := ratelimit.Connect(ctx, &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer rdb.Close()

		limiter = ratelimit.New(rdb, ratelimit.Config{
			KeyPrefix:    cfg.RateLimit.KeyPrefix,
			Capacity:     cfg.RateLimit.Capacity,
			RefillRate:   cfg.RateLimit.RefillRate,
			RefillPeriod: cfg.RateLimit.RefillPeriod,
		})
	}

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        newHandler(cfg, logger, repo, limiter),
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.InfoContext(ctx, "starting server",
			"addr", server.Addr,
			"env", cfg.Env,
			"storage", cfg.Storage.Driver,
		)

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.InfoContext(ctx, "shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		return nil
	})

	return g.Wait()
}
