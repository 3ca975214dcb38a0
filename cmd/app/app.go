// Package main is the entry point for the exchange rate bank service.
package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"ratebank/internal/bank"
	"ratebank/internal/cache"
	"ratebank/internal/config"
	"ratebank/internal/currency"
	"ratebank/internal/provider"
	"ratebank/internal/repository"
	"ratebank/internal/worker"
)

// App holds all application dependencies and manages their lifecycle.
type App struct {
	cfg            *config.Config
	logger         *zap.SugaredLogger
	db             *sql.DB
	rdbCache       *redis.Client
	store          cache.Store
	bank           *bank.Bank
	asynqClient    *asynq.Client
	asynqServer    *asynq.Server
	asynqScheduler *asynq.Scheduler
	asynqMux       *asynq.ServeMux
	enqueuer       *worker.AsynqEnqueuer
	httpServer     *http.Server
}

// NewApp initializes all dependencies and returns a ready-to-run App.
func NewApp(cfg *config.Config, logger *zap.SugaredLogger) (*App, error) {
	app := &App{
		cfg:    cfg,
		logger: logger,
	}

	if err := app.initStorage(); err != nil {
		_ = app.close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.close()
		return nil, err
	}

	return app, nil
}

// close releases database and Redis connections
func (app *App) close() error {
	var errs []error
	if app.asynqClient != nil {
		if err := app.asynqClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("asynq client close: %w", err))
		}
	}
	if app.rdbCache != nil {
		if err := app.rdbCache.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis cache close: %w", err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	return errors.Join(errs...)
}

// initStorage opens the configured rates cache backend.
func (app *App) initStorage() error {
	switch app.cfg.Cache.Backend {
	case config.CacheBackendFile:
		app.store = cache.NewFileStore(app.cfg.Cache.Path)
		app.logger.Infow("Using file rates cache", "path", app.cfg.Cache.Path)

	case config.CacheBackendRedis:
		app.rdbCache = redis.NewClient(&redis.Options{
			Addr: app.cfg.Redis.CacheAddr,
		})
		if err := app.rdbCache.Ping(context.Background()).Err(); err != nil {
			return fmt.Errorf("connect to Redis (cache, %s): %w", app.cfg.Redis.CacheAddr, err)
		}
		app.store = cache.NewRedisStore(app.rdbCache, app.cfg.Cache.RedisKey)
		app.logger.Infow("Connected to Redis cache", "addr", app.cfg.Redis.CacheAddr, "key", app.cfg.Cache.RedisKey)

	case config.CacheBackendPostgres:
		db, err := repository.NewPostgresDB(context.Background(), &app.cfg.Database)
		if err != nil {
			return fmt.Errorf("connect to Postgres: %w", err)
		}
		app.db = db

		if err := repository.RunMigrations(app.db, app.logger); err != nil {
			return fmt.Errorf("run DB migrations: %w", err)
		}
		app.store = repository.NewPostgresStore(app.db, app.cfg.Cache.Name, app.logger)
		app.logger.Infow("Using Postgres rates cache", "name", app.cfg.Cache.Name)

	default:
		app.store = cache.None{}
		app.logger.Infow("Rates cache disabled")
	}

	return nil
}

func (app *App) initServices() error {
	tlsVersion, err := provider.ParseTLSVersion(app.cfg.Provider.TLSVersion)
	if err != nil {
		return err
	}

	catalog := currency.ISO()
	source, err := bank.SourceCurrency(catalog, app.cfg.Bank.Source)
	if err != nil {
		app.logger.Warnw("Unknown source currency, using default",
			"source", app.cfg.Bank.Source, "default", source, "error", err)
	}
	fetcher := provider.NewTransferwiseFetcher(provider.TransferwiseOptions{
		AccessKey:      app.cfg.Provider.AccessKey,
		Source:         source,
		UseSandbox:     app.cfg.Provider.UseSandbox,
		BaseURL:        app.cfg.Provider.BaseURL,
		TLSVersion:     tlsVersion,
		RaiseOnFailure: app.cfg.Provider.RaiseOnFailure,
		Timeout:        time.Duration(app.cfg.Provider.Timeout) * time.Second,
	}, app.logger)
	if app.cfg.Provider.AccessKey == "" {
		app.logger.Warnw("No provider access key configured, only cached rates will be served")
	}

	app.bank = bank.New(fetcher, app.store, catalog, app.logger, bank.Options{
		Source: source,
		TTL:    time.Duration(app.cfg.Bank.TTLSeconds) * time.Second,
	})

	if app.cfg.Worker.Enabled {
		if err := app.initWorker(); err != nil {
			return err
		}
	}

	app.initHTTP(app.bank)
	return nil
}

// initWorker wires the asynq server, the refresh schedule and the enqueuer.
func (app *App) initWorker() error {
	redisOpt := asynq.RedisClientOpt{Addr: app.cfg.Redis.AsynqAddr}
	taskOpts := worker.TaskOptions{
		MaxRetry: app.cfg.Worker.MaxRetry,
		Timeout:  time.Duration(app.cfg.Worker.TimeoutSec) * time.Second,
	}

	app.asynqClient = asynq.NewClient(redisOpt)
	app.enqueuer = worker.NewAsynqEnqueuer(app.asynqClient, taskOpts)
	app.asynqServer = asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency:              app.cfg.Worker.Concurrency,
			DelayedTaskCheckInterval: time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
			TaskCheckInterval:        time.Duration(app.cfg.Worker.CheckIntervalSec) * time.Second,
		},
	)
	app.asynqMux = asynq.NewServeMux()
	app.asynqMux.HandleFunc(worker.TaskTypeRefreshRates, worker.NewRefreshHandler(app.bank, app.logger))

	app.asynqScheduler = asynq.NewScheduler(redisOpt, &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := worker.RegisterSchedule(app.asynqScheduler, app.cfg.Worker.RefreshCron, taskOpts)
	if err != nil {
		return err
	}

	app.logger.Infow("Asynq configured",
		"addr", app.cfg.Redis.AsynqAddr,
		"refresh_cron", app.cfg.Worker.RefreshCron,
		"entry_id", entryID,
	)
	return nil
}

// Run starts the HTTP server and, when enabled, the refresh worker, blocking
// until the context is canceled.
func (app *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if app.asynqServer != nil {
		g.Go(func() error {
			app.logger.Infow("Starting Asynq worker server")
			if err := app.asynqServer.Start(app.asynqMux); err != nil {
				return fmt.Errorf("asynq worker failed to start: %w", err)
			}
			if err := app.asynqScheduler.Start(); err != nil {
				return fmt.Errorf("asynq scheduler failed to start: %w", err)
			}

			// Warm the table from the shared cache before the first scheduled run.
			if err := app.enqueuer.EnqueueRefresh(ctx, false); err != nil {
				app.logger.Warnw("Failed to enqueue warm-up refresh", "error", err)
			}

			<-ctx.Done()
			return nil
		})
	}

	g.Go(func() error {
		app.logger.Infow("HTTP server listening", "port", app.cfg.Server.Port)
		if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		return app.shutdown()
	})

	return g.Wait()
}

// shutdown performs ordered teardown: HTTP server -> scheduler -> Asynq
// worker -> connections, so in-flight refreshes finish before their
// store closes.
func (app *App) shutdown() error {
	app.logger.Infow("Shutting down server...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Errorw("HTTP server shutdown error", "error", err)
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}

	if app.asynqScheduler != nil {
		app.asynqScheduler.Shutdown()
	}
	if app.asynqServer != nil {
		app.asynqServer.Shutdown()
	}

	if err := app.close(); err != nil {
		app.logger.Errorw("Connection cleanup errors", "error", err)
		errs = append(errs, err)
	}

	app.logger.Infow("Shutdown complete")
	return errors.Join(errs...)
}
