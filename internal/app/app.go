package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/config"
	"github.com/Natalia-54/sistema-academico-jfk/internal/db"
	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/logger"
	"github.com/Natalia-54/sistema-academico-jfk/internal/schema"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"
	"github.com/Natalia-54/sistema-academico-jfk/internal/telemetry"
	"github.com/Natalia-54/sistema-academico-jfk/internal/upload"

	"github.com/go-chi/chi/v5"
	"github.com/uptrace/bun"
	"go.opentelemetry.io/otel"
)

const sweepInterval = 5 * time.Minute

type App struct {
	config    *config.Config
	router    chi.Router
	server    *http.Server
	logger    *slog.Logger
	database  *bun.DB
	sessions  session.Store
	publisher events.Publisher
	telemetry *telemetry.Telemetry
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slogLogger := logger.NewWithServiceContext(ServiceName, Version, logger.FileOptions{
		Path:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	slog.SetDefault(slogLogger)

	slogLogger.Info("initializing application", "env", cfg.Env, "commit", GitCommit, "built", BuildTime)

	app := &App{
		config: cfg,
		logger: slogLogger,
	}

	// Anything opened so far is released if a later step fails.
	ok := false
	defer func() {
		if !ok {
			app.release(context.Background())
		}
	}()

	app.telemetry, err = telemetry.Init(ctx, cfg.Telemetry, ServiceName, Version, slogLogger)
	if err != nil {
		return nil, err
	}
	m := app.telemetry.Metrics

	app.database, err = db.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := m.Database.RegisterDB(app.database.DB, otel.Meter(ServiceName)); err != nil {
		slogLogger.Warn("failed to register connection pool metrics", "error", err)
	}

	if err := schema.Migrate(ctx, app.database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	app.sessions, err = newSessionStore(ctx, cfg, slogLogger)
	if err != nil {
		return nil, err
	}

	publisher, err := events.NewPublisher(cfg.Events, slogLogger)
	if err != nil {
		// Events are best effort; the server runs without them.
		slogLogger.Warn("failed to initialize event publisher, events disabled", "driver", cfg.Events.Driver, "error", err)
		publisher = events.NoopPublisher{}
	}
	app.publisher = events.Instrument(publisher, cfg.Events.Driver, m.Messaging)

	photos, err := upload.NewStore(cfg.Upload.Dir, cfg.Upload.PublicPrefix, cfg.Upload.MaxBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare upload directory: %w", err)
	}

	app.router = BuildRouter(Dependencies{
		Config:    cfg,
		DB:        app.database,
		Sessions:  app.sessions,
		Publisher: app.publisher,
		Photos:    photos,
		Metrics:   m,
		Logger:    slogLogger,
	})

	ok = true
	slogLogger.Info("application initialized successfully")

	return app, nil
}

func newSessionStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	ttl := cfg.Session.TTL()

	if cfg.Session.Store == "redis" {
		client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		logger.Info("using redis session store", "addr", cfg.Redis.Addr)
		return session.NewRedisStore(client, ttl), nil
	}

	store := session.NewMemoryStore(ttl)
	store.StartSweeper(sweepInterval, logger)
	logger.Info("using in-memory session store", "ttl", ttl)
	return store, nil
}

func (a *App) Run() error {
	srv := a.config.Server
	a.server = &http.Server{
		Addr:         fmt.Sprintf(":%s", srv.Port),
		Handler:      a.router,
		ReadTimeout:  time.Duration(srv.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(srv.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(srv.IdleTimeout) * time.Second,
	}

	a.logger.Info("server starting", "port", srv.Port)
	if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests and then releases the session store,
// the event publisher, the database pool and the meter provider.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down server")

	var errs []error
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server: %w", err))
		}
	}
	if err := a.release(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (a *App) release(ctx context.Context) error {
	var errs []error

	if a.sessions != nil {
		if err := a.sessions.Close(); err != nil {
			errs = append(errs, fmt.Errorf("session store: %w", err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("event publisher: %w", err))
		}
	}
	if a.database != nil {
		db.Close(a.database)
	}
	if err := a.telemetry.Shutdown(ctx, a.logger); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}
