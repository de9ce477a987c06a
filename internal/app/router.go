package app

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Natalia-54/sistema-academico-jfk/internal/academics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/account"
	"github.com/Natalia-54/sistema-academico-jfk/internal/auth"
	"github.com/Natalia-54/sistema-academico-jfk/internal/config"
	"github.com/Natalia-54/sistema-academico-jfk/internal/events"
	"github.com/Natalia-54/sistema-academico-jfk/internal/health"
	"github.com/Natalia-54/sistema-academico-jfk/internal/metrics"
	"github.com/Natalia-54/sistema-academico-jfk/internal/middleware"
	"github.com/Natalia-54/sistema-academico-jfk/internal/records"
	"github.com/Natalia-54/sistema-academico-jfk/internal/session"
	"github.com/Natalia-54/sistema-academico-jfk/internal/upload"
	"github.com/Natalia-54/sistema-academico-jfk/internal/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/uptrace/bun"
)

// Dependencies are the long lived collaborators the router is built from.
type Dependencies struct {
	Config    *config.Config
	DB        *bun.DB
	Sessions  session.Store
	Publisher events.Publisher
	Photos    *upload.Store
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

// BuildRouter wires repositories, services and handlers onto a chi router.
func BuildRouter(deps Dependencies) chi.Router {
	cfg := deps.Config
	timeout := cfg.Database.QueryTimeout()

	router := chi.NewRouter()
	router.NotFound(web.NotFound)

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(chimiddleware.Recoverer)
	if cfg.Server.RequestTimeoutSeconds > 0 {
		router.Use(chimiddleware.Timeout(time.Duration(cfg.Server.RequestTimeoutSeconds) * time.Second))
	}
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	codec := session.NewCodec(cfg.Session.Secret, cfg.Session.TTL())
	gate := auth.NewGate(deps.Sessions, codec, cfg.Session.CookieName, deps.Logger, deps.Metrics)
	router.Use(gate.Authenticate)

	healthHandler := health.NewHandler(deps.DB, deps.Logger)
	healthHandler.RegisterRoutes(router)

	accountRepo := account.NewRepository(deps.DB, deps.Metrics, timeout)
	authService := auth.NewService(accountRepo, deps.Sessions, deps.Publisher, deps.Metrics, deps.Logger)
	authHandler := auth.NewHandler(authService, codec, auth.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.Secure,
	}, deps.Logger)

	coordinator := records.NewCoordinator(deps.DB, deps.Metrics, timeout)
	recordsRepo := records.NewRepository(deps.DB, deps.Metrics, timeout)
	recordsService := records.NewService(coordinator, recordsRepo, deps.Photos, deps.Publisher, deps.Metrics, deps.Logger)
	recordsHandler := records.NewHandler(recordsService, gate, deps.Photos.MaxBytes(), deps.Logger)

	academicsRepo := academics.NewRepository(deps.DB, deps.Metrics, timeout)
	academicsHandler := academics.NewHandler(academicsRepo, gate, deps.Logger)

	router.Route("/api", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		recordsHandler.RegisterRoutes(r)
		academicsHandler.RegisterRoutes(r)
	})

	pages := web.NewPages(cfg.Server.PublicDir, cfg.Upload.Dir, cfg.Upload.PublicPrefix, gate)
	pages.RegisterRoutes(router)

	return router
}

// Handler exposes the router for tests that drive the full stack.
func (a *App) Handler() http.Handler {
	return a.router
}
