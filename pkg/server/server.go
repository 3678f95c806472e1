package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/handlers/auth"
	handlers "github.com/de-tools/traffic-atlas/pkg/handlers/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
	"github.com/de-tools/traffic-atlas/pkg/telemetry"

	trafficatlasmiddleware "github.com/de-tools/traffic-atlas/pkg/server/middleware"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog"
)

const (
	defaultShutdownTimeout = 10 * time.Second
	sweepInterval          = time.Minute
)

type WebAPI struct {
	router   *chi.Mux
	logger   *zerolog.Logger
	server   *http.Server
	sessions *session.Manager
	timeout  time.Duration
}

type Dependencies struct {
	Sessions *session.Manager
	Cookies  sessions.Store
	Pages    []dashboard.Builder
	Metrics  *telemetry.Metrics
}

type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	deps := config.Dependencies
	dashHandler := handlers.NewHandler(report.NewPaginator(), deps.Pages...)
	authHandler := auth.NewHandler(deps.Sessions, trafficatlasmiddleware.BindCookie(deps.Cookies))

	router := chi.NewRouter()

	router.Use(trafficatlasmiddleware.Logger(&logger, deps.Metrics))
	router.Use(middleware.Recoverer)

	if deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	router.Group(func(r chi.Router) {
		r.Use(trafficatlasmiddleware.Sessions(deps.Cookies, deps.Sessions))

		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)

		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/session", authHandler.GetSession)

			r.Group(func(r chi.Router) {
				r.Use(trafficatlasmiddleware.RequireAuth)
				r.Get("/{page}", dashHandler.GetReport)
				r.Post("/{page}/tables/{table}/page", dashHandler.SetPageState)
			})
		})
	})

	timeout := config.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}

	return &WebAPI{
		router:   router,
		logger:   &logger,
		sessions: deps.Sessions,
		timeout:  timeout,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
	}
}

func (w *WebAPI) Handler() http.Handler {
	return w.router
}

func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go w.sweep(sweepCtx)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}

func (w *WebAPI) sweep(ctx context.Context) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := w.sessions.Sweep(); n > 0 {
				w.logger.Debug().Int("expired", n).Msg("swept sessions")
			}
		}
	}
}
