package main

import (
	"context"
	"net/http"

	"github.com/diewo77/gestion/httpx"
	"github.com/diewo77/gestion/internal/app"
	"github.com/diewo77/gestion/internal/events"
	"github.com/diewo77/gestion/internal/handlers"
	"github.com/diewo77/gestion/internal/log"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux     *http.ServeMux
	svc     *app.Services
	handler http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(svc *app.Services, logger *log.Logger) *App {
	a := &App{
		mux: http.NewServeMux(),
		svc: svc,
	}
	a.setupRoutes()
	a.handler = log.Middleware(logger)(handlers.Language(a.mux))

	eventLogger := logger.WithComponent(log.ComponentEvents)
	svc.Bus.Subscribe(func(ctx context.Context, e events.Event) {
		eventLogger.DebugContext(ctx, "event published",
			log.FieldEventType, string(e.Type),
			log.FieldReference, e.Reference,
		)
	})
	return a
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

func (a *App) setupRoutes() {
	a.mux.HandleFunc("GET /healthz", a.health)

	api := &handlers.API{
		Documents: handlers.NewDocumentHandler(a.svc.Documents, a.svc.Print),
		Ledger:    handlers.NewLedgerHandler(a.svc.Ledger),
		Reports:   handlers.NewReportHandler(a.svc.Reports),
		Company:   handlers.NewCompanyHandler(a.svc.Company),
	}
	api.Register(a.mux)
}

// health pings the store.
func (a *App) health(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.svc.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "health check failed", log.FieldError, err)
		httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
