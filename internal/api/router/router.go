// Package router assembles the HTTP surface of the receptionist.
package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/glossglow/salon-ai-receptionist/internal/http/handlers"
	httpmiddleware "github.com/glossglow/salon-ai-receptionist/internal/http/middleware"
	"github.com/glossglow/salon-ai-receptionist/internal/ws"
	"github.com/glossglow/salon-ai-receptionist/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	AppointmentsHandler *handlers.AppointmentsHandler
	ConversationHandler *handlers.ConversationHandler
	AdminStatsHandler   *handlers.AdminStatsHandler
	WebSocketHandler    *ws.Handler
	MetricsHandler      http.Handler
	AdminAuthSecret     string
	CORSAllowedOrigins  []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.WebSocketHandler != nil {
			public.Get("/ws/{clientID}", cfg.WebSocketHandler.ServeHTTP)
		}
		if cfg.AppointmentsHandler != nil {
			public.Post("/appointments/schedule", cfg.AppointmentsHandler.Schedule)
		}
		if cfg.ConversationHandler != nil {
			public.Get("/conversation/history/{sessionID}", cfg.ConversationHandler.History)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Admin routes (protected by JWT)
	if cfg.AdminAuthSecret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			if cfg.AppointmentsHandler != nil {
				admin.Get("/appointments", cfg.AppointmentsHandler.List)
				admin.Get("/appointments/{id}", cfg.AppointmentsHandler.Get)
			}
			if cfg.AdminStatsHandler != nil {
				admin.Get("/stats", cfg.AdminStatsHandler.GetStats)
			}
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
