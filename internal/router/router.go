// Package router wires the domain handlers into one chi router.
package router

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/EmpoweredVote/zone-incidents/internal/config"
	"github.com/EmpoweredVote/zone-incidents/internal/httputil"
	"github.com/EmpoweredVote/zone-incidents/internal/incident"
	"github.com/EmpoweredVote/zone-incidents/internal/middleware"
	"github.com/EmpoweredVote/zone-incidents/internal/user"
	"github.com/EmpoweredVote/zone-incidents/internal/zone"
)

// New builds the HTTP handler. Every API route lives under
// cfg.Server.Prefix; /health stays at the root.
func New(cfg *config.Config, d *gorm.DB, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.NewRateLimiter(cfg.RateLimit).Handler)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, httputil.ErrorResponse{
			StatusCode: http.StatusNotFound,
			Message:    "Cannot " + r.Method + " " + r.URL.Path,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
			StatusCode: http.StatusMethodNotAllowed,
			Message:    "method not allowed",
		})
	})

	r.Get("/health", Health(d))

	api := func(r chi.Router) {
		user.NewHandler(user.NewService(d)).Register(r)
		zone.NewHandler(zone.NewService(d)).Register(r)
		incident.NewHandler(incident.NewService(d)).Register(r)
	}
	prefix := strings.TrimRight(cfg.Server.Prefix, "/")
	if prefix == "" {
		api(r)
	} else {
		r.Route(prefix, api)
	}

	return r
}

// Health reports whether the database answers a ping.
func Health(d *gorm.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := d.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			zap.L().Warn("health check failed", zap.Error(err))
			httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Migrate creates or updates every table, zones before incidents.
func Migrate(d *gorm.DB) error {
	if err := user.Migrate(d); err != nil {
		return err
	}
	if err := zone.Migrate(d); err != nil {
		return err
	}
	return incident.Migrate(d)
}
