// Package httptransport assembles the public HTTP surface. Handlers live with
// their verticals; this package only wires them onto one router with the
// shared middleware chain.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhandler "campusvoice/internal/auth/handler"
	evidencehandler "campusvoice/internal/evidence/handler"
	"campusvoice/internal/feed"
	grievancehandler "campusvoice/internal/grievance/handler"
	"campusvoice/internal/platform/middleware"
	statshandler "campusvoice/internal/stats/handler"
	submissionhandler "campusvoice/internal/submission/handler"
)

// Deps carries the per-vertical handlers and the auth validator.
type Deps struct {
	Logger     *slog.Logger
	Validator  middleware.JWTValidator
	Auth       *authhandler.Handler
	Submission *submissionhandler.Handler
	Grievance  *grievancehandler.Handler
	Evidence   *evidencehandler.Handler
	Stats      *statshandler.Handler
	Feed       *feed.Handler
	Health     func() error
}

// NewRouter builds the full route table.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.ClientMetadata)

	r.Get("/healthz", handleHealth(d.Health))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Public authentication surface.
	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(15 * time.Second))
		r.Use(middleware.ContentTypeJSON)
		d.Auth.RegisterPublic(r)
	})

	// Everything else requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(d.Validator, d.Logger))

		// The feed upgrades to a WebSocket; no request timeout on it.
		d.Feed.Register(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(30 * time.Second))
			r.Use(middleware.ContentTypeJSON)
			d.Auth.RegisterProtected(r)
			d.Submission.Register(r)
			d.Grievance.Register(r)
			d.Evidence.Register(r)
			d.Stats.Register(r)
		})
	})

	return r
}

func handleHealth(check func() error) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if check != nil {
			if err := check(); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte(`{"status":"degraded"}`))
				return
			}
		}
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}
