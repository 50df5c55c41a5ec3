package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/stats"
	"campusvoice/internal/transport/http/shared"
)

// Service defines the analytics operations the handler exposes.
type Service interface {
	Overview(ctx context.Context, actorID string) (stats.Overview, error)
}

// Handler serves the principal dashboard aggregates.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the stats routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/stats/overview", h.handleOverview)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ov, err := h.service.Overview(ctx, middleware.GetUserID(ctx))
	if err != nil {
		h.logger.WarnContext(ctx, "stats overview failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, ov)
}
