package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusvoice/internal/domain"
	"campusvoice/internal/grievance"
	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/transport/http/shared"
	"campusvoice/pkg/apperrors"
)

// Service defines the lifecycle operations the handler exposes.
type Service interface {
	Get(ctx context.Context, actorID, id string) (domain.Grievance, error)
	ListForActor(ctx context.Context, actorID string, scope grievance.Scope) ([]domain.Grievance, error)
	MarkInProgress(ctx context.Context, actorID, id string) (domain.Grievance, error)
	AppendUpdate(ctx context.Context, actorID, id, note string) (domain.Grievance, error)
	Escalate(ctx context.Context, actorID, id, reason string) (domain.Grievance, error)
	Resolve(ctx context.Context, actorID, id, note string) (domain.Grievance, error)
}

// Handler handles grievance triage endpoints. Routes assume RequireAuth has
// already run; the service re-checks the actor's role on every mutation.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the grievance routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/grievances", h.handleList)
	r.Get("/grievances/{id}", h.handleGet)
	r.Post("/grievances/{id}/progress", h.handleMarkInProgress)
	r.Post("/grievances/{id}/updates", h.handleAppendUpdate)
	r.Post("/grievances/{id}/escalate", h.handleEscalate)
	r.Post("/grievances/{id}/resolve", h.handleResolve)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	scope := grievance.Scope(r.URL.Query().Get("scope"))
	if scope == "" {
		scope = grievance.ScopeMine
	}

	records, err := h.service.ListForActor(ctx, middleware.GetUserID(ctx), scope)
	if err != nil {
		h.logWarn(ctx, "list grievances failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponses(records))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	g, err := h.service.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "get grievance failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) handleMarkInProgress(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, func(ctx context.Context, actorID, id string) (domain.Grievance, error) {
		return h.service.MarkInProgress(ctx, actorID, id)
	})
}

func (h *Handler) handleAppendUpdate(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.transition(w, r, func(ctx context.Context, actorID, id string) (domain.Grievance, error) {
		return h.service.AppendUpdate(ctx, actorID, id, req.Note)
	})
}

func (h *Handler) handleEscalate(w http.ResponseWriter, r *http.Request) {
	var req reasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.transition(w, r, func(ctx context.Context, actorID, id string) (domain.Grievance, error) {
		return h.service.Escalate(ctx, actorID, id, req.Reason)
	})
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}
	h.transition(w, r, func(ctx context.Context, actorID, id string) (domain.Grievance, error) {
		return h.service.Resolve(ctx, actorID, id, req.Note)
	})
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string) (domain.Grievance, error)) {
	ctx := r.Context()
	g, err := op(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "transition failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(g))
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
