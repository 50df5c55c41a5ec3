package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusvoice/internal/domain"
	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/submission"
	"campusvoice/internal/transport/http/shared"
	"campusvoice/pkg/apperrors"
)

// Service defines the wizard operations the handler exposes.
type Service interface {
	Start(ctx context.Context, creatorID, category string) (submission.Draft, error)
	Describe(ctx context.Context, creatorID, draftID, text, evidenceKey string) (submission.Draft, error)
	Back(ctx context.Context, creatorID, draftID string) (submission.Draft, error)
	Confirm(ctx context.Context, creatorID, draftID, location string) (domain.Grievance, error)
	GetDraft(ctx context.Context, creatorID, draftID string) (submission.Draft, error)
}

// Handler exposes the submission wizard over HTTP. Routes assume RequireAuth
// has already run.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the submission routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/submissions", h.handleStart)
	r.Get("/submissions/{id}", h.handleGetDraft)
	r.Post("/submissions/{id}/describe", h.handleDescribe)
	r.Post("/submissions/{id}/back", h.handleBack)
	r.Post("/submissions/{id}/confirm", h.handleConfirm)
}

func (h *Handler) handleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.service.Start(ctx, middleware.GetUserID(ctx), req.Category)
	if err != nil {
		h.logWarn(ctx, "start draft failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toDraftResponse(d))
}

func (h *Handler) handleGetDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.service.GetDraft(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "get draft failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDraftResponse(d))
}

func (h *Handler) handleDescribe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req describeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	d, err := h.service.Describe(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), req.Text, req.EvidenceKey)
	if err != nil {
		h.logWarn(ctx, "describe draft failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDraftResponse(d))
}

func (h *Handler) handleBack(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, err := h.service.Back(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		h.logWarn(ctx, "draft back failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toDraftResponse(d))
}

func (h *Handler) handleConfirm(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	g, err := h.service.Confirm(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), req.Location)
	if err != nil {
		h.logWarn(ctx, "confirm draft failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toGrievanceResponse(g))
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
