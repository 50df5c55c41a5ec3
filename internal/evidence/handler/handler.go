package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusvoice/internal/evidence"
	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/transport/http/shared"
	"campusvoice/pkg/apperrors"
)

// Service defines the presign operations the handler exposes.
type Service interface {
	PresignUpload(ctx context.Context, identity, filename string) (evidence.Upload, error)
	PresignDownload(ctx context.Context, key string) (string, error)
}

// Handler issues presigned URLs for evidence attachments.
type Handler struct {
	logger  *slog.Logger
	service Service
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the evidence routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/evidence/presign", h.handlePresignUpload)
	r.Get("/evidence/download", h.handlePresignDownload)
}

type presignRequest struct {
	Filename string `json:"filename"`
}

type presignResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

func (h *Handler) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req presignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	up, err := h.service.PresignUpload(ctx, middleware.GetUserID(ctx), req.Filename)
	if err != nil {
		h.logger.WarnContext(ctx, "presign upload failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, presignResponse{Key: up.Key, URL: up.URL})
}

type downloadResponse struct {
	URL string `json:"url"`
}

func (h *Handler) handlePresignDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	url, err := h.service.PresignDownload(ctx, r.URL.Query().Get("key"))
	if err != nil {
		h.logger.WarnContext(ctx, "presign download failed",
			"error", err.Error(),
			"request_id", middleware.GetRequestID(ctx),
		)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, downloadResponse{URL: url})
}
