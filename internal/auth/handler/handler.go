package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"campusvoice/internal/auth"
	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/transport/http/shared"
	"campusvoice/pkg/apperrors"
)

// Service defines the authentication operations the handler exposes.
type Service interface {
	Register(ctx context.Context, email, password, displayName string, role domain.Role) (auth.Session, error)
	Login(ctx context.Context, email, password string) (auth.Session, error)
	DemoLogin(ctx context.Context, role domain.Role) (auth.Session, error)
}

// Handler serves registration, login, demo accounts, the current profile, and
// admin role assignment. The public routes are registered separately from the
// authenticated ones.
type Handler struct {
	logger    *slog.Logger
	service   Service
	directory *identity.Service
}

func New(service Service, directory *identity.Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service, directory: directory}
}

// RegisterPublic registers the unauthenticated routes.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/auth/register", h.handleRegister)
	r.Post("/auth/login", h.handleLogin)
	r.Post("/auth/demo", h.handleDemo)
}

// RegisterProtected registers the routes that require a bearer token.
func (h *Handler) RegisterProtected(r chi.Router) {
	r.Get("/me", h.handleMe)
	r.Post("/admin/roles", h.handleAssignRole)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Self-service registration only ever creates students. Elevated roles
	// come from an admin after the fact.
	session, err := h.service.Register(ctx, req.Email, req.Password, req.DisplayName, domain.RoleStudent)
	if err != nil {
		h.logWarn(ctx, "registration failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	session, err := h.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		h.logWarn(ctx, "login failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req demoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "unknown role"))
		return
	}

	session, err := h.service.DemoLogin(ctx, role)
	if err != nil {
		h.logWarn(ctx, "demo login failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.directory.GetProfile(ctx, middleware.GetUserID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toProfileResponse(profile))
}

func (h *Handler) handleAssignRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req assignRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "invalid request body"))
		return
	}

	role, ok := domain.ParseRole(req.Role)
	if !ok {
		shared.WriteError(w, apperrors.New(apperrors.CodeBadRequest, "unknown role"))
		return
	}

	if err := h.directory.AssignRole(ctx, middleware.GetUserID(ctx), req.UserID, role); err != nil {
		h.logWarn(ctx, "role assignment failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logWarn(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg,
		"error", err.Error(),
		"request_id", middleware.GetRequestID(ctx),
	)
}
