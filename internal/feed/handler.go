package feed

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"campusvoice/internal/identity"
	"campusvoice/internal/platform/middleware"
	"campusvoice/internal/transport/http/shared"
)

// Handler upgrades authenticated requests to feed subscriptions.
type Handler struct {
	logger    *slog.Logger
	hub       *Hub
	directory *identity.Service
	upgrader  websocket.Upgrader
}

func NewHandler(hub *Hub, directory *identity.Service, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		hub:       hub,
		directory: directory,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin enforcement happens at the edge proxy.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Register registers the feed route with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/feed", h.handleFeed)
}

func (h *Handler) handleFeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	// The role is read from the directory at subscription time; a role change
	// takes effect on reconnect.
	profile, err := h.directory.GetProfile(ctx, userID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written its own error response.
		h.logger.WarnContext(ctx, "feed upgrade failed",
			"error", err,
			"request_id", middleware.GetRequestID(ctx),
		)
		return
	}

	client := newClient(userID, conn, h.hub, PredicateFor(userID, profile.Role))
	h.hub.Register(client)
	client.run()
}
