package feed

import (
	"context"
	"log/slog"

	"campusvoice/internal/platform/metrics"
)

// Hub owns the set of connected clients. All registration and broadcast
// traffic flows through its channels; client set mutation happens only inside
// Run, so no locks.
type Hub struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	register   chan *Client
	unregister chan *Client
	events     chan Event
	clients    map[*Client]struct{}
}

func NewHub(logger *slog.Logger, m *metrics.Metrics) *Hub {
	return &Hub{
		logger:     logger,
		metrics:    m,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan Event, 64),
		clients:    make(map[*Client]struct{}),
	}
}

// Run dispatches until ctx is cancelled, then closes every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for c := range h.clients {
			h.remove(c)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case c := <-h.register:
			h.clients[c] = struct{}{}
			if h.metrics != nil {
				h.metrics.FeedClients.Inc()
			}
			h.logger.Debug("feed client connected", "user_id", c.userID)
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				h.remove(c)
			}
		case e := <-h.events:
			h.dispatch(e)
		}
	}
}

// Broadcast queues an event for dispatch. Never blocks the caller; under
// sustained overload events are dropped and dashboards catch up on their next
// list fetch.
func (h *Hub) Broadcast(e Event) {
	select {
	case h.events <- e:
	default:
		h.logger.Warn("feed event dropped, hub backlog full", "grievance_id", e.GrievanceID)
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Unregister removes a client; called from the client's read pump on
// teardown.
func (h *Hub) Unregister(c *Client) {
	h.unregister <- c
}

func (h *Hub) dispatch(e Event) {
	for c := range h.clients {
		if !c.predicate(e) {
			continue
		}
		select {
		case c.send <- e.redacted():
		default:
			// The client is not draining its queue. Drop it; a stuck
			// connection must not stall the whole feed.
			h.logger.Warn("dropping slow feed client", "user_id", c.userID)
			h.remove(c)
		}
	}
}

func (h *Hub) remove(c *Client) {
	delete(h.clients, c)
	close(c.send)
	if h.metrics != nil {
		h.metrics.FeedClients.Dec()
	}
}
