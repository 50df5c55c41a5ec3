// Package feed streams committed grievance mutations to dashboard clients
// over WebSocket. Mutations fan out through a broker (Redis pub/sub between
// servers, an in-process loopback otherwise) and each connected client gets
// only the events its role is allowed to see. Filtering happens here, per
// client; nothing about the subscription is pushed into store queries.
package feed

import (
	"time"

	"campusvoice/internal/domain"
)

// Event is one committed mutation, shaped for dashboard cards. CreatorID
// travels between servers for per-client filtering and is stripped before the
// frame reaches a browser.
type Event struct {
	Action         string    `json:"action"`
	GrievanceID    string    `json:"grievanceId"`
	CreatorID      string    `json:"creatorId,omitempty"`
	Category       string    `json:"category"`
	Location       string    `json:"location,omitempty"`
	Status         string    `json:"status"`
	UrgencyScore   int       `json:"urgencyScore"`
	AuthorDisplay  string    `json:"authorDisplay"`
	NormalizedText string    `json:"normalizedText"`
	Timestamp      time.Time `json:"timestamp"`
}

func eventFrom(g domain.Grievance, action string) Event {
	return Event{
		Action:         action,
		GrievanceID:    g.ID,
		CreatorID:      g.CreatorID,
		Category:       g.Category,
		Location:       g.Location,
		Status:         string(g.Status),
		UrgencyScore:   g.UrgencyScore,
		AuthorDisplay:  g.AuthorDisplay,
		NormalizedText: g.NormalizedText,
		Timestamp:      g.CreatedAt,
	}
}

// redacted strips the creator identity before a frame leaves the server.
func (e Event) redacted() Event {
	e.CreatorID = ""
	return e
}

// PredicateFor derives the visibility filter applied to a client's stream.
// Students see their own records plus everything resolved; warden-tier and
// above see the whole stream so dashboards can add and remove cards as
// records move through the lifecycle.
func PredicateFor(userID string, role domain.Role) func(Event) bool {
	switch {
	case role.CanViewAnalytics() || role.CanTriage():
		return func(Event) bool { return true }
	case role.CanResolveEscalated():
		return func(e Event) bool {
			return e.Status == string(domain.StatusEscalated) || e.Status == string(domain.StatusResolved)
		}
	default:
		return func(e Event) bool {
			return e.CreatorID == userID || e.Status == string(domain.StatusResolved)
		}
	}
}
