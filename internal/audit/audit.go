// Package audit is the service-wide trail of privileged actions. Per-record
// history lives inside the grievance document; this trail crosses records and
// carries client metadata.
package audit

import (
	"context"
	"time"

	"campusvoice/internal/domain"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp   time.Time
	ActorID     string
	ActorRole   domain.Role
	Action      string
	GrievanceID string
	Detail      string
	RequestID   string
	ClientIP    string
	UserAgent   string
}

type Store interface {
	Append(ctx context.Context, event Event) error
	ListByGrievance(ctx context.Context, grievanceID string) ([]Event, error)
}

// Publisher mirrors events to an external sink (Kafka). Optional.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
