package audit

import (
	"context"
	"log/slog"
	"time"
)

// Service buffers audit events to an inbox channel; the worker persists them.
// Emission is best-effort and never blocks or fails the calling action.
type Service struct {
	inbox  chan Event
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	return &Service{
		inbox:  make(chan Event, 256),
		logger: logger,
	}
}

// Emit queues an event. A full inbox drops the event with a log line rather
// than stalling a user action.
func (s *Service) Emit(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	select {
	case s.inbox <- event:
	default:
		s.logger.WarnContext(ctx, "audit inbox full, dropping event",
			"action", event.Action,
			"grievance_id", event.GrievanceID,
		)
	}
}

// Inbox exposes the event channel to the worker.
func (s *Service) Inbox() <-chan Event {
	return s.inbox
}
