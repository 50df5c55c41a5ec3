package feed

import (
	"context"
	"log/slog"

	"campusvoice/internal/domain"
)

// Service glues the mutation path to the hub through the broker. It is the
// lifecycle manager's notifier: GrievanceChanged publishes, Run pumps the
// subscription into the hub.
type Service struct {
	broker Broker
	hub    *Hub
	logger *slog.Logger
}

func NewService(broker Broker, hub *Hub, logger *slog.Logger) *Service {
	return &Service{broker: broker, hub: hub, logger: logger}
}

// GrievanceChanged publishes a committed mutation to the broker. Publish
// failures are logged, never surfaced; the mutation is already committed.
func (s *Service) GrievanceChanged(ctx context.Context, g domain.Grievance, action string) {
	if err := s.broker.Publish(ctx, eventFrom(g, action)); err != nil {
		s.logger.WarnContext(ctx, "failed to publish feed event",
			"error", err,
			"grievance_id", g.ID,
			"action", action,
		)
	}
}

// Run forwards broker events to the hub until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	for e := range s.broker.Subscribe(ctx) {
		s.hub.Broadcast(e)
	}
	return ctx.Err()
}
