package audit

import (
	"context"
	"log/slog"
)

// Worker consumes audit events from the inbox and persists them, mirroring
// each one to the optional publisher. It keeps background processing testable
// without wiring queue implementations.
type Worker struct {
	store     Store
	publisher Publisher
	inbox     <-chan Event
	logger    *slog.Logger
}

func NewWorker(store Store, publisher Publisher, inbox <-chan Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, publisher: publisher, inbox: inbox, logger: logger}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "failed to persist audit event",
					"error", err,
					"action", event.Action,
				)
			}
			if w.publisher != nil {
				if err := w.publisher.Publish(ctx, event); err != nil {
					w.logger.ErrorContext(ctx, "failed to publish audit event",
						"error", err,
						"action", event.Action,
					)
				}
			}
		}
	}
}
