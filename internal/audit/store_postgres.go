package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"campusvoice/internal/domain"
)

// PostgresStore appends audit events to an append-only table. There is no
// update or delete path on purpose.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id           UUID PRIMARY KEY,
	ts           TIMESTAMPTZ NOT NULL,
	actor_id     TEXT NOT NULL,
	actor_role   TEXT NOT NULL,
	action       TEXT NOT NULL,
	grievance_id TEXT NOT NULL DEFAULT '',
	detail       TEXT NOT NULL DEFAULT '',
	request_id   TEXT NOT NULL DEFAULT '',
	client_ip    TEXT NOT NULL DEFAULT '',
	user_agent   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_grievance_idx ON audit_events (grievance_id);
`

func (s *PostgresStore) Append(ctx context.Context, event Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_events (id, ts, actor_id, actor_role, action, grievance_id, detail, request_id, client_ip, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, uuid.New(), event.Timestamp, event.ActorID, string(event.ActorRole), event.Action,
		event.GrievanceID, event.Detail, event.RequestID, event.ClientIP, event.UserAgent)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByGrievance(ctx context.Context, grievanceID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ts, actor_id, actor_role, action, grievance_id, detail, request_id, client_ip, user_agent
		FROM audit_events WHERE grievance_id = $1 ORDER BY ts
	`, grievanceID)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var role string
		if err := rows.Scan(&e.Timestamp, &e.ActorID, &role, &e.Action, &e.GrievanceID,
			&e.Detail, &e.RequestID, &e.ClientIP, &e.UserAgent); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.ActorRole = domain.Role(role)
		events = append(events, e)
	}
	return events, rows.Err()
}
