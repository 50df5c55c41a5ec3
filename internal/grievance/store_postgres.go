package grievance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"campusvoice/internal/domain"
)

// PostgresStore keeps each grievance as one row with JSONB columns for the
// updates and history sequences, so a transition's whole effect lands in a
// single UPDATE.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS grievances (
	id                TEXT PRIMARY KEY,
	raw_text          TEXT NOT NULL,
	normalized_text   TEXT NOT NULL,
	author_display    TEXT NOT NULL,
	creator_id        TEXT NOT NULL,
	category          TEXT NOT NULL,
	location          TEXT NOT NULL DEFAULT '',
	status            TEXT NOT NULL,
	urgency_score     INT  NOT NULL,
	strikes_at_time   INT  NOT NULL,
	evidence_key      TEXT NOT NULL DEFAULT '',
	escalation_reason TEXT NOT NULL DEFAULT '',
	resolution_note   TEXT NOT NULL DEFAULT '',
	updates           JSONB NOT NULL DEFAULT '[]',
	history           JSONB NOT NULL DEFAULT '[]',
	created_at        TIMESTAMPTZ NOT NULL,
	resolved_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS grievances_status_idx  ON grievances (status);
CREATE INDEX IF NOT EXISTS grievances_creator_idx ON grievances (creator_id);
`

const grievanceColumns = `id, raw_text, normalized_text, author_display, creator_id, category, location,
	status, urgency_score, strikes_at_time, evidence_key, escalation_reason, resolution_note,
	updates, history, created_at, resolved_at`

func (s *PostgresStore) Create(ctx context.Context, g domain.Grievance) error {
	updates, history, err := marshalSequences(g)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO grievances (`+grievanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, g.ID, g.RawText, g.NormalizedText, g.AuthorDisplay, g.CreatorID, g.Category, g.Location,
		string(g.Status), g.UrgencyScore, g.StrikesAtTime, g.EvidenceKey, g.EscalationReason,
		g.ResolutionNote, updates, history, g.CreatedAt, g.ResolvedAt)
	if err != nil {
		return fmt.Errorf("insert grievance: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.Grievance, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+grievanceColumns+` FROM grievances WHERE id = $1`, id)
	g, err := scanGrievance(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Grievance{}, ErrNotFound
	}
	return g, err
}

func (s *PostgresStore) Update(ctx context.Context, g domain.Grievance) error {
	updates, history, err := marshalSequences(g)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE grievances SET
			status = $2, urgency_score = $3, escalation_reason = $4, resolution_note = $5,
			updates = $6, history = $7, resolved_at = $8
		WHERE id = $1
	`, g.ID, string(g.Status), g.UrgencyScore, g.EscalationReason, g.ResolutionNote,
		updates, history, g.ResolvedAt)
	if err != nil {
		return fmt.Errorf("update grievance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update grievance: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, filter Filter) ([]domain.Grievance, error) {
	var conditions []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Status != "" {
		conditions = append(conditions, "status = "+arg(string(filter.Status)))
	}
	if filter.NotStatus != "" {
		conditions = append(conditions, "status <> "+arg(string(filter.NotStatus)))
	}
	if filter.CreatorID != "" {
		conditions = append(conditions, "creator_id = "+arg(filter.CreatorID))
	}

	query := `SELECT ` + grievanceColumns + ` FROM grievances`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query grievances: %w", err)
	}
	defer rows.Close()

	var out []domain.Grievance
	for rows.Next() {
		g, err := scanGrievance(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func marshalSequences(g domain.Grievance) ([]byte, []byte, error) {
	updates, err := json.Marshal(g.Updates)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal updates: %w", err)
	}
	history, err := json.Marshal(g.History)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal history: %w", err)
	}
	return updates, history, nil
}

func scanGrievance(scan func(...any) error) (domain.Grievance, error) {
	var g domain.Grievance
	var status string
	var updates, history []byte
	var resolvedAt sql.NullTime

	err := scan(&g.ID, &g.RawText, &g.NormalizedText, &g.AuthorDisplay, &g.CreatorID, &g.Category,
		&g.Location, &status, &g.UrgencyScore, &g.StrikesAtTime, &g.EvidenceKey,
		&g.EscalationReason, &g.ResolutionNote, &updates, &history, &g.CreatedAt, &resolvedAt)
	if err != nil {
		return domain.Grievance{}, err
	}
	g.Status = domain.Status(status)
	if err := json.Unmarshal(updates, &g.Updates); err != nil {
		return domain.Grievance{}, fmt.Errorf("unmarshal updates: %w", err)
	}
	if err := json.Unmarshal(history, &g.History); err != nil {
		return domain.Grievance{}, fmt.Errorf("unmarshal history: %w", err)
	}
	if resolvedAt.Valid {
		g.ResolvedAt = &resolvedAt.Time
	}
	return g, nil
}
