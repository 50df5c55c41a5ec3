package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"campusvoice/internal/domain"
)

// PostgresStore persists profiles in PostgreSQL. Idempotent creation leans on
// ON CONFLICT DO NOTHING and strike increments on UPDATE ... RETURNING, so
// both are single atomic statements.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Schema is applied by deployment tooling; kept here so the store and its
// table stay in one review unit.
const Schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id           TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	email        TEXT NOT NULL DEFAULT '',
	role         TEXT NOT NULL,
	strikes      INT  NOT NULL DEFAULT 0 CHECK (strikes >= 0)
);
CREATE UNIQUE INDEX IF NOT EXISTS profiles_email_idx ON profiles (email) WHERE email <> '';
`

func (s *PostgresStore) Create(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, display_name, email, role, strikes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, profile.ID, profile.DisplayName, profile.Email, string(profile.Role), profile.Strikes)
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("insert profile: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return domain.UserProfile{}, false, fmt.Errorf("insert profile: %w", err)
	}
	if inserted == 0 {
		existing, err := s.FindByID(ctx, profile.ID)
		if err != nil {
			return domain.UserProfile{}, false, err
		}
		return existing, false, nil
	}
	return profile, true, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, role, strikes FROM profiles WHERE id = $1
	`, id))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, display_name, email, role, strikes FROM profiles WHERE email = $1
	`, email))
}

func (s *PostgresStore) IncrementStrikes(ctx context.Context, id string) (int, error) {
	var strikes int
	err := s.db.QueryRowContext(ctx, `
		UPDATE profiles SET strikes = strikes + 1 WHERE id = $1 RETURNING strikes
	`, id).Scan(&strikes)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment strikes: %w", err)
	}
	return strikes, nil
}

func (s *PostgresStore) SetRole(ctx context.Context, id string, role domain.Role) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles SET role = $2 WHERE id = $1
	`, id, string(role))
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (domain.UserProfile, error) {
	var profile domain.UserProfile
	var role string
	err := row.Scan(&profile.ID, &profile.DisplayName, &profile.Email, &role, &profile.Strikes)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, ErrNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("scan profile: %w", err)
	}
	profile.Role = domain.Role(role)
	return profile, nil
}
