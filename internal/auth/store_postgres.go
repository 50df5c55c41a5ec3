package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const Schema = `
CREATE TABLE IF NOT EXISTS credentials (
	email         TEXT PRIMARY KEY,
	user_id       TEXT NOT NULL,
	password_hash BYTEA NOT NULL
);
`

func (s *PostgresStore) Save(ctx context.Context, cred Credential) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO credentials (email, user_id, password_hash) VALUES ($1, $2, $3)
	`, cred.Email, cred.UserID, cred.PasswordHash)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert credential: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (Credential, error) {
	var cred Credential
	err := s.db.QueryRowContext(ctx, `
		SELECT email, user_id, password_hash FROM credentials WHERE email = $1
	`, email).Scan(&cred.Email, &cred.UserID, &cred.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return Credential{}, ErrNotFound
	}
	if err != nil {
		return Credential{}, fmt.Errorf("scan credential: %w", err)
	}
	return cred, nil
}
