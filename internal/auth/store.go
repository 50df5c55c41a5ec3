// Package auth owns credential records and token issuance. Profile data lives
// in the identity directory; this package only knows email → password hash.
package auth

import (
	"context"

	"campusvoice/pkg/apperrors"
)

// Credential links a login email to its password hash and directory identity.
type Credential struct {
	UserID       string
	Email        string
	PasswordHash []byte
}

type Store interface {
	Save(ctx context.Context, cred Credential) error
	FindByEmail(ctx context.Context, email string) (Credential, error)
}

var (
	ErrNotFound      = apperrors.New(apperrors.CodeNotFound, "credential not found")
	ErrAlreadyExists = apperrors.New(apperrors.CodeConflict, "email already registered")
)
