// Package identity is the role directory: it maps authenticated principals to
// profiles and owns the strike counter. Every privileged mutation elsewhere in
// the system re-reads the actor's role from here.
package identity

import (
	"context"

	"campusvoice/internal/domain"
	"campusvoice/pkg/apperrors"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory and PostgreSQL persistence without rewiring business
// code.
type Store interface {
	// Create persists the profile only when no profile exists for its ID.
	// It returns the stored profile and whether this call created it, so
	// concurrent provisioning paths can race safely.
	Create(ctx context.Context, profile domain.UserProfile) (domain.UserProfile, bool, error)
	FindByID(ctx context.Context, id string) (domain.UserProfile, error)
	FindByEmail(ctx context.Context, email string) (domain.UserProfile, error)
	// IncrementStrikes atomically bumps the counter and returns the new value.
	IncrementStrikes(ctx context.Context, id string) (int, error)
	SetRole(ctx context.Context, id string, role domain.Role) error
}

// ErrNotFound keeps store-level 404s consistent across implementations.
// Callers racing a provisioning path must treat it as "not yet provisioned".
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "profile not found")
