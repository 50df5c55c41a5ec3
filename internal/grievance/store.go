// Package grievance holds the lifecycle manager: the role-gated transition
// rules and the record store behind them. Records are created once by the
// submission flow and mutated exclusively through Service transitions.
package grievance

import (
	"context"

	"campusvoice/internal/domain"
	"campusvoice/pkg/apperrors"
)

// Filter narrows List results. Zero values mean "no constraint". Equality and
// inequality on status are the only indexed predicates the store promises;
// anything richer is the caller's job.
type Filter struct {
	Status    domain.Status
	NotStatus domain.Status
	CreatorID string
}

type Store interface {
	Create(ctx context.Context, g domain.Grievance) error
	FindByID(ctx context.Context, id string) (domain.Grievance, error)
	// Update replaces the record in a single atomic write so a transition's
	// field mutation and its history append are never visible separately.
	Update(ctx context.Context, g domain.Grievance) error
	// List returns matching records ordered newest first.
	List(ctx context.Context, filter Filter) ([]domain.Grievance, error)
}

var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "grievance not found")
