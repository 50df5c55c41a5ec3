package submission

import (
	"context"

	"campusvoice/pkg/apperrors"
)

// Store persists wizard drafts. Drafts are short-lived; implementations may
// expire them.
type Store interface {
	// Save writes the draft, replacing any previous version.
	Save(ctx context.Context, d Draft) error
	// FindByID returns the draft or ErrNotFound.
	FindByID(ctx context.Context, id string) (Draft, error)
	// SwapState atomically moves the draft from one state to another and
	// returns the draft as stored before the swap. A draft whose current
	// state is not `from` yields a conflict error; exactly one concurrent
	// caller wins.
	SwapState(ctx context.Context, id string, from, to State) (Draft, error)
	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, id string) error
}

// ErrNotFound is returned when a draft does not exist or has expired.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "draft not found")

// ErrStateConflict is returned by SwapState when the draft is not in the
// expected state, including when a concurrent confirm already won.
var ErrStateConflict = apperrors.New(apperrors.CodeConflict, "draft is not in the expected state")
