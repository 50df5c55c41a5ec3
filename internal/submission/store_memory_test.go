package submission

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SwapState(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, Draft{ID: "d-1", State: StateReview}))

	d, err := store.SwapState(ctx, "d-1", StateReview, StateSubmitted)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, d.State)

	// A second swap from review loses.
	_, err = store.SwapState(ctx, "d-1", StateReview, StateSubmitted)
	assert.ErrorIs(t, err, ErrStateConflict)

	_, err = store.SwapState(ctx, "missing", StateReview, StateSubmitted)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_SaveReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Save(ctx, Draft{ID: "d-1", Text: "original", State: StateDescribe}))

	d, err := store.FindByID(ctx, "d-1")
	require.NoError(t, err)
	d.Text = "mutated"

	again, err := store.FindByID(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "original", again.Text)
}
