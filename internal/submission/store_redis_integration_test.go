//go:build integration

package submission

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/pkg/testutil/containers"
)

func TestRedisStore_Integration(t *testing.T) {
	ctx := context.Background()
	rc := containers.NewRedisContainer(t)

	store := NewRedisStore(rc.Client, time.Minute)

	t.Run("save and load round trip", func(t *testing.T) {
		d := Draft{
			ID:        "d-1",
			CreatorID: "student-1",
			Category:  "Hostel",
			Text:      "broken fan",
			State:     StateDescribe,
			CreatedAt: time.Now().UTC().Truncate(time.Second),
		}
		require.NoError(t, store.Save(ctx, d))

		got, err := store.FindByID(ctx, "d-1")
		require.NoError(t, err)
		assert.Equal(t, d, got)
	})

	t.Run("expired drafts vanish", func(t *testing.T) {
		short := NewRedisStore(rc.Client, 50*time.Millisecond)
		require.NoError(t, short.Save(ctx, Draft{ID: "d-ttl", CreatorID: "student-1", State: StateDescribe}))

		time.Sleep(100 * time.Millisecond)
		_, err := short.FindByID(ctx, "d-ttl")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("exactly one concurrent swap wins", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, Draft{ID: "d-2", CreatorID: "student-1", State: StateReview}))

		const racers = 8
		var wg sync.WaitGroup
		wins := make(chan struct{}, racers)
		for range racers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.SwapState(ctx, "d-2", StateReview, StateSubmitted); err == nil {
					wins <- struct{}{}
				}
			}()
		}
		wg.Wait()
		close(wins)

		count := 0
		for range wins {
			count++
		}
		assert.Equal(t, 1, count)

		got, err := store.FindByID(ctx, "d-2")
		require.NoError(t, err)
		assert.Equal(t, StateSubmitted, got.State)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		require.NoError(t, store.Delete(ctx, "d-1"))
		require.NoError(t, store.Delete(ctx, "d-1"))
		_, err := store.FindByID(ctx, "d-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
