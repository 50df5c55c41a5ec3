package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/domain"
	"campusvoice/internal/grievance"
	"campusvoice/internal/identity"
	"campusvoice/pkg/apperrors"
)

func seed(t *testing.T, store grievance.Store, g domain.Grievance) {
	t.Helper()
	require.NoError(t, store.Create(context.Background(), g))
}

func TestOverview(t *testing.T) {
	ctx := context.Background()
	store := grievance.NewMemoryStore()
	directory := identity.NewService(identity.NewMemoryStore())

	_, err := directory.CreateProfile(ctx, "principal-1", "Dr. Rao", "principal@demo.campus", domain.RolePrincipal)
	require.NoError(t, err)

	now := time.Now()
	seed(t, store, domain.Grievance{ID: "g-1", Category: "Hostel", Location: "Block A", Status: domain.StatusOpen, UrgencyScore: 90, CreatedAt: now})
	seed(t, store, domain.Grievance{ID: "g-2", Category: "Hostel", Location: "Block A", Status: domain.StatusResolved, UrgencyScore: 50, CreatedAt: now})
	seed(t, store, domain.Grievance{ID: "g-3", Category: "Mess", Location: "Mess Hall", Status: domain.StatusEscalated, UrgencyScore: 90, CreatedAt: now})
	seed(t, store, domain.Grievance{ID: "g-4", Category: "Wifi", Status: domain.StatusInProgress, UrgencyScore: 50, CreatedAt: now})

	ov, err := NewService(store, directory).Overview(ctx, "principal-1")
	require.NoError(t, err)

	assert.Equal(t, 4, ov.Total)
	assert.Equal(t, 2, ov.Critical)
	assert.Equal(t, 1, ov.Resolved)
	assert.Equal(t, 1, ov.Escalated)
	assert.Equal(t, 1, ov.Open)
	assert.Equal(t, map[string]int{"Hostel": 2, "Mess": 1, "Wifi": 1}, ov.ByCategory)
	assert.Equal(t, map[string]int{"Block A": 2, "Mess Hall": 1}, ov.ByLocation)
}

func TestOverview_RoleGated(t *testing.T) {
	ctx := context.Background()
	store := grievance.NewMemoryStore()
	directory := identity.NewService(identity.NewMemoryStore())

	_, err := directory.CreateProfile(ctx, "warden-1", "Warden Singh", "warden@demo.campus", domain.RoleWarden)
	require.NoError(t, err)

	_, err = NewService(store, directory).Overview(ctx, "warden-1")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestOverview_EmptyStore(t *testing.T) {
	ctx := context.Background()
	store := grievance.NewMemoryStore()
	directory := identity.NewService(identity.NewMemoryStore())

	_, err := directory.CreateProfile(ctx, "admin-1", "Platform Admin", "admin@demo.campus", domain.RoleAdmin)
	require.NoError(t, err)

	ov, err := NewService(store, directory).Overview(ctx, "admin-1")
	require.NoError(t, err)
	assert.Zero(t, ov.Total)
	assert.Empty(t, ov.ByCategory)
}
