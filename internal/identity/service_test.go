package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/domain"
	"campusvoice/pkg/apperrors"
)

func TestCreateProfile_Idempotent(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	first, err := svc.CreateProfile(ctx, "u1", "Alice", "alice@college.edu", domain.RoleWarden)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarden, first.Role)

	// Second create must not overwrite the role from the first call.
	second, err := svc.CreateProfile(ctx, "u1", "Alice Again", "alice@college.edu", domain.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarden, second.Role)
	assert.Equal(t, "Alice", second.DisplayName)
}

func TestEnsureProfile_DefaultsToStudent(t *testing.T) {
	svc := NewService(NewMemoryStore())

	profile, err := svc.EnsureProfile(context.Background(), "u2", "Bob", "bob@college.edu")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleStudent, profile.Role)
	assert.Zero(t, profile.Strikes)
}

func TestGetProfile_NotFound(t *testing.T) {
	svc := NewService(NewMemoryStore())

	_, err := svc.GetProfile(context.Background(), "missing")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound))
}

func TestIncrementStrikes_Atomic(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "u3", "Carol", "carol@college.edu", domain.RoleStudent)
	require.NoError(t, err)

	const n = 50
	seen := make(map[int]bool, n)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			count, err := svc.IncrementStrikes(ctx, "u3")
			assert.NoError(t, err)
			mu.Lock()
			seen[count] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	// Every increment observed a distinct count: no lost updates.
	assert.Len(t, seen, n)
	profile, err := svc.GetProfile(ctx, "u3")
	require.NoError(t, err)
	assert.Equal(t, n, profile.Strikes)
}

func TestAssignRole_RequiresAdmin(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "admin", "Admin", "admin@college.edu", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = svc.CreateProfile(ctx, "student", "Dave", "dave@college.edu", domain.RoleStudent)
	require.NoError(t, err)

	err = svc.AssignRole(ctx, "student", "student", domain.RolePrincipal)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	require.NoError(t, svc.AssignRole(ctx, "admin", "student", domain.RoleWarden))
	profile, err := svc.GetProfile(ctx, "student")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarden, profile.Role)
}

func TestRequireRole(t *testing.T) {
	svc := NewService(NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateProfile(ctx, "w1", "Warden", "warden@college.edu", domain.RoleWarden)
	require.NoError(t, err)

	profile, err := svc.RequireRole(ctx, "w1", domain.Role.CanTriage)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarden, profile.Role)

	_, err = svc.RequireRole(ctx, "w1", domain.Role.CanResolveEscalated)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = svc.RequireRole(ctx, "ghost", domain.Role.CanTriage)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}
