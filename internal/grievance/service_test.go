package grievance

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/pkg/apperrors"
)

type fixture struct {
	svc       *Service
	store     *MemoryStore
	directory *identity.Service
	notified  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: NewMemoryStore()}
	f.directory = identity.NewService(identity.NewMemoryStore())
	logger := slog.New(slog.DiscardHandler)
	f.svc = NewService(f.store, f.directory, nil, notifierFunc(func(_ context.Context, _ domain.Grievance, action string) {
		f.notified = append(f.notified, action)
	}), nil, logger)

	ctx := context.Background()
	for _, p := range []struct {
		id   string
		role domain.Role
	}{
		{"student-1", domain.RoleStudent},
		{"warden-1", domain.RoleWarden},
		{"staff-1", domain.RoleStaff},
		{"hod-1", domain.RoleHoD},
		{"principal-1", domain.RolePrincipal},
	} {
		_, err := f.directory.CreateProfile(ctx, p.id, string(p.role), p.id+"@college.edu", p.role)
		require.NoError(t, err)
	}
	return f
}

type notifierFunc func(context.Context, domain.Grievance, string)

func (f notifierFunc) GrievanceChanged(ctx context.Context, g domain.Grievance, action string) {
	f(ctx, g, action)
}

func (f *fixture) seed(t *testing.T, id string, status domain.Status) domain.Grievance {
	t.Helper()
	g := domain.Grievance{
		ID:             id,
		RawText:        "Wifi sucks",
		NormalizedText: "The connectivity in the hostel is unreliable.",
		AuthorDisplay:  domain.AnonymousAuthor,
		CreatorID:      "student-1",
		Category:       "Wifi",
		Status:         status,
		UrgencyScore:   50,
		History: []domain.HistoryEntry{
			{Action: domain.ActionSubmitted, Actor: domain.RoleStudent, Timestamp: time.Now()},
		},
		CreatedAt: time.Now(),
	}
	require.NoError(t, f.store.Create(context.Background(), g))
	return g
}

func TestMarkInProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	got, err := f.svc.MarkInProgress(ctx, "warden-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, got.Status)

	// Students may not triage.
	_, err = f.svc.MarkInProgress(ctx, "student-1", "g1")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	// Unknown actors are forbidden, not internal errors.
	_, err = f.svc.MarkInProgress(ctx, "ghost", "g1")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestTransitionTable(t *testing.T) {
	tests := []struct {
		name    string
		status  domain.Status
		actor   string
		act     func(*Service, context.Context, string) error
		wantErr apperrors.Code
	}{
		{"warden escalates open", domain.StatusOpen, "warden-1", escalate, ""},
		{"staff escalates in-progress", domain.StatusInProgress, "staff-1", escalate, ""},
		{"escalate twice rejected", domain.StatusEscalated, "warden-1", escalate, apperrors.CodeConflict},
		{"escalate resolved rejected", domain.StatusResolved, "warden-1", escalate, apperrors.CodeConflict},
		{"student escalate rejected", domain.StatusOpen, "student-1", escalate, apperrors.CodeForbidden},
		{"hod escalate rejected", domain.StatusOpen, "hod-1", escalate, apperrors.CodeForbidden},
		{"warden resolves open", domain.StatusOpen, "warden-1", resolve, ""},
		{"warden resolves in-progress", domain.StatusInProgress, "warden-1", resolve, ""},
		{"warden resolve escalated rejected", domain.StatusEscalated, "warden-1", resolve, apperrors.CodeForbidden},
		{"hod resolves escalated", domain.StatusEscalated, "hod-1", resolve, ""},
		{"hod resolve open rejected", domain.StatusOpen, "hod-1", resolve, apperrors.CodeForbidden},
		{"resolve resolved rejected", domain.StatusResolved, "warden-1", resolve, apperrors.CodeConflict},
		{"warden updates open", domain.StatusOpen, "warden-1", update, ""},
		{"warden update on escalated rejected", domain.StatusEscalated, "warden-1", update, apperrors.CodeForbidden},
		{"hod updates escalated", domain.StatusEscalated, "hod-1", update, ""},
		{"update on resolved rejected", domain.StatusResolved, "warden-1", update, apperrors.CodeConflict},
		{"progress on escalated rejected", domain.StatusEscalated, "warden-1", progress, apperrors.CodeConflict},
		{"progress on resolved rejected", domain.StatusResolved, "warden-1", progress, apperrors.CodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.seed(t, "g1", tt.status)
			err := tt.act(f.svc, context.Background(), tt.actor)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.True(t, apperrors.Is(err, tt.wantErr), "got %v", err)
			}
		})
	}
}

func escalate(s *Service, ctx context.Context, actor string) error {
	_, err := s.Escalate(ctx, actor, "g1", "Budget required")
	return err
}

func resolve(s *Service, ctx context.Context, actor string) error {
	_, err := s.Resolve(ctx, actor, "g1", "Routers replaced")
	return err
}

func update(s *Service, ctx context.Context, actor string) error {
	_, err := s.AppendUpdate(ctx, actor, "g1", "Electrician scheduled")
	return err
}

func progress(s *Service, ctx context.Context, actor string) error {
	_, err := s.MarkInProgress(ctx, actor, "g1")
	return err
}

func TestEmptyInputsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	_, err := f.svc.Escalate(ctx, "warden-1", "g1", "  ")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))

	_, err = f.svc.Resolve(ctx, "warden-1", "g1", "")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))

	_, err = f.svc.AppendUpdate(ctx, "warden-1", "g1", "")
	assert.True(t, apperrors.Is(err, apperrors.CodeBadRequest))

	// Rejected transitions leave no history behind.
	g, err := f.store.FindByID(ctx, "g1")
	require.NoError(t, err)
	assert.Len(t, g.History, 1)
}

func TestHistoryGrowsByExactlyOnePerTransition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	_, err := f.svc.MarkInProgress(ctx, "warden-1", "g1")
	require.NoError(t, err)
	_, err = f.svc.AppendUpdate(ctx, "warden-1", "g1", "Looking into it")
	require.NoError(t, err)
	_, err = f.svc.Escalate(ctx, "warden-1", "g1", "Budget required")
	require.NoError(t, err)
	got, err := f.svc.Resolve(ctx, "hod-1", "g1", "Routers replaced")
	require.NoError(t, err)

	// One seed entry plus four transitions.
	require.Len(t, got.History, 5)
	actions := make([]string, 0, len(got.History))
	for _, h := range got.History {
		actions = append(actions, h.Action)
	}
	assert.Equal(t, []string{
		domain.ActionSubmitted,
		domain.ActionMarkedInProgress,
		domain.ActionUpdatePosted,
		domain.ActionEscalated,
		domain.ActionResolved,
	}, actions)
}

func TestEscalationScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	got, err := f.svc.Escalate(ctx, "warden-1", "g1", "Budget required")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusEscalated, got.Status)
	assert.Equal(t, "Budget required", got.EscalationReason)

	// The escalating warden has lost resolve capability on this record.
	_, err = f.svc.Resolve(ctx, "warden-1", "g1", "Handled it anyway")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))
}

func TestResolveScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusEscalated)

	got, err := f.svc.Resolve(ctx, "hod-1", "g1", "Routers replaced")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, got.Status)
	assert.Equal(t, "Routers replaced", got.ResolutionNote)
	require.NotNil(t, got.ResolvedAt)

	// Terminal: nothing further is accepted.
	_, err = f.svc.MarkInProgress(ctx, "warden-1", "g1")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
	_, err = f.svc.Resolve(ctx, "hod-1", "g1", "Again")
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}

func TestNotifierReceivesCommittedTransitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	_, err := f.svc.MarkInProgress(ctx, "warden-1", "g1")
	require.NoError(t, err)
	_, err = f.svc.MarkInProgress(ctx, "student-1", "g1") // rejected
	require.Error(t, err)

	assert.Equal(t, []string{domain.ActionMarkedInProgress}, f.notified)
}

func TestListForActor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)
	f.seed(t, "g2", domain.StatusEscalated)
	f.seed(t, "g3", domain.StatusResolved)

	triage, err := f.svc.ListForActor(ctx, "warden-1", ScopeTriage)
	require.NoError(t, err)
	assert.Len(t, triage, 2)

	escalated, err := f.svc.ListForActor(ctx, "hod-1", ScopeEscalated)
	require.NoError(t, err)
	require.Len(t, escalated, 1)
	assert.Equal(t, "g2", escalated[0].ID)

	public, err := f.svc.ListForActor(ctx, "student-1", ScopePublic)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "g3", public[0].ID)

	mine, err := f.svc.ListForActor(ctx, "student-1", ScopeMine)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	_, err = f.svc.ListForActor(ctx, "student-1", ScopeTriage)
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	all, err := f.svc.ListForActor(ctx, "principal-1", ScopeEverything)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestGet_StudentAccess(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, "g1", domain.StatusOpen)

	// Creator sees their own open record.
	_, err := f.svc.Get(ctx, "student-1", "g1")
	require.NoError(t, err)

	_, err = f.directory.CreateProfile(ctx, "student-2", "Other", "other@college.edu", domain.RoleStudent)
	require.NoError(t, err)

	// Another student cannot see it until resolved.
	_, err = f.svc.Get(ctx, "student-2", "g1")
	assert.True(t, apperrors.Is(err, apperrors.CodeForbidden))

	_, err = f.svc.Resolve(ctx, "warden-1", "g1", "Fixed")
	require.NoError(t, err)
	_, err = f.svc.Get(ctx, "student-2", "g1")
	assert.NoError(t, err)
}
