package identity

import (
	"context"

	"campusvoice/internal/domain"
	"campusvoice/pkg/apperrors"
)

// Service exposes the directory operations. It keeps orchestration out of
// handlers and enforces the idempotent-create contract between the two
// provisioning paths (explicit registration vs. auto-provisioning on first
// external sign-in).
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetProfile returns the profile for an identity. NotFound is a legitimate
// transient state while a provisioning path is still in flight.
func (s *Service) GetProfile(ctx context.Context, id string) (domain.UserProfile, error) {
	return s.store.FindByID(ctx, id)
}

// CreateProfile creates a profile if none exists. A repeated call returns the
// profile from the first call unchanged, so a racing auto-provisioner can
// never stomp a role chosen at registration.
func (s *Service) CreateProfile(ctx context.Context, id, displayName, email string, role domain.Role) (domain.UserProfile, error) {
	if id == "" || displayName == "" {
		return domain.UserProfile{}, apperrors.New(apperrors.CodeBadRequest, "identity and display name are required")
	}
	profile, _, err := s.store.Create(ctx, domain.UserProfile{
		ID:          id,
		DisplayName: displayName,
		Email:       email,
		Role:        role,
		Strikes:     0,
	})
	return profile, err
}

// EnsureProfile auto-provisions a student profile on first external sign-in.
// The credential/password path never calls this; it owns its profile creation
// at registration time.
func (s *Service) EnsureProfile(ctx context.Context, id, displayName, email string) (domain.UserProfile, error) {
	return s.CreateProfile(ctx, id, displayName, email, domain.RoleStudent)
}

// IncrementStrikes atomically bumps the strike counter and returns the new
// count. Callers use the returned value for the anonymity snapshot so no
// stale read can slip between increment and decision.
func (s *Service) IncrementStrikes(ctx context.Context, id string) (int, error) {
	return s.store.IncrementStrikes(ctx, id)
}

// AssignRole changes a profile's role. Only admins may do this.
func (s *Service) AssignRole(ctx context.Context, actorID, targetID string, role domain.Role) error {
	actor, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		return err
	}
	if !actor.Role.CanAssignRoles() {
		return apperrors.New(apperrors.CodeForbidden, "role assignment requires admin")
	}
	return s.store.SetRole(ctx, targetID, role)
}

// RequireRole loads the actor's profile and fails when it does not satisfy
// the given capability check. Lifecycle transitions authorize through this,
// never through client-supplied claims.
func (s *Service) RequireRole(ctx context.Context, actorID string, allowed func(domain.Role) bool) (domain.UserProfile, error) {
	profile, err := s.store.FindByID(ctx, actorID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return domain.UserProfile{}, apperrors.New(apperrors.CodeForbidden, "no profile for actor")
		}
		return domain.UserProfile{}, err
	}
	if !allowed(profile.Role) {
		return domain.UserProfile{}, apperrors.New(apperrors.CodeForbidden, "role not permitted for this action")
	}
	return profile, nil
}
