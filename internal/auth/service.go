package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/pkg/apperrors"
)

// TokenIssuer abstracts JWT creation so tests can inspect issued claims.
type TokenIssuer interface {
	GenerateAccessToken(userID string, role string, expiresIn time.Duration) (string, error)
}

// Service implements registration, login, and the demo-account path. The
// credential path creates its own profile explicitly so a racing external
// auto-provisioner can never stomp the role chosen at registration.
type Service struct {
	store    Store
	identity *identity.Service
	tokens   TokenIssuer
	tokenTTL time.Duration
}

func NewService(store Store, directory *identity.Service, tokens TokenIssuer, tokenTTL time.Duration) *Service {
	return &Service{
		store:    store,
		identity: directory,
		tokens:   tokens,
		tokenTTL: tokenTTL,
	}
}

// Session is returned to the client after a successful login.
type Session struct {
	Token   string
	Profile domain.UserProfile
}

// Register creates a credential and its directory profile.
func (s *Service) Register(ctx context.Context, email, password, displayName string, role domain.Role) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" || displayName == "" {
		return Session{}, apperrors.New(apperrors.CodeBadRequest, "email, password and display name are required")
	}
	if len(password) < 6 {
		return Session{}, apperrors.New(apperrors.CodeBadRequest, "password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Session{}, apperrors.New(apperrors.CodeInternal, "failed to hash password")
	}

	userID := uuid.NewString()
	if err := s.store.Save(ctx, Credential{UserID: userID, Email: email, PasswordHash: hash}); err != nil {
		return Session{}, err
	}

	profile, err := s.identity.CreateProfile(ctx, userID, displayName, email, role)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

// Login verifies credentials and returns a session. The directory profile may
// lag a just-finished registration on another node; that surfaces as NotFound
// and the caller retries, per the directory contract.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	cred, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return Session{}, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
		}
		return Session{}, err
	}
	if bcrypt.CompareHashAndPassword(cred.PasswordHash, []byte(password)) != nil {
		return Session{}, apperrors.New(apperrors.CodeUnauthorized, "invalid email or password")
	}

	profile, err := s.identity.GetProfile(ctx, cred.UserID)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

// demoAccounts mirrors the fixed per-role demo logins; each is provisioned on
// first use.
var demoAccounts = map[domain.Role]struct {
	email, name string
}{
	domain.RoleStudent:   {"student@demo.campus", "Student Demo"},
	domain.RoleWarden:    {"warden@demo.campus", "Warden Demo"},
	domain.RoleStaff:     {"staff@demo.campus", "Staff Demo"},
	domain.RoleHoD:       {"hod@demo.campus", "HoD Demo"},
	domain.RolePrincipal: {"principal@demo.campus", "Principal Demo"},
}

// DemoLogin provisions (once) and signs in the fixed demo account for a role.
func (s *Service) DemoLogin(ctx context.Context, role domain.Role) (Session, error) {
	account, ok := demoAccounts[role]
	if !ok {
		return Session{}, apperrors.New(apperrors.CodeBadRequest, "no demo account for role")
	}

	cred, err := s.store.FindByEmail(ctx, account.email)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		session, regErr := s.Register(ctx, account.email, "demo-password", account.name, role)
		if regErr == nil {
			return session, nil
		}
		if !apperrors.Is(regErr, apperrors.CodeConflict) {
			return Session{}, regErr
		}
		// Lost the provisioning race to another node; fall through to login.
		cred, err = s.store.FindByEmail(ctx, account.email)
	}
	if err != nil {
		return Session{}, err
	}

	profile, err := s.identity.GetProfile(ctx, cred.UserID)
	if err != nil {
		return Session{}, err
	}
	return s.issue(profile)
}

func (s *Service) issue(profile domain.UserProfile) (Session, error) {
	token, err := s.tokens.GenerateAccessToken(profile.ID, string(profile.Role), s.tokenTTL)
	if err != nil {
		return Session{}, apperrors.New(apperrors.CodeInternal, "failed to issue token")
	}
	return Session{Token: token, Profile: profile}, nil
}
