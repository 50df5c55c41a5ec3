package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/auth"
	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/internal/transport/http/shared"
	"campusvoice/pkg/requestcontext"
	"campusvoice/pkg/testutil"
)

type stubIssuer struct{}

func (stubIssuer) GenerateAccessToken(userID, role string, _ time.Duration) (string, error) {
	return "token-" + userID + "-" + role, nil
}

func newTestHandler(t *testing.T) (*chi.Mux, *identity.Service) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := identity.NewService(identity.NewMemoryStore())
	svc := auth.NewService(auth.NewMemoryStore(), directory, stubIssuer{}, time.Hour)

	r := chi.NewRouter()
	h := New(svc, directory, logger)
	h.RegisterPublic(r)
	h.RegisterProtected(r)
	return r, directory
}

func asUser(req *http.Request, userID string) *http.Request {
	return req.WithContext(requestcontext.WithUserID(req.Context(), userID))
}

func TestHandler_RegisterAndLogin(t *testing.T) {
	r, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/register",
		registerRequest{Email: "asha@campus.edu", Password: "secret123", DisplayName: "Asha Verma"})
	rr := testutil.DoRequest(r, req)
	require.Equal(t, http.StatusCreated, rr.Code)
	session := testutil.UnmarshalResponse[SessionResponse](t, rr)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, string(domain.RoleStudent), session.Profile.Role)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		loginRequest{Email: "asha@campus.edu", Password: "secret123"})
	rr = testutil.DoRequest(r, req)
	require.Equal(t, http.StatusOK, rr.Code)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/login",
		loginRequest{Email: "asha@campus.edu", Password: "wrong"})
	rr = testutil.DoRequest(r, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestHandler_DemoLogin(t *testing.T) {
	r, _ := newTestHandler(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/auth/demo", demoRequest{Role: "warden"})
	rr := testutil.DoRequest(r, req)
	require.Equal(t, http.StatusOK, rr.Code)
	session := testutil.UnmarshalResponse[SessionResponse](t, rr)
	assert.Equal(t, "warden", session.Profile.Role)
	assert.Equal(t, "warden@demo.campus", session.Profile.Email)

	// Same account on repeat login.
	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/demo", demoRequest{Role: "warden"})
	rr = testutil.DoRequest(r, req)
	require.Equal(t, http.StatusOK, rr.Code)
	again := testutil.UnmarshalResponse[SessionResponse](t, rr)
	assert.Equal(t, session.Profile.ID, again.Profile.ID)

	req = testutil.NewJSONRequest(t, http.MethodPost, "/auth/demo", demoRequest{Role: "admin"})
	rr = testutil.DoRequest(r, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandler_Me(t *testing.T) {
	r, directory := newTestHandler(t)
	_, err := directory.CreateProfile(context.Background(), "student-1", "Asha Verma", "asha@campus.edu", domain.RoleStudent)
	require.NoError(t, err)

	req := asUser(testutil.NewRequest(t, http.MethodGet, "/me"), "student-1")
	rr := testutil.DoRequest(r, req)
	require.Equal(t, http.StatusOK, rr.Code)
	profile := testutil.UnmarshalResponse[ProfileResponse](t, rr)
	assert.Equal(t, "Asha Verma", profile.DisplayName)
	assert.Equal(t, 0, profile.Strikes)
}

func TestHandler_AssignRole(t *testing.T) {
	r, directory := newTestHandler(t)
	ctx := context.Background()
	_, err := directory.CreateProfile(ctx, "admin-1", "Platform Admin", "admin@campus.edu", domain.RoleAdmin)
	require.NoError(t, err)
	_, err = directory.CreateProfile(ctx, "student-1", "Asha Verma", "asha@campus.edu", domain.RoleStudent)
	require.NoError(t, err)

	req := asUser(testutil.NewJSONRequest(t, http.MethodPost, "/admin/roles",
		assignRoleRequest{UserID: "student-1", Role: "warden"}), "admin-1")
	rr := testutil.DoRequest(r, req)
	require.Equal(t, http.StatusNoContent, rr.Code)

	profile, err := directory.GetProfile(ctx, "student-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleWarden, profile.Role)

	// A non-admin cannot assign roles.
	req = asUser(testutil.NewJSONRequest(t, http.MethodPost, "/admin/roles",
		assignRoleRequest{UserID: "admin-1", Role: "student"}), "student-1")
	rr = testutil.DoRequest(r, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	resp := testutil.UnmarshalResponse[shared.ErrorResponse](t, rr)
	assert.Equal(t, "forbidden", resp.Error)
}
