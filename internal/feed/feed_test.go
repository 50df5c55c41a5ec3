package feed

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/pkg/requestcontext"
)

func TestPredicateFor(t *testing.T) {
	own := Event{CreatorID: "student-1", Status: string(domain.StatusOpen)}
	other := Event{CreatorID: "student-2", Status: string(domain.StatusInProgress)}
	resolved := Event{CreatorID: "student-2", Status: string(domain.StatusResolved)}
	escalated := Event{CreatorID: "student-2", Status: string(domain.StatusEscalated)}

	tests := []struct {
		name string
		role domain.Role
		want map[string]bool
	}{
		{
			name: "student sees own and resolved",
			role: domain.RoleStudent,
			want: map[string]bool{"own": true, "other": false, "resolved": true, "escalated": false},
		},
		{
			name: "warden sees everything",
			role: domain.RoleWarden,
			want: map[string]bool{"own": true, "other": true, "resolved": true, "escalated": true},
		},
		{
			name: "hod sees escalated and resolved",
			role: domain.RoleHoD,
			want: map[string]bool{"own": false, "other": false, "resolved": true, "escalated": true},
		},
		{
			name: "principal sees everything",
			role: domain.RolePrincipal,
			want: map[string]bool{"own": true, "other": true, "resolved": true, "escalated": true},
		},
	}

	events := map[string]Event{"own": own, "other": other, "resolved": resolved, "escalated": escalated}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pred := PredicateFor("student-1", tt.role)
			for name, e := range events {
				assert.Equal(t, tt.want[name], pred(e), "event %q", name)
			}
		})
	}
}

func TestLocalBroker_FanOut(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewLocalBroker()
	sub1 := b.Subscribe(ctx)
	sub2 := b.Subscribe(ctx)

	require.NoError(t, b.Publish(ctx, Event{GrievanceID: "g-1"}))

	for _, sub := range []<-chan Event{sub1, sub2} {
		select {
		case e := <-sub:
			assert.Equal(t, "g-1", e.GrievanceID)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

// dialFeed connects a websocket client through the full handler stack with an
// injected user identity.
func dialFeed(t *testing.T, hub *Hub, directory *identity.Service, userID string) *websocket.Conn {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(requestcontext.WithUserID(req.Context(), userID)))
		})
	})
	NewHandler(hub, directory, logger).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/feed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestFeed_EndToEnd(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	directory := identity.NewService(identity.NewMemoryStore())
	_, err := directory.CreateProfile(ctx, "warden-1", "Warden Singh", "warden@demo.campus", domain.RoleWarden)
	require.NoError(t, err)
	_, err = directory.CreateProfile(ctx, "student-1", "Asha Verma", "asha@demo.campus", domain.RoleStudent)
	require.NoError(t, err)

	hub := NewHub(logger, nil)
	go hub.Run(ctx)

	broker := NewLocalBroker()
	svc := NewService(broker, hub, logger)
	go func() { _ = svc.Run(ctx) }()

	wardenConn := dialFeed(t, hub, directory, "warden-1")
	studentConn := dialFeed(t, hub, directory, "student-1")

	// Give the hub a moment to register both clients.
	time.Sleep(50 * time.Millisecond)

	svc.GrievanceChanged(ctx, domain.Grievance{
		ID:             "g-1",
		CreatorID:      "student-2",
		Status:         domain.StatusOpen,
		Category:       "Hostel",
		NormalizedText: "No hot water in Block A",
	}, domain.ActionSubmitted)

	// The warden receives the open record.
	require.NoError(t, wardenConn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := wardenConn.ReadMessage()
	require.NoError(t, err)

	var e Event
	require.NoError(t, json.Unmarshal(payload, &e))
	assert.Equal(t, "g-1", e.GrievanceID)
	assert.Equal(t, domain.ActionSubmitted, e.Action)
	assert.Empty(t, e.CreatorID, "creator identity must not reach the browser")

	// The student is not the creator; an open record of someone else never
	// reaches them.
	require.NoError(t, studentConn.SetReadDeadline(time.Now().Add(300*time.Millisecond)))
	_, _, err = studentConn.ReadMessage()
	assert.Error(t, err)
}
