package grievance

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"campusvoice/internal/audit"
	"campusvoice/internal/domain"
	"campusvoice/internal/identity"
	"campusvoice/internal/platform/metrics"
	"campusvoice/pkg/apperrors"
	"campusvoice/pkg/requestcontext"
)

// Notifier pushes committed mutations to live dashboard subscribers. The feed
// hub implements it; a nil notifier is valid in tests.
type Notifier interface {
	GrievanceChanged(ctx context.Context, g domain.Grievance, action string)
}

// Service is the lifecycle manager. Every transition re-reads the actor's
// role from the identity directory; role claims carried by the request are
// never trusted. Each committed transition appends exactly one history entry
// in the same store write as the field mutation, then emits audit and feed
// events.
type Service struct {
	store     Store
	directory *identity.Service
	auditor   *audit.Service
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewService(store Store, directory *identity.Service, auditor *audit.Service, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		store:     store,
		directory: directory,
		auditor:   auditor,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock overrides the clock; test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Create persists a brand-new record. Only the submission flow calls this.
func (s *Service) Create(ctx context.Context, g domain.Grievance) (domain.Grievance, error) {
	if err := s.store.Create(ctx, g); err != nil {
		return domain.Grievance{}, err
	}
	if s.metrics != nil {
		s.metrics.GrievancesSubmitted.Inc()
	}
	s.emit(ctx, g, domain.ActionSubmitted, "")
	return g, nil
}

// Get returns a record, restricting students to their own.
func (s *Service) Get(ctx context.Context, actorID, id string) (domain.Grievance, error) {
	actor, err := s.directory.GetProfile(ctx, actorID)
	if err != nil {
		return domain.Grievance{}, err
	}
	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Grievance{}, err
	}
	if actor.Role == domain.RoleStudent && g.CreatorID != actorID && g.Status != domain.StatusResolved {
		return domain.Grievance{}, apperrors.New(apperrors.CodeForbidden, "not your grievance")
	}
	return g, nil
}

// Scope names the dashboard slices a caller may request.
type Scope string

const (
	ScopeMine       Scope = "mine"       // creator = actor
	ScopePublic     Scope = "public"     // resolved records, visible to everyone
	ScopeTriage     Scope = "triage"     // status != Resolved (warden/staff)
	ScopeEscalated  Scope = "escalated"  // status == Escalated (hod)
	ScopeEverything Scope = "everything" // principal/admin
)

// ListForActor applies the role-gated dashboard predicates server-side.
func (s *Service) ListForActor(ctx context.Context, actorID string, scope Scope) ([]domain.Grievance, error) {
	actor, err := s.directory.GetProfile(ctx, actorID)
	if err != nil {
		return nil, err
	}

	switch scope {
	case ScopeMine:
		return s.store.List(ctx, Filter{CreatorID: actorID})
	case ScopePublic:
		return s.store.List(ctx, Filter{Status: domain.StatusResolved})
	case ScopeTriage:
		if !actor.Role.CanTriage() {
			return nil, apperrors.New(apperrors.CodeForbidden, "triage view requires warden or staff")
		}
		return s.store.List(ctx, Filter{NotStatus: domain.StatusResolved})
	case ScopeEscalated:
		if !actor.Role.CanResolveEscalated() && !actor.Role.CanViewAnalytics() {
			return nil, apperrors.New(apperrors.CodeForbidden, "escalation view requires HoD")
		}
		return s.store.List(ctx, Filter{Status: domain.StatusEscalated})
	case ScopeEverything:
		if !actor.Role.CanViewAnalytics() {
			return nil, apperrors.New(apperrors.CodeForbidden, "full view requires principal or admin")
		}
		return s.store.List(ctx, Filter{})
	default:
		return nil, apperrors.New(apperrors.CodeBadRequest, "unknown scope")
	}
}

// MarkInProgress moves Open (or re-affirms In Progress) records to In
// Progress.
func (s *Service) MarkInProgress(ctx context.Context, actorID, id string) (domain.Grievance, error) {
	return s.transition(ctx, actorID, id, domain.ActionMarkedInProgress, "",
		validateMarkInProgress,
		func(g *domain.Grievance, _ domain.Role, _ string, _ time.Time) {
			g.Status = domain.StatusInProgress
		})
}

// AppendUpdate posts a progress note visible to the submitter.
func (s *Service) AppendUpdate(ctx context.Context, actorID, id, note string) (domain.Grievance, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return domain.Grievance{}, apperrors.New(apperrors.CodeBadRequest, "update note must not be empty")
	}
	return s.transition(ctx, actorID, id, domain.ActionUpdatePosted, note,
		validateAppendUpdate,
		func(g *domain.Grievance, role domain.Role, detail string, now time.Time) {
			g.Updates = append(g.Updates, domain.Update{Note: detail, Actor: role, Timestamp: now})
		})
}

// Escalate hands the record to the HoD tier with a required reason.
func (s *Service) Escalate(ctx context.Context, actorID, id, reason string) (domain.Grievance, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.Grievance{}, apperrors.New(apperrors.CodeBadRequest, "escalation reason must not be empty")
	}
	return s.transition(ctx, actorID, id, domain.ActionEscalated, reason,
		validateEscalate,
		func(g *domain.Grievance, _ domain.Role, detail string, _ time.Time) {
			g.Status = domain.StatusEscalated
			g.EscalationReason = detail
		})
}

// Resolve closes the record with a required resolution note. Terminal.
func (s *Service) Resolve(ctx context.Context, actorID, id, note string) (domain.Grievance, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return domain.Grievance{}, apperrors.New(apperrors.CodeBadRequest, "resolution note must not be empty")
	}
	return s.transition(ctx, actorID, id, domain.ActionResolved, note,
		validateResolve,
		func(g *domain.Grievance, _ domain.Role, detail string, now time.Time) {
			g.Status = domain.StatusResolved
			g.ResolutionNote = detail
			g.ResolvedAt = &now
		})
}

func (s *Service) transition(
	ctx context.Context,
	actorID, id, action, detail string,
	validate func(domain.Role, domain.Status) error,
	apply func(*domain.Grievance, domain.Role, string, time.Time),
) (domain.Grievance, error) {
	actor, err := s.directory.GetProfile(ctx, actorID)
	if err != nil {
		if apperrors.Is(err, apperrors.CodeNotFound) {
			return domain.Grievance{}, apperrors.New(apperrors.CodeForbidden, "no profile for actor")
		}
		return domain.Grievance{}, err
	}

	g, err := s.store.FindByID(ctx, id)
	if err != nil {
		return domain.Grievance{}, err
	}

	if err := validate(actor.Role, g.Status); err != nil {
		if s.metrics != nil {
			s.metrics.TransitionRejections.WithLabelValues(string(apperrors.CodeOf(err))).Inc()
		}
		return domain.Grievance{}, err
	}

	now := s.now()
	apply(&g, actor.Role, detail, now)
	g.History = append(g.History, domain.HistoryEntry{
		Action:    action,
		Actor:     actor.Role,
		Detail:    detail,
		Timestamp: now,
	})

	if err := s.store.Update(ctx, g); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist transition",
			"error", err,
			"grievance_id", id,
			"action", action,
			"request_id", requestcontext.RequestID(ctx),
		)
		return domain.Grievance{}, apperrors.New(apperrors.CodeInternal, "failed to persist transition")
	}

	if s.metrics != nil {
		s.metrics.LifecycleTransitions.WithLabelValues(action).Inc()
	}
	s.emit(ctx, g, action, detail)
	return g, nil
}

func (s *Service) emit(ctx context.Context, g domain.Grievance, action, detail string) {
	if s.auditor != nil {
		actorRole := domain.Role("")
		if n := len(g.History); n > 0 {
			actorRole = g.History[n-1].Actor
		}
		s.auditor.Emit(ctx, audit.Event{
			ActorID:     requestcontext.UserID(ctx),
			ActorRole:   actorRole,
			Action:      action,
			GrievanceID: g.ID,
			Detail:      detail,
			RequestID:   requestcontext.RequestID(ctx),
			ClientIP:    requestcontext.ClientIP(ctx),
			UserAgent:   requestcontext.UserAgent(ctx),
		})
	}
	if s.notifier != nil {
		s.notifier.GrievanceChanged(ctx, g, action)
	}
}
