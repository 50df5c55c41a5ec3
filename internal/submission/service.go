package submission

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"campusvoice/internal/domain"
	"campusvoice/internal/grievance"
	"campusvoice/internal/identity"
	"campusvoice/internal/normalize"
	"campusvoice/internal/platform/metrics"
	"campusvoice/internal/ratelimit"
	"campusvoice/pkg/apperrors"
	"campusvoice/pkg/requestcontext"
)

// Service drives the submission wizard. A draft moves describe → review →
// submitted; Back returns review → describe and discards the normalization
// result so the edited text is normalized again. Confirm writes the grievance
// record exactly once: the draft is swapped to the submitted state before the
// record is created, so a concurrent duplicate confirm loses with a conflict.
type Service struct {
	drafts     Store
	normalizer *normalize.Service
	directory  *identity.Service
	grievances *grievance.Service
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	logger     *slog.Logger
	now        func() time.Time
	newID      func() string
}

func NewService(
	drafts Store,
	normalizer *normalize.Service,
	directory *identity.Service,
	grievances *grievance.Service,
	limiter *ratelimit.Limiter,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		drafts:     drafts,
		normalizer: normalizer,
		directory:  directory,
		grievances: grievances,
		limiter:    limiter,
		metrics:    m,
		logger:     logger,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// WithClock overrides the clock; test helper.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Start opens a new draft in the describe state.
func (s *Service) Start(ctx context.Context, creatorID, category string) (Draft, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return Draft{}, apperrors.New(apperrors.CodeBadRequest, "category must not be empty")
	}

	d := Draft{
		ID:        s.newID(),
		CreatorID: creatorID,
		Category:  category,
		State:     StateDescribe,
		CreatedAt: s.now(),
	}
	if err := s.drafts.Save(ctx, d); err != nil {
		return Draft{}, apperrors.New(apperrors.CodeInternal, "failed to save draft")
	}
	return d, nil
}

// Describe records the free-text description, runs it through normalization,
// and moves the draft to review. Normalization never fails the call; on model
// trouble the original text passes through unchanged.
func (s *Service) Describe(ctx context.Context, creatorID, draftID, text, evidenceKey string) (Draft, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Draft{}, apperrors.New(apperrors.CodeBadRequest, "description must not be empty")
	}

	d, err := s.ownedDraft(ctx, creatorID, draftID)
	if err != nil {
		return Draft{}, err
	}
	if d.State != StateDescribe {
		return Draft{}, apperrors.New(apperrors.CodeConflict, "draft is not awaiting a description")
	}

	result := s.normalizer.Normalize(ctx, text)
	d.Text = text
	d.EvidenceKey = evidenceKey
	d.Result = &result
	d.State = StateReview

	if err := s.drafts.Save(ctx, d); err != nil {
		return Draft{}, apperrors.New(apperrors.CodeInternal, "failed to save draft")
	}
	return d, nil
}

// Back returns a reviewed draft to the describe state. The category and text
// are kept; the normalization result is discarded so an edited description is
// normalized afresh.
func (s *Service) Back(ctx context.Context, creatorID, draftID string) (Draft, error) {
	d, err := s.ownedDraft(ctx, creatorID, draftID)
	if err != nil {
		return Draft{}, err
	}
	if d.State != StateReview {
		return Draft{}, apperrors.New(apperrors.CodeConflict, "draft is not under review")
	}

	d.Result = nil
	d.State = StateDescribe

	if err := s.drafts.Save(ctx, d); err != nil {
		return Draft{}, apperrors.New(apperrors.CodeInternal, "failed to save draft")
	}
	return d, nil
}

// Confirm turns a reviewed draft into a grievance record. When the text was
// flagged abusive the submitter's strike count is incremented first, and the
// returned count decides whether the author label reveals their identity.
// Both the count and the label are snapshots taken here; later strikes never
// change an existing record.
func (s *Service) Confirm(ctx context.Context, creatorID, draftID, location string) (domain.Grievance, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return domain.Grievance{}, apperrors.New(apperrors.CodeBadRequest, "location must not be empty")
	}

	if _, err := s.ownedDraft(ctx, creatorID, draftID); err != nil {
		return domain.Grievance{}, err
	}

	if s.limiter != nil && !s.limiter.Allow(creatorID) {
		return domain.Grievance{}, apperrors.New(apperrors.CodeRateLimited, "too many submissions, slow down")
	}

	// The swap is the in-flight guard: exactly one concurrent confirm moves
	// the draft out of review.
	d, err := s.drafts.SwapState(ctx, draftID, StateReview, StateSubmitted)
	if err != nil {
		return domain.Grievance{}, err
	}
	if d.Result == nil {
		return domain.Grievance{}, apperrors.New(apperrors.CodeConflict, "draft has no reviewed text")
	}

	profile, err := s.directory.GetProfile(ctx, creatorID)
	if err != nil {
		s.restoreReview(ctx, draftID)
		return domain.Grievance{}, err
	}

	strikesAtTime := profile.Strikes
	if d.Result.Abusive {
		strikesAtTime, err = s.directory.IncrementStrikes(ctx, creatorID)
		if err != nil {
			s.restoreReview(ctx, draftID)
			return domain.Grievance{}, apperrors.New(apperrors.CodeInternal, "failed to record strike")
		}
		if s.metrics != nil {
			s.metrics.StrikesIssued.Inc()
		}
		s.logger.InfoContext(ctx, "strike issued for abusive submission",
			"user_id", creatorID,
			"strikes", strikesAtTime,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	now := s.now()
	g := domain.Grievance{
		ID:             s.newID(),
		RawText:        d.Text,
		NormalizedText: d.Result.NormalizedText,
		AuthorDisplay:  domain.AuthorDisplayFor(profile.DisplayName, strikesAtTime),
		CreatorID:      creatorID,
		Category:       d.Category,
		Location:       location,
		Status:         domain.StatusOpen,
		UrgencyScore:   domain.UrgencyFor(d.Result.Abusive),
		StrikesAtTime:  strikesAtTime,
		EvidenceKey:    d.EvidenceKey,
		History: []domain.HistoryEntry{{
			Action:    domain.ActionSubmitted,
			Actor:     profile.Role,
			Timestamp: now,
		}},
		CreatedAt: now,
	}

	created, err := s.grievances.Create(ctx, g)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create grievance from draft",
			"error", err,
			"draft_id", draftID,
			"request_id", requestcontext.RequestID(ctx),
		)
		s.restoreReview(ctx, draftID)
		return domain.Grievance{}, apperrors.New(apperrors.CodeInternal, "failed to submit grievance")
	}

	if err := s.drafts.Delete(ctx, draftID); err != nil {
		s.logger.WarnContext(ctx, "failed to delete submitted draft", "error", err, "draft_id", draftID)
	}
	return created, nil
}

// GetDraft returns the caller's draft.
func (s *Service) GetDraft(ctx context.Context, creatorID, draftID string) (Draft, error) {
	return s.ownedDraft(ctx, creatorID, draftID)
}

func (s *Service) ownedDraft(ctx context.Context, creatorID, draftID string) (Draft, error) {
	d, err := s.drafts.FindByID(ctx, draftID)
	if err != nil {
		return Draft{}, err
	}
	if d.CreatorID != creatorID {
		return Draft{}, apperrors.New(apperrors.CodeForbidden, "not your draft")
	}
	return d, nil
}

// restoreReview puts a draft back into review after a failed confirm so the
// submitter can retry. Best effort; the draft may have expired meanwhile.
func (s *Service) restoreReview(ctx context.Context, draftID string) {
	if _, err := s.drafts.SwapState(ctx, draftID, StateSubmitted, StateReview); err != nil {
		s.logger.WarnContext(ctx, "failed to restore draft to review", "error", err, "draft_id", draftID)
	}
}
