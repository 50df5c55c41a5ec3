// Package stats computes the campus-wide overview behind the principal
// dashboard.
package stats

import (
	"context"

	"campusvoice/internal/domain"
	"campusvoice/internal/grievance"
	"campusvoice/internal/identity"
)

// CriticalUrgencyThreshold marks the urgency score above which a record
// counts as critical.
const CriticalUrgencyThreshold = 80

// Overview is the aggregate snapshot: headline counters plus the tallies the
// location heatmap and category breakdown are drawn from.
type Overview struct {
	Total      int            `json:"total"`
	Critical   int            `json:"critical"`
	Resolved   int            `json:"resolved"`
	Open       int            `json:"open"`
	Escalated  int            `json:"escalated"`
	ByCategory map[string]int `json:"byCategory"`
	ByLocation map[string]int `json:"byLocation"`
}

// Service aggregates over the grievance store. Access is gated to analytics
// roles; the check happens here, not in the handler.
type Service struct {
	store     grievance.Store
	directory *identity.Service
}

func NewService(store grievance.Store, directory *identity.Service) *Service {
	return &Service{store: store, directory: directory}
}

// Overview computes the snapshot for an analytics-capable actor.
func (s *Service) Overview(ctx context.Context, actorID string) (Overview, error) {
	if _, err := s.directory.RequireRole(ctx, actorID, domain.Role.CanViewAnalytics); err != nil {
		return Overview{}, err
	}

	records, err := s.store.List(ctx, grievance.Filter{})
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{
		ByCategory: make(map[string]int),
		ByLocation: make(map[string]int),
	}
	for _, g := range records {
		ov.Total++
		if g.UrgencyScore > CriticalUrgencyThreshold {
			ov.Critical++
		}
		switch g.Status {
		case domain.StatusResolved:
			ov.Resolved++
		case domain.StatusEscalated:
			ov.Escalated++
		case domain.StatusOpen:
			ov.Open++
		}
		ov.ByCategory[g.Category]++
		if g.Location != "" {
			ov.ByLocation[g.Location]++
		}
	}
	return ov, nil
}
