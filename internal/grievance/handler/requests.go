package handler

import (
	"time"

	"campusvoice/internal/domain"
)

type noteRequest struct {
	Note string `json:"note"`
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// GrievanceResponse is the wire shape of a grievance. Raw text is included so
// triage staff can hover-compare against the normalized version; the creator
// identity stays server-side.
type GrievanceResponse struct {
	ID               string                `json:"id"`
	RawText          string                `json:"rawText"`
	NormalizedText   string                `json:"normalizedText"`
	AuthorDisplay    string                `json:"authorDisplay"`
	Category         string                `json:"category"`
	Location         string                `json:"location,omitempty"`
	Status           string                `json:"status"`
	UrgencyScore     int                   `json:"urgencyScore"`
	EvidenceKey      string                `json:"evidenceKey,omitempty"`
	EscalationReason string                `json:"escalationReason,omitempty"`
	ResolutionNote   string                `json:"resolutionNote,omitempty"`
	Updates          []domain.Update       `json:"updates,omitempty"`
	History          []domain.HistoryEntry `json:"history"`
	CreatedAt        time.Time             `json:"createdAt"`
	ResolvedAt       *time.Time            `json:"resolvedAt,omitempty"`
}

func toResponse(g domain.Grievance) GrievanceResponse {
	return GrievanceResponse{
		ID:               g.ID,
		RawText:          g.RawText,
		NormalizedText:   g.NormalizedText,
		AuthorDisplay:    g.AuthorDisplay,
		Category:         g.Category,
		Location:         g.Location,
		Status:           string(g.Status),
		UrgencyScore:     g.UrgencyScore,
		EvidenceKey:      g.EvidenceKey,
		EscalationReason: g.EscalationReason,
		ResolutionNote:   g.ResolutionNote,
		Updates:          g.Updates,
		History:          g.History,
		CreatedAt:        g.CreatedAt,
		ResolvedAt:       g.ResolvedAt,
	}
}

func toResponses(records []domain.Grievance) []GrievanceResponse {
	out := make([]GrievanceResponse, 0, len(records))
	for _, g := range records {
		out = append(out, toResponse(g))
	}
	return out
}
