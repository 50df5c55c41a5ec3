package handler

import (
	"time"

	"campusvoice/internal/domain"
	"campusvoice/internal/submission"
)

type startRequest struct {
	Category string `json:"category"`
}

type describeRequest struct {
	Text        string `json:"text"`
	EvidenceKey string `json:"evidenceKey,omitempty"`
}

type confirmRequest struct {
	Location string `json:"location"`
}

// DraftResponse is the wire shape of a wizard draft. The review payload shows
// the submitter what the model proposes before anything is recorded.
type DraftResponse struct {
	ID          string           `json:"id"`
	Category    string           `json:"category"`
	Text        string           `json:"text,omitempty"`
	EvidenceKey string           `json:"evidenceKey,omitempty"`
	State       submission.State `json:"state"`
	Review      *reviewPayload   `json:"review,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

type reviewPayload struct {
	Abusive        bool   `json:"isAbusive"`
	NormalizedText string `json:"normalizedText"`
}

func toDraftResponse(d submission.Draft) DraftResponse {
	resp := DraftResponse{
		ID:          d.ID,
		Category:    d.Category,
		Text:        d.Text,
		EvidenceKey: d.EvidenceKey,
		State:       d.State,
		CreatedAt:   d.CreatedAt,
	}
	if d.Result != nil {
		resp.Review = &reviewPayload{
			Abusive:        d.Result.Abusive,
			NormalizedText: d.Result.NormalizedText,
		}
	}
	return resp
}

// GrievanceResponse mirrors the triage endpoints' wire shape for the record
// returned by a successful confirm.
type GrievanceResponse struct {
	ID             string    `json:"id"`
	NormalizedText string    `json:"normalizedText"`
	AuthorDisplay  string    `json:"authorDisplay"`
	Category       string    `json:"category"`
	Location       string    `json:"location"`
	Status         string    `json:"status"`
	UrgencyScore   int       `json:"urgencyScore"`
	EvidenceKey    string    `json:"evidenceKey,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toGrievanceResponse(g domain.Grievance) GrievanceResponse {
	return GrievanceResponse{
		ID:             g.ID,
		NormalizedText: g.NormalizedText,
		AuthorDisplay:  g.AuthorDisplay,
		Category:       g.Category,
		Location:       g.Location,
		Status:         string(g.Status),
		UrgencyScore:   g.UrgencyScore,
		EvidenceKey:    g.EvidenceKey,
		CreatedAt:      g.CreatedAt,
	}
}
