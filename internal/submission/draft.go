package submission

import (
	"time"

	"campusvoice/internal/normalize"
)

// State is the position of a draft in the submission wizard.
type State string

const (
	// StateDescribe collects the category and free-text description.
	StateDescribe State = "describe"
	// StateReview holds the normalized text awaiting the submitter's
	// confirmation.
	StateReview State = "review"
	// StateSubmitted is terminal; the grievance record has been written.
	StateSubmitted State = "submitted"
)

// Draft is a server-side wizard session owned by the student who started it.
// The normalization result lives only on the draft until Confirm writes the
// grievance record.
type Draft struct {
	ID          string            `json:"id"`
	CreatorID   string            `json:"creatorId"`
	Category    string            `json:"category"`
	Text        string            `json:"text"`
	EvidenceKey string            `json:"evidenceKey,omitempty"`
	Result      *normalize.Result `json:"result,omitempty"`
	State       State             `json:"state"`
	CreatedAt   time.Time         `json:"createdAt"`
}
