package domain

import "time"

// Status is the grievance lifecycle state. Resolved is terminal.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusEscalated  Status = "Escalated"
	StatusResolved   Status = "Resolved"
)

// Terminal reports whether no further transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusResolved
}

// Action tags recorded in the history trail. One entry per committed
// transition, appended atomically with the field mutation.
const (
	ActionSubmitted        = "SUBMITTED"
	ActionMarkedInProgress = "MARKED_IN_PROGRESS"
	ActionUpdatePosted     = "UPDATE_POSTED"
	ActionEscalated        = "MANUAL_ESCALATION"
	ActionResolved         = "RESOLVED"
)

// Update is a progress note visible to the submitter.
type Update struct {
	Note      string    `json:"note"`
	Actor     Role      `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryEntry is one line of the append-only audit trail embedded in the
// record. History is never truncated or reordered.
type HistoryEntry struct {
	Action    string    `json:"action"`
	Actor     Role      `json:"actor"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Grievance is a single submitted complaint and its full mutation history.
type Grievance struct {
	ID               string
	RawText          string
	NormalizedText   string
	AuthorDisplay    string
	CreatorID        string
	Category         string
	Location         string
	Status           Status
	UrgencyScore     int
	StrikesAtTime    int
	EvidenceKey      string
	EscalationReason string
	ResolutionNote   string
	Updates          []Update
	History          []HistoryEntry
	CreatedAt        time.Time
	ResolvedAt       *time.Time
}

// UrgencyFor derives the initial urgency score from the abuse flag.
func UrgencyFor(abusive bool) int {
	if abusive {
		return 90
	}
	return 50
}
