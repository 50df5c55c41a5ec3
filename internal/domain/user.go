package domain

// UserProfile is the directory record behind an authenticated identity.
// Profiles are created once (idempotently) and mutated only by strike
// increments and admin role assignment; they are never deleted in normal
// operation.
type UserProfile struct {
	ID          string
	DisplayName string
	Email       string
	Role        Role
	Strikes     int
}

// StrikeRevealThreshold is the cumulative strike count at which a submitter's
// identity is shown on new grievances instead of "Anonymous".
const StrikeRevealThreshold = 3

// AuthorDisplayFor decides the author label for a new grievance given the
// strike count at submission time. The decision is a snapshot: it is recorded
// on the record and never recomputed as later strikes accrue.
func AuthorDisplayFor(displayName string, strikesAtTime int) string {
	if strikesAtTime >= StrikeRevealThreshold {
		return displayName
	}
	return AnonymousAuthor
}

// AnonymousAuthor is the display label for submitters below the strike
// threshold.
const AnonymousAuthor = "Anonymous"
