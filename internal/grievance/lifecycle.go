package grievance

import (
	"campusvoice/internal/domain"
	"campusvoice/pkg/apperrors"
)

// The lifecycle transition table. Open → In Progress → Resolved, with
// Open/In Progress → Escalated → Resolved as the escalation path. Resolved is
// terminal. Once a record is Escalated, warden-tier actors lose all capability
// on it; only the HoD tier may act, and only to update or resolve.

func validateMarkInProgress(role domain.Role, status domain.Status) error {
	if !role.CanTriage() {
		return apperrors.New(apperrors.CodeForbidden, "only warden or staff may mark a grievance in progress")
	}
	switch status {
	case domain.StatusOpen, domain.StatusInProgress:
		return nil
	case domain.StatusEscalated:
		return apperrors.New(apperrors.CodeConflict, "escalated grievances are owned by the HoD")
	default:
		return apperrors.New(apperrors.CodeConflict, "grievance is already resolved")
	}
}

func validateAppendUpdate(role domain.Role, status domain.Status) error {
	if status.Terminal() {
		return apperrors.New(apperrors.CodeConflict, "grievance is already resolved")
	}
	if status == domain.StatusEscalated {
		if !role.CanResolveEscalated() {
			return apperrors.New(apperrors.CodeForbidden, "escalated grievances are owned by the HoD")
		}
		return nil
	}
	if !role.CanTriage() {
		return apperrors.New(apperrors.CodeForbidden, "only warden or staff may post updates")
	}
	return nil
}

func validateEscalate(role domain.Role, status domain.Status) error {
	if !role.CanTriage() {
		return apperrors.New(apperrors.CodeForbidden, "only warden or staff may escalate")
	}
	switch status {
	case domain.StatusOpen, domain.StatusInProgress:
		return nil
	case domain.StatusEscalated:
		return apperrors.New(apperrors.CodeConflict, "grievance is already escalated")
	default:
		return apperrors.New(apperrors.CodeConflict, "grievance is already resolved")
	}
}

func validateResolve(role domain.Role, status domain.Status) error {
	if status.Terminal() {
		return apperrors.New(apperrors.CodeConflict, "grievance is already resolved")
	}
	if status == domain.StatusEscalated {
		if !role.CanResolveEscalated() {
			return apperrors.New(apperrors.CodeForbidden, "escalated grievances may only be resolved by the HoD")
		}
		return nil
	}
	if !role.CanTriage() {
		return apperrors.New(apperrors.CodeForbidden, "only warden or staff may resolve")
	}
	return nil
}
