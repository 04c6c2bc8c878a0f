/*
errors.go - Centralized error types for the shift engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Workflow and store packages wrap these errors with additional context.

ERROR CATEGORIES:
  1. Validation errors  - Malformed rows, invalid tier selections
  2. Conflict errors    - Occurrence already assigned, quota exceeded
  3. Referential errors - Slot/shift/assignment relationships broken
  4. Not-found errors   - Missing rows

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, shifts.ErrOccurrenceTaken) {
        // retry against current state
    }

SEE ALSO:
  - store.go:               Store implementations return these errors
  - workflow/assignment.go:  Primary producer of conflict errors
*/
package shifts

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of all field-scoped validation failures.
	ErrValidation = errors.New("validation failed")

	// ErrOccurrenceTaken is returned when a (slot, slot_date) pair already
	// has an assignee. The losing side of a concurrent assignment race
	// receives this and must retry against the now-current state.
	ErrOccurrenceTaken = errors.New("occurrence already assigned")

	// ErrSingleUserConflict is returned when assigning a second worker to a
	// shift flagged single_user_only.
	ErrSingleUserConflict = errors.New("shift requires a single worker across all slots")

	// ErrRevealQuotaExceeded is returned when a reveal would exceed the
	// shift's reveal quota. This is reported, never silently capped.
	ErrRevealQuotaExceeded = errors.New("reveal quota exceeded")

	// ErrTierNotInPath is returned when selecting a tier that is not part of
	// the shift's computed tier path.
	ErrTierNotInPath = errors.New("tier not in escalation path")

	// ErrSlotNotInShift is returned when an operation references a slot that
	// does not belong to the given shift.
	ErrSlotNotInShift = errors.New("slot does not belong to shift")

	// ErrNotAnOccurrence is returned when a slot_date is not produced by the
	// slot's recurrence expansion.
	ErrNotAnOccurrence = errors.New("date is not an occurrence of slot")

	// ErrDuplicateLeave is returned when an identical pending leave request
	// already exists for the same assignment/user/type.
	ErrDuplicateLeave = errors.New("duplicate pending leave request")

	// ErrDuplicateRejection signals the uniqueness constraint on
	// (slot_id, slot_date, user_id) fired. The workflow treats this as
	// already-recorded, not a failure.
	ErrDuplicateRejection = errors.New("rejection already recorded")

	// Not-found sentinels.
	ErrShiftNotFound      = errors.New("shift not found")
	ErrSlotNotFound       = errors.New("slot not found")
	ErrAssignmentNotFound = errors.New("assignment not found")
	ErrInterestNotFound   = errors.New("interest not found")
	ErrLeaveNotFound      = errors.New("leave request not found")
	ErrSwapNotFound       = errors.New("swap request not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldError is a validation failure scoped to a single field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *FieldError) Unwrap() error { return ErrValidation }

// OccurrenceTakenError reports who currently holds a contested occurrence.
type OccurrenceTakenError struct {
	SlotID     SlotID
	SlotDate   Date
	AssignedTo UserID
}

func (e *OccurrenceTakenError) Error() string {
	return fmt.Sprintf("occurrence %s on %s already assigned to %s",
		e.SlotID, e.SlotDate, e.AssignedTo)
}

func (e *OccurrenceTakenError) Unwrap() error { return ErrOccurrenceTaken }

// SingleUserConflictError reports the existing assignee blocking a second one.
type SingleUserConflictError struct {
	ShiftID   ShiftID
	Existing  UserID
	Attempted UserID
}

func (e *SingleUserConflictError) Error() string {
	return fmt.Sprintf("shift %s is single-user: already assigned to %s, cannot assign %s",
		e.ShiftID, e.Existing, e.Attempted)
}

func (e *SingleUserConflictError) Unwrap() error { return ErrSingleUserConflict }

// TierError reports an invalid tier selection and the path it was checked
// against.
type TierError struct {
	Selected Tier
	Path     []Tier
}

func (e *TierError) Error() string {
	return fmt.Sprintf("tier %s not in path %v", e.Selected, e.Path)
}

func (e *TierError) Unwrap() error { return ErrTierNotInPath }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsConflict returns true if the error is a concurrency/uniqueness conflict
// the caller may retry after re-reading state.
func IsConflict(err error) bool {
	return errors.Is(err, ErrOccurrenceTaken) ||
		errors.Is(err, ErrSingleUserConflict)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrTierNotInPath) ||
		errors.Is(err, ErrSlotNotInShift) ||
		errors.Is(err, ErrNotAnOccurrence) ||
		errors.Is(err, ErrRevealQuotaExceeded) ||
		errors.Is(err, ErrDuplicateLeave)
}

// IsNotFound returns true if the error indicates a missing row.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrShiftNotFound) ||
		errors.Is(err, ErrSlotNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrInterestNotFound) ||
		errors.Is(err, ErrLeaveNotFound) ||
		errors.Is(err, ErrSwapNotFound)
}
