/*
store.go - Persistence interfaces for the shift engine

PURPOSE:
  Defines the interface between the domain logic and the database. Different
  implementations can use SQLite or in-memory storage; the workflow layer
  only ever sees these interfaces.

KEY INTERFACES:
  ShiftStore:      Shifts and slots, escalation index, reveal counter
  AssignmentStore: (slot, slot_date) assignment rows with locked rates
  InterestStore:   Interests and rejections
  LeaveStore:      Leave and swap requests
  Store:           All of the above
  TxStore:         Store plus an exclusive transactional section

CONCURRENCY CONTRACT:
  WithTx serializes the read-modify-write sequences that must not race:
  the assignment existence check and write for one occurrence happen inside
  a single WithTx call, so two concurrent attempts cannot both succeed. The
  unique index on (slot_id, slot_date) is the backstop, surfacing as
  ErrOccurrenceTaken for the loser.

  IncrementRevealCount must be an atomic relative increment, never a
  read-then-write of a cached value.

IMPLEMENTATIONS:
  - store/sqlite: production store
  - shifts/store: in-memory store for tests and dev

SEE ALSO:
  - errors.go: Sentinel errors implementations must return
*/
package shifts

import "context"

// =============================================================================
// SHIFT STORE
// =============================================================================

type ShiftStore interface {
	SaveShift(ctx context.Context, s *Shift) error
	GetShift(ctx context.Context, id ShiftID) (*Shift, error)
	ListShifts(ctx context.Context, pharmacyID PharmacyID) ([]*Shift, error)

	SaveSlot(ctx context.Context, sl *ShiftSlot) error
	GetSlot(ctx context.Context, id SlotID) (*ShiftSlot, error)
	SlotsByShift(ctx context.Context, shiftID ShiftID) ([]*ShiftSlot, error)

	// SetEscalationLevel persists the selected tier index.
	SetEscalationLevel(ctx context.Context, id ShiftID, level int) error

	// IncrementRevealCount atomically increments the shift's reveal counter
	// and returns the new count.
	IncrementRevealCount(ctx context.Context, id ShiftID) (int, error)
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

type AssignmentStore interface {
	// PutAssignment inserts an assignment row together with its locked rate
	// and reason. Returns an error wrapping ErrOccurrenceTaken if the
	// (slot_id, slot_date) pair already has an assignee.
	PutAssignment(ctx context.Context, a *ShiftSlotAssignment) error

	GetAssignment(ctx context.Context, slotID SlotID, slotDate Date) (*ShiftSlotAssignment, error)
	AssignmentByID(ctx context.Context, id AssignmentID) (*ShiftSlotAssignment, error)
	AssignmentsByShift(ctx context.Context, shiftID ShiftID) ([]*ShiftSlotAssignment, error)
	DeleteAssignment(ctx context.Context, id AssignmentID) error
}

// =============================================================================
// INTEREST STORE
// =============================================================================

type InterestStore interface {
	SaveInterest(ctx context.Context, in *ShiftInterest) error
	GetInterest(ctx context.Context, id InterestID) (*ShiftInterest, error)
	InterestsByShift(ctx context.Context, shiftID ShiftID) ([]*ShiftInterest, error)

	// OpenInterest returns the existing interest for (shift, slot, user), or
	// nil when none exists. Workflow-level idempotence for repeat
	// expressions.
	OpenInterest(ctx context.Context, shiftID ShiftID, slotID *SlotID, userID UserID) (*ShiftInterest, error)

	// SetRevealed flips the revealed flag on an interest.
	SetRevealed(ctx context.Context, id InterestID) error

	// SaveRejection records a rejection. A duplicate (slot, slot_date, user)
	// tuple must be reported so the workflow can treat it as already
	// recorded; implementations return ErrDuplicateRejection.
	SaveRejection(ctx context.Context, r *ShiftRejection) error

	HasRejected(ctx context.Context, slotID SlotID, slotDate Date, userID UserID) (bool, error)
	RejectionsByUser(ctx context.Context, userID UserID) ([]*ShiftRejection, error)
}

// =============================================================================
// LEAVE STORE
// =============================================================================

type LeaveStore interface {
	SaveLeave(ctx context.Context, lr *LeaveRequest) error
	GetLeave(ctx context.Context, id LeaveID) (*LeaveRequest, error)
	LeavesByAssignment(ctx context.Context, assignmentID AssignmentID) ([]*LeaveRequest, error)

	// PendingLeaveExists checks the duplicate-pending invariant.
	PendingLeaveExists(ctx context.Context, assignmentID AssignmentID, userID UserID, lt LeaveType) (bool, error)

	SaveSwap(ctx context.Context, sr *WorkerShiftRequest) error
	GetSwap(ctx context.Context, id SwapRequestID) (*WorkerShiftRequest, error)
}

// =============================================================================
// COMPOSED STORES
// =============================================================================

type Store interface {
	ShiftStore
	AssignmentStore
	InterestStore
	LeaveStore
}

// TxStore wraps Store with an exclusive transactional section. If fn returns
// an error the transaction is rolled back, otherwise committed.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}
