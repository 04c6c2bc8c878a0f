/*
Package shifts provides the core domain model for the shift allocation engine.

PURPOSE:
  This package contains the domain rows and algorithms for allocating
  time-bound shifts at pharmacy locations: shift and slot definitions,
  recurrence expansion, escalation tiers, and the records produced by the
  interest/assignment workflows.

KEY CONCEPTS IN THIS FILE (types.go):
  - Shift:               A posting for a role at a pharmacy
  - ShiftSlot:           One time window (single or recurring) owned by a Shift
  - ShiftSlotAssignment: The binding of one worker to one (slot, date) pair,
                         carrying the locked pay rate and its reasoning
  - ShiftInterest:       A worker's expression of interest
  - ShiftRejection:      A worker's refusal of a concrete occurrence
  - LeaveRequest:        A request to excuse an assigned occurrence
  - WorkerShiftRequest:  A swap/cover request against an assignment

DESIGN PRINCIPLES:
  1. Precision: pay rates use decimal.Decimal, never floats
  2. Type Safety: strong typing for ids prevents mixing shift/slot/user ids
  3. Immutability: the locked rate and its reason are written once, atomically
     with the assignment, and replaced only by re-assignment
  4. Validation: invariants live on the rows themselves, reported as
     field-scoped errors

SEE ALSO:
  - recurrence.go: Slot definition to concrete dated occurrences
  - escalation.go: Visibility tier path and transitions
  - store.go:      Persistence interfaces
*/
package shifts

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type (
	ShiftID       string
	SlotID        string
	UserID        string
	PharmacyID    string
	AssignmentID  string
	InterestID    string
	RejectionID   string
	LeaveID       string
	SwapRequestID string
)

// =============================================================================
// ROLES AND EMPLOYMENT
// =============================================================================

// Role is the staff role a shift is posted for.
type Role string

const (
	RolePharmacist Role = "PHARMACIST"
	RoleIntern     Role = "INTERN"
	RoleStudent    Role = "STUDENT"
	RoleAssistant  Role = "ASSISTANT"
	RoleTechnician Role = "TECHNICIAN"
)

// EmploymentType is the employment arrangement attached to a membership.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "FULL_TIME"
	EmploymentPartTime EmploymentType = "PART_TIME"
	EmploymentCasual   EmploymentType = "CASUAL"
	EmploymentLocum    EmploymentType = "LOCUM"
)

// EmploymentCategory is the coarse grouping used as a rate-table dimension.
type EmploymentCategory string

const (
	CategoryFullPartTime EmploymentCategory = "full_part_time"
	CategoryCasual       EmploymentCategory = "casual"
)

// CategoryFor maps an employment type onto a rate-table employment category.
// Full-time and part-time staff share one column; everyone else is casual.
func CategoryFor(et EmploymentType) EmploymentCategory {
	switch et {
	case EmploymentFullTime, EmploymentPartTime:
		return CategoryFullPartTime
	default:
		return CategoryCasual
	}
}

// RateType selects how a pharmacist shift's rate is determined.
// Only meaningful when RoleNeeded == RolePharmacist.
type RateType string

const (
	RateFixed              RateType = "FIXED"
	RateFlexible           RateType = "FLEXIBLE"
	RatePharmacistProvided RateType = "PHARMACIST_PROVIDED"
)

// =============================================================================
// SHIFT - A posting for a role at a pharmacy
// =============================================================================

type Shift struct {
	ID         ShiftID
	PharmacyID PharmacyID
	PostedBy   UserID

	// Whether the poster was an organization administrator. Captured at
	// creation because it widens the tier path for the shift's whole life,
	// independent of the pharmacy's chain/claim facts.
	PostedByOrgAdmin bool

	RoleNeeded     Role
	EmploymentType EmploymentType
	WorkloadTags   []string

	// Rate fields. Only valid for pharmacist shifts; FixedRate is required
	// when RateType == RateFixed.
	RateType  *RateType
	FixedRate *decimal.Decimal

	// Optional per-shift bonus added on top of the table rate for casual
	// non-pharmacist assignees.
	OwnerAdjustedRate *decimal.Decimal

	// Index of the currently selected tier within the computed tier path.
	// The path itself is derived from TierContext on demand, never stored.
	EscalationLevel int

	// Scheduled escalation inputs for an external scheduler. The engine
	// stores these but never acts on them itself.
	EscalateOwnerChainAt *time.Time
	EscalateOrgChainAt   *time.Time
	EscalatePlatformAt   *time.Time

	// When true, every slot of this shift must resolve to the same assignee.
	SingleUserOnly bool

	// Reveal quota and counter for anonymized platform-tier interests.
	RevealQuota int
	RevealCount int

	CreatedAt time.Time
}

// Validate reports the first violated shift invariant.
func (s *Shift) Validate() error {
	if s.PharmacyID == "" {
		return &FieldError{Field: "pharmacy_id", Message: "required"}
	}
	switch s.RoleNeeded {
	case RolePharmacist, RoleIntern, RoleStudent, RoleAssistant, RoleTechnician:
	default:
		return &FieldError{Field: "role_needed", Message: "unknown role"}
	}
	if s.RoleNeeded != RolePharmacist {
		// Rate fields are a pharmacist-only concept.
		if s.RateType != nil {
			return &FieldError{Field: "rate_type", Message: "only valid for pharmacist shifts"}
		}
		if s.FixedRate != nil {
			return &FieldError{Field: "fixed_rate", Message: "only valid for pharmacist shifts"}
		}
	}
	if s.RateType != nil && *s.RateType == RateFixed && s.FixedRate == nil {
		return &FieldError{Field: "fixed_rate", Message: "required when rate_type is FIXED"}
	}
	if s.RevealQuota < 0 {
		return &FieldError{Field: "reveal_quota", Message: "must not be negative"}
	}
	return nil
}

// =============================================================================
// SHIFT SLOT - One time window owned by exactly one Shift
// =============================================================================

type ShiftSlot struct {
	ID      SlotID
	ShiftID ShiftID

	// Anchor occurrence.
	Date      Date
	StartTime ClockTime
	EndTime   ClockTime

	// Recurrence. A recurring slot repeats on RecurringDays every week from
	// Date up to and including RecurringEndDate.
	Recurring        bool
	RecurringDays    []time.Weekday
	RecurringEndDate *Date
}

// Validate reports the first violated slot invariant.
func (sl *ShiftSlot) Validate() error {
	if sl.ShiftID == "" {
		return &FieldError{Field: "shift_id", Message: "required"}
	}
	if sl.Date.IsZero() {
		return &FieldError{Field: "date", Message: "required"}
	}
	if !sl.StartTime.Before(sl.EndTime) {
		return &FieldError{Field: "end_time", Message: "must be after start_time"}
	}
	if sl.Recurring {
		if len(sl.RecurringDays) == 0 {
			return &FieldError{Field: "recurring_days", Message: "required for recurring slots"}
		}
		for _, d := range sl.RecurringDays {
			if d < time.Sunday || d > time.Saturday {
				return &FieldError{Field: "recurring_days", Message: "weekdays must be in 0..6"}
			}
		}
		if sl.RecurringEndDate == nil {
			return &FieldError{Field: "recurring_end_date", Message: "required for recurring slots"}
		}
		if !sl.RecurringEndDate.After(sl.Date) {
			return &FieldError{Field: "recurring_end_date", Message: "must be after date"}
		}
	} else {
		if len(sl.RecurringDays) != 0 || sl.RecurringEndDate != nil {
			return &FieldError{Field: "recurring_days", Message: "not allowed on single slots"}
		}
	}
	return nil
}

// DurationHours returns the occurrence length in hours as a decimal.
// Invoicing uses this as the line-item quantity.
func (sl *ShiftSlot) DurationHours() decimal.Decimal {
	minutes := sl.EndTime.Minutes() - sl.StartTime.Minutes()
	return decimal.NewFromInt(int64(minutes)).Div(decimal.NewFromInt(60))
}

// =============================================================================
// ASSIGNMENT - One worker bound to one (slot, slot_date) occurrence
// =============================================================================

// RateReason is the structured justification snapshotted next to a locked
// rate. It must make the resolution reproducible at audit time.
type RateReason struct {
	// LookupKey is the day-or-time dimension used: weekday, saturday,
	// sunday, public_holiday, early_morning or late_night.
	LookupKey string `json:"lookup_key"`

	// RoleKey is the classification key used within the role's table:
	// award level, intern half, student year or classification level.
	RoleKey string `json:"role_key"`

	Employment EmploymentCategory `json:"employment_category"`

	// Source names where the rate came from: Award (table hit), Fixed
	// (shift's fixed rate) or RateNotFound (lookup miss, rate is zero).
	Source string `json:"source"`

	BonusApplied bool `json:"bonus_applied,omitempty"`
}

const (
	RateSourceAward    = "Award"
	RateSourceFixed    = "Fixed"
	RateSourceNotFound = "RateNotFound"
)

type ShiftSlotAssignment struct {
	ID       AssignmentID
	SlotID   SlotID
	SlotDate Date
	UserID   UserID

	// Locked at assignment time, written atomically with the row.
	UnitRate   decimal.Decimal
	RateReason RateReason

	AssignedBy UserID
	CreatedAt  time.Time
}

// =============================================================================
// INTEREST AND REJECTION
// =============================================================================

type ShiftInterest struct {
	ID      InterestID
	ShiftID ShiftID
	SlotID  *SlotID // nil = interested in the whole shift
	UserID  UserID

	// Revealed controls whether the worker's identity is visible to the
	// poster while the shift sits at the platform tier.
	Revealed bool

	CreatedAt time.Time
}

type ShiftRejection struct {
	ID       RejectionID
	SlotID   SlotID
	SlotDate Date
	UserID   UserID

	CreatedAt time.Time
}

// =============================================================================
// LEAVE AND SWAP REQUESTS
// =============================================================================

type LeaveType string

const (
	LeaveSick     LeaveType = "SICK"
	LeaveAnnual   LeaveType = "ANNUAL"
	LeavePersonal LeaveType = "PERSONAL"
	LeaveOther    LeaveType = "OTHER"
)

type LeaveStatus string

const (
	LeavePending  LeaveStatus = "PENDING"
	LeaveApproved LeaveStatus = "APPROVED"
	LeaveRejected LeaveStatus = "REJECTED"
)

type LeaveRequest struct {
	ID           LeaveID
	AssignmentID AssignmentID
	UserID       UserID
	LeaveType    LeaveType
	Status       LeaveStatus
	Note         string

	DecidedBy *UserID
	DecidedAt *time.Time
	CreatedAt time.Time
}

type SwapStatus string

const (
	SwapPending  SwapStatus = "PENDING"
	SwapApproved SwapStatus = "APPROVED"
	SwapRejected SwapStatus = "REJECTED"
)

// WorkerShiftRequest is a swap/cover request against an existing assignment.
// When the pharmacy has auto-publish enabled, approval creates a brand-new
// Shift+Slot covering the occurrence; otherwise it waits for an owner/admin.
type WorkerShiftRequest struct {
	ID           SwapRequestID
	AssignmentID AssignmentID
	UserID       UserID
	Status       SwapStatus
	Note         string

	// Set when approval published a replacement posting.
	CreatedShiftID *ShiftID

	DecidedBy *UserID
	DecidedAt *time.Time
	CreatedAt time.Time
}

// =============================================================================
// COLLABORATOR CONTEXT - Supplied by pharmacy/membership collaborators
// =============================================================================

// PharmacyContext carries the pharmacy profile facts this engine consumes.
type PharmacyContext struct {
	PharmacyID     PharmacyID
	OrganizationID string

	// Tier path facts.
	HasChain     bool
	ClaimedByOrg bool

	// Operating state drives the public-holiday calendar lookup.
	State string

	// When true, approved swap requests auto-publish a replacement shift.
	AutoPublishSwaps bool

	DefaultRateType  *RateType
	DefaultFixedRate *decimal.Decimal
}

// PharmacyMembership is the slice of the membership record the rate engine
// needs: how the worker is employed at this pharmacy and, for pharmacists,
// their award level.
type PharmacyMembership struct {
	UserID         UserID
	PharmacyID     PharmacyID
	EmploymentType EmploymentType
	AwardLevel     string // pharmacists only; empty = default award
}
