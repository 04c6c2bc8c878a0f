/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

WEEKDAY CONVENTION:
  The API encodes recurrence weekdays as integers with 0 = Monday through
  6 = Sunday, matching the client's picker. Go's time.Weekday starts at
  Sunday, so the conversion happens here and only here.

VALIDATION:
  Validation is done in handlers and on the domain rows, not in DTOs.
  DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - shifts/types.go: Domain rows these map onto
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/shifts"
)

// =============================================================================
// SHIFT TYPES
// =============================================================================

// SlotDTO represents a slot definition in API responses.
type SlotDTO struct {
	ID               string  `json:"id"`
	ShiftID          string  `json:"shift_id"`
	Date             string  `json:"date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Recurring        bool    `json:"recurring"`
	RecurringDays    []int   `json:"recurring_days,omitempty"`
	RecurringEndDate *string `json:"recurring_end_date,omitempty"`
}

// ShiftDTO represents a shift posting in API responses.
type ShiftDTO struct {
	ID                string    `json:"id"`
	PharmacyID        string    `json:"pharmacy_id"`
	PostedBy          string    `json:"posted_by"`
	RoleNeeded        string    `json:"role_needed"`
	EmploymentType    string    `json:"employment_type"`
	WorkloadTags      []string  `json:"workload_tags,omitempty"`
	RateType          *string   `json:"rate_type,omitempty"`
	FixedRate         *string   `json:"fixed_rate,omitempty"`
	OwnerAdjustedRate *string   `json:"owner_adjusted_rate,omitempty"`
	CurrentTier       string    `json:"current_tier"`
	TierPath          []string  `json:"tier_path"`
	SingleUserOnly    bool      `json:"single_user_only"`
	RevealQuota       int       `json:"reveal_quota"`
	RevealCount       int       `json:"reveal_count"`
	Slots             []SlotDTO `json:"slots,omitempty"`
	CreatedAt         string    `json:"created_at,omitempty"`
}

// CreateSlotRequest is one slot definition inside a shift creation request.
type CreateSlotRequest struct {
	Date             string  `json:"date"`
	StartTime        string  `json:"start_time"`
	EndTime          string  `json:"end_time"`
	Recurring        bool    `json:"recurring"`
	RecurringDays    []int   `json:"recurring_days,omitempty"`
	RecurringEndDate *string `json:"recurring_end_date,omitempty"`
}

// CreateShiftRequest is the request to create a shift with its slots.
type CreateShiftRequest struct {
	PharmacyID        string              `json:"pharmacy_id"`
	PostedBy          string              `json:"posted_by"`
	RoleNeeded        string              `json:"role_needed"`
	EmploymentType    string              `json:"employment_type"`
	WorkloadTags      []string            `json:"workload_tags,omitempty"`
	RateType          *string             `json:"rate_type,omitempty"`
	FixedRate         *string             `json:"fixed_rate,omitempty"`
	OwnerAdjustedRate *string             `json:"owner_adjusted_rate,omitempty"`
	SingleUserOnly    bool                `json:"single_user_only"`
	RevealQuota       int                 `json:"reveal_quota"`
	PostedByOrgAdmin  bool                `json:"posted_by_org_admin"`
	Slots             []CreateSlotRequest `json:"slots"`
}

// EscalateRequest selects the target visibility tier.
type EscalateRequest struct {
	Tier string `json:"tier"`
}

// OccurrenceDTO is one concrete dated occurrence of a slot.
type OccurrenceDTO struct {
	SlotID    string `json:"slot_id"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// =============================================================================
// INTEREST TYPES
// =============================================================================

// ExpressInterestRequest is a worker's expression of interest.
type ExpressInterestRequest struct {
	UserID string  `json:"user_id"`
	SlotID *string `json:"slot_id,omitempty"`
}

// InterestDTO is the poster-facing view of an interest. WorkerRef is the
// anonymous placeholder until the interest is revealed at the platform tier.
type InterestDTO struct {
	ID        string  `json:"id"`
	SlotID    *string `json:"slot_id,omitempty"`
	WorkerRef string  `json:"worker_ref"`
	Revealed  bool    `json:"revealed"`
	CreatedAt string  `json:"created_at"`
}

// RejectOccurrenceRequest records a worker declining a concrete occurrence.
type RejectOccurrenceRequest struct {
	UserID   string `json:"user_id"`
	SlotID   string `json:"slot_id"`
	SlotDate string `json:"slot_date"`
}

// =============================================================================
// ASSIGNMENT TYPES
// =============================================================================

// AssignRequest binds a worker to one (slot, date) occurrence.
type AssignRequest struct {
	SlotID     string `json:"slot_id"`
	SlotDate   string `json:"slot_date"`
	UserID     string `json:"user_id"`
	AssignedBy string `json:"assigned_by"`
	Reassign   bool   `json:"reassign"`
}

// AssignmentDTO represents an assignment with its locked rate.
type AssignmentDTO struct {
	ID         string            `json:"id"`
	SlotID     string            `json:"slot_id"`
	SlotDate   string            `json:"slot_date"`
	UserID     string            `json:"user_id"`
	UnitRate   string            `json:"unit_rate"`
	RateReason shifts.RateReason `json:"rate_reason"`
	AssignedBy string            `json:"assigned_by,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// InvoiceLineDTO is the billing preview for one assignment.
type InvoiceLineDTO struct {
	AssignmentID string `json:"assignment_id"`
	SlotDate     string `json:"slot_date"`
	Quantity     string `json:"quantity"`
	UnitRate     string `json:"unit_rate"`
	Amount       string `json:"amount"`
}

// =============================================================================
// LEAVE AND SWAP TYPES
// =============================================================================

// FileLeaveRequest files leave against an assignment.
type FileLeaveRequest struct {
	UserID    string `json:"user_id"`
	LeaveType string `json:"leave_type"`
	Note      string `json:"note,omitempty"`
}

// DecideRequest approves or rejects a pending leave or swap request.
type DecideRequest struct {
	Approve   bool   `json:"approve"`
	DecidedBy string `json:"decided_by"`
}

// LeaveDTO represents a leave request.
type LeaveDTO struct {
	ID           string  `json:"id"`
	AssignmentID string  `json:"assignment_id"`
	UserID       string  `json:"user_id"`
	LeaveType    string  `json:"leave_type"`
	Status       string  `json:"status"`
	Note         string  `json:"note,omitempty"`
	DecidedBy    *string `json:"decided_by,omitempty"`
	CreatedAt    string  `json:"created_at"`
}

// FileSwapRequest files a swap/cover request against an assignment.
type FileSwapRequest struct {
	UserID string `json:"user_id"`
	Note   string `json:"note,omitempty"`
}

// SwapDTO represents a swap/cover request.
type SwapDTO struct {
	ID             string  `json:"id"`
	AssignmentID   string  `json:"assignment_id"`
	UserID         string  `json:"user_id"`
	Status         string  `json:"status"`
	Note           string  `json:"note,omitempty"`
	CreatedShiftID *string `json:"created_shift_id,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// =============================================================================
// DIRECTORY TYPES
// =============================================================================

// RegisterPharmacyRequest registers a pharmacy profile with the directory.
type RegisterPharmacyRequest struct {
	PharmacyID       string  `json:"pharmacy_id"`
	OrganizationID   string  `json:"organization_id,omitempty"`
	HasChain         bool    `json:"has_chain"`
	ClaimedByOrg     bool    `json:"claimed_by_org"`
	State            string  `json:"state"`
	AutoPublishSwaps bool    `json:"auto_publish_swaps"`
	DefaultRateType  *string `json:"default_rate_type,omitempty"`
	DefaultFixedRate *string `json:"default_fixed_rate,omitempty"`
}

// RegisterWorkerRequest registers a worker's membership and rate profile.
type RegisterWorkerRequest struct {
	UserID         string `json:"user_id"`
	PharmacyID     string `json:"pharmacy_id"`
	EmploymentType string `json:"employment_type"`

	AwardLevel          string `json:"award_level,omitempty"`
	InternHalf          string `json:"intern_half,omitempty"`
	StudentYear         string `json:"student_year,omitempty"`
	ClassificationLevel string `json:"classification_level,omitempty"`
}

// ErrorResponse is the error payload for all failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

// apiWeekday converts Go's Sunday-first weekday to the API's Monday-first int.
func apiWeekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// goWeekday converts the API's Monday-first int to Go's weekday.
func goWeekday(d int) time.Weekday {
	return time.Weekday((d + 1) % 7)
}

func toSlotDTO(sl *shifts.ShiftSlot) SlotDTO {
	dto := SlotDTO{
		ID:        string(sl.ID),
		ShiftID:   string(sl.ShiftID),
		Date:      sl.Date.String(),
		StartTime: sl.StartTime.String(),
		EndTime:   sl.EndTime.String(),
		Recurring: sl.Recurring,
	}
	for _, d := range sl.RecurringDays {
		dto.RecurringDays = append(dto.RecurringDays, apiWeekday(d))
	}
	if sl.RecurringEndDate != nil {
		dto.RecurringEndDate = strPtr(sl.RecurringEndDate.String())
	}
	return dto
}

func toShiftDTO(sh *shifts.Shift, tc shifts.TierContext, slots []*shifts.ShiftSlot) ShiftDTO {
	dto := ShiftDTO{
		ID:             string(sh.ID),
		PharmacyID:     string(sh.PharmacyID),
		PostedBy:       string(sh.PostedBy),
		RoleNeeded:     string(sh.RoleNeeded),
		EmploymentType: string(sh.EmploymentType),
		WorkloadTags:   sh.WorkloadTags,
		CurrentTier:    string(shifts.CurrentTier(sh, tc)),
		SingleUserOnly: sh.SingleUserOnly,
		RevealQuota:    sh.RevealQuota,
		RevealCount:    sh.RevealCount,
		CreatedAt:      sh.CreatedAt.UTC().Format(time.RFC3339),
	}
	for _, t := range shifts.TierPath(tc) {
		dto.TierPath = append(dto.TierPath, string(t))
	}
	if sh.RateType != nil {
		dto.RateType = strPtr(string(*sh.RateType))
	}
	if sh.FixedRate != nil {
		dto.FixedRate = strPtr(sh.FixedRate.String())
	}
	if sh.OwnerAdjustedRate != nil {
		dto.OwnerAdjustedRate = strPtr(sh.OwnerAdjustedRate.String())
	}
	for _, sl := range slots {
		dto.Slots = append(dto.Slots, toSlotDTO(sl))
	}
	return dto
}

func toAssignmentDTO(a *shifts.ShiftSlotAssignment) AssignmentDTO {
	return AssignmentDTO{
		ID:         string(a.ID),
		SlotID:     string(a.SlotID),
		SlotDate:   a.SlotDate.String(),
		UserID:     string(a.UserID),
		UnitRate:   a.UnitRate.String(),
		RateReason: a.RateReason,
		AssignedBy: string(a.AssignedBy),
		CreatedAt:  a.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toLeaveDTO(lr *shifts.LeaveRequest) LeaveDTO {
	dto := LeaveDTO{
		ID:           string(lr.ID),
		AssignmentID: string(lr.AssignmentID),
		UserID:       string(lr.UserID),
		LeaveType:    string(lr.LeaveType),
		Status:       string(lr.Status),
		Note:         lr.Note,
		CreatedAt:    lr.CreatedAt.UTC().Format(time.RFC3339),
	}
	if lr.DecidedBy != nil {
		dto.DecidedBy = strPtr(string(*lr.DecidedBy))
	}
	return dto
}

func toSwapDTO(sr *shifts.WorkerShiftRequest) SwapDTO {
	dto := SwapDTO{
		ID:           string(sr.ID),
		AssignmentID: string(sr.AssignmentID),
		UserID:       string(sr.UserID),
		Status:       string(sr.Status),
		Note:         sr.Note,
		CreatedAt:    sr.CreatedAt.UTC().Format(time.RFC3339),
	}
	if sr.CreatedShiftID != nil {
		dto.CreatedShiftID = strPtr(string(*sr.CreatedShiftID))
	}
	return dto
}

func parseOptionalDecimal(s *string, field string) (*decimal.Decimal, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return nil, &shifts.FieldError{Field: field, Message: "invalid decimal"}
	}
	return &d, nil
}

func strPtr(s string) *string {
	return &s
}
