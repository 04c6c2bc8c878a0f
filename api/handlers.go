/*
handlers.go - HTTP API handlers for the shift allocation engine

PURPOSE:
  Exposes the allocation engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the workflow services.

ENDPOINTS:
  Pharmacies / workers (context registry):
    POST   /api/pharmacies             Register pharmacy context
    GET    /api/pharmacies/{id}        Get pharmacy context
    POST   /api/workers                Register worker membership + profile

  Shifts:
    POST   /api/shifts                 Create shift with slots
    GET    /api/shifts                 List shifts (?pharmacy_id=)
    GET    /api/shifts/{id}            Get shift with slots and tier state
    GET    /api/shifts/{id}/occurrences?from=&to=
    POST   /api/shifts/{id}/escalate   Move to a target visibility tier

  Interests:
    POST   /api/shifts/{id}/interests  Express interest
    GET    /api/shifts/{id}/interests  Poster view (anonymized at platform tier)
    POST   /api/interests/{id}/reveal  Reveal identity (quota-gated)
    POST   /api/rejections             Decline a concrete occurrence
    GET    /api/offers?user_id=&shift_id=&from=&to=

  Assignments:
    POST   /api/assignments            Assign (or reassign) an occurrence
    GET    /api/assignments/{id}       Get assignment with locked rate
    GET    /api/assignments/{id}/invoice-line

  Leave / swaps:
    POST   /api/assignments/{id}/leave Request leave
    POST   /api/leave/{id}/decide      Approve or reject leave
    POST   /api/assignments/{id}/swaps Request a swap/cover
    POST   /api/swaps/{id}/decide      Approve or reject swap

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input, reveal quota exhausted
  - 404: Resource not found
  - 409: Conflict (occurrence taken, duplicates)
  - 500: Internal errors
  The shifts error classifiers drive the mapping; see writeDomainError.

SECURITY NOTE:
  No authentication middleware. Caller identity comes from request bodies.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
  - workflow/: The services these handlers delegate to
*/
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
	"github.com/locumbase/shift-engine/workflow"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     shifts.TxStore
	Directory *Directory

	Shifts    *workflow.ShiftService
	Interests *workflow.InterestService
	Engine    *workflow.Engine
	Leave     *workflow.LeaveService
}

// NewHandler wires the workflow services over one store and resolver.
func NewHandler(store shifts.TxStore, resolver *rates.Resolver, events shifts.EventSink) *Handler {
	return &Handler{
		Store:     store,
		Directory: NewDirectory(),
		Shifts:    workflow.NewShiftService(store, events),
		Interests: workflow.NewInterestService(store, events),
		Engine:    workflow.NewEngine(store, resolver, events),
		Leave:     workflow.NewLeaveService(store, events),
	}
}

// tierContext resolves the tier context for a shift from the registered
// pharmacy profile and the org-admin fact stored on the shift. Unknown
// pharmacies fall back to the zero profile; an org-admin posting still gets
// the full staff path.
func (h *Handler) tierContext(sh *shifts.Shift) shifts.TierContext {
	pc, _ := h.Directory.Pharmacy(sh.PharmacyID)
	return shifts.ContextFor(pc, sh.PostedByOrgAdmin)
}

// =============================================================================
// PHARMACY / WORKER REGISTRY
// =============================================================================

func (h *Handler) RegisterPharmacy(w http.ResponseWriter, r *http.Request) {
	var req RegisterPharmacyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.PharmacyID == "" {
		writeError(w, http.StatusBadRequest, "pharmacy_id is required", nil)
		return
	}

	pc := shifts.PharmacyContext{
		PharmacyID:       shifts.PharmacyID(req.PharmacyID),
		OrganizationID:   req.OrganizationID,
		HasChain:         req.HasChain,
		ClaimedByOrg:     req.ClaimedByOrg,
		State:            req.State,
		AutoPublishSwaps: req.AutoPublishSwaps,
	}
	if req.DefaultRateType != nil {
		rt := shifts.RateType(*req.DefaultRateType)
		pc.DefaultRateType = &rt
	}
	rate, err := parseOptionalDecimal(req.DefaultFixedRate, "default_fixed_rate")
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pc.DefaultFixedRate = rate

	h.Directory.PutPharmacy(pc)
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) GetPharmacy(w http.ResponseWriter, r *http.Request) {
	id := shifts.PharmacyID(chi.URLParam(r, "id"))
	pc, ok := h.Directory.Pharmacy(id)
	if !ok {
		writeError(w, http.StatusNotFound, "Pharmacy not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, pc)
}

func (h *Handler) RegisterWorker(w http.ResponseWriter, r *http.Request) {
	var req RegisterWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" || req.PharmacyID == "" {
		writeError(w, http.StatusBadRequest, "user_id and pharmacy_id are required", nil)
		return
	}

	m := shifts.PharmacyMembership{
		UserID:         shifts.UserID(req.UserID),
		PharmacyID:     shifts.PharmacyID(req.PharmacyID),
		EmploymentType: shifts.EmploymentType(req.EmploymentType),
		AwardLevel:     req.AwardLevel,
	}
	p := rates.WorkerProfile{
		AwardLevel:          req.AwardLevel,
		InternHalf:          req.InternHalf,
		StudentYear:         req.StudentYear,
		ClassificationLevel: req.ClassificationLevel,
	}
	h.Directory.PutWorker(m, p)
	writeJSON(w, http.StatusCreated, req)
}

// =============================================================================
// SHIFT ENDPOINTS
// =============================================================================

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req CreateShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sh := &shifts.Shift{
		PharmacyID:       shifts.PharmacyID(req.PharmacyID),
		PostedBy:         shifts.UserID(req.PostedBy),
		PostedByOrgAdmin: req.PostedByOrgAdmin,
		RoleNeeded:       shifts.Role(req.RoleNeeded),
		EmploymentType:   shifts.EmploymentType(req.EmploymentType),
		WorkloadTags:     req.WorkloadTags,
		SingleUserOnly:   req.SingleUserOnly,
		RevealQuota:      req.RevealQuota,
	}
	if req.RateType != nil {
		rt := shifts.RateType(*req.RateType)
		sh.RateType = &rt
	}
	var err error
	if sh.FixedRate, err = parseOptionalDecimal(req.FixedRate, "fixed_rate"); err != nil {
		writeDomainError(w, err)
		return
	}
	if sh.OwnerAdjustedRate, err = parseOptionalDecimal(req.OwnerAdjustedRate, "owner_adjusted_rate"); err != nil {
		writeDomainError(w, err)
		return
	}

	// Pharmacist shifts without an explicit rate type inherit the
	// pharmacy's default rate configuration.
	if sh.RoleNeeded == shifts.RolePharmacist && sh.RateType == nil {
		if pc, ok := h.Directory.Pharmacy(sh.PharmacyID); ok && pc.DefaultRateType != nil {
			sh.RateType = pc.DefaultRateType
			if sh.FixedRate == nil {
				sh.FixedRate = pc.DefaultFixedRate
			}
		}
	}

	slots := make([]*shifts.ShiftSlot, 0, len(req.Slots))
	for _, sr := range req.Slots {
		sl, err := slotFromRequest(sr)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		slots = append(slots, sl)
	}

	created, err := h.Shifts.CreateShift(r.Context(), sh, slots)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	saved, err := h.Store.SlotsByShift(r.Context(), created.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load slots", err)
		return
	}

	writeJSON(w, http.StatusCreated, toShiftDTO(created, h.tierContext(created), saved))
}

func slotFromRequest(sr CreateSlotRequest) (*shifts.ShiftSlot, error) {
	date, err := shifts.ParseDate(sr.Date)
	if err != nil {
		return nil, &shifts.FieldError{Field: "date", Message: "use YYYY-MM-DD"}
	}
	start, err := shifts.ParseClockTime(sr.StartTime)
	if err != nil {
		return nil, &shifts.FieldError{Field: "start_time", Message: "use HH:MM"}
	}
	end, err := shifts.ParseClockTime(sr.EndTime)
	if err != nil {
		return nil, &shifts.FieldError{Field: "end_time", Message: "use HH:MM"}
	}

	sl := &shifts.ShiftSlot{
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Recurring: sr.Recurring,
	}
	for _, d := range sr.RecurringDays {
		if d < 0 || d > 6 {
			return nil, &shifts.FieldError{Field: "recurring_days", Message: "weekdays must be in 0..6"}
		}
		sl.RecurringDays = append(sl.RecurringDays, goWeekday(d))
	}
	if sr.RecurringEndDate != nil {
		ed, err := shifts.ParseDate(*sr.RecurringEndDate)
		if err != nil {
			return nil, &shifts.FieldError{Field: "recurring_end_date", Message: "use YYYY-MM-DD"}
		}
		sl.RecurringEndDate = &ed
	}
	return sl, nil
}

func (h *Handler) ListShifts(w http.ResponseWriter, r *http.Request) {
	pharmacyID := shifts.PharmacyID(r.URL.Query().Get("pharmacy_id"))
	list, err := h.Store.ListShifts(r.Context(), pharmacyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list shifts", err)
		return
	}

	dtos := make([]ShiftDTO, 0, len(list))
	for _, sh := range list {
		dtos = append(dtos, toShiftDTO(sh, h.tierContext(sh), nil))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	id := shifts.ShiftID(chi.URLParam(r, "id"))
	sh, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	slots, err := h.Store.SlotsByShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load slots", err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(sh, h.tierContext(sh), slots))
}

func (h *Handler) GetOccurrences(w http.ResponseWriter, r *http.Request) {
	id := shifts.ShiftID(chi.URLParam(r, "id"))
	window, err := windowFromQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	slots, err := h.Store.SlotsByShift(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load slots", err)
		return
	}

	dtos := []OccurrenceDTO{}
	for _, sl := range slots {
		for _, d := range shifts.Expand(sl, window) {
			dtos = append(dtos, OccurrenceDTO{
				SlotID:    string(sl.ID),
				Date:      d.String(),
				StartTime: sl.StartTime.String(),
				EndTime:   sl.EndTime.String(),
			})
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

func windowFromQuery(r *http.Request) (shifts.Window, error) {
	from, err := shifts.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		return shifts.Window{}, &shifts.FieldError{Field: "from", Message: "use YYYY-MM-DD"}
	}
	to, err := shifts.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		return shifts.Window{}, &shifts.FieldError{Field: "to", Message: "use YYYY-MM-DD"}
	}
	w := shifts.Window{From: from, To: to}
	if !w.Valid() {
		return shifts.Window{}, &shifts.FieldError{Field: "to", Message: "must not be before from"}
	}
	return w, nil
}

func (h *Handler) EscalateShift(w http.ResponseWriter, r *http.Request) {
	id := shifts.ShiftID(chi.URLParam(r, "id"))
	var req EscalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sh, err := h.Store.GetShift(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	tc := h.tierContext(sh)

	updated, err := h.Shifts.Escalate(r.Context(), id, shifts.Tier(req.Tier), tc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toShiftDTO(updated, tc, nil))
}

// =============================================================================
// INTEREST ENDPOINTS
// =============================================================================

func (h *Handler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	shiftID := shifts.ShiftID(chi.URLParam(r, "id"))
	var req ExpressInterestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required", nil)
		return
	}

	var slotID *shifts.SlotID
	if req.SlotID != nil && *req.SlotID != "" {
		sid := shifts.SlotID(*req.SlotID)
		slotID = &sid
	}

	in, err := h.Interests.ExpressInterest(r.Context(), shifts.UserID(req.UserID), shiftID, slotID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"id":       string(in.ID),
		"shift_id": string(in.ShiftID),
		"revealed": in.Revealed,
	})
}

func (h *Handler) ListInterests(w http.ResponseWriter, r *http.Request) {
	shiftID := shifts.ShiftID(chi.URLParam(r, "id"))
	sh, err := h.Store.GetShift(r.Context(), shiftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	views, err := h.Interests.ListForPoster(r.Context(), shiftID, h.tierContext(sh))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]InterestDTO, 0, len(views))
	for _, v := range views {
		dto := InterestDTO{
			ID:        string(v.InterestID),
			WorkerRef: v.WorkerRef,
			Revealed:  v.Revealed,
			CreatedAt: v.CreatedAt.UTC().Format(time.RFC3339),
		}
		if v.SlotID != nil {
			dto.SlotID = strPtr(string(*v.SlotID))
		}
		dtos = append(dtos, dto)
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) RevealInterest(w http.ResponseWriter, r *http.Request) {
	id := shifts.InterestID(chi.URLParam(r, "id"))
	if err := h.Interests.Reveal(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "revealed"})
}

func (h *Handler) RejectOccurrence(w http.ResponseWriter, r *http.Request) {
	var req RejectOccurrenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := shifts.ParseDate(req.SlotDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot_date (use YYYY-MM-DD)", err)
		return
	}

	err = h.Interests.Reject(r.Context(), shifts.UserID(req.UserID), shifts.SlotID(req.SlotID), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

func (h *Handler) ListOffers(w http.ResponseWriter, r *http.Request) {
	userID := shifts.UserID(r.URL.Query().Get("user_id"))
	shiftID := shifts.ShiftID(r.URL.Query().Get("shift_id"))
	if userID == "" || shiftID == "" {
		writeError(w, http.StatusBadRequest, "user_id and shift_id are required", nil)
		return
	}
	window, err := windowFromQuery(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	offers, err := h.Interests.OffersFor(r.Context(), userID, shiftID, window)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	dtos := make([]OccurrenceDTO, 0, len(offers))
	for _, o := range offers {
		dtos = append(dtos, OccurrenceDTO{
			SlotID:    string(o.SlotID),
			Date:      o.Date.String(),
			StartTime: o.StartTime.String(),
			EndTime:   o.EndTime.String(),
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// ASSIGNMENT ENDPOINTS
// =============================================================================

func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := shifts.ParseDate(req.SlotDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid slot_date (use YYYY-MM-DD)", err)
		return
	}

	slot, err := h.Store.GetSlot(r.Context(), shifts.SlotID(req.SlotID))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sh, err := h.Store.GetShift(r.Context(), slot.ShiftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	userID := shifts.UserID(req.UserID)
	membership, ok := h.Directory.Membership(userID, sh.PharmacyID)
	if !ok {
		// Workers outside the pharmacy assign as locums.
		membership = shifts.PharmacyMembership{
			UserID:         userID,
			PharmacyID:     sh.PharmacyID,
			EmploymentType: shifts.EmploymentLocum,
		}
	}
	pc, _ := h.Directory.Pharmacy(sh.PharmacyID)

	a, err := h.Engine.Assign(r.Context(), workflow.AssignParams{
		SlotID:     shifts.SlotID(req.SlotID),
		SlotDate:   date,
		UserID:     userID,
		AssignedBy: shifts.UserID(req.AssignedBy),
		Reassign:   req.Reassign,
		Membership: membership,
		Profile:    h.Directory.Profile(userID),
		Pharmacy:   pc,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAssignmentDTO(a))
}

func (h *Handler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	id := shifts.AssignmentID(chi.URLParam(r, "id"))
	a, err := h.Store.AssignmentByID(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAssignmentDTO(a))
}

func (h *Handler) GetInvoiceLine(w http.ResponseWriter, r *http.Request) {
	id := shifts.AssignmentID(chi.URLParam(r, "id"))
	line, err := h.Engine.InvoiceLineFor(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, InvoiceLineDTO{
		AssignmentID: string(line.AssignmentID),
		SlotDate:     line.SlotDate.String(),
		Quantity:     line.Quantity.String(),
		UnitRate:     line.UnitRate.String(),
		Amount:       line.Amount.String(),
	})
}

// =============================================================================
// LEAVE AND SWAP ENDPOINTS
// =============================================================================

func (h *Handler) FileLeave(w http.ResponseWriter, r *http.Request) {
	assignmentID := shifts.AssignmentID(chi.URLParam(r, "id"))
	var req FileLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lr, err := h.Leave.FileLeave(r.Context(), assignmentID,
		shifts.UserID(req.UserID), shifts.LeaveType(req.LeaveType), req.Note)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(lr))
}

func (h *Handler) DecideLeave(w http.ResponseWriter, r *http.Request) {
	id := shifts.LeaveID(chi.URLParam(r, "id"))
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	lr, err := h.Leave.DecideLeave(r.Context(), id, req.Approve, shifts.UserID(req.DecidedBy))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLeaveDTO(lr))
}

func (h *Handler) FileSwap(w http.ResponseWriter, r *http.Request) {
	assignmentID := shifts.AssignmentID(chi.URLParam(r, "id"))
	var req FileSwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	a, err := h.Store.AssignmentByID(r.Context(), assignmentID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	slot, err := h.Store.GetSlot(r.Context(), a.SlotID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	sh, err := h.Store.GetShift(r.Context(), slot.ShiftID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	pc, _ := h.Directory.Pharmacy(sh.PharmacyID)

	sr, err := h.Leave.FileSwap(r.Context(), assignmentID, shifts.UserID(req.UserID), req.Note, pc)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSwapDTO(sr))
}

func (h *Handler) DecideSwap(w http.ResponseWriter, r *http.Request) {
	id := shifts.SwapRequestID(chi.URLParam(r, "id"))
	var req DecideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	sr, err := h.Leave.DecideSwap(r.Context(), id, req.Approve, shifts.UserID(req.DecidedBy))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSwapDTO(sr))
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps domain errors onto HTTP statuses via the shifts
// error classifiers.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shifts.IsNotFound(err):
		writeError(w, http.StatusNotFound, err.Error(), nil)
	case shifts.IsConflict(err):
		writeError(w, http.StatusConflict, err.Error(), nil)
	case shifts.IsClientError(err):
		writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
