// Package store provides an in-memory shifts.TxStore implementation
// (for testing/dev).
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/locumbase/shift-engine/shifts"
)

// =============================================================================
// MEMORY STORE
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	shifts      map[shifts.ShiftID]*shifts.Shift
	slots       map[shifts.SlotID]*shifts.ShiftSlot
	assignments map[shifts.AssignmentID]*shifts.ShiftSlotAssignment
	interests   map[shifts.InterestID]*shifts.ShiftInterest
	rejections  map[rejectionKey]*shifts.ShiftRejection
	leaves      map[shifts.LeaveID]*shifts.LeaveRequest
	swaps       map[shifts.SwapRequestID]*shifts.WorkerShiftRequest
}

type rejectionKey struct {
	SlotID   shifts.SlotID
	SlotDate string
	UserID   shifts.UserID
}

func NewMemory() *Memory {
	return &Memory{
		shifts:      make(map[shifts.ShiftID]*shifts.Shift),
		slots:       make(map[shifts.SlotID]*shifts.ShiftSlot),
		assignments: make(map[shifts.AssignmentID]*shifts.ShiftSlotAssignment),
		interests:   make(map[shifts.InterestID]*shifts.ShiftInterest),
		rejections:  make(map[rejectionKey]*shifts.ShiftRejection),
		leaves:      make(map[shifts.LeaveID]*shifts.LeaveRequest),
		swaps:       make(map[shifts.SwapRequestID]*shifts.WorkerShiftRequest),
	}
}

// =============================================================================
// SHIFT STORE
// =============================================================================

func (m *Memory) SaveShift(_ context.Context, s *shifts.Shift) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.shifts[s.ID] = &cp
	return nil
}

func (m *Memory) GetShift(_ context.Context, id shifts.ShiftID) (*shifts.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.shifts[id]
	if !ok {
		return nil, shifts.ErrShiftNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *Memory) ListShifts(_ context.Context, pharmacyID shifts.PharmacyID) ([]*shifts.Shift, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*shifts.Shift
	for _, s := range m.shifts {
		if pharmacyID == "" || s.PharmacyID == pharmacyID {
			cp := *s
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SaveSlot(_ context.Context, sl *shifts.ShiftSlot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.shifts[sl.ShiftID]; !ok {
		return shifts.ErrShiftNotFound
	}
	cp := *sl
	m.slots[sl.ID] = &cp
	return nil
}

func (m *Memory) GetSlot(_ context.Context, id shifts.SlotID) (*shifts.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sl, ok := m.slots[id]
	if !ok {
		return nil, shifts.ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (m *Memory) SlotsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*shifts.ShiftSlot
	for _, sl := range m.slots {
		if sl.ShiftID == shiftID {
			cp := *sl
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) SetEscalationLevel(_ context.Context, id shifts.ShiftID, level int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok {
		return shifts.ErrShiftNotFound
	}
	s.EscalationLevel = level
	return nil
}

func (m *Memory) IncrementRevealCount(_ context.Context, id shifts.ShiftID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.shifts[id]
	if !ok {
		return 0, shifts.ErrShiftNotFound
	}
	s.RevealCount++
	return s.RevealCount, nil
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

func (m *Memory) PutAssignment(_ context.Context, a *shifts.ShiftSlotAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.assignments {
		if existing.SlotID == a.SlotID && existing.SlotDate.Equal(a.SlotDate) {
			return &shifts.OccurrenceTakenError{
				SlotID:     a.SlotID,
				SlotDate:   a.SlotDate,
				AssignedTo: existing.UserID,
			}
		}
	}
	cp := *a
	m.assignments[a.ID] = &cp
	return nil
}

func (m *Memory) GetAssignment(_ context.Context, slotID shifts.SlotID, slotDate shifts.Date) (*shifts.ShiftSlotAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.assignments {
		if a.SlotID == slotID && a.SlotDate.Equal(slotDate) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shifts.ErrAssignmentNotFound
}

func (m *Memory) AssignmentByID(_ context.Context, id shifts.AssignmentID) (*shifts.ShiftSlotAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return nil, shifts.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *Memory) AssignmentsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlotAssignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	slotIDs := make(map[shifts.SlotID]bool)
	for _, sl := range m.slots {
		if sl.ShiftID == shiftID {
			slotIDs[sl.ID] = true
		}
	}
	var result []*shifts.ShiftSlotAssignment
	for _, a := range m.assignments {
		if slotIDs[a.SlotID] {
			cp := *a
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) DeleteAssignment(_ context.Context, id shifts.AssignmentID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.assignments[id]; !ok {
		return shifts.ErrAssignmentNotFound
	}
	delete(m.assignments, id)
	return nil
}

// =============================================================================
// INTEREST STORE
// =============================================================================

func (m *Memory) SaveInterest(_ context.Context, in *shifts.ShiftInterest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *in
	m.interests[in.ID] = &cp
	return nil
}

func (m *Memory) GetInterest(_ context.Context, id shifts.InterestID) (*shifts.ShiftInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	in, ok := m.interests[id]
	if !ok {
		return nil, shifts.ErrInterestNotFound
	}
	cp := *in
	return &cp, nil
}

func (m *Memory) InterestsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*shifts.ShiftInterest
	for _, in := range m.interests {
		if in.ShiftID == shiftID {
			cp := *in
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) OpenInterest(_ context.Context, shiftID shifts.ShiftID, slotID *shifts.SlotID, userID shifts.UserID) (*shifts.ShiftInterest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, in := range m.interests {
		if in.ShiftID != shiftID || in.UserID != userID {
			continue
		}
		if (in.SlotID == nil) != (slotID == nil) {
			continue
		}
		if in.SlotID != nil && *in.SlotID != *slotID {
			continue
		}
		cp := *in
		return &cp, nil
	}
	return nil, nil
}

func (m *Memory) SetRevealed(_ context.Context, id shifts.InterestID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	in, ok := m.interests[id]
	if !ok {
		return shifts.ErrInterestNotFound
	}
	in.Revealed = true
	return nil
}

func (m *Memory) SaveRejection(_ context.Context, r *shifts.ShiftRejection) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := rejectionKey{SlotID: r.SlotID, SlotDate: r.SlotDate.String(), UserID: r.UserID}
	if _, ok := m.rejections[k]; ok {
		return shifts.ErrDuplicateRejection
	}
	cp := *r
	m.rejections[k] = &cp
	return nil
}

func (m *Memory) HasRejected(_ context.Context, slotID shifts.SlotID, slotDate shifts.Date, userID shifts.UserID) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	k := rejectionKey{SlotID: slotID, SlotDate: slotDate.String(), UserID: userID}
	_, ok := m.rejections[k]
	return ok, nil
}

func (m *Memory) RejectionsByUser(_ context.Context, userID shifts.UserID) ([]*shifts.ShiftRejection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*shifts.ShiftRejection
	for _, r := range m.rejections {
		if r.UserID == userID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// LEAVE STORE
// =============================================================================

func (m *Memory) SaveLeave(_ context.Context, lr *shifts.LeaveRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := checkPendingLeave(m.leaves, lr); err != nil {
		return err
	}
	cp := *lr
	m.leaves[lr.ID] = &cp
	return nil
}

// checkPendingLeave mirrors the sqlite partial unique index: at most one
// PENDING leave per (assignment, user, leave_type). Updates to an existing
// row are exempt.
func checkPendingLeave(leaves map[shifts.LeaveID]*shifts.LeaveRequest, lr *shifts.LeaveRequest) error {
	if lr.Status != shifts.LeavePending {
		return nil
	}
	for _, existing := range leaves {
		if existing.ID != lr.ID && existing.AssignmentID == lr.AssignmentID &&
			existing.UserID == lr.UserID && existing.LeaveType == lr.LeaveType &&
			existing.Status == shifts.LeavePending {
			return shifts.ErrDuplicateLeave
		}
	}
	return nil
}

func (m *Memory) GetLeave(_ context.Context, id shifts.LeaveID) (*shifts.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	lr, ok := m.leaves[id]
	if !ok {
		return nil, shifts.ErrLeaveNotFound
	}
	cp := *lr
	return &cp, nil
}

func (m *Memory) LeavesByAssignment(_ context.Context, assignmentID shifts.AssignmentID) ([]*shifts.LeaveRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*shifts.LeaveRequest
	for _, lr := range m.leaves {
		if lr.AssignmentID == assignmentID {
			cp := *lr
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) PendingLeaveExists(_ context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, lr := range m.leaves {
		if lr.AssignmentID == assignmentID && lr.UserID == userID &&
			lr.LeaveType == lt && lr.Status == shifts.LeavePending {
			return true, nil
		}
	}
	return false, nil
}

func (m *Memory) SaveSwap(_ context.Context, sr *shifts.WorkerShiftRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *sr
	m.swaps[sr.ID] = &cp
	return nil
}

func (m *Memory) GetSwap(_ context.Context, id shifts.SwapRequestID) (*shifts.WorkerShiftRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sr, ok := m.swaps[id]
	if !ok {
		return nil, shifts.ErrSwapNotFound
	}
	cp := *sr
	return &cp, nil
}

// =============================================================================
// TRANSACTIONAL SECTION
// =============================================================================

// WithTx holds the store lock for the whole function, giving the caller an
// exclusive read-modify-write window. On error the pre-call state is
// restored.
func (m *Memory) WithTx(_ context.Context, fn func(shifts.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.snapshot()
	view := &txView{parent: m}
	if err := fn(view); err != nil {
		m.restore(snap)
		return err
	}
	return nil
}

type memorySnapshot struct {
	shifts      map[shifts.ShiftID]*shifts.Shift
	slots       map[shifts.SlotID]*shifts.ShiftSlot
	assignments map[shifts.AssignmentID]*shifts.ShiftSlotAssignment
	interests   map[shifts.InterestID]*shifts.ShiftInterest
	rejections  map[rejectionKey]*shifts.ShiftRejection
	leaves      map[shifts.LeaveID]*shifts.LeaveRequest
	swaps       map[shifts.SwapRequestID]*shifts.WorkerShiftRequest
}

func (m *Memory) snapshot() memorySnapshot {
	return memorySnapshot{
		shifts:      copyMap(m.shifts),
		slots:       copyMap(m.slots),
		assignments: copyMap(m.assignments),
		interests:   copyMap(m.interests),
		rejections:  copyMap(m.rejections),
		leaves:      copyMap(m.leaves),
		swaps:       copyMap(m.swaps),
	}
}

func (m *Memory) restore(s memorySnapshot) {
	m.shifts = s.shifts
	m.slots = s.slots
	m.assignments = s.assignments
	m.interests = s.interests
	m.rejections = s.rejections
	m.leaves = s.leaves
	m.swaps = s.swaps
}

func copyMap[K comparable, V any](src map[K]*V) map[K]*V {
	dst := make(map[K]*V, len(src))
	for k, v := range src {
		cp := *v
		dst[k] = &cp
	}
	return dst
}

// txView exposes the parent's maps without re-acquiring the lock held by
// WithTx.
type txView struct {
	parent *Memory
}

func (tv *txView) SaveShift(_ context.Context, s *shifts.Shift) error {
	cp := *s
	tv.parent.shifts[s.ID] = &cp
	return nil
}

func (tv *txView) GetShift(_ context.Context, id shifts.ShiftID) (*shifts.Shift, error) {
	s, ok := tv.parent.shifts[id]
	if !ok {
		return nil, shifts.ErrShiftNotFound
	}
	cp := *s
	return &cp, nil
}

func (tv *txView) ListShifts(_ context.Context, pharmacyID shifts.PharmacyID) ([]*shifts.Shift, error) {
	var result []*shifts.Shift
	for _, s := range tv.parent.shifts {
		if pharmacyID == "" || s.PharmacyID == pharmacyID {
			cp := *s
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) SaveSlot(_ context.Context, sl *shifts.ShiftSlot) error {
	if _, ok := tv.parent.shifts[sl.ShiftID]; !ok {
		return shifts.ErrShiftNotFound
	}
	cp := *sl
	tv.parent.slots[sl.ID] = &cp
	return nil
}

func (tv *txView) GetSlot(_ context.Context, id shifts.SlotID) (*shifts.ShiftSlot, error) {
	sl, ok := tv.parent.slots[id]
	if !ok {
		return nil, shifts.ErrSlotNotFound
	}
	cp := *sl
	return &cp, nil
}

func (tv *txView) SlotsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlot, error) {
	var result []*shifts.ShiftSlot
	for _, sl := range tv.parent.slots {
		if sl.ShiftID == shiftID {
			cp := *sl
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) SetEscalationLevel(_ context.Context, id shifts.ShiftID, level int) error {
	s, ok := tv.parent.shifts[id]
	if !ok {
		return shifts.ErrShiftNotFound
	}
	s.EscalationLevel = level
	return nil
}

func (tv *txView) IncrementRevealCount(_ context.Context, id shifts.ShiftID) (int, error) {
	s, ok := tv.parent.shifts[id]
	if !ok {
		return 0, shifts.ErrShiftNotFound
	}
	s.RevealCount++
	return s.RevealCount, nil
}

func (tv *txView) PutAssignment(_ context.Context, a *shifts.ShiftSlotAssignment) error {
	for _, existing := range tv.parent.assignments {
		if existing.SlotID == a.SlotID && existing.SlotDate.Equal(a.SlotDate) {
			return &shifts.OccurrenceTakenError{
				SlotID:     a.SlotID,
				SlotDate:   a.SlotDate,
				AssignedTo: existing.UserID,
			}
		}
	}
	cp := *a
	tv.parent.assignments[a.ID] = &cp
	return nil
}

func (tv *txView) GetAssignment(_ context.Context, slotID shifts.SlotID, slotDate shifts.Date) (*shifts.ShiftSlotAssignment, error) {
	for _, a := range tv.parent.assignments {
		if a.SlotID == slotID && a.SlotDate.Equal(slotDate) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, shifts.ErrAssignmentNotFound
}

func (tv *txView) AssignmentByID(_ context.Context, id shifts.AssignmentID) (*shifts.ShiftSlotAssignment, error) {
	a, ok := tv.parent.assignments[id]
	if !ok {
		return nil, shifts.ErrAssignmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (tv *txView) AssignmentsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftSlotAssignment, error) {
	slotIDs := make(map[shifts.SlotID]bool)
	for _, sl := range tv.parent.slots {
		if sl.ShiftID == shiftID {
			slotIDs[sl.ID] = true
		}
	}
	var result []*shifts.ShiftSlotAssignment
	for _, a := range tv.parent.assignments {
		if slotIDs[a.SlotID] {
			cp := *a
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) DeleteAssignment(_ context.Context, id shifts.AssignmentID) error {
	if _, ok := tv.parent.assignments[id]; !ok {
		return shifts.ErrAssignmentNotFound
	}
	delete(tv.parent.assignments, id)
	return nil
}

func (tv *txView) SaveInterest(_ context.Context, in *shifts.ShiftInterest) error {
	cp := *in
	tv.parent.interests[in.ID] = &cp
	return nil
}

func (tv *txView) GetInterest(_ context.Context, id shifts.InterestID) (*shifts.ShiftInterest, error) {
	in, ok := tv.parent.interests[id]
	if !ok {
		return nil, shifts.ErrInterestNotFound
	}
	cp := *in
	return &cp, nil
}

func (tv *txView) InterestsByShift(_ context.Context, shiftID shifts.ShiftID) ([]*shifts.ShiftInterest, error) {
	var result []*shifts.ShiftInterest
	for _, in := range tv.parent.interests {
		if in.ShiftID == shiftID {
			cp := *in
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) OpenInterest(_ context.Context, shiftID shifts.ShiftID, slotID *shifts.SlotID, userID shifts.UserID) (*shifts.ShiftInterest, error) {
	for _, in := range tv.parent.interests {
		if in.ShiftID != shiftID || in.UserID != userID {
			continue
		}
		if (in.SlotID == nil) != (slotID == nil) {
			continue
		}
		if in.SlotID != nil && *in.SlotID != *slotID {
			continue
		}
		cp := *in
		return &cp, nil
	}
	return nil, nil
}

func (tv *txView) SetRevealed(_ context.Context, id shifts.InterestID) error {
	in, ok := tv.parent.interests[id]
	if !ok {
		return shifts.ErrInterestNotFound
	}
	in.Revealed = true
	return nil
}

func (tv *txView) SaveRejection(_ context.Context, r *shifts.ShiftRejection) error {
	k := rejectionKey{SlotID: r.SlotID, SlotDate: r.SlotDate.String(), UserID: r.UserID}
	if _, ok := tv.parent.rejections[k]; ok {
		return shifts.ErrDuplicateRejection
	}
	cp := *r
	tv.parent.rejections[k] = &cp
	return nil
}

func (tv *txView) HasRejected(_ context.Context, slotID shifts.SlotID, slotDate shifts.Date, userID shifts.UserID) (bool, error) {
	k := rejectionKey{SlotID: slotID, SlotDate: slotDate.String(), UserID: userID}
	_, ok := tv.parent.rejections[k]
	return ok, nil
}

func (tv *txView) RejectionsByUser(_ context.Context, userID shifts.UserID) ([]*shifts.ShiftRejection, error) {
	var result []*shifts.ShiftRejection
	for _, r := range tv.parent.rejections {
		if r.UserID == userID {
			cp := *r
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) SaveLeave(_ context.Context, lr *shifts.LeaveRequest) error {
	if err := checkPendingLeave(tv.parent.leaves, lr); err != nil {
		return err
	}
	cp := *lr
	tv.parent.leaves[lr.ID] = &cp
	return nil
}

func (tv *txView) GetLeave(_ context.Context, id shifts.LeaveID) (*shifts.LeaveRequest, error) {
	lr, ok := tv.parent.leaves[id]
	if !ok {
		return nil, shifts.ErrLeaveNotFound
	}
	cp := *lr
	return &cp, nil
}

func (tv *txView) LeavesByAssignment(_ context.Context, assignmentID shifts.AssignmentID) ([]*shifts.LeaveRequest, error) {
	var result []*shifts.LeaveRequest
	for _, lr := range tv.parent.leaves {
		if lr.AssignmentID == assignmentID {
			cp := *lr
			result = append(result, &cp)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (tv *txView) PendingLeaveExists(_ context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType) (bool, error) {
	for _, lr := range tv.parent.leaves {
		if lr.AssignmentID == assignmentID && lr.UserID == userID &&
			lr.LeaveType == lt && lr.Status == shifts.LeavePending {
			return true, nil
		}
	}
	return false, nil
}

func (tv *txView) SaveSwap(_ context.Context, sr *shifts.WorkerShiftRequest) error {
	cp := *sr
	tv.parent.swaps[sr.ID] = &cp
	return nil
}

func (tv *txView) GetSwap(_ context.Context, id shifts.SwapRequestID) (*shifts.WorkerShiftRequest, error) {
	sr, ok := tv.parent.swaps[id]
	if !ok {
		return nil, shifts.ErrSwapNotFound
	}
	cp := *sr
	return &cp, nil
}

// Compile-time interface checks.
var (
	_ shifts.TxStore = (*Memory)(nil)
	_ shifts.Store   = (*txView)(nil)
)
