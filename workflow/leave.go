/*
leave.go - Leave and swap requests against existing assignments

PURPOSE:
  After assignment, two lifecycle changes exist. A LeaveRequest marks one
  occurrence excused (sick/annual/...); deciding it changes its own status
  only and never touches the locked rate. A WorkerShiftRequest (swap/cover)
  either auto-publishes a replacement Shift+Slot when the pharmacy enables
  auto-publish, or waits for manual owner/admin approval. Two states, not a
  workflow engine.

DUPLICATE GUARD:
  No duplicate pending leave may exist for the same
  (assignment, user, leave_type) - reported as ErrDuplicateLeave.
*/
package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locumbase/shift-engine/shifts"
)

// LeaveService handles leave and swap requests.
type LeaveService struct {
	Store  shifts.TxStore
	Events shifts.EventSink
}

func NewLeaveService(store shifts.TxStore, events shifts.EventSink) *LeaveService {
	if events == nil {
		events = shifts.NullSink{}
	}
	return &LeaveService{Store: store, Events: events}
}

// =============================================================================
// LEAVE REQUESTS
// =============================================================================

// FileLeave files a leave request against an assignment. Only the assignee
// can file, and an identical pending request is rejected.
func (s *LeaveService) FileLeave(ctx context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, lt shifts.LeaveType, note string) (*shifts.LeaveRequest, error) {
	a, err := s.Store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, &shifts.FieldError{Field: "user_id", Message: "leave can only be filed by the assignee"}
	}

	exists, err := s.Store.PendingLeaveExists(ctx, assignmentID, userID, lt)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("assignment %s: %w", assignmentID, shifts.ErrDuplicateLeave)
	}

	lr := &shifts.LeaveRequest{
		ID:           shifts.LeaveID(uuid.NewString()),
		AssignmentID: assignmentID,
		UserID:       userID,
		LeaveType:    lt,
		Status:       shifts.LeavePending,
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.Store.SaveLeave(ctx, lr); err != nil {
		return nil, err
	}
	return lr, nil
}

// DecideLeave approves or rejects a pending leave request. The decision
// changes the request's status only; the assignment's locked rate is never
// re-derived here.
func (s *LeaveService) DecideLeave(ctx context.Context, leaveID shifts.LeaveID, approve bool, decidedBy shifts.UserID) (*shifts.LeaveRequest, error) {
	lr, err := s.Store.GetLeave(ctx, leaveID)
	if err != nil {
		return nil, err
	}
	if lr.Status != shifts.LeavePending {
		return nil, &shifts.FieldError{Field: "status", Message: "leave request already decided"}
	}

	now := time.Now().UTC()
	if approve {
		lr.Status = shifts.LeaveApproved
	} else {
		lr.Status = shifts.LeaveRejected
	}
	lr.DecidedBy = &decidedBy
	lr.DecidedAt = &now

	if err := s.Store.SaveLeave(ctx, lr); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, shifts.LeaveDecided{LeaveID: lr.ID, Status: lr.Status})
	return lr, nil
}

// =============================================================================
// SWAP / COVER REQUESTS
// =============================================================================

// FileSwap files a swap/cover request against an assignment. With
// auto-publish enabled on the pharmacy, the replacement posting goes out
// immediately; otherwise the request stays pending for manual approval.
func (s *LeaveService) FileSwap(ctx context.Context, assignmentID shifts.AssignmentID, userID shifts.UserID, note string, pc shifts.PharmacyContext) (*shifts.WorkerShiftRequest, error) {
	a, err := s.Store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	if a.UserID != userID {
		return nil, &shifts.FieldError{Field: "user_id", Message: "swap can only be requested by the assignee"}
	}

	sr := &shifts.WorkerShiftRequest{
		ID:           shifts.SwapRequestID(uuid.NewString()),
		AssignmentID: assignmentID,
		UserID:       userID,
		Status:       shifts.SwapPending,
		Note:         note,
		CreatedAt:    time.Now().UTC(),
	}

	if pc.AutoPublishSwaps {
		shiftID, err := s.publishReplacement(ctx, a)
		if err != nil {
			return nil, err
		}
		now := time.Now().UTC()
		sr.Status = shifts.SwapApproved
		sr.CreatedShiftID = &shiftID
		sr.DecidedAt = &now
	}

	if err := s.Store.SaveSwap(ctx, sr); err != nil {
		return nil, err
	}

	if sr.Status == shifts.SwapApproved {
		s.Events.Publish(ctx, shifts.SwapDecided{
			SwapRequestID:  sr.ID,
			Status:         sr.Status,
			CreatedShiftID: sr.CreatedShiftID,
		})
	}
	return sr, nil
}

// DecideSwap manually approves or rejects a pending swap request. Approval
// publishes the replacement posting.
func (s *LeaveService) DecideSwap(ctx context.Context, swapID shifts.SwapRequestID, approve bool, decidedBy shifts.UserID) (*shifts.WorkerShiftRequest, error) {
	sr, err := s.Store.GetSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if sr.Status != shifts.SwapPending {
		return nil, &shifts.FieldError{Field: "status", Message: "swap request already decided"}
	}

	now := time.Now().UTC()
	sr.DecidedBy = &decidedBy
	sr.DecidedAt = &now

	if approve {
		a, err := s.Store.AssignmentByID(ctx, sr.AssignmentID)
		if err != nil {
			return nil, err
		}
		shiftID, err := s.publishReplacement(ctx, a)
		if err != nil {
			return nil, err
		}
		sr.Status = shifts.SwapApproved
		sr.CreatedShiftID = &shiftID
	} else {
		sr.Status = shifts.SwapRejected
	}

	if err := s.Store.SaveSwap(ctx, sr); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, shifts.SwapDecided{
		SwapRequestID:  sr.ID,
		Status:         sr.Status,
		CreatedShiftID: sr.CreatedShiftID,
	})
	return sr, nil
}

// publishReplacement creates a fresh Shift+Slot covering exactly the
// occurrence being given up, inheriting the original shift's role and rate
// settings.
func (s *LeaveService) publishReplacement(ctx context.Context, a *shifts.ShiftSlotAssignment) (shifts.ShiftID, error) {
	slot, err := s.Store.GetSlot(ctx, a.SlotID)
	if err != nil {
		return "", err
	}
	original, err := s.Store.GetShift(ctx, slot.ShiftID)
	if err != nil {
		return "", err
	}

	replacement := &shifts.Shift{
		ID:                shifts.ShiftID(uuid.NewString()),
		PharmacyID:        original.PharmacyID,
		PostedBy:          original.PostedBy,
		RoleNeeded:        original.RoleNeeded,
		EmploymentType:    original.EmploymentType,
		WorkloadTags:      append([]string(nil), original.WorkloadTags...),
		RateType:          original.RateType,
		FixedRate:         original.FixedRate,
		OwnerAdjustedRate: original.OwnerAdjustedRate,
		RevealQuota:       original.RevealQuota,
		CreatedAt:         time.Now().UTC(),
	}
	cover := &shifts.ShiftSlot{
		ID:        shifts.SlotID(uuid.NewString()),
		ShiftID:   replacement.ID,
		Date:      a.SlotDate,
		StartTime: slot.StartTime,
		EndTime:   slot.EndTime,
	}

	err = s.Store.WithTx(ctx, func(tx shifts.Store) error {
		if err := tx.SaveShift(ctx, replacement); err != nil {
			return err
		}
		return tx.SaveSlot(ctx, cover)
	})
	if err != nil {
		return "", err
	}
	return replacement.ID, nil
}
