/*
shift.go - Shift posting and escalation transitions

PURPOSE:
  Creates shift postings with their slots (validated as one unit) and
  applies explicit escalation transitions. The tier path itself is computed
  in the shifts package; this service persists the selected index and emits
  the event external notifiers react to.
*/
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/locumbase/shift-engine/shifts"
)

// ShiftService creates postings and applies tier transitions.
type ShiftService struct {
	Store  shifts.TxStore
	Events shifts.EventSink
}

func NewShiftService(store shifts.TxStore, events shifts.EventSink) *ShiftService {
	if events == nil {
		events = shifts.NullSink{}
	}
	return &ShiftService{Store: store, Events: events}
}

// CreateShift validates and persists a shift with its slots atomically. The
// initial escalation level is the first (narrowest) tier of the computed
// path.
func (s *ShiftService) CreateShift(ctx context.Context, shift *shifts.Shift, slots []*shifts.ShiftSlot) (*shifts.Shift, error) {
	if shift.ID == "" {
		shift.ID = shifts.ShiftID(uuid.NewString())
	}
	if shift.CreatedAt.IsZero() {
		shift.CreatedAt = time.Now().UTC()
	}
	shift.EscalationLevel = 0
	shift.RevealCount = 0

	if err := shift.Validate(); err != nil {
		return nil, err
	}
	if len(slots) == 0 {
		return nil, &shifts.FieldError{Field: "slots", Message: "at least one slot required"}
	}
	for _, sl := range slots {
		if sl.ID == "" {
			sl.ID = shifts.SlotID(uuid.NewString())
		}
		sl.ShiftID = shift.ID
		if err := sl.Validate(); err != nil {
			return nil, err
		}
	}

	err := s.Store.WithTx(ctx, func(tx shifts.Store) error {
		if err := tx.SaveShift(ctx, shift); err != nil {
			return err
		}
		for _, sl := range slots {
			if err := tx.SaveSlot(ctx, sl); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return shift, nil
}

// Escalate applies an explicit tier transition. Selecting the current tier
// is a no-op; a tier outside the freshly computed path is rejected before
// any write.
func (s *ShiftService) Escalate(ctx context.Context, shiftID shifts.ShiftID, target shifts.Tier, tc shifts.TierContext) (*shifts.Shift, error) {
	shift, err := s.Store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	before := shift.EscalationLevel
	if err := shifts.SelectTier(shift, tc, target); err != nil {
		return nil, err
	}
	if shift.EscalationLevel == before {
		return shift, nil
	}

	if err := s.Store.SetEscalationLevel(ctx, shiftID, shift.EscalationLevel); err != nil {
		return nil, err
	}
	s.Events.Publish(ctx, shifts.ShiftEscalated{ShiftID: shiftID, Tier: target})
	return shift, nil
}
