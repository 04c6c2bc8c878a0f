/*
Package workflow orchestrates the shift engine's stateful operations:
expressing and revealing interest, rejecting occurrences, assigning workers
with locked rates, and the leave/swap lifecycle after assignment.

interest.go - Interest & reveal workflow

PURPOSE:
  Records worker interest in a shift, conceals or reveals identity based on
  the shift's visibility tier and reveal quota, and records explicit
  rejections so an occurrence is never re-offered to a worker who already
  declined it.

VISIBILITY RULE:
  While a shift sits at the widest public tier (PLATFORM), an unrevealed
  interest presents an anonymized placeholder to the poster. Once revealed,
  or at any narrower tier, the worker reference is shown in full.

REVEAL QUOTA:
  Reveal checks the shift's reveal_count against its reveal_quota and fails
  with ErrRevealQuotaExceeded rather than silently capping. The counter is
  an atomic relative increment so concurrent reveals never lose updates.
  A quota of zero means unlimited reveals.

SEE ALSO:
  - assignment.go: Assignment consumes interests and rejections
  - shifts/store.go: Store contract for idempotent rejections
*/
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/locumbase/shift-engine/shifts"
)

// AnonymousWorkerRef is the placeholder shown to posters for unrevealed
// platform-tier interests.
const AnonymousWorkerRef = "anonymous"

// InterestService handles the interest/reveal/reject workflow.
type InterestService struct {
	Store  shifts.TxStore
	Events shifts.EventSink
}

func NewInterestService(store shifts.TxStore, events shifts.EventSink) *InterestService {
	if events == nil {
		events = shifts.NullSink{}
	}
	return &InterestService{Store: store, Events: events}
}

// =============================================================================
// EXPRESS INTEREST
// =============================================================================

// ExpressInterest records a worker's interest in a shift, optionally scoped
// to one slot. Repeat expressions for the same (shift, slot, user) return
// the existing interest instead of inserting a duplicate.
func (s *InterestService) ExpressInterest(ctx context.Context, userID shifts.UserID, shiftID shifts.ShiftID, slotID *shifts.SlotID) (*shifts.ShiftInterest, error) {
	shift, err := s.Store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	if slotID != nil {
		slot, err := s.Store.GetSlot(ctx, *slotID)
		if err != nil {
			return nil, err
		}
		if slot.ShiftID != shift.ID {
			return nil, fmt.Errorf("interest in slot %s: %w", *slotID, shifts.ErrSlotNotInShift)
		}
	}

	existing, err := s.Store.OpenInterest(ctx, shiftID, slotID, userID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	interest := &shifts.ShiftInterest{
		ID:        shifts.InterestID(uuid.NewString()),
		ShiftID:   shiftID,
		SlotID:    slotID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.SaveInterest(ctx, interest); err != nil {
		return nil, err
	}

	s.Events.Publish(ctx, shifts.InterestExpressed{
		InterestID: interest.ID,
		ShiftID:    shiftID,
		UserID:     userID,
	})
	return interest, nil
}

// =============================================================================
// LISTING WITH ANONYMIZATION
// =============================================================================

// InterestView is what the poster sees for one interest. WorkerRef is the
// worker id, or AnonymousWorkerRef while identity is withheld.
type InterestView struct {
	InterestID shifts.InterestID
	SlotID     *shifts.SlotID
	WorkerRef  string
	Revealed   bool
	CreatedAt  time.Time
}

// ListForPoster returns the shift's interests with identity withheld for
// unrevealed interests at the platform tier.
func (s *InterestService) ListForPoster(ctx context.Context, shiftID shifts.ShiftID, tc shifts.TierContext) ([]InterestView, error) {
	shift, err := s.Store.GetShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}
	interests, err := s.Store.InterestsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	atPlatform := shifts.CurrentTier(shift, tc) == shifts.TierPlatform

	views := make([]InterestView, 0, len(interests))
	for _, in := range interests {
		ref := string(in.UserID)
		if atPlatform && !in.Revealed {
			ref = AnonymousWorkerRef
		}
		views = append(views, InterestView{
			InterestID: in.ID,
			SlotID:     in.SlotID,
			WorkerRef:  ref,
			Revealed:   in.Revealed,
			CreatedAt:  in.CreatedAt,
		})
	}
	return views, nil
}

// =============================================================================
// REVEAL
// =============================================================================

// Reveal discloses an interested worker's identity to the poster. Fails
// with ErrRevealQuotaExceeded when the shift's quota is spent; flipping the
// flag and bumping the counter happen in one transaction.
func (s *InterestService) Reveal(ctx context.Context, interestID shifts.InterestID) error {
	var revealed shifts.InterestRevealed

	err := s.Store.WithTx(ctx, func(tx shifts.Store) error {
		interest, err := tx.GetInterest(ctx, interestID)
		if err != nil {
			return err
		}
		if interest.Revealed {
			// Already revealed: nothing to spend.
			revealed = shifts.InterestRevealed{InterestID: interest.ID, ShiftID: interest.ShiftID}
			return nil
		}

		shift, err := tx.GetShift(ctx, interest.ShiftID)
		if err != nil {
			return err
		}
		if shift.RevealQuota > 0 && shift.RevealCount >= shift.RevealQuota {
			return fmt.Errorf("shift %s: %w", shift.ID, shifts.ErrRevealQuotaExceeded)
		}

		if err := tx.SetRevealed(ctx, interestID); err != nil {
			return err
		}
		count, err := tx.IncrementRevealCount(ctx, shift.ID)
		if err != nil {
			return err
		}
		revealed = shifts.InterestRevealed{
			InterestID:  interest.ID,
			ShiftID:     shift.ID,
			RevealCount: count,
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.Events.Publish(ctx, revealed)
	return nil
}

// =============================================================================
// REJECT
// =============================================================================

// Reject records that the user declined a concrete occurrence. Duplicate
// rejections of the same (slot, slot_date, user) tuple are idempotent: the
// unique constraint is the source of truth and hitting it is success.
func (s *InterestService) Reject(ctx context.Context, userID shifts.UserID, slotID shifts.SlotID, slotDate shifts.Date) error {
	slot, err := s.Store.GetSlot(ctx, slotID)
	if err != nil {
		return err
	}
	if !shifts.Occurs(slot, slotDate) {
		return fmt.Errorf("reject %s on %s: %w", slotID, slotDate, shifts.ErrNotAnOccurrence)
	}

	rejection := &shifts.ShiftRejection{
		ID:        shifts.RejectionID(uuid.NewString()),
		SlotID:    slotID,
		SlotDate:  slotDate,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Store.SaveRejection(ctx, rejection); err != nil {
		if errors.Is(err, shifts.ErrDuplicateRejection) {
			return nil
		}
		return err
	}

	s.Events.Publish(ctx, shifts.OccurrenceRejected{
		SlotID:   slotID,
		SlotDate: slotDate,
		UserID:   userID,
	})
	return nil
}

// =============================================================================
// OFFERS
// =============================================================================

// Occurrence is one concrete offerable instance of a slot.
type Occurrence struct {
	SlotID    shifts.SlotID
	Date      shifts.Date
	StartTime shifts.ClockTime
	EndTime   shifts.ClockTime
}

// OffersFor expands the shift's slots over the window and removes every
// occurrence the user already rejected and every occurrence that is already
// assigned. Downstream matching must only surface what this returns.
func (s *InterestService) OffersFor(ctx context.Context, userID shifts.UserID, shiftID shifts.ShiftID, w shifts.Window) ([]Occurrence, error) {
	slots, err := s.Store.SlotsByShift(ctx, shiftID)
	if err != nil {
		return nil, err
	}

	var offers []Occurrence
	for _, slot := range slots {
		for _, date := range shifts.Expand(slot, w) {
			rejected, err := s.Store.HasRejected(ctx, slot.ID, date, userID)
			if err != nil {
				return nil, err
			}
			if rejected {
				continue
			}
			if _, err := s.Store.GetAssignment(ctx, slot.ID, date); err == nil {
				continue
			} else if !shifts.IsNotFound(err) {
				return nil, err
			}
			offers = append(offers, Occurrence{
				SlotID:    slot.ID,
				Date:      date,
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
			})
		}
	}
	return offers, nil
}
