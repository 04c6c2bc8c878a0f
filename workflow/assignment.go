/*
assignment.go - Assignment & rate-locking engine

PURPOSE:
  Exclusively binds one worker to one slot-occurrence, resolving the pay
  rate at assignment time and persisting the rate plus its reasoning record
  atomically with the assignment row.

RATE LOCKING:
  Rate resolution is pure and runs outside any lock. Only the persistence
  sequence (check existing assignment -> write) holds the store's exclusive
  transactional section, so two concurrent attempts on the same
  (slot, slot_date) cannot both succeed. The unique index on the pair is
  the backstop; the loser surfaces ErrOccurrenceTaken and must retry
  against current state.

  The locked rate is immune to later rate-table changes. It is recomputed
  only on explicit re-assignment, which replaces the whole snapshot in the
  same transaction.

SINGLE-USER SHIFTS:
  A shift flagged single_user_only requires every slot occurrence to
  resolve to the same assignee. The conflicting second assignment is
  rejected, never silently corrected.

SEE ALSO:
  - rates/resolver.go: The resolution algorithm
  - shifts/store.go:   WithTx exclusivity contract
*/
package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
)

// Engine is the assignment & rate-locking engine.
type Engine struct {
	Store    shifts.TxStore
	Resolver *rates.Resolver
	Events   shifts.EventSink
}

func NewEngine(store shifts.TxStore, resolver *rates.Resolver, events shifts.EventSink) *Engine {
	if events == nil {
		events = shifts.NullSink{}
	}
	return &Engine{Store: store, Resolver: resolver, Events: events}
}

// AssignParams carries the occurrence, the worker, and the collaborator
// records rate resolution depends on.
type AssignParams struct {
	SlotID   shifts.SlotID
	SlotDate shifts.Date
	UserID   shifts.UserID

	AssignedBy shifts.UserID

	// Reassign replaces an existing assignee; the prior rate snapshot is
	// cleared and recomputed.
	Reassign bool

	// Collaborator inputs.
	Membership shifts.PharmacyMembership
	Profile    rates.WorkerProfile
	Pharmacy   shifts.PharmacyContext
}

// Assign binds the worker to the occurrence with a freshly locked rate.
func (e *Engine) Assign(ctx context.Context, p AssignParams) (*shifts.ShiftSlotAssignment, error) {
	slot, err := e.Store.GetSlot(ctx, p.SlotID)
	if err != nil {
		return nil, err
	}
	shift, err := e.Store.GetShift(ctx, slot.ShiftID)
	if err != nil {
		return nil, err
	}
	if !shifts.Occurs(slot, p.SlotDate) {
		return nil, fmt.Errorf("assign %s on %s: %w", p.SlotID, p.SlotDate, shifts.ErrNotAnOccurrence)
	}
	if p.Membership.UserID != "" && p.Membership.UserID != p.UserID {
		return nil, &shifts.FieldError{Field: "membership", Message: "membership record does not match user"}
	}

	// Pure computation, outside the exclusive section.
	unitRate, reason := e.resolveRate(shift, slot, p)

	assignment := &shifts.ShiftSlotAssignment{
		ID:         shifts.AssignmentID(uuid.NewString()),
		SlotID:     p.SlotID,
		SlotDate:   p.SlotDate,
		UserID:     p.UserID,
		UnitRate:   unitRate,
		RateReason: reason,
		AssignedBy: p.AssignedBy,
		CreatedAt:  time.Now().UTC(),
	}

	err = e.Store.WithTx(ctx, func(tx shifts.Store) error {
		existing, err := tx.GetAssignment(ctx, p.SlotID, p.SlotDate)
		switch {
		case err == nil:
			if !p.Reassign {
				return &shifts.OccurrenceTakenError{
					SlotID:     p.SlotID,
					SlotDate:   p.SlotDate,
					AssignedTo: existing.UserID,
				}
			}
			// Reassignment drops the prior snapshot; the new row carries
			// the recomputed rate in the same transaction.
			if err := tx.DeleteAssignment(ctx, existing.ID); err != nil {
				return err
			}
		case errors.Is(err, shifts.ErrAssignmentNotFound):
			// First assignment for this occurrence.
		default:
			return err
		}

		if shift.SingleUserOnly {
			others, err := tx.AssignmentsByShift(ctx, shift.ID)
			if err != nil {
				return err
			}
			for _, a := range others {
				if a.UserID != p.UserID {
					return &shifts.SingleUserConflictError{
						ShiftID:   shift.ID,
						Existing:  a.UserID,
						Attempted: p.UserID,
					}
				}
			}
		}

		return tx.PutAssignment(ctx, assignment)
	})
	if err != nil {
		return nil, err
	}

	e.Events.Publish(ctx, shifts.SlotAssigned{
		AssignmentID: assignment.ID,
		SlotID:       assignment.SlotID,
		SlotDate:     assignment.SlotDate,
		UserID:       assignment.UserID,
	})
	return assignment, nil
}

// resolveRate builds the resolver input from the shift, slot and
// collaborator records. Award level comes from the membership for
// pharmacists; other roles classify from the onboarding profile.
func (e *Engine) resolveRate(shift *shifts.Shift, slot *shifts.ShiftSlot, p AssignParams) (decimal.Decimal, shifts.RateReason) {
	var classification rates.ClassificationSource
	if shift.RoleNeeded == shifts.RolePharmacist {
		classification = rates.PharmacistClassification{AwardLevel: p.Membership.AwardLevel}
	} else {
		classification = p.Profile.SourceFor(shift.RoleNeeded)
	}

	return e.Resolver.Resolve(rates.Input{
		Role:              shift.RoleNeeded,
		Classification:    classification,
		Employment:        shifts.CategoryFor(p.Membership.EmploymentType),
		Date:              p.SlotDate,
		StartTime:         slot.StartTime,
		EndTime:           slot.EndTime,
		State:             p.Pharmacy.State,
		RateType:          shift.RateType,
		FixedRate:         shift.FixedRate,
		OwnerAdjustedRate: shift.OwnerAdjustedRate,
	})
}

// =============================================================================
// INVOICE LINE
// =============================================================================

// InvoiceLine is the line item invoicing derives from a locked assignment:
// quantity is the occurrence's duration in hours, rate the locked unit rate.
type InvoiceLine struct {
	AssignmentID shifts.AssignmentID
	SlotDate     shifts.Date
	Quantity     decimal.Decimal
	UnitRate     decimal.Decimal
	Amount       decimal.Decimal
}

// InvoiceLineFor builds the invoice line for an assignment.
func (e *Engine) InvoiceLineFor(ctx context.Context, assignmentID shifts.AssignmentID) (*InvoiceLine, error) {
	a, err := e.Store.AssignmentByID(ctx, assignmentID)
	if err != nil {
		return nil, err
	}
	slot, err := e.Store.GetSlot(ctx, a.SlotID)
	if err != nil {
		return nil, err
	}

	hours := slot.DurationHours()
	return &InvoiceLine{
		AssignmentID: a.ID,
		SlotDate:     a.SlotDate,
		Quantity:     hours,
		UnitRate:     a.UnitRate,
		Amount:       hours.Mul(a.UnitRate),
	}, nil
}
