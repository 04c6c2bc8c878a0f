/*
events.go - Domain events emitted by the engine

PURPOSE:
  Reveal, assignment, rejection and escalation all trigger outside effects
  (notifications, invoicing refresh) that are not this engine's business.
  Each workflow emits a typed event through an EventSink; an external
  dispatcher decides what delivery means.

  Event emission is fire-and-forget from the engine's point of view: sinks
  must not fail the originating operation.
*/
package shifts

import (
	"context"
	"log"
)

// Event is a domain event produced by a workflow operation.
type Event interface {
	EventName() string
}

type ShiftEscalated struct {
	ShiftID ShiftID
	Tier    Tier
}

type InterestExpressed struct {
	InterestID InterestID
	ShiftID    ShiftID
	UserID     UserID
}

type InterestRevealed struct {
	InterestID  InterestID
	ShiftID     ShiftID
	RevealCount int
}

type OccurrenceRejected struct {
	SlotID   SlotID
	SlotDate Date
	UserID   UserID
}

type SlotAssigned struct {
	AssignmentID AssignmentID
	SlotID       SlotID
	SlotDate     Date
	UserID       UserID
}

type LeaveDecided struct {
	LeaveID LeaveID
	Status  LeaveStatus
}

type SwapDecided struct {
	SwapRequestID  SwapRequestID
	Status         SwapStatus
	CreatedShiftID *ShiftID
}

func (ShiftEscalated) EventName() string     { return "shift_escalated" }
func (InterestExpressed) EventName() string  { return "interest_expressed" }
func (InterestRevealed) EventName() string   { return "interest_revealed" }
func (OccurrenceRejected) EventName() string { return "occurrence_rejected" }
func (SlotAssigned) EventName() string       { return "slot_assigned" }
func (LeaveDecided) EventName() string       { return "leave_decided" }
func (SwapDecided) EventName() string        { return "swap_decided" }

// EventSink receives domain events. Implementations must be non-blocking
// relative to the originating store transaction.
type EventSink interface {
	Publish(ctx context.Context, e Event)
}

// LogSink writes events to the process log. The default sink in cmd/server.
type LogSink struct{}

func (LogSink) Publish(_ context.Context, e Event) {
	log.Printf("event %s: %+v", e.EventName(), e)
}

// NullSink drops events. Used in tests that don't assert on emission.
type NullSink struct{}

func (NullSink) Publish(context.Context, Event) {}
