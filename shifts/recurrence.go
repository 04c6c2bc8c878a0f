/*
recurrence.go - Slot definition to concrete dated occurrences

PURPOSE:
  Expands a slot definition over a query window into the ordered list of
  concrete dates on which the slot occurs. This is the only place recurrence
  semantics live; everything downstream (offers, assignment validation,
  invoicing) works on the expanded dates.

CONTRACT:
  - Pure: identical inputs always yield identical, order-stable output
  - Bounded: terminates in time proportional to the window length
  - Non-recurring slots expand to at most their anchor date
  - Recurring slots include every flagged weekday on/after the anchor and
    on/before both the window end and the recurrence end date

EDGE CASES:
  - Window entirely before the anchor: empty
  - Recurrence end before the window start: empty
  - Empty weekday set on a recurring slot is a data-model violation caught
    by ShiftSlot.Validate, not tolerated here

SEE ALSO:
  - types.go: ShiftSlot definition and validation
*/
package shifts

// Window is an inclusive date range [From, To].
type Window struct {
	From Date
	To   Date
}

// Valid reports whether the window is well-formed.
func (w Window) Valid() bool {
	return !w.From.IsZero() && !w.To.IsZero() && w.From.BeforeOrEqual(w.To)
}

// Contains reports whether d falls inside the window.
func (w Window) Contains(d Date) bool {
	return w.From.BeforeOrEqual(d) && d.BeforeOrEqual(w.To)
}

// Expand returns the ordered, deduplicated occurrence dates of slot inside
// the window.
func Expand(slot *ShiftSlot, w Window) []Date {
	if !w.Valid() {
		return nil
	}

	if !slot.Recurring {
		if w.Contains(slot.Date) {
			return []Date{slot.Date}
		}
		return nil
	}

	// Effective scan range: the window clipped to the anchor and the
	// recurrence end date.
	start := MaxDate(slot.Date, w.From)
	end := w.To
	if slot.RecurringEndDate != nil {
		end = MinDate(end, *slot.RecurringEndDate)
	}
	if end.Before(start) {
		return nil
	}

	flagged := make(map[int]bool, len(slot.RecurringDays))
	for _, wd := range slot.RecurringDays {
		flagged[int(wd)] = true
	}

	var dates []Date
	for d := start; d.BeforeOrEqual(end); d = d.AddDays(1) {
		if flagged[int(d.Weekday())] {
			dates = append(dates, d)
		}
	}
	return dates
}

// Occurs reports whether date is an occurrence of the slot. Used as a
// referential check before accepting a (slot, slot_date) write.
func Occurs(slot *ShiftSlot, date Date) bool {
	dates := Expand(slot, Window{From: date, To: date})
	return len(dates) == 1
}
