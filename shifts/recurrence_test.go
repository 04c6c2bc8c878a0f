package shifts_test

import (
	"testing"
	"time"

	"github.com/locumbase/shift-engine/shifts"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(y int, m time.Month, d int) shifts.Date {
	return shifts.NewDate(y, m, d)
}

func clock(h, m int) shifts.ClockTime {
	return shifts.NewClockTime(h, m)
}

func datesEqual(got []shifts.Date, want []shifts.Date) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if !got[i].Equal(want[i]) {
			return false
		}
	}
	return true
}

// =============================================================================
// SINGLE-OCCURRENCE EXPANSION
// =============================================================================

func TestExpand_SingleSlot_InsideWindow(t *testing.T) {
	// GIVEN: A non-recurring slot on a Wednesday
	// WHEN: Expanding over a window containing that date
	// THEN: Exactly one occurrence, on the slot's date

	slot := &shifts.ShiftSlot{
		ID:        "slot-1",
		ShiftID:   "shift-1",
		Date:      date(2026, time.September, 2), // Wednesday
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
	}

	w := shifts.Window{From: date(2026, time.September, 1), To: date(2026, time.September, 30)}
	got := shifts.Expand(slot, w)

	if !datesEqual(got, []shifts.Date{date(2026, time.September, 2)}) {
		t.Errorf("expected single occurrence on 2026-09-02, got %v", got)
	}
}

func TestExpand_SingleSlot_OutsideWindow(t *testing.T) {
	// GIVEN: A non-recurring slot
	// WHEN: Expanding over a window that excludes the date
	// THEN: No occurrences

	slot := &shifts.ShiftSlot{
		ID:        "slot-1",
		ShiftID:   "shift-1",
		Date:      date(2026, time.September, 2),
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
	}

	w := shifts.Window{From: date(2026, time.October, 1), To: date(2026, time.October, 31)}
	if got := shifts.Expand(slot, w); len(got) != 0 {
		t.Errorf("expected no occurrences, got %v", got)
	}
}

func TestExpand_WindowBoundsInclusive(t *testing.T) {
	// GIVEN: A non-recurring slot exactly on the window's upper bound
	// WHEN: Expanding
	// THEN: The occurrence is included (window is inclusive on both ends)

	slot := &shifts.ShiftSlot{
		ID:        "slot-1",
		ShiftID:   "shift-1",
		Date:      date(2026, time.September, 30),
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
	}

	w := shifts.Window{From: date(2026, time.September, 30), To: date(2026, time.September, 30)}
	if got := shifts.Expand(slot, w); len(got) != 1 {
		t.Errorf("expected boundary occurrence to be included, got %v", got)
	}
}

// =============================================================================
// RECURRING EXPANSION
// =============================================================================

func TestExpand_Recurring_MonWedInsideWindow(t *testing.T) {
	// GIVEN: A slot recurring Mon+Wed from Tue 2026-09-01 until 2026-09-14
	// WHEN: Expanding over the full range
	// THEN: Occurrences on Wed 2, Mon 7, Wed 9, Mon 14 - and not the
	//       anchor Tuesday itself, which is not a flagged weekday

	until := date(2026, time.September, 14)
	slot := &shifts.ShiftSlot{
		ID:               "slot-1",
		ShiftID:          "shift-1",
		Date:             date(2026, time.September, 1), // Tuesday
		StartTime:        clock(9, 0),
		EndTime:          clock(17, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Monday, time.Wednesday},
		RecurringEndDate: &until,
	}

	w := shifts.Window{From: date(2026, time.September, 1), To: date(2026, time.September, 30)}
	got := shifts.Expand(slot, w)

	want := []shifts.Date{
		date(2026, time.September, 2),
		date(2026, time.September, 7),
		date(2026, time.September, 9),
		date(2026, time.September, 14),
	}
	if !datesEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExpand_Recurring_WindowNarrowerThanRecurrence(t *testing.T) {
	// GIVEN: A slot recurring every Friday for three months
	// WHEN: Expanding over a one-week window in the middle
	// THEN: Only the single Friday inside the window

	until := date(2026, time.November, 27)
	slot := &shifts.ShiftSlot{
		ID:               "slot-1",
		ShiftID:          "shift-1",
		Date:             date(2026, time.September, 4), // Friday
		StartTime:        clock(8, 0),
		EndTime:          clock(16, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Friday},
		RecurringEndDate: &until,
	}

	w := shifts.Window{From: date(2026, time.October, 5), To: date(2026, time.October, 11)}
	got := shifts.Expand(slot, w)

	if !datesEqual(got, []shifts.Date{date(2026, time.October, 9)}) {
		t.Errorf("expected only 2026-10-09, got %v", got)
	}
}

func TestExpand_Recurring_EndDateCapsExpansion(t *testing.T) {
	// GIVEN: A recurring slot ending before the window does
	// WHEN: Expanding past the recurrence end
	// THEN: Nothing after RecurringEndDate appears

	until := date(2026, time.September, 9)
	slot := &shifts.ShiftSlot{
		ID:               "slot-1",
		ShiftID:          "shift-1",
		Date:             date(2026, time.September, 2), // Wednesday
		StartTime:        clock(9, 0),
		EndTime:          clock(17, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Wednesday},
		RecurringEndDate: &until,
	}

	w := shifts.Window{From: date(2026, time.September, 1), To: date(2026, time.December, 31)}
	got := shifts.Expand(slot, w)

	want := []shifts.Date{date(2026, time.September, 2), date(2026, time.September, 9)}
	if !datesEqual(got, want) {
		t.Errorf("expected expansion capped at recurrence end, got %v", got)
	}
}

func TestExpand_Recurring_StartsAtAnchorNotWindow(t *testing.T) {
	// GIVEN: A recurring slot anchored after the window's start
	// WHEN: Expanding from before the anchor
	// THEN: Nothing before the anchor date appears

	until := date(2026, time.September, 30)
	slot := &shifts.ShiftSlot{
		ID:               "slot-1",
		ShiftID:          "shift-1",
		Date:             date(2026, time.September, 14), // Monday
		StartTime:        clock(9, 0),
		EndTime:          clock(17, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Monday},
		RecurringEndDate: &until,
	}

	w := shifts.Window{From: date(2026, time.August, 1), To: date(2026, time.September, 30)}
	got := shifts.Expand(slot, w)

	want := []shifts.Date{
		date(2026, time.September, 14),
		date(2026, time.September, 21),
		date(2026, time.September, 28),
	}
	if !datesEqual(got, want) {
		t.Errorf("expected expansion to start at the anchor, got %v", got)
	}
}

func TestExpand_InvalidWindow_Empty(t *testing.T) {
	// GIVEN: A window with To before From
	// WHEN: Expanding any slot
	// THEN: No occurrences

	slot := &shifts.ShiftSlot{
		ID:        "slot-1",
		ShiftID:   "shift-1",
		Date:      date(2026, time.September, 2),
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
	}

	w := shifts.Window{From: date(2026, time.September, 30), To: date(2026, time.September, 1)}
	if got := shifts.Expand(slot, w); len(got) != 0 {
		t.Errorf("expected empty expansion for invalid window, got %v", got)
	}
}

// =============================================================================
// OCCURS
// =============================================================================

func TestOccurs(t *testing.T) {
	until := date(2026, time.September, 30)
	recurring := &shifts.ShiftSlot{
		ID:               "slot-1",
		ShiftID:          "shift-1",
		Date:             date(2026, time.September, 1), // Tuesday
		StartTime:        clock(9, 0),
		EndTime:          clock(17, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Wednesday},
		RecurringEndDate: &until,
	}
	single := &shifts.ShiftSlot{
		ID:        "slot-2",
		ShiftID:   "shift-1",
		Date:      date(2026, time.September, 2),
		StartTime: clock(9, 0),
		EndTime:   clock(17, 0),
	}

	cases := []struct {
		name string
		slot *shifts.ShiftSlot
		d    shifts.Date
		want bool
	}{
		{"recurring hit", recurring, date(2026, time.September, 9), true},
		{"recurring wrong weekday", recurring, date(2026, time.September, 8), false},
		{"recurring past end", recurring, date(2026, time.October, 7), false},
		{"recurring before anchor", recurring, date(2026, time.August, 26), false},
		{"single hit", single, date(2026, time.September, 2), true},
		{"single miss", single, date(2026, time.September, 9), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := shifts.Occurs(tc.slot, tc.d); got != tc.want {
				t.Errorf("Occurs(%s) = %v, want %v", tc.d, got, tc.want)
			}
		})
	}
}
