/*
Package rates implements the rate-locking engine: a read-only pay-rate table,
a state-keyed public-holiday calendar, and a deterministic resolver that maps
(role, classification, employment category, day/time context) to a pay rate
plus a structured reasoning record.

PURPOSE:
  At assignment time the engine must freeze a pay rate that can be
  reproduced at audit time from the same inputs. The table and calendar are
  static reference data loaded once at startup into immutable structures;
  nothing here mutates after construction.

KEY CONCEPTS IN THIS FILE (table.go):
  - Table:     Nested lookup keyed by role / classification / employment
               category / day-or-time key
  - Day keys:  weekday, saturday, sunday, public_holiday
  - Time keys: early_morning, late_night (override the day key when set)

SEE ALSO:
  - resolver.go:       The resolution algorithm
  - classification.go: Role-specific classification keys
  - config.go:         YAML loading
*/
package rates

import (
	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/shifts"
)

// =============================================================================
// LOOKUP KEYS
// =============================================================================

// Day-type keys, derived from the occurrence date.
const (
	KeyWeekday       = "weekday"
	KeySaturday      = "saturday"
	KeySunday        = "sunday"
	KeyPublicHoliday = "public_holiday"
)

// Time-category keys. When a slot starts before 07:00 or ends after 20:00
// these override the day-type key.
const (
	KeyEarlyMorning = "early_morning"
	KeyLateNight    = "late_night"
)

// Default classification keys, used when the worker's profile leaves the
// classification unset (most junior / default award).
const (
	DefaultAwardLevel     = "PHARMACIST"
	DefaultInternHalf     = "intern_first_half"
	DefaultStudentYear    = "student_year_1"
	DefaultStaffLevel     = "level_1"
)

// =============================================================================
// TABLE - Immutable nested rate lookup
// =============================================================================

// Table is the immutable in-memory pay-rate table. Build it once via
// NewTable or config.LoadTable; lookups never mutate it.
type Table struct {
	rates map[shifts.Role]map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal
}

// NewTable builds a Table from a nested map. The input map is not retained.
func NewTable(src map[shifts.Role]map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal) *Table {
	rates := make(map[shifts.Role]map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal, len(src))
	for role, byClass := range src {
		rates[role] = make(map[string]map[shifts.EmploymentCategory]map[string]decimal.Decimal, len(byClass))
		for class, byCat := range byClass {
			rates[role][class] = make(map[shifts.EmploymentCategory]map[string]decimal.Decimal, len(byCat))
			for cat, byKey := range byCat {
				entries := make(map[string]decimal.Decimal, len(byKey))
				for k, v := range byKey {
					entries[k] = v
				}
				rates[role][class][cat] = entries
			}
		}
	}
	return &Table{rates: rates}
}

// Lookup returns the rate for the full key combination, and whether the
// combination exists. A miss is not an error at this level; the resolver
// turns it into a zero rate with a "rate not found" reason.
func (t *Table) Lookup(role shifts.Role, classificationKey string, cat shifts.EmploymentCategory, dayOrTimeKey string) (decimal.Decimal, bool) {
	byClass, ok := t.rates[role]
	if !ok {
		return decimal.Zero, false
	}
	byCat, ok := byClass[classificationKey]
	if !ok {
		return decimal.Zero, false
	}
	byKey, ok := byCat[cat]
	if !ok {
		return decimal.Zero, false
	}
	rate, ok := byKey[dayOrTimeKey]
	return rate, ok
}

// =============================================================================
// HOLIDAY CALENDAR - State-keyed public holiday dates
// =============================================================================

// Calendar is the immutable public-holiday calendar, keyed by operating
// state.
type Calendar struct {
	byState map[string]map[string]bool // state -> date string -> present
}

// NewCalendar builds a Calendar from state -> dates.
func NewCalendar(src map[string][]shifts.Date) *Calendar {
	byState := make(map[string]map[string]bool, len(src))
	for state, dates := range src {
		set := make(map[string]bool, len(dates))
		for _, d := range dates {
			set[d.String()] = true
		}
		byState[state] = set
	}
	return &Calendar{byState: byState}
}

// IsHoliday reports whether date is a public holiday in the given state.
func (c *Calendar) IsHoliday(state string, date shifts.Date) bool {
	if c == nil {
		return false
	}
	return c.byState[state][date.String()]
}
