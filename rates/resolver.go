/*
resolver.go - Deterministic rate resolution

PURPOSE:
  Maps an occurrence's full context onto a pay rate and a reasoning record.
  The resolution is a pure function of its inputs: no clock reads, no
  randomness, no store access. Calling it twice with identical inputs must
  return an identical rate and reason, which is what makes audit-time
  reproduction possible.

ALGORITHM (in order):
  1. Day type: public_holiday (date+state against the calendar) beats
     saturday/sunday/weekday from the date's weekday.
  2. Time category: early_morning if the slot starts before 07:00,
     late_night if it ends after 20:00. When set, it replaces the day type
     as the lookup key.
  3. Employment category: full_part_time for full/part-time memberships,
     casual for everything else.
  4. Pharmacist shifts with a FIXED rate type lock the shift's fixed rate
     directly (source Fixed); flexible/pharmacist-provided shifts go through
     the award table like everyone else.
  5. Table lookup by (role, classification key, employment category, key).
     A miss resolves to a zero rate with source RateNotFound - assignment
     still completes and the gap stays visible for manual correction.
  6. Casual non-pharmacist assignees get the shift's positive
     owner_adjusted_rate added on top of the table rate. Full/part-time
     employees never receive the bonus.

SEE ALSO:
  - table.go:          Lookup structure and key vocabulary
  - classification.go: Role-specific classification keys
*/
package rates

import (
	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/shifts"
)

// EarlyMorningBefore and LateNightAfter are the time-category boundaries.
var (
	earlyMorningBefore = shifts.NewClockTime(7, 0)
	lateNightAfter     = shifts.NewClockTime(20, 0)
)

// Input is everything rate resolution depends on. All fields are plain
// values so the resolution can be replayed from an audit log.
type Input struct {
	Role           shifts.Role
	Classification ClassificationSource
	Employment     shifts.EmploymentCategory

	Date      shifts.Date
	StartTime shifts.ClockTime
	EndTime   shifts.ClockTime
	State     string

	// Shift-level rate settings (pharmacist shifts only).
	RateType  *shifts.RateType
	FixedRate *decimal.Decimal

	// Owner bonus for casual non-pharmacist assignees.
	OwnerAdjustedRate *decimal.Decimal
}

// Resolver resolves pay rates against an immutable table and calendar.
type Resolver struct {
	Table    *Table
	Holidays *Calendar
}

func NewResolver(table *Table, holidays *Calendar) *Resolver {
	return &Resolver{Table: table, Holidays: holidays}
}

// Resolve computes the locked rate and its reasoning record. It never
// returns an error: a lookup miss is an annotated zero rate, not a fault.
func (r *Resolver) Resolve(in Input) (decimal.Decimal, shifts.RateReason) {
	key := r.lookupKey(in)
	roleKey := in.Classification.ClassificationKey()

	reason := shifts.RateReason{
		LookupKey:  key,
		RoleKey:    roleKey,
		Employment: in.Employment,
	}

	// Pharmacist shifts with an owner-fixed rate bypass the award table.
	if in.Role == shifts.RolePharmacist && in.RateType != nil &&
		*in.RateType == shifts.RateFixed && in.FixedRate != nil {
		reason.Source = shifts.RateSourceFixed
		return *in.FixedRate, reason
	}

	rate, ok := r.Table.Lookup(in.Role, roleKey, in.Employment, key)
	if !ok {
		reason.Source = shifts.RateSourceNotFound
		return decimal.Zero, reason
	}
	reason.Source = shifts.RateSourceAward

	if in.Role != shifts.RolePharmacist &&
		in.Employment == shifts.CategoryCasual &&
		in.OwnerAdjustedRate != nil && in.OwnerAdjustedRate.IsPositive() {
		rate = rate.Add(*in.OwnerAdjustedRate)
		reason.BonusApplied = true
	}

	return rate, reason
}

// lookupKey derives the effective day-or-time key: the time category when
// one applies, otherwise the day type.
func (r *Resolver) lookupKey(in Input) string {
	if in.StartTime.Before(earlyMorningBefore) {
		return KeyEarlyMorning
	}
	if in.EndTime.After(lateNightAfter) {
		return KeyLateNight
	}
	return r.dayType(in.Date, in.State)
}

func (r *Resolver) dayType(date shifts.Date, state string) string {
	if r.Holidays.IsHoliday(state, date) {
		return KeyPublicHoliday
	}
	switch {
	case date.IsSaturday():
		return KeySaturday
	case date.IsSunday():
		return KeySunday
	default:
		return KeyWeekday
	}
}
