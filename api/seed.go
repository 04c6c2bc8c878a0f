/*
seed.go - Demo data seeding

PURPOSE:
  Loads a small, self-consistent demo data set so the API can be explored
  without a client: one independent pharmacy, one chain pharmacy claimed by
  an organization, a handful of workers across roles, and shifts covering
  the fixed-rate and award-rate paths.

USAGE:
  POST /api/seed   Reset and load the demo data
  POST /api/reset  Clear all stored data

SEE ALSO:
  - handlers.go: Handler the seed loader hangs off
  - config/rates.yaml: The award table the demo assignments resolve against
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/locumbase/shift-engine/rates"
	"github.com/locumbase/shift-engine/shifts"
)

// resetter is implemented by stores that can wipe all rows.
type resetter interface {
	Reset(ctx context.Context) error
}

// ResetDatabase clears all stored data (dev only).
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) reset(ctx context.Context) error {
	h.Directory.Reset()
	if rs, ok := h.Store.(resetter); ok {
		return rs.Reset(ctx)
	}
	return nil
}

// LoadSeed resets the database and loads the demo data set.
func (h *Handler) LoadSeed(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	if err := h.loadDemoData(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded"})
}

func (h *Handler) loadDemoData(ctx context.Context) error {
	// An independent pharmacy: no chain, unclaimed, so its shifts go
	// straight to the platform tier.
	h.Directory.PutPharmacy(shifts.PharmacyContext{
		PharmacyID:       "ph-bayside",
		State:            "NSW",
		AutoPublishSwaps: true,
	})

	// A chain pharmacy claimed by an organization: full escalation path.
	fixed := decimal.NewFromInt(65)
	rt := shifts.RateFixed
	h.Directory.PutPharmacy(shifts.PharmacyContext{
		PharmacyID:       "ph-central",
		OrganizationID:   "org-medgroup",
		HasChain:         true,
		ClaimedByOrg:     true,
		State:            "VIC",
		DefaultRateType:  &rt,
		DefaultFixedRate: &fixed,
	})

	// Workers.
	h.Directory.PutWorker(
		shifts.PharmacyMembership{
			UserID:         "u-priya",
			PharmacyID:     "ph-central",
			EmploymentType: shifts.EmploymentFullTime,
			AwardLevel:     "PHARMACIST",
		},
		rates.WorkerProfile{AwardLevel: "PHARMACIST"},
	)
	h.Directory.PutWorker(
		shifts.PharmacyMembership{
			UserID:         "u-marco",
			PharmacyID:     "ph-central",
			EmploymentType: shifts.EmploymentCasual,
		},
		rates.WorkerProfile{ClassificationLevel: "level_2"},
	)
	h.Directory.PutWorker(
		shifts.PharmacyMembership{
			UserID:         "u-jess",
			PharmacyID:     "ph-bayside",
			EmploymentType: shifts.EmploymentPartTime,
		},
		rates.WorkerProfile{InternHalf: "intern_first_half"},
	)

	now := time.Now().UTC()
	anchor := shifts.DateOf(now.AddDate(0, 0, 7))
	until := anchor.AddDays(28)

	// A recurring pharmacist shift at the chain pharmacy.
	pharmacistShift := &shifts.Shift{
		PharmacyID:     "ph-central",
		PostedBy:       "u-owner-central",
		RoleNeeded:     shifts.RolePharmacist,
		EmploymentType: shifts.EmploymentFullTime,
		WorkloadTags:   []string{"dispensary", "vaccinations"},
		SingleUserOnly: true,
		RevealQuota:    3,
	}
	morning := &shifts.ShiftSlot{
		Date:             anchor,
		StartTime:        mustClock("09:00"),
		EndTime:          mustClock("17:00"),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Monday, time.Wednesday, time.Friday},
		RecurringEndDate: &until,
	}
	if _, err := h.Shifts.CreateShift(ctx, pharmacistShift, []*shifts.ShiftSlot{morning}); err != nil {
		return err
	}

	// A one-off assistant shift at the independent pharmacy with an owner
	// bonus on top of the award rate.
	bonus := decimal.NewFromInt(5)
	assistantShift := &shifts.Shift{
		PharmacyID:        "ph-bayside",
		PostedBy:          "u-owner-bayside",
		RoleNeeded:        shifts.RoleAssistant,
		EmploymentType:    shifts.EmploymentCasual,
		OwnerAdjustedRate: &bonus,
	}
	saturday := &shifts.ShiftSlot{
		Date:      nextWeekday(anchor, time.Saturday),
		StartTime: mustClock("08:00"),
		EndTime:   mustClock("14:00"),
	}
	if _, err := h.Shifts.CreateShift(ctx, assistantShift, []*shifts.ShiftSlot{saturday}); err != nil {
		return err
	}

	return nil
}

func mustClock(s string) shifts.ClockTime {
	ct, err := shifts.ParseClockTime(s)
	if err != nil {
		panic(err)
	}
	return ct
}

func nextWeekday(from shifts.Date, day time.Weekday) shifts.Date {
	d := from
	for d.Weekday() != day {
		d = d.AddDays(1)
	}
	return d
}
