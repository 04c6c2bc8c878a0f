package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locumbase/shift-engine/shifts"
	memstore "github.com/locumbase/shift-engine/shifts/store"
	"github.com/locumbase/shift-engine/workflow"
)

// newInterestFixture seeds a memory store with one assistant shift and one
// single-occurrence slot on Monday 2026-09-07.
func newInterestFixture(t *testing.T, revealQuota int) (*workflow.InterestService, *memstore.Memory, *shifts.Shift, *shifts.ShiftSlot) {
	t.Helper()
	store := memstore.NewMemory()

	shift := &shifts.Shift{
		ID:          "sh-1",
		PharmacyID:  "ph-1",
		PostedBy:    "u-owner",
		RoleNeeded:  shifts.RoleAssistant,
		RevealQuota: revealQuota,
		CreatedAt:   time.Now().UTC(),
	}
	require.NoError(t, store.SaveShift(context.Background(), shift))

	slot := &shifts.ShiftSlot{
		ID:        "sl-1",
		ShiftID:   shift.ID,
		Date:      shifts.NewDate(2026, time.September, 7),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(17, 0),
	}
	require.NoError(t, store.SaveSlot(context.Background(), slot))

	return workflow.NewInterestService(store, nil), store, shift, slot
}

func TestExpressInterestIsIdempotent(t *testing.T) {
	svc, store, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN a worker who already expressed interest in the whole shift
	first, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)

	// WHEN the same worker expresses interest again
	second, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)

	// THEN the existing interest is returned instead of a duplicate
	assert.Equal(t, first.ID, second.ID)
	all, err := store.InterestsByShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestExpressInterestSlotScoping(t *testing.T) {
	svc, _, shift, slot := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN a shift-level and a slot-level interest from the same worker
	whole, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)
	scoped, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, &slot.ID)
	require.NoError(t, err)

	// THEN they are distinct records
	assert.NotEqual(t, whole.ID, scoped.ID)
}

func TestExpressInterestRejectsForeignSlot(t *testing.T) {
	svc, store, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN a slot that belongs to a different shift
	other := &shifts.Shift{ID: "sh-2", PharmacyID: "ph-1", RoleNeeded: shifts.RoleAssistant}
	require.NoError(t, store.SaveShift(ctx, other))
	foreign := &shifts.ShiftSlot{
		ID:        "sl-foreign",
		ShiftID:   other.ID,
		Date:      shifts.NewDate(2026, time.September, 8),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(12, 0),
	}
	require.NoError(t, store.SaveSlot(ctx, foreign))

	// WHEN interest in the first shift names the foreign slot
	_, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, &foreign.ID)

	// THEN the mismatch is rejected
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrSlotNotInShift))
}

func TestListForPosterAnonymizesAtPlatformTier(t *testing.T) {
	svc, _, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN an independent unclaimed pharmacy, so the shift sits at the
	// platform tier
	tc := shifts.TierContext{}

	interest, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)

	// WHEN the poster lists interests before any reveal
	views, err := svc.ListForPoster(ctx, shift.ID, tc)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// THEN identity is withheld
	assert.Equal(t, workflow.AnonymousWorkerRef, views[0].WorkerRef)
	assert.False(t, views[0].Revealed)

	// WHEN the interest is revealed
	require.NoError(t, svc.Reveal(ctx, interest.ID))

	// THEN the worker id is shown
	views, err = svc.ListForPoster(ctx, shift.ID, tc)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "u-worker", views[0].WorkerRef)
	assert.True(t, views[0].Revealed)
}

func TestListForPosterShowsIdentityAtNarrowTiers(t *testing.T) {
	svc, _, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN an org-admin posting, so the shift starts at the narrowest tier
	tc := shifts.TierContext{OrgAdmin: true, HasChain: true, ClaimedByOrg: true}

	_, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)

	// WHEN the poster lists interests without a reveal
	views, err := svc.ListForPoster(ctx, shift.ID, tc)
	require.NoError(t, err)
	require.Len(t, views, 1)

	// THEN identity is visible anyway
	assert.Equal(t, "u-worker", views[0].WorkerRef)
}

func TestRevealQuotaIsEnforced(t *testing.T) {
	svc, store, shift, _ := newInterestFixture(t, 2)
	ctx := context.Background()

	// GIVEN three interested workers on a quota-2 shift
	var ids []shifts.InterestID
	for _, u := range []shifts.UserID{"u-a", "u-b", "u-c"} {
		in, err := svc.ExpressInterest(ctx, u, shift.ID, nil)
		require.NoError(t, err)
		ids = append(ids, in.ID)
	}

	// WHEN the poster reveals two and attempts a third
	require.NoError(t, svc.Reveal(ctx, ids[0]))
	require.NoError(t, svc.Reveal(ctx, ids[1]))
	err := svc.Reveal(ctx, ids[2])

	// THEN the third fails and the counter stops at the quota
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrRevealQuotaExceeded))
	sh, err := store.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, sh.RevealCount)

	// AND the failed reveal did not flip the interest
	in, err := store.GetInterest(ctx, ids[2])
	require.NoError(t, err)
	assert.False(t, in.Revealed)
}

func TestRevealTwiceSpendsQuotaOnce(t *testing.T) {
	svc, store, shift, _ := newInterestFixture(t, 1)
	ctx := context.Background()

	in, err := svc.ExpressInterest(ctx, "u-worker", shift.ID, nil)
	require.NoError(t, err)

	// WHEN the same interest is revealed twice
	require.NoError(t, svc.Reveal(ctx, in.ID))
	require.NoError(t, svc.Reveal(ctx, in.ID))

	// THEN only one reveal was counted
	sh, err := store.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, sh.RevealCount)
}

func TestZeroQuotaMeansUnlimitedReveals(t *testing.T) {
	svc, _, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	for _, u := range []shifts.UserID{"u-a", "u-b", "u-c", "u-d"} {
		in, err := svc.ExpressInterest(ctx, u, shift.ID, nil)
		require.NoError(t, err)
		require.NoError(t, svc.Reveal(ctx, in.ID))
	}
}

func TestRejectIsIdempotent(t *testing.T) {
	svc, store, _, slot := newInterestFixture(t, 0)
	ctx := context.Background()

	// WHEN the same occurrence is rejected twice
	require.NoError(t, svc.Reject(ctx, "u-worker", slot.ID, slot.Date))
	require.NoError(t, svc.Reject(ctx, "u-worker", slot.ID, slot.Date))

	// THEN exactly one rejection exists
	rejected, err := store.HasRejected(ctx, slot.ID, slot.Date, "u-worker")
	require.NoError(t, err)
	assert.True(t, rejected)
	all, err := store.RejectionsByUser(ctx, "u-worker")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestRejectRequiresARealOccurrence(t *testing.T) {
	svc, _, _, slot := newInterestFixture(t, 0)
	ctx := context.Background()

	// WHEN rejecting a date the single slot does not occur on
	err := svc.Reject(ctx, "u-worker", slot.ID, shifts.NewDate(2026, time.September, 8))

	// THEN the rejection is refused
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrNotAnOccurrence))
}

func TestOffersForFiltersRejectedAndAssigned(t *testing.T) {
	svc, store, shift, _ := newInterestFixture(t, 0)
	ctx := context.Background()

	// GIVEN a Monday/Wednesday slot over two weeks
	end := shifts.NewDate(2026, time.September, 18)
	recurring := &shifts.ShiftSlot{
		ID:               "sl-rec",
		ShiftID:          shift.ID,
		Date:             shifts.NewDate(2026, time.September, 7),
		StartTime:        shifts.NewClockTime(9, 0),
		EndTime:          shifts.NewClockTime(17, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Monday, time.Wednesday},
		RecurringEndDate: &end,
	}
	require.NoError(t, store.SaveSlot(ctx, recurring))

	// AND the worker already rejected the first Wednesday
	require.NoError(t, svc.Reject(ctx, "u-worker", recurring.ID, shifts.NewDate(2026, time.September, 9)))

	// AND someone else holds the second Monday
	require.NoError(t, store.PutAssignment(ctx, &shifts.ShiftSlotAssignment{
		ID:       "as-1",
		SlotID:   recurring.ID,
		SlotDate: shifts.NewDate(2026, time.September, 14),
		UserID:   "u-other",
	}))

	// WHEN offers are computed over the recurrence window
	w := shifts.Window{
		From: shifts.NewDate(2026, time.September, 8),
		To:   shifts.NewDate(2026, time.September, 18),
	}
	offers, err := svc.OffersFor(ctx, "u-worker", shift.ID, w)
	require.NoError(t, err)

	// THEN only the untaken, unrejected Wednesday remains
	require.Len(t, offers, 1)
	assert.Equal(t, recurring.ID, offers[0].SlotID)
	assert.True(t, offers[0].Date.Equal(shifts.NewDate(2026, time.September, 16)))
}
