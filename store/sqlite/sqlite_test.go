package sqlite

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locumbase/shift-engine/shifts"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedShift(t *testing.T, store *Store, id shifts.ShiftID) *shifts.Shift {
	t.Helper()
	sh := &shifts.Shift{
		ID:         id,
		PharmacyID: "ph-1",
		PostedBy:   "u-owner",
		RoleNeeded: shifts.RoleAssistant,
		CreatedAt:  time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveShift(context.Background(), sh))
	return sh
}

func seedSlot(t *testing.T, store *Store, id shifts.SlotID, shiftID shifts.ShiftID) *shifts.ShiftSlot {
	t.Helper()
	sl := &shifts.ShiftSlot{
		ID:        id,
		ShiftID:   shiftID,
		Date:      shifts.NewDate(2026, time.September, 5),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(17, 0),
	}
	require.NoError(t, store.SaveSlot(context.Background(), sl))
	return sl
}

func TestShiftRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fixed := shifts.RateFixed
	amount := decimal.RequireFromString("65.00")
	bonus := decimal.RequireFromString("5.50")
	ownerAt := time.Date(2026, 9, 10, 8, 0, 0, 0, time.UTC)
	platformAt := time.Date(2026, 9, 12, 8, 0, 0, 0, time.UTC)

	sh := &shifts.Shift{
		ID:                   "sh-full",
		PharmacyID:           "ph-1",
		PostedBy:             "u-owner",
		PostedByOrgAdmin:     true,
		RoleNeeded:           shifts.RolePharmacist,
		EmploymentType:       shifts.EmploymentCasual,
		WorkloadTags:         []string{"dispensary", "vaccination"},
		RateType:             &fixed,
		FixedRate:            &amount,
		OwnerAdjustedRate:    &bonus,
		EscalationLevel:      2,
		EscalateOwnerChainAt: &ownerAt,
		EscalatePlatformAt:   &platformAt,
		SingleUserOnly:       true,
		RevealQuota:          3,
		RevealCount:          1,
		CreatedAt:            time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, store.SaveShift(ctx, sh))

	got, err := store.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, sh.PharmacyID, got.PharmacyID)
	assert.True(t, got.PostedByOrgAdmin)
	assert.Equal(t, sh.RoleNeeded, got.RoleNeeded)
	assert.Equal(t, sh.WorkloadTags, got.WorkloadTags)
	require.NotNil(t, got.RateType)
	assert.Equal(t, fixed, *got.RateType)
	require.NotNil(t, got.FixedRate)
	assert.True(t, got.FixedRate.Equal(amount))
	require.NotNil(t, got.OwnerAdjustedRate)
	assert.True(t, got.OwnerAdjustedRate.Equal(bonus))
	assert.Equal(t, 2, got.EscalationLevel)
	require.NotNil(t, got.EscalateOwnerChainAt)
	assert.True(t, got.EscalateOwnerChainAt.Equal(ownerAt))
	assert.Nil(t, got.EscalateOrgChainAt)
	require.NotNil(t, got.EscalatePlatformAt)
	assert.True(t, got.EscalatePlatformAt.Equal(platformAt))
	assert.True(t, got.SingleUserOnly)
	assert.Equal(t, 3, got.RevealQuota)
	assert.Equal(t, 1, got.RevealCount)
}

func TestGetShiftNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetShift(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrShiftNotFound))
}

func TestSlotRoundTripRecurring(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")

	end := shifts.NewDate(2026, time.October, 2)
	sl := &shifts.ShiftSlot{
		ID:               "sl-rec",
		ShiftID:          sh.ID,
		Date:             shifts.NewDate(2026, time.September, 7),
		StartTime:        shifts.NewClockTime(6, 30),
		EndTime:          shifts.NewClockTime(14, 0),
		Recurring:        true,
		RecurringDays:    []time.Weekday{time.Monday, time.Friday},
		RecurringEndDate: &end,
	}
	require.NoError(t, store.SaveSlot(ctx, sl))

	got, err := store.GetSlot(ctx, sl.ID)
	require.NoError(t, err)
	assert.True(t, got.Date.Equal(sl.Date))
	assert.Equal(t, sl.StartTime, got.StartTime)
	assert.Equal(t, sl.EndTime, got.EndTime)
	assert.True(t, got.Recurring)
	assert.Equal(t, sl.RecurringDays, got.RecurringDays)
	require.NotNil(t, got.RecurringEndDate)
	assert.True(t, got.RecurringEndDate.Equal(end))
}

func TestSaveSlotRequiresShift(t *testing.T) {
	store := newTestStore(t)

	err := store.SaveSlot(context.Background(), &shifts.ShiftSlot{
		ID:        "sl-orphan",
		ShiftID:   "missing",
		Date:      shifts.NewDate(2026, time.September, 5),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(17, 0),
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrShiftNotFound))
}

func TestIncrementRevealCountIsRelative(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")

	// Concurrent increments must never lose an update.
	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.IncrementRevealCount(ctx, sh.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := store.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, n, got.RevealCount)
}

func TestSaveShiftUpsertKeepsRevealCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")

	_, err := store.IncrementRevealCount(ctx, sh.ID)
	require.NoError(t, err)

	// WHEN the shift row is re-saved from a stale in-memory copy
	sh.WorkloadTags = []string{"updated"}
	require.NoError(t, store.SaveShift(ctx, sh))

	// THEN the counter maintained by relative increments survives
	got, err := store.GetShift(ctx, sh.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RevealCount)
	assert.Equal(t, []string{"updated"}, got.WorkloadTags)
}

func TestAssignmentUniquePerOccurrence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")
	sl := seedSlot(t, store, "sl-1", sh.ID)

	a := &shifts.ShiftSlotAssignment{
		ID:       "as-1",
		SlotID:   sl.ID,
		SlotDate: sl.Date,
		UserID:   "u-priya",
		UnitRate: decimal.RequireFromString("33.50"),
		RateReason: shifts.RateReason{
			LookupKey:  "saturday",
			RoleKey:    "level_1",
			Employment: shifts.CategoryCasual,
			Source:     shifts.RateSourceAward,
		},
		AssignedBy: "u-owner",
		CreatedAt:  time.Now().UTC(),
	}
	require.NoError(t, store.PutAssignment(ctx, a))

	// WHEN a second row targets the same occurrence
	dup := *a
	dup.ID = "as-2"
	dup.UserID = "u-marco"
	err := store.PutAssignment(ctx, &dup)

	// THEN the unique index fires and names the current holder
	require.Error(t, err)
	var taken *shifts.OccurrenceTakenError
	require.True(t, errors.As(err, &taken))
	assert.Equal(t, shifts.UserID("u-priya"), taken.AssignedTo)

	// AND the stored snapshot is intact
	got, err := store.GetAssignment(ctx, sl.ID, sl.Date)
	require.NoError(t, err)
	assert.Equal(t, a.RateReason, got.RateReason)
	assert.True(t, got.UnitRate.Equal(a.UnitRate))
}

func TestPutAssignmentRequiresSlot(t *testing.T) {
	store := newTestStore(t)

	err := store.PutAssignment(context.Background(), &shifts.ShiftSlotAssignment{
		ID:       "as-orphan",
		SlotID:   "missing",
		SlotDate: shifts.NewDate(2026, time.September, 5),
		UserID:   "u-priya",
		UnitRate: decimal.Zero,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrSlotNotFound))
}

func TestRejectionUniquePerOccurrenceAndUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")
	sl := seedSlot(t, store, "sl-1", sh.ID)

	r := &shifts.ShiftRejection{
		ID:        "rj-1",
		SlotID:    sl.ID,
		SlotDate:  sl.Date,
		UserID:    "u-priya",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.SaveRejection(ctx, r))

	dup := *r
	dup.ID = "rj-2"
	err := store.SaveRejection(ctx, &dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrDuplicateRejection))

	// Same occurrence, different user is fine.
	other := *r
	other.ID = "rj-3"
	other.UserID = "u-marco"
	require.NoError(t, store.SaveRejection(ctx, &other))

	rejected, err := store.HasRejected(ctx, sl.ID, sl.Date, "u-priya")
	require.NoError(t, err)
	assert.True(t, rejected)
}

func TestPendingLeaveUniqueness(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")
	sl := seedSlot(t, store, "sl-1", sh.ID)
	require.NoError(t, store.PutAssignment(ctx, &shifts.ShiftSlotAssignment{
		ID:       "as-1",
		SlotID:   sl.ID,
		SlotDate: sl.Date,
		UserID:   "u-priya",
		UnitRate: decimal.Zero,
	}))

	lr := &shifts.LeaveRequest{
		ID:           "lv-1",
		AssignmentID: "as-1",
		UserID:       "u-priya",
		LeaveType:    shifts.LeaveSick,
		Status:       shifts.LeavePending,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.SaveLeave(ctx, lr))

	// A second pending row for the same (assignment, user, type) is blocked
	// by the partial unique index.
	dup := *lr
	dup.ID = "lv-2"
	err := store.SaveLeave(ctx, &dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrDuplicateLeave))

	// Once decided, the index no longer applies and a fresh request fits.
	decidedBy := shifts.UserID("u-owner")
	now := time.Now().UTC()
	lr.Status = shifts.LeaveApproved
	lr.DecidedBy = &decidedBy
	lr.DecidedAt = &now
	require.NoError(t, store.SaveLeave(ctx, lr))
	dup.ID = "lv-3"
	require.NoError(t, store.SaveLeave(ctx, &dup))

	exists, err := store.PendingLeaveExists(ctx, "as-1", "u-priya", shifts.LeaveSick)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWithTxRollsBackOnError(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := store.WithTx(ctx, func(tx shifts.Store) error {
		if err := tx.SaveShift(ctx, &shifts.Shift{
			ID:         "sh-tx",
			PharmacyID: "ph-1",
			PostedBy:   "u-owner",
			RoleNeeded: shifts.RoleAssistant,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, err = store.GetShift(ctx, "sh-tx")
	assert.True(t, errors.Is(err, shifts.ErrShiftNotFound))
}

func TestWithTxCommits(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	err := store.WithTx(ctx, func(tx shifts.Store) error {
		if err := tx.SaveShift(ctx, &shifts.Shift{
			ID:         "sh-tx",
			PharmacyID: "ph-1",
			PostedBy:   "u-owner",
			RoleNeeded: shifts.RoleAssistant,
			CreatedAt:  time.Now().UTC(),
		}); err != nil {
			return err
		}
		return tx.SaveSlot(ctx, &shifts.ShiftSlot{
			ID:        "sl-tx",
			ShiftID:   "sh-tx",
			Date:      shifts.NewDate(2026, time.September, 5),
			StartTime: shifts.NewClockTime(9, 0),
			EndTime:   shifts.NewClockTime(17, 0),
		})
	})
	require.NoError(t, err)

	slots, err := store.SlotsByShift(ctx, "sh-tx")
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestResetClearsEverything(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	sh := seedShift(t, store, "sh-1")
	seedSlot(t, store, "sl-1", sh.ID)

	require.NoError(t, store.Reset(ctx))

	all, err := store.ListShifts(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
	_, err = store.GetSlot(ctx, "sl-1")
	assert.True(t, errors.Is(err, shifts.ErrSlotNotFound))
}
