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

func TestCreateShiftPersistsShiftAndSlots(t *testing.T) {
	store := memstore.NewMemory()
	svc := workflow.NewShiftService(store, nil)
	ctx := context.Background()

	end := shifts.NewDate(2026, time.October, 2)
	created, err := svc.CreateShift(ctx, &shifts.Shift{
		PharmacyID: "ph-1",
		PostedBy:   "u-owner",
		RoleNeeded: shifts.RoleTechnician,
	}, []*shifts.ShiftSlot{
		{
			Date:      shifts.NewDate(2026, time.September, 5),
			StartTime: shifts.NewClockTime(9, 0),
			EndTime:   shifts.NewClockTime(13, 0),
		},
		{
			Date:             shifts.NewDate(2026, time.September, 7),
			StartTime:        shifts.NewClockTime(9, 0),
			EndTime:          shifts.NewClockTime(17, 0),
			Recurring:        true,
			RecurringDays:    []time.Weekday{time.Monday},
			RecurringEndDate: &end,
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 0, created.EscalationLevel)

	slots, err := store.SlotsByShift(ctx, created.ID)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
	for _, sl := range slots {
		assert.Equal(t, created.ID, sl.ShiftID)
	}
}

func TestCreateShiftRejectsInvalidInputAtomically(t *testing.T) {
	store := memstore.NewMemory()
	svc := workflow.NewShiftService(store, nil)
	ctx := context.Background()

	// GIVEN a valid shift with one valid and one zero-length slot
	_, err := svc.CreateShift(ctx, &shifts.Shift{
		PharmacyID: "ph-1",
		RoleNeeded: shifts.RoleAssistant,
	}, []*shifts.ShiftSlot{
		{
			Date:      shifts.NewDate(2026, time.September, 5),
			StartTime: shifts.NewClockTime(9, 0),
			EndTime:   shifts.NewClockTime(13, 0),
		},
		{
			Date:      shifts.NewDate(2026, time.September, 6),
			StartTime: shifts.NewClockTime(9, 0),
			EndTime:   shifts.NewClockTime(9, 0),
		},
	})

	// THEN the whole creation fails and nothing was written
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrValidation))
	all, err := store.ListShifts(ctx, "ph-1")
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCreateShiftRequiresSlots(t *testing.T) {
	svc := workflow.NewShiftService(memstore.NewMemory(), nil)

	_, err := svc.CreateShift(context.Background(), &shifts.Shift{
		PharmacyID: "ph-1",
		RoleNeeded: shifts.RoleAssistant,
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrValidation))
}

func TestEscalatePersistsSelectedTier(t *testing.T) {
	store := memstore.NewMemory()
	svc := workflow.NewShiftService(store, nil)
	ctx := context.Background()

	created, err := svc.CreateShift(ctx, &shifts.Shift{
		PharmacyID: "ph-1",
		RoleNeeded: shifts.RoleAssistant,
	}, []*shifts.ShiftSlot{{
		Date:      shifts.NewDate(2026, time.September, 5),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(13, 0),
	}})
	require.NoError(t, err)

	tc := shifts.TierContext{HasChain: true}

	// WHEN escalating to the owner-chain tier
	after, err := svc.Escalate(ctx, created.ID, shifts.TierOwnerChain, tc)
	require.NoError(t, err)
	assert.Equal(t, shifts.TierOwnerChain, shifts.CurrentTier(after, tc))

	stored, err := store.GetShift(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, after.EscalationLevel, stored.EscalationLevel)
}

func TestEscalateRejectsTierOutsidePath(t *testing.T) {
	store := memstore.NewMemory()
	svc := workflow.NewShiftService(store, nil)
	ctx := context.Background()

	created, err := svc.CreateShift(ctx, &shifts.Shift{
		PharmacyID: "ph-1",
		RoleNeeded: shifts.RoleAssistant,
	}, []*shifts.ShiftSlot{{
		Date:      shifts.NewDate(2026, time.September, 5),
		StartTime: shifts.NewClockTime(9, 0),
		EndTime:   shifts.NewClockTime(13, 0),
	}})
	require.NoError(t, err)

	// WHEN escalating to the org-chain tier without a claiming organization
	_, err = svc.Escalate(ctx, created.ID, shifts.TierOrgChain, shifts.TierContext{HasChain: true})

	// THEN the selection is rejected and the stored level is unchanged
	require.Error(t, err)
	assert.True(t, errors.Is(err, shifts.ErrTierNotInPath))
	stored, err := store.GetShift(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.EscalationLevel)
}
