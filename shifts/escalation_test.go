package shifts_test

import (
	"errors"
	"testing"

	"github.com/locumbase/shift-engine/shifts"
)

func tiersEqual(got, want []shifts.Tier) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// =============================================================================
// TIER PATH DERIVATION
// =============================================================================

func TestTierPath_OrgAdminGetsFullPath(t *testing.T) {
	// GIVEN: The posting user administers the organization
	// WHEN: Computing the path, regardless of pharmacy facts
	// THEN: All five tiers, narrowest first

	got := shifts.TierPath(shifts.TierContext{OrgAdmin: true})
	want := []shifts.Tier{
		shifts.TierFullPartTime, shifts.TierLocumCasual,
		shifts.TierOwnerChain, shifts.TierOrgChain, shifts.TierPlatform,
	}
	if !tiersEqual(got, want) {
		t.Errorf("expected full path, got %v", got)
	}
}

func TestTierPath_IndependentUnclaimedIsPlatformOnly(t *testing.T) {
	// GIVEN: A pharmacy with no chain and no claiming organization
	// WHEN: Computing the path
	// THEN: Platform only; there is no internal audience to escalate through

	got := shifts.TierPath(shifts.TierContext{})
	if !tiersEqual(got, []shifts.Tier{shifts.TierPlatform}) {
		t.Errorf("expected platform-only path, got %v", got)
	}
}

func TestTierPath_ChainOnly(t *testing.T) {
	got := shifts.TierPath(shifts.TierContext{HasChain: true})
	want := []shifts.Tier{
		shifts.TierFullPartTime, shifts.TierLocumCasual,
		shifts.TierOwnerChain, shifts.TierPlatform,
	}
	if !tiersEqual(got, want) {
		t.Errorf("expected chain path without org tier, got %v", got)
	}
}

func TestTierPath_ClaimedOnly(t *testing.T) {
	got := shifts.TierPath(shifts.TierContext{ClaimedByOrg: true})
	want := []shifts.Tier{
		shifts.TierFullPartTime, shifts.TierLocumCasual,
		shifts.TierOrgChain, shifts.TierPlatform,
	}
	if !tiersEqual(got, want) {
		t.Errorf("expected claimed path without owner-chain tier, got %v", got)
	}
}

func TestTierPath_ChainAndClaimed(t *testing.T) {
	got := shifts.TierPath(shifts.TierContext{HasChain: true, ClaimedByOrg: true})
	want := []shifts.Tier{
		shifts.TierFullPartTime, shifts.TierLocumCasual,
		shifts.TierOwnerChain, shifts.TierOrgChain, shifts.TierPlatform,
	}
	if !tiersEqual(got, want) {
		t.Errorf("expected full path, got %v", got)
	}
}

// =============================================================================
// TIER SELECTION
// =============================================================================

func TestSelectTier_ValidTarget(t *testing.T) {
	// GIVEN: A new shift at the narrowest tier on a chain path
	// WHEN: Selecting OWNER_CHAIN
	// THEN: The stored index moves to the target's position

	s := &shifts.Shift{}
	tc := shifts.TierContext{HasChain: true}

	if err := shifts.SelectTier(s, tc, shifts.TierOwnerChain); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := shifts.CurrentTier(s, tc); got != shifts.TierOwnerChain {
		t.Errorf("expected OWNER_CHAIN, got %s", got)
	}
}

func TestSelectTier_TargetNotOnPath(t *testing.T) {
	// GIVEN: An independent unclaimed pharmacy (platform-only path)
	// WHEN: Selecting ORG_CHAIN
	// THEN: TierError wrapping ErrTierNotInPath; the shift is unchanged

	s := &shifts.Shift{}
	err := shifts.SelectTier(s, shifts.TierContext{}, shifts.TierOrgChain)

	if !errors.Is(err, shifts.ErrTierNotInPath) {
		t.Fatalf("expected ErrTierNotInPath, got %v", err)
	}
	var te *shifts.TierError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TierError, got %T", err)
	}
	if s.EscalationLevel != 0 {
		t.Errorf("failed selection must not move the level, got %d", s.EscalationLevel)
	}
}

func TestSelectTier_ReselectCurrentIsNoop(t *testing.T) {
	s := &shifts.Shift{}
	tc := shifts.TierContext{HasChain: true, ClaimedByOrg: true}

	if err := shifts.SelectTier(s, tc, shifts.TierLocumCasual); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := shifts.SelectTier(s, tc, shifts.TierLocumCasual); err != nil {
		t.Fatalf("re-selecting the current tier must succeed: %v", err)
	}
	if s.EscalationLevel != 1 {
		t.Errorf("expected level 1, got %d", s.EscalationLevel)
	}
}

// =============================================================================
// CURRENT TIER UNDER CONTEXT CHANGES
// =============================================================================

func TestCurrentTier_PathShrankBelowStoredIndex(t *testing.T) {
	// GIVEN: A shift escalated to ORG_CHAIN (index 3) on a full path
	// WHEN: The organization unclaims the pharmacy and the path shrinks
	// THEN: The shift reads as the widest tier of the new path

	s := &shifts.Shift{}
	full := shifts.TierContext{HasChain: true, ClaimedByOrg: true}
	if err := shifts.SelectTier(s, full, shifts.TierOrgChain); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	shrunk := shifts.TierContext{} // platform-only
	if got := shifts.CurrentTier(s, shrunk); got != shifts.TierPlatform {
		t.Errorf("expected clamp to PLATFORM, got %s", got)
	}
}

func TestCurrentTier_FreshShiftStartsNarrowest(t *testing.T) {
	s := &shifts.Shift{}
	tc := shifts.TierContext{HasChain: true}
	if got := shifts.CurrentTier(s, tc); got != shifts.TierFullPartTime {
		t.Errorf("expected FULL_PART_TIME, got %s", got)
	}
}

func TestContextFor(t *testing.T) {
	pc := shifts.PharmacyContext{PharmacyID: "ph-1", HasChain: true, ClaimedByOrg: true}
	tc := shifts.ContextFor(pc, true)

	if !tc.OrgAdmin || !tc.HasChain || !tc.ClaimedByOrg {
		t.Errorf("context facts not carried over: %+v", tc)
	}
}
