/*
escalation.go - Visibility tier path and transitions

PURPOSE:
  A shift is visible to a widening audience over its life. This file
  computes the ordered tier path for a posting context and validates
  explicit tier transitions against it.

TIER PATH RULES (narrowest to widest):
  1. Organization admins see the full path, including the staff-only tiers,
     even without an owning chain or claim.
  2. No chain and not claimed: the path is [PLATFORM] only - there is no
     narrower in-house audience to offer the shift to first.
  3. Otherwise: [FULL_PART_TIME, LOCUM_CASUAL], plus OWNER_CHAIN if a chain
     exists, plus ORG_CHAIN if claimed, always terminating in PLATFORM.

DERIVED, NOT STORED:
  Only the context facts (chain?, claimed?, org-admin?) and the selected
  index persist. The path is recomputed on demand, so a context change
  after creation never leaves a stale stored path. Stored indices are
  re-validated against the fresh path on every transition and clamped on
  read.

TRANSITIONS:
  Explicit only. Scheduled escalation timestamps on the Shift are inputs an
  external scheduler uses to invoke a transition; nothing here advances a
  tier on its own. Re-selecting the current tier is a no-op.

SEE ALSO:
  - types.go: Shift.EscalationLevel, PharmacyContext
*/
package shifts

// Tier is one stage of a shift's visibility policy.
type Tier string

const (
	TierFullPartTime Tier = "FULL_PART_TIME"
	TierLocumCasual  Tier = "LOCUM_CASUAL"
	TierOwnerChain   Tier = "OWNER_CHAIN"
	TierOrgChain     Tier = "ORG_CHAIN"
	TierPlatform     Tier = "PLATFORM"
)

// TierContext carries the three boolean facts the path depends on.
type TierContext struct {
	OrgAdmin     bool
	HasChain     bool
	ClaimedByOrg bool
}

// ContextFor derives a TierContext from a pharmacy profile and whether the
// posting user is an organization administrator.
func ContextFor(pc PharmacyContext, postingUserIsOrgAdmin bool) TierContext {
	return TierContext{
		OrgAdmin:     postingUserIsOrgAdmin,
		HasChain:     pc.HasChain,
		ClaimedByOrg: pc.ClaimedByOrg,
	}
}

// TierPath returns the ordered list of tiers available to a shift posted in
// the given context, narrowest audience first.
func TierPath(tc TierContext) []Tier {
	if tc.OrgAdmin {
		return []Tier{TierFullPartTime, TierLocumCasual, TierOwnerChain, TierOrgChain, TierPlatform}
	}
	if !tc.HasChain && !tc.ClaimedByOrg {
		// No in-house audience: start at maximum visibility.
		return []Tier{TierPlatform}
	}
	path := []Tier{TierFullPartTime, TierLocumCasual}
	if tc.HasChain {
		path = append(path, TierOwnerChain)
	}
	if tc.ClaimedByOrg {
		path = append(path, TierOrgChain)
	}
	return append(path, TierPlatform)
}

// CurrentTier resolves the shift's selected tier against the freshly
// computed path. If a context change shrank the path below the stored
// index, the widest tier of the new path is reported.
func CurrentTier(s *Shift, tc TierContext) Tier {
	path := TierPath(tc)
	if s.EscalationLevel >= 0 && s.EscalationLevel < len(path) {
		return path[s.EscalationLevel]
	}
	return path[len(path)-1]
}

// SelectTier validates the target tier against the computed path and, when
// valid, updates the shift's selected index. Re-selecting the current tier
// is a no-op; a tier outside the path is rejected.
func SelectTier(s *Shift, tc TierContext, target Tier) error {
	path := TierPath(tc)
	for i, t := range path {
		if t == target {
			s.EscalationLevel = i
			return nil
		}
	}
	return &TierError{Selected: target, Path: path}
}
