/*

Tier configuration and the derived per-account tier state.

Tier definitions partition the [0,100] range of "percent of total pool stake
held by one account". They are fetched once per session and never mutate.

*/

package types

// TierDefinition is one reward band from the contract's tier table.
// Thresholds are unique and ascending; Weight never decreases as
// StakedUpToPercent increases. That invariant belongs to whoever populates
// the table and is checked at configuration load, not on the hot path.
type TierDefinition struct {
	TierID            string  `json:"tier_id"`              // e.g., "silver"
	DisplayName       string  `json:"display_name"`         // e.g., "Silver"
	Weight            float64 `json:"weight"`               // Reward multiplier for the band
	StakedUpToPercent float64 `json:"staked_up_to_percent"` // Inclusive upper bound of the band
}

// TierProgress is the derived tier state for one account in one pool.
// It is recomputed on every snapshot refresh and never patched in place.
type TierProgress struct {
	CurrentTier TierDefinition  `json:"current_tier"`
	NextTier    *TierDefinition `json:"next_tier,omitempty"`
	PrevTier    *TierDefinition `json:"prev_tier,omitempty"`

	// ProgressPercent measures progress within the current band, not overall
	// pool share, so a UI progress bar fills per-tier.
	ProgressPercent float64 `json:"progress_percent"`

	CurrentStakedAmount    float64 `json:"current_staked_amount"`
	RequiredForCurrentTier float64 `json:"required_for_current_tier"`
	RequiredForNextTier    float64 `json:"required_for_next_tier,omitempty"`

	// SafeUnstakeAmount is the maximum withdrawal that keeps the account in
	// its current tier, accounting for the pool total shrinking too.
	SafeUnstakeAmount float64 `json:"safe_unstake_amount"`
}
