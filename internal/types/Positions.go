/*

This file contains the per-account stake record and the derived states the
dashboard computes from it on every refresh.

*/

package types

import "time"

// StakedPosition is one (pool, owner) stake record from the contract.
// Created on first stake, updated on stake/unstake/claim, and conceptually
// removed once the staked quantity reaches zero.
type StakedPosition struct {
	PoolID         PoolID      `json:"pool_id"`
	Owner          string      `json:"owner"` // Account name on chain
	StakedQuantity TokenAmount `json:"staked_quantity"`
	TierID         string      `json:"tier_id"` // Tier recorded by the contract at last action
	LastClaimedAt  time.Time   `json:"last_claimed_at"`
	CooldownEndAt  time.Time   `json:"cooldown_end_at"`
}

// CooldownPhase names the three states of the action cooldown. The machine
// advances purely as a function of wall-clock time.
type CooldownPhase string

const (
	CooldownIdle    CooldownPhase = "idle"    // No cooldown window set, actions allowed
	CooldownCooling CooldownPhase = "cooling" // now < cooldownEndAt
	CooldownReady   CooldownPhase = "ready"   // now >= cooldownEndAt
)

// CooldownState is the derived cooldown view for one position at one instant.
type CooldownState struct {
	Phase            CooldownPhase `json:"phase"`
	IsReady          bool          `json:"is_ready"`
	ProgressPercent  float64       `json:"progress_percent"`
	SecondsRemaining int64         `json:"seconds_remaining"`
}

// AccountOverview is the full derived record for one position: everything the
// presentation layer renders for a connected wallet. Rebuilt from scratch on
// every refresh cycle.
type AccountOverview struct {
	PoolID PoolID `json:"pool_id"`
	Owner  string `json:"owner"`

	Tier     *TierProgress `json:"tier,omitempty"` // nil when the pool total is zero
	Cooldown CooldownState `json:"cooldown"`
	Health   PoolHealth    `json:"health"`

	AccruedReward   TokenAmount `json:"accrued_reward"`   // Since last claim
	ProjectedReward TokenAmount `json:"projected_reward"` // Over the configured forward window

	WeightedShare float64   `json:"weighted_share"` // stake * tier weight / pool total weight
	DerivedAt     time.Time `json:"derived_at"`
}
