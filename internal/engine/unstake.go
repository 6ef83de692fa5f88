/*

This file contains the safe-unstake calculator: the maximum amount an account
can withdraw while staying at or above the lower boundary of its current tier
band.

*/

package engine

import (
	"github.com/stakewatch/stakewatch/internal/types"
	"github.com/stakewatch/stakewatch/internal/utils"
)

// CalculateSafeUnstake computes the largest withdrawal x that keeps the
// account in its current tier.
//
// Unstaking reduces both the account's stake and the pool total, so this is
// not a linear subtraction. The tier condition after withdrawing x is
//
//	(s - x) / (T - x) >= p        where p = lower bound / 100
//
// which solves to x <= (s - p*T) / (1 - p). The shrinking denominator
// loosens the required absolute amount, so the naive s - requiredForTier
// understates what is safe. Results are clamped to [0, s]; an account at or
// below its tier floor gets 0, never an error.
func CalculateSafeUnstake(staked, total types.TokenAmount, tiers []types.TierDefinition, current types.TierDefinition) float64 {
	if staked.Amount <= 0 || total.Amount <= 0 {
		return 0
	}

	lowerBound := tierLowerBound(tiers, current)
	p := lowerBound / 100

	if p <= 0 {
		// Bottom band has no floor: the entire stake is safe.
		return staked.Amount
	}
	if p >= 1 {
		return 0
	}

	maxWithdraw := (staked.Amount - p*total.Amount) / (1 - p)
	return utils.Clamp(maxWithdraw, 0, staked.Amount)
}

// tierLowerBound returns the threshold of the band directly below current,
// or 0 when current is the lowest band.
func tierLowerBound(tiers []types.TierDefinition, current types.TierDefinition) float64 {
	lower := 0.0
	for _, tier := range sortedByThreshold(tiers) {
		if tier.StakedUpToPercent >= current.StakedUpToPercent {
			break
		}
		lower = tier.StakedUpToPercent
	}
	return lower
}
