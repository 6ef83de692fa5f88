/*

This file contains the reward/emission projector: how much of a pool's
time-based emission a weighted share accrues over a window.

*/

package engine

import (
	"math"

	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
	"github.com/stakewatch/stakewatch/internal/utils"
)

var rewardLogger = logger.GetForComponent("reward_projector")

// WeightedShare computes an account's share of pool emissions:
// staked amount times tier weight, over the pool's total staked weight
// (a dimensionless sum of stake * weight across all positions).
// Degenerate inputs (empty pool, zero weight) yield 0; the result is clamped
// to [0, 1].
func WeightedShare(staked types.TokenAmount, tierWeight, totalWeight float64) float64 {
	if staked.Amount <= 0 || tierWeight <= 0 || totalWeight <= 0 {
		return 0
	}
	if math.IsNaN(tierWeight) || math.IsInf(tierWeight, 0) {
		rewardLogger.Debug().Float64("tierWeight", tierWeight).Msg("Non-finite tier weight, share is 0")
		return 0
	}
	return utils.Clamp(staked.Amount*tierWeight/totalWeight, 0, 1)
}

// ProjectReward projects the reward a weighted share accrues from pool
// emissions over elapsedSeconds.
//
// Pool-wide emission over the window is EmissionRate / EmissionUnitSeconds *
// elapsedSeconds; the account receives its weighted share of that. The result
// is rounded half-up to the reward token's own precision so the advisory
// number matches the contract's fixed-point payout instead of systematically
// overstating it. Negative windows clamp to zero; there are no retroactive
// negative rewards.
//
// elapsedSeconds is typically now - lastClaimedAt for "accrued so far", or a
// forward-looking constant for "projected".
func ProjectReward(pool types.PoolSnapshot, weightedShare, elapsedSeconds float64) types.TokenAmount {
	zero := types.TokenAmount{
		Amount:     0,
		SymbolCode: pool.RewardPool.SymbolCode,
		Decimals:   pool.RewardPool.Decimals,
	}

	if elapsedSeconds < 0 {
		elapsedSeconds = 0
	}
	if pool.EmissionUnitSeconds <= 0 || pool.EmissionRate <= 0 {
		return zero
	}
	if weightedShare <= 0 || math.IsNaN(weightedShare) || math.IsInf(weightedShare, 0) {
		return zero
	}

	emissionPerSecond := pool.EmissionRate / float64(pool.EmissionUnitSeconds)
	raw := emissionPerSecond * elapsedSeconds * weightedShare
	if raw < 0 || math.IsNaN(raw) || math.IsInf(raw, 0) {
		rewardLogger.Debug().
			Uint64("poolID", uint64(pool.PoolID)).
			Float64("raw", raw).
			Msg("Projection produced a non-finite or negative value, clamping to zero")
		return zero
	}

	return types.TokenAmount{
		Amount:     utils.RoundToPrecision(raw, pool.RewardPool.Decimals),
		SymbolCode: pool.RewardPool.SymbolCode,
		Decimals:   pool.RewardPool.Decimals,
	}
}
