/*

This file contains the pool health scorer: a relative measure of reward
runway versus stake size, used to advise claim timing.

*/

package engine

import (
	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
	"github.com/stakewatch/stakewatch/internal/utils"
)

var healthLogger = logger.GetForComponent("pool_health")

// ScorePoolHealth computes a 0-100 health percentage and the tri-state risk
// classification for one pool.
//
// healthPercent = rewardPool / (totalStaked + rewardPool) * 100, clamped to
// [0, 100]. The score is reward runway relative to stake size, not an
// absolute reserve count. The risk bands come from params so operators can
// retune them without touching the formula.
func ScorePoolHealth(rewardPool, totalStaked types.TokenAmount, params types.EngineParameters) types.PoolHealth {
	denominator := totalStaked.Amount + rewardPool.Amount
	if denominator <= 0 {
		healthLogger.Debug().
			Float64("rewardPool", rewardPool.Amount).
			Float64("totalStaked", totalStaked.Amount).
			Msg("Empty pool, scoring as high risk")
		return types.PoolHealth{HealthPercent: 0, RiskLevel: types.RiskHigh}
	}

	healthPercent := utils.ClampPercent(rewardPool.Amount / denominator * 100)

	risk := types.RiskHigh
	switch {
	case healthPercent >= params.LowRiskMinHealthPercent:
		risk = types.RiskLow
	case healthPercent >= params.MediumRiskMinHealthPercent:
		risk = types.RiskMedium
	}

	return types.PoolHealth{HealthPercent: healthPercent, RiskLevel: risk}
}
