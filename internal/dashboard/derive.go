/*

This file runs the engine over a chain snapshot: one account overview per
staked position and one health score per pool. Derivation is pure with
respect to the snapshot and the supplied clock so it can be tested without
any I/O.

*/

package dashboard

import (
	"time"

	"github.com/stakewatch/stakewatch/internal/engine"
	"github.com/stakewatch/stakewatch/internal/types"
)

// derivedView is the complete output of one derivation pass.
type derivedView struct {
	Overviews  []types.AccountOverview
	Healths    []types.PoolHealth
	ReadyCount int
}

// deriveAll derives every account overview and pool health from one
// snapshot at the given instant.
func deriveAll(snapshot *types.ChainSnapshot, params types.EngineParameters, now time.Time) *derivedView {
	view := &derivedView{
		Overviews: make([]types.AccountOverview, 0, len(snapshot.Positions)),
		Healths:   make([]types.PoolHealth, 0, len(snapshot.Pools)),
	}

	for _, pool := range snapshot.Pools {
		health := engine.ScorePoolHealth(pool.RewardPool, pool.TotalStakedQuantity, params)
		health.PoolID = pool.PoolID
		view.Healths = append(view.Healths, health)
	}

	for _, position := range snapshot.Positions {
		overview := deriveOverview(snapshot, position, params, now)
		if overview.Cooldown.IsReady {
			view.ReadyCount++
		}
		view.Overviews = append(view.Overviews, overview)
	}

	return view
}

// deriveOverview builds the full dashboard view for a single position.
// Missing pools and unknown tiers degrade to empty sections rather than
// failing the whole refresh.
func deriveOverview(snapshot *types.ChainSnapshot, position types.StakedPosition, params types.EngineParameters, now time.Time) types.AccountOverview {
	overview := types.AccountOverview{
		PoolID:    position.PoolID,
		Owner:     position.Owner,
		DerivedAt: now,
	}

	pool := snapshot.PoolByID(position.PoolID)

	// Tier progress derives from the live pool totals, not the tier the
	// contract recorded at stake time; the two can disagree between
	// contract-side rebalances.
	if pool != nil {
		overview.Tier = engine.ResolveTier(position.StakedQuantity, pool.TotalStakedQuantity, snapshot.Tiers)
	}

	// Reward weight follows the contract-recorded tier: that is what the
	// contract pays out on. Fall back to the resolved tier when the
	// recorded ID no longer exists in the ladder.
	weight := 0.0
	if recorded := engine.FindTierByID(snapshot.Tiers, position.TierID); recorded != nil {
		weight = recorded.Weight
	} else if overview.Tier != nil {
		weight = overview.Tier.CurrentTier.Weight
	}

	if pool != nil {
		overview.WeightedShare = engine.WeightedShare(position.StakedQuantity, weight, pool.TotalStakedWeight)

		accruedSeconds := int64(0)
		if !position.LastClaimedAt.IsZero() && now.After(position.LastClaimedAt) {
			accruedSeconds = int64(now.Sub(position.LastClaimedAt).Seconds())
		}
		overview.AccruedReward = engine.ProjectReward(*pool, overview.WeightedShare, float64(accruedSeconds))
		overview.ProjectedReward = engine.ProjectReward(*pool, overview.WeightedShare, float64(params.ProjectionWindowSeconds))

		health := engine.ScorePoolHealth(pool.RewardPool, pool.TotalStakedQuantity, params)
		health.PoolID = pool.PoolID
		overview.Health = health
	} else {
		overview.Health = types.PoolHealth{PoolID: position.PoolID, HealthPercent: 0, RiskLevel: types.RiskHigh}
	}

	overview.Cooldown = engine.EvaluateCooldown(
		position.CooldownEndAt,
		snapshot.Config.CooldownDurationSeconds,
		now,
	)

	return overview
}
