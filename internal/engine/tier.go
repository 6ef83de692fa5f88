/*

This file contains the tier resolver: given an account's stake, the pool
total, and the tier table, it derives which reward band the account occupies
and how far through the band it has progressed.

*/

package engine

import (
	"errors"
	"fmt"
	"sort"

	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
	"github.com/stakewatch/stakewatch/internal/utils"
)

var tierLogger = logger.GetForComponent("tier_resolver")

var (
	ErrNoTiers                = errors.New("tier table is empty")
	ErrNonMonotonicThresholds = errors.New("tier thresholds must be unique and ascending")
	ErrDecreasingTierWeight   = errors.New("tier weight must not decrease as the threshold increases")
	ErrThresholdOutOfRange    = errors.New("tier threshold must be within (0, 100]")
	ErrNonPositiveTierWeight  = errors.New("tier weight must be positive")
)

// ResolveTier derives the tier state for one account.
//
// stakedPercent is the account's share of the pool total, clamped to
// [0, 100]. The account occupies the first tier (ascending by threshold)
// whose StakedUpToPercent >= stakedPercent: a share landing exactly on a
// boundary resolves into the containing band, not the next one up. When the
// share exceeds every threshold the account holds the highest tier with full
// progress and no next tier.
//
// Returns nil when the pool total is zero: no tier is resolvable without a
// denominator. That is a defined degenerate case, not an error.
func ResolveTier(staked, total types.TokenAmount, tiers []types.TierDefinition) *types.TierProgress {
	if len(tiers) == 0 {
		tierLogger.Debug().Msg("No tier definitions provided, tier unresolvable")
		return nil
	}
	if total.Amount <= 0 {
		tierLogger.Debug().
			Float64("totalStaked", total.Amount).
			Msg("Pool total is zero, tier unresolvable")
		return nil
	}

	stakedPercent := utils.ClampPercent(staked.Amount / total.Amount * 100)

	sorted := sortedByThreshold(tiers)

	idx := -1
	for i, tier := range sorted {
		if tier.StakedUpToPercent >= stakedPercent {
			idx = i
			break
		}
	}
	if idx == -1 {
		// Above every threshold: terminal state in the highest band.
		idx = len(sorted) - 1
	}

	current := sorted[idx]

	var prev, next *types.TierDefinition
	lowerBound := 0.0 // Virtual zero-threshold floor below the first tier
	if idx > 0 {
		p := sorted[idx-1]
		prev = &p
		lowerBound = p.StakedUpToPercent
	}
	if idx < len(sorted)-1 {
		n := sorted[idx+1]
		next = &n
	}

	progress := 100.0
	if band := current.StakedUpToPercent - lowerBound; band > 0 {
		progress = utils.ClampPercent((stakedPercent - lowerBound) / band * 100)
	}
	if stakedPercent > current.StakedUpToPercent {
		// Terminal state beyond the last threshold.
		progress = 100.0
	}

	result := &types.TierProgress{
		CurrentTier:            current,
		PrevTier:               prev,
		NextTier:               next,
		ProgressPercent:        progress,
		CurrentStakedAmount:    staked.Amount,
		RequiredForCurrentTier: lowerBound / 100 * total.Amount,
	}
	if next != nil {
		// Entering the next band means passing the current band's ceiling.
		result.RequiredForNextTier = current.StakedUpToPercent / 100 * total.Amount
	}

	result.SafeUnstakeAmount = CalculateSafeUnstake(staked, total, tiers, current)

	return result
}

// ValidateTierDefinitions checks the configuration invariants the resolver
// relies on but deliberately does not re-check per call: unique ascending
// thresholds within (0, 100] and non-decreasing positive weights. Intended
// for configuration load and tests, not the render path.
func ValidateTierDefinitions(tiers []types.TierDefinition) error {
	if len(tiers) == 0 {
		return ErrNoTiers
	}

	sorted := sortedByThreshold(tiers)

	prevThreshold := 0.0
	prevWeight := 0.0
	for _, tier := range sorted {
		if tier.StakedUpToPercent <= 0 || tier.StakedUpToPercent > 100 {
			return fmt.Errorf("%w: tier %q has threshold %.4f", ErrThresholdOutOfRange, tier.TierID, tier.StakedUpToPercent)
		}
		if tier.StakedUpToPercent <= prevThreshold {
			return fmt.Errorf("%w: tier %q repeats or lowers threshold %.4f", ErrNonMonotonicThresholds, tier.TierID, tier.StakedUpToPercent)
		}
		if tier.Weight <= 0 {
			return fmt.Errorf("%w: tier %q has weight %.4f", ErrNonPositiveTierWeight, tier.TierID, tier.Weight)
		}
		if tier.Weight < prevWeight {
			return fmt.Errorf("%w: tier %q drops weight from %.4f to %.4f", ErrDecreasingTierWeight, tier.TierID, prevWeight, tier.Weight)
		}
		prevThreshold = tier.StakedUpToPercent
		prevWeight = tier.Weight
	}

	if sorted[len(sorted)-1].StakedUpToPercent != 100 {
		tierLogger.Warn().
			Float64("topThreshold", sorted[len(sorted)-1].StakedUpToPercent).
			Msg("Top tier threshold is below 100, shares above it resolve to the highest band")
	}

	return nil
}

// FindTierByID returns the definition matching tierID, or nil when the table
// has no such tier. Callers fall back to a known default tier on nil rather
// than failing.
func FindTierByID(tiers []types.TierDefinition, tierID string) *types.TierDefinition {
	for i := range tiers {
		if tiers[i].TierID == tierID {
			return &tiers[i]
		}
	}
	return nil
}

func sortedByThreshold(tiers []types.TierDefinition) []types.TierDefinition {
	sorted := make([]types.TierDefinition, len(tiers))
	copy(sorted, tiers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].StakedUpToPercent < sorted[j].StakedUpToPercent
	})
	return sorted
}
