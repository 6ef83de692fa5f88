package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/stakewatch/stakewatch/internal/types"
)

// threeTiers is the reference table: 0-1% at weight 1.0, 1-5% at 1.5,
// 5-100% at 2.0.
func threeTiers() []types.TierDefinition {
	return []types.TierDefinition{
		{TierID: "a", DisplayName: "Bronze", Weight: 1.0, StakedUpToPercent: 1},
		{TierID: "b", DisplayName: "Silver", Weight: 1.5, StakedUpToPercent: 5},
		{TierID: "c", DisplayName: "Gold", Weight: 2.0, StakedUpToPercent: 100},
	}
}

func amount(v float64) types.TokenAmount {
	return types.TokenAmount{Amount: v, SymbolCode: "TOKEN", Decimals: 4}
}

func TestResolveTierReferenceScenario(t *testing.T) {
	// 300 of 10,000 staked = 3%: inside the 1-5% band, halfway through it.
	progress := ResolveTier(amount(300), amount(10000), threeTiers())
	require.NotNil(t, progress)

	require.Equal(t, "b", progress.CurrentTier.TierID)
	require.InDelta(t, 50.0, progress.ProgressPercent, 1e-9)

	require.NotNil(t, progress.PrevTier)
	require.Equal(t, "a", progress.PrevTier.TierID)
	require.NotNil(t, progress.NextTier)
	require.Equal(t, "c", progress.NextTier.TierID)

	require.InDelta(t, 100.0, progress.RequiredForCurrentTier, 1e-9) // 1% of 10,000
	require.InDelta(t, 500.0, progress.RequiredForNextTier, 1e-9)    // 5% of 10,000
	require.InDelta(t, 300.0, progress.CurrentStakedAmount, 1e-9)
}

func TestResolveTierBoundaryInclusion(t *testing.T) {
	// Exactly 1% resolves into tier "a", not the next band up.
	progress := ResolveTier(amount(100), amount(10000), threeTiers())
	require.NotNil(t, progress)
	require.Equal(t, "a", progress.CurrentTier.TierID)
	require.InDelta(t, 100.0, progress.ProgressPercent, 1e-9)

	// One token more crosses into "b".
	progress = ResolveTier(amount(101), amount(10000), threeTiers())
	require.NotNil(t, progress)
	require.Equal(t, "b", progress.CurrentTier.TierID)
}

func TestResolveTierZeroPoolTotal(t *testing.T) {
	require.Nil(t, ResolveTier(amount(300), amount(0), threeTiers()))
	require.Nil(t, ResolveTier(amount(300), amount(10000), nil))
}

func TestResolveTierTerminalState(t *testing.T) {
	// Table capped at 50%: shares above it still resolve to the top band.
	tiers := []types.TierDefinition{
		{TierID: "a", Weight: 1.0, StakedUpToPercent: 10},
		{TierID: "b", Weight: 2.0, StakedUpToPercent: 50},
	}
	progress := ResolveTier(amount(8000), amount(10000), tiers)
	require.NotNil(t, progress)
	require.Equal(t, "b", progress.CurrentTier.TierID)
	require.Nil(t, progress.NextTier)
	require.InDelta(t, 100.0, progress.ProgressPercent, 1e-9)
	require.Zero(t, progress.RequiredForNextTier)
}

func TestResolveTierIdempotent(t *testing.T) {
	first := ResolveTier(amount(300), amount(10000), threeTiers())
	second := ResolveTier(amount(300), amount(10000), threeTiers())
	require.Equal(t, first, second)
}

func TestResolveTierMonotonicInStake(t *testing.T) {
	// Growing the stake with a fixed pool total never lowers the tier and
	// never lowers in-band progress without a tier promotion.
	tiers := threeTiers()
	total := amount(10000)

	prevThreshold := 0.0
	prevProgress := 0.0
	prevTierID := ""
	for staked := 1.0; staked <= 10000; staked += 37 {
		progress := ResolveTier(amount(staked), total, tiers)
		require.NotNil(t, progress)

		require.GreaterOrEqual(t, progress.CurrentTier.StakedUpToPercent, prevThreshold)
		if progress.CurrentTier.TierID == prevTierID {
			require.GreaterOrEqual(t, progress.ProgressPercent, prevProgress-1e-9)
		}
		prevThreshold = progress.CurrentTier.StakedUpToPercent
		prevProgress = progress.ProgressPercent
		prevTierID = progress.CurrentTier.TierID
	}
}

func TestResolveTierUnsortedInput(t *testing.T) {
	tiers := threeTiers()
	shuffled := []types.TierDefinition{tiers[2], tiers[0], tiers[1]}
	progress := ResolveTier(amount(300), amount(10000), shuffled)
	require.NotNil(t, progress)
	require.Equal(t, "b", progress.CurrentTier.TierID)
	require.InDelta(t, 50.0, progress.ProgressPercent, 1e-9)
}

func TestValidateTierDefinitions(t *testing.T) {
	require.NoError(t, ValidateTierDefinitions(threeTiers()))

	require.ErrorIs(t, ValidateTierDefinitions(nil), ErrNoTiers)

	duplicated := []types.TierDefinition{
		{TierID: "a", Weight: 1, StakedUpToPercent: 5},
		{TierID: "b", Weight: 2, StakedUpToPercent: 5},
	}
	require.ErrorIs(t, ValidateTierDefinitions(duplicated), ErrNonMonotonicThresholds)

	decreasing := []types.TierDefinition{
		{TierID: "a", Weight: 2, StakedUpToPercent: 5},
		{TierID: "b", Weight: 1, StakedUpToPercent: 100},
	}
	require.ErrorIs(t, ValidateTierDefinitions(decreasing), ErrDecreasingTierWeight)

	outOfRange := []types.TierDefinition{
		{TierID: "a", Weight: 1, StakedUpToPercent: 101},
	}
	require.ErrorIs(t, ValidateTierDefinitions(outOfRange), ErrThresholdOutOfRange)

	zeroWeight := []types.TierDefinition{
		{TierID: "a", Weight: 0, StakedUpToPercent: 100},
	}
	require.ErrorIs(t, ValidateTierDefinitions(zeroWeight), ErrNonPositiveTierWeight)
}

func TestFindTierByID(t *testing.T) {
	tiers := threeTiers()
	found := FindTierByID(tiers, "b")
	require.NotNil(t, found)
	require.Equal(t, 1.5, found.Weight)
	require.Nil(t, FindTierByID(tiers, "unknown"))
}
