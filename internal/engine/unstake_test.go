package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCalculateSafeUnstakeShrinkingDenominator(t *testing.T) {
	tiers := threeTiers()
	current := tiers[1] // "b", band 1-5%

	// 300 of 10,000 staked, floor at 1%. The naive 300 - 100 = 200
	// understates: withdrawing shrinks the pool total too, so
	// x = (300 - 0.01*10000) / (1 - 0.01) = 202.02...
	safe := CalculateSafeUnstake(amount(300), amount(10000), tiers, current)
	require.InDelta(t, 202.0202, safe, 1e-3)
	require.Greater(t, safe, 200.0)
}

func TestCalculateSafeUnstakeKeepsTier(t *testing.T) {
	tiers := threeTiers()

	progress := ResolveTier(amount(300), amount(10000), tiers)
	require.NotNil(t, progress)
	safe := progress.SafeUnstakeAmount

	// Withdrawing the safe amount and re-resolving must keep the account at
	// or above the current band's floor.
	after := ResolveTier(amount(300-safe), amount(10000-safe), tiers)
	require.NotNil(t, after)
	afterPercent := (300 - safe) / (10000 - safe) * 100
	require.GreaterOrEqual(t, afterPercent, 1.0-1e-9)

	// Withdrawing even slightly more drops below the floor.
	over := safe + 0.01
	overPercent := (300 - over) / (10000 - over) * 100
	require.Less(t, overPercent, 1.0)
}

func TestCalculateSafeUnstakeBottomTier(t *testing.T) {
	tiers := threeTiers()
	// Bottom band has no floor: the full stake is withdrawable.
	safe := CalculateSafeUnstake(amount(50), amount(10000), tiers, tiers[0])
	require.InDelta(t, 50.0, safe, 1e-9)
}

func TestCalculateSafeUnstakeAtFloor(t *testing.T) {
	tiers := threeTiers()
	// Exactly at the 1% floor of band "b": nothing is safely withdrawable.
	safe := CalculateSafeUnstake(amount(100), amount(10000), tiers, tiers[1])
	require.Zero(t, safe)

	// Below the floor clamps to zero rather than going negative.
	safe = CalculateSafeUnstake(amount(50), amount(10000), tiers, tiers[1])
	require.Zero(t, safe)
}

func TestCalculateSafeUnstakeDegenerateInputs(t *testing.T) {
	tiers := threeTiers()
	require.Zero(t, CalculateSafeUnstake(amount(0), amount(10000), tiers, tiers[1]))
	require.Zero(t, CalculateSafeUnstake(amount(300), amount(0), tiers, tiers[1]))
}
