package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundToPrecisionHalfUp(t *testing.T) {
	tests := []struct {
		amount    float64
		precision int
		expected  float64
	}{
		{0.00005, 4, 0.0001}, // midpoint rounds up
		{0.000049, 4, 0.0},
		{10.00004999, 4, 10.0},
		{1.23455, 4, 1.2346},
		{2.5, 0, 3},     // half-to-even would give 2
		{0.125, 2, 0.13}, // half-to-even would give 0.12
		{1.5, 0, 2},
		{-2.5, 0, -3}, // ties move away from zero on both sides
		{300.0, 4, 300.0},
	}

	for _, tc := range tests {
		require.InDeltaf(t, tc.expected, RoundToPrecision(tc.amount, tc.precision), 1e-12,
			"RoundToPrecision(%v, %d)", tc.amount, tc.precision)
	}
}

func TestRoundToPrecisionClampsInvalidInput(t *testing.T) {
	require.Zero(t, RoundToPrecision(math.NaN(), 4))
	require.Zero(t, RoundToPrecision(math.Inf(1), 4))

	// Out-of-range precision clamps instead of failing.
	require.InDelta(t, 2.0, RoundToPrecision(1.6, -3), 1e-12)
	require.InDelta(t, 1.6, RoundToPrecision(1.6, 40), 1e-12)
}

func TestClamp(t *testing.T) {
	require.Equal(t, 0.0, Clamp(-5, 0, 100))
	require.Equal(t, 100.0, Clamp(250, 0, 100))
	require.Equal(t, 42.0, Clamp(42, 0, 100))
	require.Equal(t, 100.0, ClampPercent(101))
}
