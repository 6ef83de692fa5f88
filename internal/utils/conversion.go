/*
This file contains precision handling helpers shared by the engine and the
data layer. Rounding goes through SDK fixed-point decimals rather than raw
floating point so the dashboard's advisory numbers match the contract's
integer arithmetic.
*/

package utils

import (
	"math"
	"strconv"

	sdkmath "cosmossdk.io/math"
)

const maxSupportedPrecision = 18

// RoundToPrecision rounds amount to the given number of decimal places with
// round-half-up semantics. Precision outside [0, 18] is clamped. Non-finite
// input collapses to zero; the engine never surfaces NaN to the UI.
func RoundToPrecision(amount float64, precision int) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return 0
	}
	if precision < 0 {
		precision = 0
	}
	if precision > maxSupportedPrecision {
		precision = maxSupportedPrecision
	}

	// The shortest round-trip string keeps the decimal the caller meant
	// instead of the binary float's noise tail.
	dec, err := sdkmath.LegacyNewDecFromStr(strconv.FormatFloat(amount, 'f', -1, 64))
	if err != nil {
		// Magnitudes beyond 18 fractional digits exceed LegacyDec range;
		// a render path must not panic over them.
		return fallbackRound(amount, precision)
	}

	// LegacyDec.RoundInt rounds ties to even; ties here must always move
	// away from zero, so shift by half a unit and truncate instead.
	factor := powerOfTen(precision)
	scaled := dec.Mul(factor)
	half := sdkmath.LegacyNewDecWithPrec(5, 1)

	var rounded sdkmath.Int
	if scaled.IsNegative() {
		rounded = scaled.Sub(half).TruncateInt()
	} else {
		rounded = scaled.Add(half).TruncateInt()
	}

	out, err := sdkmath.LegacyNewDecFromInt(rounded).Quo(factor).Float64()
	if err != nil {
		return fallbackRound(amount, precision)
	}
	return out
}

// Clamp bounds v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds v to the [0, 100] percentage range.
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

func powerOfTen(n int) sdkmath.LegacyDec {
	factor := sdkmath.LegacyNewDec(1)
	ten := sdkmath.LegacyNewDec(10)
	for i := 0; i < n; i++ {
		factor = factor.Mul(ten)
	}
	return factor
}

func fallbackRound(amount float64, precision int) float64 {
	shift := math.Pow(10, float64(precision))
	return math.Floor(amount*shift+0.5) / shift
}
