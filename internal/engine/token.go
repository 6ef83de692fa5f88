/*

This file contains the parser for the contract's "quantity symbol" asset
strings, e.g. "300.0000 TOKEN". Decimal precision is inferred from the
fractional digit count of each string because pools stake tokens with
different precisions.

*/

package engine

import (
	"math"
	"strconv"
	"strings"

	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
)

var tokenLogger = logger.GetForComponent("token_parser")

const (
	// FallbackSymbolCode is the symbol of the zero-value amount returned for
	// malformed input.
	FallbackSymbolCode = "TOKEN"
	// FallbackDecimals is the precision of the zero-value fallback amount.
	FallbackDecimals = 8
)

// ParseTokenAmount parses a "quantity symbol" string into a TokenAmount.
//
// The string is split on the first space into a numeric part and a symbol
// code. Decimals is the digit count after the '.' in the numeric part, or 0
// when there is none. Malformed input (empty string, missing symbol,
// non-numeric quantity) yields a well-defined zero-value amount instead of an
// error: this function sits on a render hot path and must never take it down.
// Callers that need strict validation check IsZero on the result.
func ParseTokenAmount(input string) types.TokenAmount {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return fallbackAmount(input, "empty input")
	}

	parts := strings.SplitN(trimmed, " ", 2)
	if len(parts) != 2 {
		return fallbackAmount(input, "missing symbol code")
	}

	numeric := parts[0]
	symbol := strings.TrimSpace(parts[1])
	if symbol == "" {
		return fallbackAmount(input, "empty symbol code")
	}

	amount, err := strconv.ParseFloat(numeric, 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return fallbackAmount(input, "non-numeric quantity")
	}

	decimals := 0
	if idx := strings.Index(numeric, "."); idx >= 0 {
		decimals = len(numeric) - idx - 1
	}

	return types.TokenAmount{
		Amount:     amount,
		SymbolCode: symbol,
		Decimals:   decimals,
	}
}

// FormatTokenAmount renders a TokenAmount back into the contract's
// "quantity symbol" string form at the amount's own precision.
func FormatTokenAmount(t types.TokenAmount) string {
	return strconv.FormatFloat(t.Amount, 'f', t.Decimals, 64) + " " + t.SymbolCode
}

func fallbackAmount(input, reason string) types.TokenAmount {
	// Diagnostic only; the zero value is the contract of this path.
	tokenLogger.Debug().
		Str("input", input).
		Str("reason", reason).
		Msg("Malformed token string, returning zero-value amount")
	return types.TokenAmount{
		Amount:     0,
		SymbolCode: FallbackSymbolCode,
		Decimals:   FallbackDecimals,
	}
}
