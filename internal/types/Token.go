/*

This is the structured form of the contract's "quantity symbol" asset strings.
Decimal precision is carried per amount because different pools stake tokens
with different precisions.

*/

package types

// TokenAmount is a parsed on-chain asset quantity.
type TokenAmount struct {
	Amount     float64 `json:"amount"`      // e.g., 300.0
	SymbolCode string  `json:"symbol_code"` // e.g., "TOKEN"
	Decimals   int     `json:"decimals"`    // Count of fractional digits in the source string
}

// IsZero reports whether the amount carries no value. The parser's fallback
// result is a zero amount; callers that need strict validation check this.
func (t TokenAmount) IsZero() bool {
	return t.Amount == 0
}
