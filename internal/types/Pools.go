/*

This is a custom type for staking pools which contains all the aggregate
contract state needed for tier, reward, and health derivation.

*/

package types

import "time"

type PoolID uint64

// PoolSnapshot is the contract's aggregate state for one pool at fetch time.
// Snapshots are refreshed on a polling interval and always replaced wholesale,
// never patched in place.
type PoolSnapshot struct {
	PoolID                PoolID      `json:"pool_id"`
	TotalStakedQuantity   TokenAmount `json:"total_staked_quantity"`   // Sum of all stakes
	TotalStakedWeight     float64     `json:"total_staked_weight"`     // Sum of stake * tier weight, dimensionless
	RewardPool            TokenAmount `json:"reward_pool"`             // Remaining reward balance
	EmissionUnitSeconds   int64       `json:"emission_unit_seconds"`   // e.g., 3600 for per-hour rates
	EmissionRate          float64     `json:"emission_rate"`           // Tokens emitted per emission unit
	LastEmissionUpdatedAt time.Time   `json:"last_emission_updated_at"`
	IsActive              bool        `json:"is_active"`
}

// RiskLevel is the tri-state claim-timing advisory derived from pool health.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// PoolHealth is the derived reward-runway measure for one pool.
type PoolHealth struct {
	PoolID        PoolID    `json:"pool_id"`
	HealthPercent float64   `json:"health_percent"` // 0-100, reward runway vs stake size
	RiskLevel     RiskLevel `json:"risk_level"`
}
