/*

This file contains the tunable parameters for the derivation engine.

Different parameter sets can exist for different deployments; the active set
is versioned and persisted so threshold changes never require a code change.

*/

package types

// EngineParameters holds the tunable thresholds and windows used by the
// derivation engine. The scoring formulas themselves never hard-code these.
type EngineParameters struct {
	// --- Pool Health Risk Bands ---
	LowRiskMinHealthPercent    float64 `json:"low_risk_min_health_percent"`    // healthPercent >= this -> low risk
	MediumRiskMinHealthPercent float64 `json:"medium_risk_min_health_percent"` // healthPercent >= this -> medium risk

	// --- Reward Projection ---
	ProjectionWindowSeconds int64 `json:"projection_window_seconds"` // Forward-looking window for "projected" rewards
}
