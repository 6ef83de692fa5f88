/*

This file contains the default engine parameters for the dashboard.

These defaults match the thresholds the staking contract's frontend has
historically shown users; they are the values used when no active parameter
set exists in the database at startup.

*/

package config

import (
	"github.com/stakewatch/stakewatch/internal/types"
)

// DefaultEngineParameters provides the baseline thresholds for the derivation
// engine. They are saved as version 1 on first startup and tunable from the
// database afterwards.
var DefaultEngineParameters = types.EngineParameters{
	// --- Pool Health Risk Bands ---
	LowRiskMinHealthPercent: 70.0,
	// Rationale: with reward runway at 70%+ of the combined pool, emissions
	// can continue for a long horizon and claim timing is unconstrained.

	MediumRiskMinHealthPercent: 40.0,
	// Rationale: between 40% and 70% the reserve still covers near-term
	// emissions but users are advised to claim sooner rather than later.
	// Below 40% the advisory flips to high risk: claim as soon as ready.

	// --- Reward Projection ---
	ProjectionWindowSeconds: 3600,
	// Rationale: the dashboard's "projected" figure looks one hour ahead.
	// Long enough to be meaningful against per-hour emission rates, short
	// enough that pool churn does not invalidate it.
}
