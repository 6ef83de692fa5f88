// ./internal/state/parameters_store.go
package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/stakewatch/stakewatch/internal/types"
)

// SaveEngineParameters saves a new version of engine parameters. When
// makeActive is set, any previously active set for the same config name is
// deactivated in the same transaction.
func SaveEngineParameters(params types.EngineParameters, configName string, version int, makeActive bool) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	tx, err := DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p) // Re-panic after rollback
		} else if err != nil {
			tx.Rollback() // Rollback if error occurred
		}
	}()

	if makeActive {
		stmtDeactivate := `UPDATE engine_parameters SET is_active = FALSE WHERE config_name = $1 AND is_active = TRUE;`
		_, err = tx.Exec(stmtDeactivate, configName)
		if err != nil {
			return 0, fmt.Errorf("failed to deactivate existing active parameters for %s: %w", configName, err)
		}
	}

	stmt := `
		INSERT INTO engine_parameters (
			version, config_name, is_active, activated_at, created_at,
			low_risk_min_health_percent, medium_risk_min_health_percent,
			projection_window_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING params_id;`

	var paramsID int64
	currentTime := time.Now()
	err = tx.QueryRow(
		stmt,
		version, configName, makeActive, currentTime, currentTime,
		params.LowRiskMinHealthPercent, params.MediumRiskMinHealthPercent,
		params.ProjectionWindowSeconds,
	).Scan(&paramsID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert engine parameters: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit engine parameters: %w", err)
	}

	log.Info().
		Int64("params_id", paramsID).
		Str("config_name", configName).
		Int("version", version).
		Bool("active", makeActive).
		Msg("Engine parameters saved")

	return paramsID, nil
}

// LoadActiveEngineParameters returns the currently active parameter set for
// the given config name, or an error when none is active.
func LoadActiveEngineParameters(configName string) (*types.EngineParameters, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT low_risk_min_health_percent, medium_risk_min_health_percent,
		       projection_window_seconds
		FROM engine_parameters
		WHERE config_name = $1 AND is_active = TRUE
		ORDER BY activated_at DESC
		LIMIT 1;`

	var params types.EngineParameters
	err := DB.QueryRow(query, configName).Scan(
		&params.LowRiskMinHealthPercent,
		&params.MediumRiskMinHealthPercent,
		&params.ProjectionWindowSeconds,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no active engine parameters found for config %q", configName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active engine parameters: %w", err)
	}

	return &params, nil
}

// ActiveParamsID returns the params_id of the active parameter set, or 0
// when none exists. Used to link refresh snapshots to the parameters that
// produced them.
func ActiveParamsID(configName string) int64 {
	if DB == nil {
		return 0
	}

	var id int64
	err := DB.QueryRow(
		`SELECT params_id FROM engine_parameters WHERE config_name = $1 AND is_active = TRUE ORDER BY activated_at DESC LIMIT 1;`,
		configName,
	).Scan(&id)
	if err != nil {
		return 0
	}
	return id
}
