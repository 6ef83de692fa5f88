/*

This file manages the persistent global refresh counter for the dashboard.
The counter is stored in the database to ensure continuity across restarts.

*/

package state

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
)

// GetCurrentRefreshNumber retrieves the current refresh number from the
// database. The refresh_counter row is created by EnsureSchema.
func GetCurrentRefreshNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	query := `SELECT current_refresh FROM refresh_counter WHERE id = 1;`

	var currentRefresh int
	row := DB.QueryRow(query)
	err := row.Scan(&currentRefresh)

	if err != nil {
		if err == sql.ErrNoRows {
			// This should not happen due to the INSERT in EnsureSchema
			log.Warn().Msg("No refresh counter row found, initializing to 0")
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get current refresh number: %w", err)
	}

	log.Debug().Int("currentRefresh", currentRefresh).Msg("Retrieved current refresh number")
	return currentRefresh, nil
}

// IncrementRefreshNumber increments the refresh counter and returns the new value
func IncrementRefreshNumber() (int, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE refresh_counter
		SET current_refresh = current_refresh + 1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
		RETURNING current_refresh;`

	var newRefresh int
	row := DB.QueryRow(updateQuery)
	err := row.Scan(&newRefresh)

	if err != nil {
		return 0, fmt.Errorf("failed to increment refresh number: %w", err)
	}

	log.Info().Int("newRefresh", newRefresh).Msg("Incremented refresh counter")
	return newRefresh, nil
}

// ResetRefreshNumber resets the refresh counter to a specific value (for testing/maintenance)
func ResetRefreshNumber(refreshNumber int) error {
	if refreshNumber < 0 {
		return fmt.Errorf("refresh number cannot be negative: %d", refreshNumber)
	}

	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	updateQuery := `
		UPDATE refresh_counter
		SET current_refresh = $1,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = 1;`

	result, err := DB.Exec(updateQuery, refreshNumber)
	if err != nil {
		return fmt.Errorf("failed to reset refresh number to %d: %w", refreshNumber, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("no rows updated when resetting refresh number")
	}

	log.Info().Int("refreshNumber", refreshNumber).Msg("Reset refresh counter")
	return nil
}
