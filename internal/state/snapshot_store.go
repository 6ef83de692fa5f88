// ./internal/state/snapshot_store.go
package state

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/stakewatch/stakewatch/internal/types"
)

// SaveRefreshSnapshot persists the outcome of one refresh cycle, including
// the full per-account overviews and per-pool healths as JSONB payloads.
func SaveRefreshSnapshot(snapshot types.RefreshSnapshot) (int64, error) {
	if DB == nil {
		return 0, fmt.Errorf("database not initialized")
	}

	overviewsJSON, err := json.Marshal(snapshot.Overviews)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal account overviews: %w", err)
	}
	healthsJSON, err := json.Marshal(snapshot.Healths)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal pool healths: %w", err)
	}

	stmt := `
		INSERT INTO refresh_snapshots (
			refresh_number, refresh_id, snapshot_timestamp, params_id,
			pool_count, position_count, ready_count, maintenance,
			overviews, healths, duration_millis
		) VALUES ($1, $2, $3, NULLIF($4, 0), $5, $6, $7, $8, $9, $10, $11)
		RETURNING snapshot_id;`

	var snapshotID int64
	err = DB.QueryRow(
		stmt,
		snapshot.RefreshNumber, snapshot.RefreshID, snapshot.Timestamp, snapshot.ParamsID,
		snapshot.PoolCount, snapshot.PositionCount, snapshot.ReadyCount, snapshot.Maintenance,
		overviewsJSON, healthsJSON, snapshot.DurationMillis,
	).Scan(&snapshotID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert refresh snapshot: %w", err)
	}

	log.Debug().
		Int64("snapshot_id", snapshotID).
		Int("refresh_number", snapshot.RefreshNumber).
		Str("refresh_id", snapshot.RefreshID).
		Msg("Refresh snapshot saved")

	return snapshotID, nil
}

// GetRecentRefreshes returns the most recent refresh snapshots, newest
// first, without the JSONB payloads.
func GetRecentRefreshes(limit int) ([]types.RefreshSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT snapshot_id, refresh_number, refresh_id, snapshot_timestamp,
		       COALESCE(params_id, 0),
		       pool_count, position_count, ready_count, maintenance,
		       duration_millis
		FROM refresh_snapshots
		ORDER BY snapshot_timestamp DESC
		LIMIT $1;`

	rows, err := DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent refreshes: %w", err)
	}
	defer rows.Close()

	var refreshes []types.RefreshSnapshot
	for rows.Next() {
		var r types.RefreshSnapshot
		err := rows.Scan(
			&r.SnapshotID, &r.RefreshNumber, &r.RefreshID, &r.Timestamp,
			&r.ParamsID,
			&r.PoolCount, &r.PositionCount, &r.ReadyCount, &r.Maintenance,
			&r.DurationMillis,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan refresh snapshot row: %w", err)
		}
		refreshes = append(refreshes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating refresh snapshot rows: %w", err)
	}

	return refreshes, nil
}

// GetRefreshByID returns a single refresh snapshot, including the full
// overview and health payloads, by its refresh UUID.
func GetRefreshByID(refreshID string) (*types.RefreshSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	query := `
		SELECT snapshot_id, refresh_number, refresh_id, snapshot_timestamp,
		       COALESCE(params_id, 0),
		       pool_count, position_count, ready_count, maintenance,
		       COALESCE(overviews, '[]'::jsonb), COALESCE(healths, '[]'::jsonb),
		       duration_millis
		FROM refresh_snapshots
		WHERE refresh_id = $1
		ORDER BY snapshot_timestamp DESC
		LIMIT 1;`

	var r types.RefreshSnapshot
	var overviewsJSON, healthsJSON []byte
	err := DB.QueryRow(query, refreshID).Scan(
		&r.SnapshotID, &r.RefreshNumber, &r.RefreshID, &r.Timestamp,
		&r.ParamsID,
		&r.PoolCount, &r.PositionCount, &r.ReadyCount, &r.Maintenance,
		&overviewsJSON, &healthsJSON,
		&r.DurationMillis,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("refresh %q not found", refreshID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh %q: %w", refreshID, err)
	}

	if err := json.Unmarshal(overviewsJSON, &r.Overviews); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account overviews: %w", err)
	}
	if err := json.Unmarshal(healthsJSON, &r.Healths); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pool healths: %w", err)
	}

	return &r, nil
}

// GetLatestRefresh returns the most recent refresh snapshot with payloads,
// or an error when no refresh has been recorded yet.
func GetLatestRefresh() (*types.RefreshSnapshot, error) {
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}

	var refreshID string
	err := DB.QueryRow(
		`SELECT refresh_id FROM refresh_snapshots ORDER BY snapshot_timestamp DESC LIMIT 1;`,
	).Scan(&refreshID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no refresh snapshots recorded yet")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest refresh: %w", err)
	}

	return GetRefreshByID(refreshID)
}
