/*

This file contains the immutable point-in-time bundle the data fetcher hands
to the derivation engine, and the persisted record of one refresh cycle.

*/

package types

import "time"

// GlobalConfig is the contract's global configuration singleton.
type GlobalConfig struct {
	CooldownDurationSeconds int64 `json:"cooldown_duration_seconds"`
	MaintenanceMode         bool  `json:"maintenance_mode"`
}

// ChainSnapshot bundles everything the engine needs for one derivation pass.
// All tables are fetched together and the snapshot is swapped as one value so
// the engine never sees a half-updated pool next to a stale stake record.
type ChainSnapshot struct {
	Pools     []PoolSnapshot   `json:"pools"`
	Tiers     []TierDefinition `json:"tiers"`
	Positions []StakedPosition `json:"positions"`
	Config    GlobalConfig     `json:"config"`
	FetchedAt time.Time        `json:"fetched_at"`
}

// PoolByID returns the pool with the given ID, or nil if absent.
func (s *ChainSnapshot) PoolByID(id PoolID) *PoolSnapshot {
	for i := range s.Pools {
		if s.Pools[i].PoolID == id {
			return &s.Pools[i]
		}
	}
	return nil
}

// RefreshSnapshot is the persisted record of one completed refresh cycle.
type RefreshSnapshot struct {
	SnapshotID    int64     `json:"snapshot_id,omitempty"` // Auto-incremented by DB
	RefreshNumber int       `json:"refresh_number"`
	RefreshID     string    `json:"refresh_id"` // UUID for tracing logs across a cycle
	Timestamp     time.Time `json:"timestamp"`
	ParamsID      int64     `json:"params_id,omitempty"`

	PoolCount     int  `json:"pool_count"`
	PositionCount int  `json:"position_count"`
	ReadyCount    int  `json:"ready_count"` // Positions whose cooldown is ready
	Maintenance   bool `json:"maintenance"`

	Overviews []AccountOverview `json:"overviews"`
	Healths   []PoolHealth      `json:"healths"`

	DurationMillis int64 `json:"duration_millis"`
}
