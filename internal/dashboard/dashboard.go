/*

This file implements the dashboard core: the refresh cycle that fetches a
chain snapshot, derives per-account overviews and per-pool healths through
the engine, detects transitions against the previous cycle, publishes
events, and persists the cycle outcome.

*/

package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stakewatch/stakewatch/internal/datafetcher"
	"github.com/stakewatch/stakewatch/internal/events"
	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/state"
	"github.com/stakewatch/stakewatch/internal/types"
)

const (
	// Export constants for use in main.go
	DEFAULT_PARAMS_CONFIG_NAME    = "default_dashboard"
	DEFAULT_PARAMS_CONFIG_VERSION = 1
)

// Dashboard owns the refresh cycle and the latest derived view.
type Dashboard struct {
	logger zerolog.Logger
	client *datafetcher.Client
	bus    *events.Bus
	params types.EngineParameters

	configName string

	// Runtime state guarded by view.mu in view.go.
	view viewState

	persist bool
}

// Config holds the configuration for creating a new Dashboard instance.
type Config struct {
	Client     *datafetcher.Client
	Bus        *events.Bus
	Params     *types.EngineParameters
	ConfigName string

	// DisablePersistence skips database writes; used in tests.
	DisablePersistence bool
}

// NewDashboard creates a dashboard instance with dependency injection.
func NewDashboard(cfg Config) (*Dashboard, error) {
	if err := validateDashboardConfig(cfg); err != nil {
		return nil, fmt.Errorf("dashboard configuration validation failed: %w", err)
	}

	d := &Dashboard{
		logger:     logger.GetForComponent("dashboard_core"),
		client:     cfg.Client,
		bus:        cfg.Bus,
		params:     *cfg.Params,
		configName: cfg.ConfigName,
		persist:    !cfg.DisablePersistence,
	}

	d.logger.Info().
		Str("configName", d.configName).
		Msg("Dashboard instance created")

	return d, nil
}

func validateDashboardConfig(cfg Config) error {
	if cfg.Client == nil {
		return fmt.Errorf("chain client cannot be nil")
	}
	if cfg.Bus == nil {
		return fmt.Errorf("event bus cannot be nil")
	}
	if cfg.Params == nil {
		return fmt.Errorf("engine parameters cannot be nil")
	}
	if cfg.ConfigName == "" {
		return fmt.Errorf("config name cannot be empty")
	}
	return nil
}

// RefreshCycle executes one complete refresh: fetch, derive, detect
// transitions, publish, persist. Failures abort the cycle and keep the
// previous view intact.
func (d *Dashboard) RefreshCycle(ctx context.Context) {
	cycleStartTime := time.Now()

	// Unique refresh ID for tracing logs across the entire cycle.
	refreshID := uuid.New().String()
	refreshLogger := d.logger.With().Str("refresh_id", refreshID).Logger()

	refreshLogger.Info().Msg("--- Starting refresh cycle ---")

	// --- Step 1: Fetch chain snapshot ---
	snapshot, err := d.client.GetSnapshot(ctx)
	if err != nil {
		refreshLogger.Error().Err(err).Msg("Refresh aborted: failed to fetch chain snapshot.")
		return
	}

	// --- Step 2: Derive overviews and healths ---
	derived := deriveAll(snapshot, d.params, time.Now().UTC())
	refreshLogger.Info().
		Int("overviews", len(derived.Overviews)).
		Int("healths", len(derived.Healths)).
		Int("ready", derived.ReadyCount).
		Msg("Step 2: Derivation complete.")

	// --- Step 3: Transition detection against the previous cycle ---
	previous := d.view.currentDerived()
	if previous != nil {
		d.publishTransitions(previous, derived, refreshLogger)
	}

	// --- Step 4: Swap in the new view ---
	d.view.update(snapshot, derived)

	// --- Step 5: Persist cycle outcome ---
	refreshNumber := 0
	if d.persist {
		refreshNumber, err = state.IncrementRefreshNumber()
		if err != nil {
			refreshLogger.Error().Err(err).Msg("Failed to increment refresh counter; recording cycle as 0.")
		}
	}

	record := types.RefreshSnapshot{
		RefreshNumber:  refreshNumber,
		RefreshID:      refreshID,
		Timestamp:      cycleStartTime,
		PoolCount:      len(snapshot.Pools),
		PositionCount:  len(snapshot.Positions),
		ReadyCount:     derived.ReadyCount,
		Maintenance:    snapshot.Config.MaintenanceMode,
		Overviews:      derived.Overviews,
		Healths:        derived.Healths,
		DurationMillis: time.Since(cycleStartTime).Milliseconds(),
	}
	if d.persist {
		record.ParamsID = state.ActiveParamsID(d.configName)
		if _, err := state.SaveRefreshSnapshot(record); err != nil {
			refreshLogger.Error().Err(err).Msg("Failed to persist refresh snapshot.")
		}
	}

	refreshLogger.Info().
		Int("refreshNumber", refreshNumber).
		Dur("duration", time.Since(cycleStartTime)).
		Msg("--- Refresh cycle completed ---")
}

// publishTransitions compares the previous derived view with the new one
// and emits an event for every observed transition.
func (d *Dashboard) publishTransitions(previous, current *derivedView, refreshLogger zerolog.Logger) {
	now := time.Now().UTC()

	// Cooldown and tier transitions keyed by (pool, owner).
	prevByKey := make(map[string]*types.AccountOverview, len(previous.Overviews))
	for i := range previous.Overviews {
		o := &previous.Overviews[i]
		prevByKey[overviewKey(o.PoolID, o.Owner)] = o
	}

	for i := range current.Overviews {
		o := &current.Overviews[i]
		prev, seen := prevByKey[overviewKey(o.PoolID, o.Owner)]
		if !seen {
			continue
		}

		if o.Cooldown.IsReady && !prev.Cooldown.IsReady {
			d.bus.Publish(events.Event{
				Type:    events.EventCooldownReady,
				PoolID:  o.PoolID,
				Owner:   o.Owner,
				Message: fmt.Sprintf("cooldown for %s in pool %d is ready to claim", o.Owner, o.PoolID),
				At:      now,
			})
		}

		prevTier := tierIDOf(prev)
		currTier := tierIDOf(o)
		if prevTier != currTier && currTier != "" {
			d.bus.Publish(events.Event{
				Type:    events.EventTierChanged,
				PoolID:  o.PoolID,
				Owner:   o.Owner,
				TierID:  currTier,
				Message: fmt.Sprintf("%s moved from tier %q to %q in pool %d", o.Owner, prevTier, currTier, o.PoolID),
				At:      now,
			})
		}
	}

	// Pool risk transitions keyed by pool.
	prevRisk := make(map[types.PoolID]types.RiskLevel, len(previous.Healths))
	for _, h := range previous.Healths {
		prevRisk[h.PoolID] = h.RiskLevel
	}
	for _, h := range current.Healths {
		before, seen := prevRisk[h.PoolID]
		if !seen || before == h.RiskLevel {
			continue
		}
		d.bus.Publish(events.Event{
			Type:      events.EventPoolRiskChanged,
			PoolID:    h.PoolID,
			RiskLevel: h.RiskLevel,
			Message:   fmt.Sprintf("pool %d risk changed from %s to %s", h.PoolID, before, h.RiskLevel),
			At:        now,
		})
		refreshLogger.Info().
			Uint64("poolID", uint64(h.PoolID)).
			Str("from", string(before)).
			Str("to", string(h.RiskLevel)).
			Msg("Pool risk level changed")
	}
}

func overviewKey(poolID types.PoolID, owner string) string {
	return fmt.Sprintf("%d/%s", poolID, owner)
}

func tierIDOf(o *types.AccountOverview) string {
	if o.Tier == nil {
		return ""
	}
	return o.Tier.CurrentTier.TierID
}

// Params returns the engine parameters the dashboard derives with.
func (d *Dashboard) Params() types.EngineParameters {
	return d.params
}
