/*

This file holds the dashboard's latest derived view behind a mutex. The web
layer reads it concurrently with the refresh cycle swapping it out.

*/

package dashboard

import (
	"sync"
	"time"

	"github.com/stakewatch/stakewatch/internal/types"
)

type viewState struct {
	mu       sync.RWMutex
	snapshot *types.ChainSnapshot
	derived  *derivedView
}

func (v *viewState) update(snapshot *types.ChainSnapshot, derived *derivedView) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.snapshot = snapshot
	v.derived = derived
}

func (v *viewState) currentDerived() *derivedView {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.derived
}

// Snapshot returns the chain snapshot of the most recent refresh, or nil
// before the first cycle completes.
func (d *Dashboard) Snapshot() *types.ChainSnapshot {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()
	return d.view.snapshot
}

// PoolHealths returns the derived health of every pool from the most
// recent refresh.
func (d *Dashboard) PoolHealths() []types.PoolHealth {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()
	if d.view.derived == nil {
		return nil
	}
	out := make([]types.PoolHealth, len(d.view.derived.Healths))
	copy(out, d.view.derived.Healths)
	return out
}

// AccountOverviews returns the derived overviews for one account across
// all pools. An unknown account returns an empty slice, not an error.
func (d *Dashboard) AccountOverviews(owner string) []types.AccountOverview {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()

	out := []types.AccountOverview{}
	if d.view.derived == nil {
		return out
	}
	for _, o := range d.view.derived.Overviews {
		if o.Owner == owner {
			out = append(out, o)
		}
	}
	return out
}

// Tiers returns the tier ladder from the most recent refresh.
func (d *Dashboard) Tiers() []types.TierDefinition {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()
	if d.view.snapshot == nil {
		return nil
	}
	out := make([]types.TierDefinition, len(d.view.snapshot.Tiers))
	copy(out, d.view.snapshot.Tiers)
	return out
}

// LastRefreshedAt returns when the current view's snapshot was fetched, or
// the zero time before the first refresh.
func (d *Dashboard) LastRefreshedAt() time.Time {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()
	if d.view.snapshot == nil {
		return time.Time{}
	}
	return d.view.snapshot.FetchedAt
}

// Maintenance reports whether the contract was in maintenance mode at the
// last refresh.
func (d *Dashboard) Maintenance() bool {
	d.view.mu.RLock()
	defer d.view.mu.RUnlock()
	if d.view.snapshot == nil {
		return false
	}
	return d.view.snapshot.Config.MaintenanceMode
}
