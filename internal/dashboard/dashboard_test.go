package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stakewatch/stakewatch/internal/datafetcher"
	"github.com/stakewatch/stakewatch/internal/events"
	"github.com/stakewatch/stakewatch/internal/types"
)

func newTestDashboard(t *testing.T) (*Dashboard, *events.Bus) {
	t.Helper()

	client, err := datafetcher.NewClient("http://127.0.0.1:1", "staking.acct", time.Second)
	require.NoError(t, err)

	bus := events.NewBus()
	t.Cleanup(bus.Close)

	params := testParams()
	d, err := NewDashboard(Config{
		Client:             client,
		Bus:                bus,
		Params:             &params,
		ConfigName:         "test",
		DisablePersistence: true,
	})
	require.NoError(t, err)
	return d, bus
}

func TestNewDashboardValidation(t *testing.T) {
	params := testParams()
	bus := events.NewBus()
	defer bus.Close()

	_, err := NewDashboard(Config{Bus: bus, Params: &params, ConfigName: "x"})
	require.Error(t, err)

	client, err := datafetcher.NewClient("http://127.0.0.1:1", "staking.acct", time.Second)
	require.NoError(t, err)

	_, err = NewDashboard(Config{Client: client, Params: &params, ConfigName: "x"})
	require.Error(t, err)

	_, err = NewDashboard(Config{Client: client, Bus: bus, ConfigName: "x"})
	require.Error(t, err)

	_, err = NewDashboard(Config{Client: client, Bus: bus, Params: &params})
	require.Error(t, err)
}

func collectEvents(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case event := <-ch:
			out = append(out, event)
		default:
			return out
		}
	}
}

func TestPublishTransitions(t *testing.T) {
	d, bus := newTestDashboard(t)
	ch := bus.Subscribe()

	snapshot := testSnapshot()

	before := deriveAll(snapshot, d.Params(), testNow)

	// One refresh later: alice's cooldown elapsed, she staked up into gold,
	// and the pool's reward reserve was topped up past the low-risk band.
	later := testNow.Add(13 * time.Hour)
	snapshot.Positions[0].StakedQuantity.Amount = 800
	snapshot.Positions[0].TierID = "gold"
	snapshot.Pools[0].RewardPool.Amount = 40000
	after := deriveAll(snapshot, d.Params(), later)

	d.publishTransitions(before, after, d.logger)

	received := collectEvents(ch)
	byType := make(map[events.EventType]events.Event)
	for _, event := range received {
		byType[event.Type] = event
	}
	require.Len(t, byType, 3)

	cooldown := byType[events.EventCooldownReady]
	require.Equal(t, "alice", cooldown.Owner)
	require.Equal(t, types.PoolID(1), cooldown.PoolID)

	tier := byType[events.EventTierChanged]
	require.Equal(t, "gold", tier.TierID)

	risk := byType[events.EventPoolRiskChanged]
	require.Equal(t, types.RiskLow, risk.RiskLevel)
}

func TestPublishTransitionsQuietWhenNothingChanged(t *testing.T) {
	d, bus := newTestDashboard(t)
	ch := bus.Subscribe()

	snapshot := testSnapshot()
	before := deriveAll(snapshot, d.Params(), testNow)
	after := deriveAll(snapshot, d.Params(), testNow.Add(time.Minute))

	d.publishTransitions(before, after, d.logger)
	require.Empty(t, collectEvents(ch))
}

func TestViewAccessorsBeforeFirstRefresh(t *testing.T) {
	d, _ := newTestDashboard(t)

	require.Nil(t, d.Snapshot())
	require.Nil(t, d.PoolHealths())
	require.Empty(t, d.AccountOverviews("alice"))
	require.Nil(t, d.Tiers())
	require.True(t, d.LastRefreshedAt().IsZero())
	require.False(t, d.Maintenance())
}

func TestViewUpdateAndAccessors(t *testing.T) {
	d, _ := newTestDashboard(t)

	snapshot := testSnapshot()
	derived := deriveAll(snapshot, d.Params(), testNow)
	d.view.update(snapshot, derived)

	require.Equal(t, testNow, d.LastRefreshedAt())
	require.Len(t, d.PoolHealths(), 1)
	require.Len(t, d.Tiers(), 3)

	overviews := d.AccountOverviews("alice")
	require.Len(t, overviews, 1)
	require.Empty(t, d.AccountOverviews("nobody"))
}
