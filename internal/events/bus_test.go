package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/stakewatch/stakewatch/internal/types"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	first := bus.Subscribe()
	second := bus.Subscribe()

	bus.Publish(Event{
		Type:    EventCooldownReady,
		PoolID:  1,
		Owner:   "alice",
		Message: "cooldown complete",
	})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			require.Equal(t, EventCooldownReady, event.Type)
			require.Equal(t, "alice", event.Owner)
			require.False(t, event.At.IsZero())
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	// Subscriber that never reads.
	bus.Subscribe()

	for i := 0; i < subscriberBufferSize+5; i++ {
		bus.Publish(Event{Type: EventPoolRiskChanged, RiskLevel: types.RiskHigh})
	}

	require.Equal(t, uint64(5), bus.DroppedCount())
}

func TestCloseClosesSubscriberChannels(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()
	bus.Close()

	_, open := <-ch
	require.False(t, open)

	// Publishing after close is a no-op, and double close is safe.
	bus.Publish(Event{Type: EventTierChanged})
	bus.Close()
}

func TestSubscribeAfterCloseReturnsClosedChannel(t *testing.T) {
	bus := NewBus()
	bus.Close()

	ch := bus.Subscribe()
	_, open := <-ch
	require.False(t, open)
}
