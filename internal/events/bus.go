/*

This file implements the in-process event bus. The dashboard publishes
transition events (cooldown becoming ready, pool risk changing, accounts
moving between tiers) and any number of subscribers consume them over
buffered channels. Publishing never blocks a refresh cycle: slow
subscribers drop events.

*/

package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/stakewatch/stakewatch/internal/logger"
	"github.com/stakewatch/stakewatch/internal/types"
)

var busLogger = logger.GetForComponent("event_bus")

// EventType identifies the kind of transition an event describes.
type EventType string

const (
	EventCooldownReady   EventType = "cooldown_ready"
	EventPoolRiskChanged EventType = "pool_risk_changed"
	EventTierChanged     EventType = "tier_changed"
)

// Event is one observed transition between consecutive refresh cycles.
type Event struct {
	Type      EventType       `json:"type"`
	PoolID    types.PoolID    `json:"poolId"`
	Owner     string          `json:"owner,omitempty"`
	RiskLevel types.RiskLevel `json:"riskLevel,omitempty"`
	TierID    string          `json:"tierId,omitempty"`
	Message   string          `json:"message"`
	At        time.Time       `json:"at"`
}

const subscriberBufferSize = 64

// Bus fans events out to subscribers.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	closed      bool
	dropped     atomic.Uint64
}

// NewBus creates an event bus ready for subscribers.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers a new subscriber and returns its channel. The channel
// is closed when the bus shuts down.
func (b *Bus) Subscribe() <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, subscriberBufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subscribers = append(b.subscribers, ch)
	return ch
}

// Publish delivers an event to every subscriber. Subscribers whose buffers
// are full miss the event; the refresh loop must never stall on delivery.
func (b *Bus) Publish(event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	for _, ch := range b.subscribers {
		select {
		case ch <- event:
		default:
			b.dropped.Add(1)
			busLogger.Warn().
				Str("type", string(event.Type)).
				Msg("Subscriber buffer full, dropping event")
		}
	}
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}

// DroppedCount reports how many events were dropped due to full subscriber
// buffers since the bus was created.
func (b *Bus) DroppedCount() uint64 {
	return b.dropped.Load()
}
