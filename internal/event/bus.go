// Package event implements the in-process notification fan-out between the
// core services and the UI layer. Publishing never blocks: a subscriber that
// falls behind misses events rather than stalling the monitor or capture path.
package event

import (
	"sync"
)

type Type string

const (
	CaptureCompleted  Type = "capture-completed"
	ConfigUpdated     Type = "config-updated"
	PauseStateChanged Type = "pause-state-changed"
	ClipboardUpdated  Type = "clipboard-update"
)

type Event struct {
	Type    Type
	Payload any
}

const subscriberBuffer = 100

type Bus struct {
	mu   sync.RWMutex
	subs map[chan Event]struct{}
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[chan Event]struct{}),
	}
}

func (b *Bus) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for sub := range b.subs {
		if sub == ch {
			delete(b.subs, sub)
			close(sub)
			return
		}
	}
}

// Publish delivers the event to every subscriber. Full subscriber channels
// are skipped.
func (b *Bus) Publish(evt Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs {
		select {
		case sub <- evt:
		default:
		}
	}
}
