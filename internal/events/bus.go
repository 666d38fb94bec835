// Package events is a minimal in-process publish/subscribe bus. The core
// emits notifications (login, language change, navigation, updates) that
// presentation collaborators consume without the publishers knowing them.
// Scope is a single process; there is no cross-tab or cross-host fanout.
package events

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Topics emitted by the dashboard core.
const (
	TopicUserLoggedIn    = "user.logged-in"
	TopicUserLoggedOut   = "user.logged-out"
	TopicLanguageChanged = "language.changed"
	TopicSectionChanged  = "section.changed"
	TopicUpdateAvailable = "update.available"
)

// Event is a topic plus an arbitrary payload.
type Event struct {
	Topic   string
	Payload any
	At      time.Time
}

const subscriberBuffer = 16

// Bus fans events out to subscribers. Publish never blocks: a subscriber
// whose buffer is full misses the event (and the drop is logged).
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]chan Event
	logger *zap.SugaredLogger
}

func NewBus(logger *zap.SugaredLogger) *Bus {
	return &Bus{subs: make(map[string][]chan Event), logger: logger}
}

// Subscribe returns a receive channel for one topic.
func (b *Bus) Subscribe(topic string) <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	b.subs[topic] = append(b.subs[topic], ch)
	b.mu.Unlock()
	return ch
}

// Publish delivers the event to every current subscriber of its topic.
func (b *Bus) Publish(topic string, payload any) {
	ev := Event{Topic: topic, Payload: payload, At: time.Now()}
	b.mu.RLock()
	subs := b.subs[topic]
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default:
			if b.logger != nil {
				b.logger.Warnw("dropping event for slow subscriber", "topic", topic)
			}
		}
	}
}
