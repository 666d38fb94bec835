package events

import (
	"testing"
	"time"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus(nil)
	a := bus.Subscribe(TopicUserLoggedIn)
	b := bus.Subscribe(TopicUserLoggedIn)

	bus.Publish(TopicUserLoggedIn, "admin")

	for i, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			if ev.Topic != TopicUserLoggedIn {
				t.Fatalf("subscriber %d: topic = %q", i, ev.Topic)
			}
			if ev.Payload != "admin" {
				t.Fatalf("subscriber %d: payload = %v", i, ev.Payload)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d: no event delivered", i)
		}
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	bus := NewBus(nil)
	ch := bus.Subscribe(TopicLanguageChanged)

	bus.Publish(TopicSectionChanged, "sales")

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event on %q: %+v", TopicLanguageChanged, ev)
	default:
	}
}

func TestPublishNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus(nil)
	bus.Subscribe(TopicUpdateAvailable) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(TopicUpdateAvailable, i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}
}
