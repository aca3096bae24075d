package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeReceivesPublishedEvents(t *testing.T) {
	store := NewStore()
	events, cancel := store.Subscribe()
	defer cancel()

	store.Publish(Event{Kind: SignedIn, UserID: 7, SessionID: "s-1"})

	select {
	case ev := <-events:
		assert.Equal(t, SignedIn, ev.Kind)
		assert.Equal(t, uint(7), ev.UserID)
		assert.False(t, ev.At.IsZero(), "At is stamped when missing")
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestCancelClosesChannelAndStopsDelivery(t *testing.T) {
	store := NewStore()
	events, cancel := store.Subscribe()

	cancel()
	_, open := <-events
	assert.False(t, open, "channel closes after cancel")

	// publishing after cancel must not panic
	store.Publish(Event{Kind: SignedOut, UserID: 7})
}

func TestCancelIsIdempotent(t *testing.T) {
	store := NewStore()
	_, cancel := store.Subscribe()
	cancel()
	cancel()
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	store := NewStore()
	_, cancel := store.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// more events than the buffer holds; Publish must never block
		for i := 0; i < 100; i++ {
			store.Publish(Event{Kind: SignedIn, UserID: uint(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestEachSubscriberGetsItsOwnStream(t *testing.T) {
	store := NewStore()
	a, cancelA := store.Subscribe()
	b, cancelB := store.Subscribe()
	defer cancelA()
	defer cancelB()

	store.Publish(Event{Kind: SignedOut, UserID: 9, SessionID: "s-9"})

	for _, ch := range []<-chan Event{a, b} {
		select {
		case ev := <-ch:
			require.Equal(t, SignedOut, ev.Kind)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the event")
		}
	}
}
