// Package session owns the process-wide auth-state stream. Sign-in and
// sign-out publish immutable snapshot events; interested parties subscribe
// explicitly instead of listening on an ambient broadcast.
package session

import (
	"sync"
	"time"
)

type EventKind string

const (
	SignedIn  EventKind = "signed_in"
	SignedOut EventKind = "signed_out"
)

// Event is an immutable auth-state snapshot delivered to subscribers.
type Event struct {
	Kind      EventKind `json:"kind"`
	UserID    uint      `json:"user_id"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

// Store fans auth-state events out to subscribers. Slow subscribers drop
// events rather than blocking publishers.
type Store struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]chan Event
}

func NewStore() *Store {
	return &Store{subs: make(map[int]chan Event)}
}

// Subscribe registers a listener. The returned cancel func must be called
// when the listener goes away; afterwards the channel is closed.
func (s *Store) Subscribe() (<-chan Event, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan Event, 8)
	s.subs[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
	return ch, cancel
}

// Publish delivers ev to every live subscriber.
func (s *Store) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
