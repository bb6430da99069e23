// Package authstate publishes the authentication state of a session to any
// number of subscribers.
package authstate

import (
	"sync"

	"clubstore/internal/domain"
)

// State is the auth snapshot observers receive. User is nil when signed out.
type State struct {
	User      *domain.User `json:"user"`
	IsLoading bool         `json:"isLoading"`
}

// Stream holds the latest State and fans it out to subscribers.
//
// Subscribers always receive the current state first. Delivery never blocks the
// publisher: a subscriber that falls behind only sees the most recent state.
type Stream struct {
	mu     sync.Mutex
	state  State
	subs   map[*Subscription]struct{}
	closed bool
}

// NewStream returns a stream in the loading state.
func NewStream() *Stream {
	return &Stream{
		state: State{IsLoading: true},
		subs:  make(map[*Subscription]struct{}),
	}
}

func (s *Stream) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Publish replaces the current state and notifies subscribers. Publishing on a
// closed stream is ignored.
func (s *Stream) Publish(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.state = st
	for sub := range s.subs {
		sub.offer(st)
	}
}

// Subscribe registers a new subscriber. On a closed stream the returned
// subscription's channel is already closed.
func (s *Stream) Subscribe() *Subscription {
	sub := &Subscription{ch: make(chan State, 1), stream: s}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		close(sub.ch)
		return sub
	}
	s.subs[sub] = struct{}{}
	sub.offer(s.state)
	return sub
}

// Close ends the stream and closes every subscription.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	for sub := range s.subs {
		delete(s.subs, sub)
		close(sub.ch)
	}
}

func (s *Stream) subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Subscription is a single observer of a Stream.
type Subscription struct {
	ch     chan State
	stream *Stream
}

// C yields states until the subscription or its stream is closed.
func (sub *Subscription) C() <-chan State {
	return sub.ch
}

// Close unsubscribes. It is safe to call more than once and after the stream
// itself has been closed.
func (sub *Subscription) Close() {
	s := sub.stream
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[sub]; !ok {
		return
	}
	delete(s.subs, sub)
	close(sub.ch)
}

// offer must be called with the stream lock held. All sends happen under that
// lock, so after draining the buffer the send cannot block.
func (sub *Subscription) offer(st State) {
	select {
	case <-sub.ch:
	default:
	}
	sub.ch <- st
}
