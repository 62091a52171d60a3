package wallet

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/event"
)

// Subject holds a value with a single writer and any number of readers.
// Every subscriber receives the current value on subscribe, then every
// later value in publish order, until it unsubscribes.
//
// Fan-out goes through an event.Feed. T must be a concrete type, the feed
// rejects sends whose dynamic type differs from its channel element type.
type Subject[T any] struct {
	mu    sync.Mutex // serializes Publish against Subscribe seeding
	value T
	feed  event.Feed
	scope event.SubscriptionScope
}

// NewSubject returns a subject holding initial.
func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{value: initial}
}

// Value returns the current value.
func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish stores v and delivers it to every subscriber. It returns once
// each subscriber has queued v.
func (s *Subject[T]) Publish(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.feed.Send(v)
}

// Subscribe registers a new reader. The current value is already queued.
func (s *Subject[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		ch:     make(chan T),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	s.mu.Lock()
	sub.queue = append(sub.queue, s.value)
	fs := s.feed.Subscribe(sub.ch)
	if sub.sub = s.scope.Track(fs); sub.sub == nil {
		// closed subject
		fs.Unsubscribe()
		sub.sub = fs
		sub.release()
	}
	s.mu.Unlock()

	go sub.drain()
	return sub
}

// Subscribers returns the number of live subscriptions.
func (s *Subject[T]) Subscribers() int {
	return s.scope.Count()
}

// Close ends every subscription. Blocked readers are released.
func (s *Subject[T]) Close() {
	s.scope.Close()
}

// Subscription is one reader of a Subject. Its queue is unbounded so the
// writer never waits on a slow reader.
type Subscription[T any] struct {
	sub event.Subscription
	ch  chan T

	mu     sync.Mutex
	queue  []T
	closed bool
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// drain moves values from the feed channel into the queue until the feed
// subscription ends.
func (s *Subscription[T]) drain() {
	for {
		select {
		case v := <-s.ch:
			s.push(v)
		case <-s.sub.Err():
			s.release()
			return
		}
	}
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

// Next blocks until the next value arrives. ok is false once the
// subscription is released or ctx is done.
func (s *Subscription[T]) Next(ctx context.Context) (v T, ok bool) {
	for {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return v, false
		}
		if len(s.queue) > 0 {
			v = s.queue[0]
			var zero T
			s.queue[0] = zero
			s.queue = s.queue[1:]
			s.mu.Unlock()
			return v, true
		}
		s.mu.Unlock()

		select {
		case <-s.signal:
		case <-s.done:
			return v, false
		case <-ctx.Done():
			return v, false
		}
	}
}

// Unsubscribe releases the subscription. Pending values are dropped.
func (s *Subscription[T]) Unsubscribe() {
	s.sub.Unsubscribe()
	s.release()
}

func (s *Subscription[T]) release() {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.queue = nil
		s.mu.Unlock()
		close(s.done)
	})
}
