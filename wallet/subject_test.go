package wallet

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubjectDeliversCurrentValueFirst(t *testing.T) {
	t.Parallel()

	s := NewSubject("a")
	s.Publish("b")

	sub := s.Subscribe()
	defer sub.Unsubscribe()

	v, ok := sub.Next(context.Background())
	require.True(t, ok)
	assert.Equal(t, "b", v)
	assert.Equal(t, "b", s.Value())
}

func TestSubjectKeepsOrderForEveryReader(t *testing.T) {
	t.Parallel()

	s := NewSubject(0)
	subs := []*Subscription[int]{s.Subscribe(), s.Subscribe()}

	for i := 1; i <= 50; i++ {
		s.Publish(i)
	}

	for _, sub := range subs {
		for want := 0; want <= 50; want++ {
			got, ok := sub.Next(context.Background())
			require.True(t, ok)
			require.Equal(t, want, got)
		}
		sub.Unsubscribe()
	}
}

func TestSubscriptionNextWaitsForPublish(t *testing.T) {
	t.Parallel()

	s := NewSubject(false)
	sub := s.Subscribe()
	defer sub.Unsubscribe()
	_, _ = sub.Next(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	var got bool
	go func() {
		defer wg.Done()
		got, _ = sub.Next(context.Background())
	}()

	time.Sleep(10 * time.Millisecond)
	s.Publish(true)
	wg.Wait()
	assert.True(t, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	t.Parallel()

	s := NewSubject(1)
	sub := s.Subscribe()
	sub.Unsubscribe()
	sub.Unsubscribe()

	s.Publish(2)
	_, ok := sub.Next(context.Background())
	assert.False(t, ok)
}

func TestUnsubscribeWakesBlockedReader(t *testing.T) {
	t.Parallel()

	s := NewSubject(1)
	sub := s.Subscribe()
	_, _ = sub.Next(context.Background())

	done := make(chan bool)
	go func() {
		_, ok := sub.Next(context.Background())
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	sub.Unsubscribe()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("reader not released")
	}
}

func TestNextHonoursContext(t *testing.T) {
	t.Parallel()

	s := NewSubject(1)
	sub := s.Subscribe()
	defer sub.Unsubscribe()
	_, _ = sub.Next(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, ok := sub.Next(ctx)
	assert.False(t, ok)
}

func TestCloseReleasesEverySubscriber(t *testing.T) {
	t.Parallel()

	s := NewSubject("a")
	subs := []*Subscription[string]{s.Subscribe(), s.Subscribe()}
	require.Equal(t, 2, s.Subscribers())

	s.Close()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	for _, sub := range subs {
		for {
			if _, ok := sub.Next(ctx); !ok {
				break
			}
		}
	}
	require.NoError(t, ctx.Err(), "reader not released")
	assert.Zero(t, s.Subscribers())

	// publishing to a closed subject still updates the value
	s.Publish("b")
	assert.Equal(t, "b", s.Value())

	late := s.Subscribe()
	_, ok := late.Next(context.Background())
	assert.False(t, ok)
}

func TestPublishDoesNotWaitForReaders(t *testing.T) {
	t.Parallel()

	s := NewSubject(0)
	sub := s.Subscribe()
	defer sub.Unsubscribe()

	done := make(chan struct{})
	go func() {
		for i := 1; i <= 1000; i++ {
			s.Publish(i)
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on an idle reader")
	}

	for want := 0; want <= 1000; want++ {
		got, ok := sub.Next(context.Background())
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}
