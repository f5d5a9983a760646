package geocode

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLimiter_Spacing(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Second, WithLimiterClock(clock.Now, clock.Sleep))

	const n = 5
	var (
		mu         sync.Mutex
		dispatches []time.Time
		wg         sync.WaitGroup
	)

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := l.Do(context.Background(), func() {
				mu.Lock()
				dispatches = append(dispatches, clock.Now())
				mu.Unlock()
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Len(t, dispatches, n)
	for i := 1; i < n; i++ {
		assert.GreaterOrEqual(t, dispatches[i].Sub(dispatches[i-1]), time.Second)
	}
	assert.Zero(t, l.Pending())
}

func TestLimiter_FIFO(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Second, WithLimiterClock(clock.Now, clock.Sleep))

	// Первый вызов держит consumer, пока очередь не заполнится
	release := make(chan struct{})
	started := make(chan struct{})
	var order []int
	var mu sync.Mutex

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = l.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	for i := 1; i <= 3; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.Do(context.Background(), func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}()
		require.Eventually(t, func() bool { return l.Pending() == i }, time.Second, time.Millisecond)
	}

	close(release)
	wg.Wait()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestLimiter_AbandonedBeforeDispatch(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Second, WithLimiterClock(clock.Now, clock.Sleep))

	release := make(chan struct{})
	started := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Do(context.Background(), func() {
			close(started)
			<-release
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	abandoned := make(chan error, 1)
	called := false
	go func() {
		abandoned <- l.Do(ctx, func() { called = true })
	}()
	require.Eventually(t, func() bool { return l.Pending() == 1 }, time.Second, time.Millisecond)

	cancel()
	assert.ErrorIs(t, <-abandoned, context.Canceled)

	close(release)
	<-done

	// Следующий вызов проходит, брошенный не запускался
	require.NoError(t, l.Do(context.Background(), func() {}))
	assert.False(t, called)
}

func TestLimiter_RestartsAfterIdle(t *testing.T) {
	clock := newFakeClock()
	l := NewLimiter(time.Second, WithLimiterClock(clock.Now, clock.Sleep))

	var first, second time.Time
	require.NoError(t, l.Do(context.Background(), func() { first = clock.Now() }))
	require.NoError(t, l.Do(context.Background(), func() { second = clock.Now() }))

	assert.GreaterOrEqual(t, second.Sub(first), time.Second)
}
