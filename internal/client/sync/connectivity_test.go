package sync

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestStatic(t *testing.T) {
	s := NewStatic(true)
	assert.True(t, s.Online(context.Background()))
	s.SetOnline(false)
	assert.False(t, s.Online(context.Background()))
}

func TestMonitor_CachesWithinInterval(t *testing.T) {
	clock := &testClock{now: t0}
	var calls atomic.Int32
	var fail atomic.Bool

	pinger := pingerFunc(func(ctx context.Context) error {
		calls.Add(1)
		if fail.Load() {
			return errors.New("connection refused")
		}
		return nil
	})

	m := NewMonitor(pinger, 30*time.Second, slog.New(slog.DiscardHandler), WithMonitorClock(clock.Now))

	assert.True(t, m.Online(context.Background()))
	assert.True(t, m.Online(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	// Сервер упал, но интервал ещё не прошёл
	fail.Store(true)
	clock.Advance(10 * time.Second)
	assert.True(t, m.Online(context.Background()))
	assert.Equal(t, int32(1), calls.Load())

	clock.Advance(30 * time.Second)
	assert.False(t, m.Online(context.Background()))
	assert.Equal(t, int32(2), calls.Load())

	// Invalidate форсирует новую проверку
	fail.Store(false)
	m.Invalidate()
	assert.True(t, m.Online(context.Background()))
	assert.Equal(t, int32(3), calls.Load())
}

func TestMonitor_PingTimeout(t *testing.T) {
	pinger := pingerFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	m := NewMonitor(pinger, time.Minute, slog.New(slog.DiscardHandler), WithPingTimeout(10*time.Millisecond))
	assert.False(t, m.Online(context.Background()))
}
