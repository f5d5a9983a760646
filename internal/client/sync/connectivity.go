package sync

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// Connectivity reports whether the backend is currently reachable.
// The synchronizer reads it at call time and never caches it.
type Connectivity interface {
	Online(ctx context.Context) bool
}

// Static is a Connectivity that is switched by hand
type Static struct {
	online atomic.Bool
}

// NewStatic создает Static в заданном режиме
func NewStatic(online bool) *Static {
	s := &Static{}
	s.online.Store(online)
	return s
}

// Online implements Connectivity
func (s *Static) Online(context.Context) bool {
	return s.online.Load()
}

// SetOnline переключает режим
func (s *Static) SetOnline(online bool) {
	s.online.Store(online)
}

// Pinger проверяет доступность бэкенда
type Pinger interface {
	Ping(ctx context.Context) error
}

// DefaultPingTimeout ограничивает одну проверку доступности
const DefaultPingTimeout = 3 * time.Second

// Monitor is a Connectivity that probes the backend lazily: the last probe
// result is reused for interval, after which the next Online call probes
// again. Concurrent callers share one probe.
type Monitor struct {
	pinger    Pinger
	logger    *slog.Logger
	now       func() time.Time
	group     singleflight.Group
	checkedAt atomic.Int64 // checkedAt unix nano последней проверки, 0 если проверки не было
	interval  time.Duration
	timeout   time.Duration
	online    atomic.Bool
}

// MonitorOption настраивает Monitor
type MonitorOption func(*Monitor)

// WithPingTimeout задает таймаут одной проверки
func WithPingTimeout(timeout time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.timeout = timeout
	}
}

// WithMonitorClock подменяет часы (для тестов)
func WithMonitorClock(now func() time.Time) MonitorOption {
	return func(m *Monitor) {
		m.now = now
	}
}

// NewMonitor создает Monitor
func NewMonitor(pinger Pinger, interval time.Duration, logger *slog.Logger, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		pinger:   pinger,
		logger:   logger,
		now:      time.Now,
		interval: interval,
		timeout:  DefaultPingTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Online implements Connectivity
func (m *Monitor) Online(ctx context.Context) bool {
	last := m.checkedAt.Load()
	if last != 0 && m.now().Sub(time.Unix(0, last)) < m.interval {
		return m.online.Load()
	}

	v, _, _ := m.group.Do("ping", func() (any, error) {
		return m.probe(ctx), nil
	})
	return v.(bool)
}

// Invalidate drops the cached result so the next Online call probes
func (m *Monitor) Invalidate() {
	m.checkedAt.Store(0)
}

func (m *Monitor) probe(ctx context.Context) bool {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.pinger.Ping(pingCtx)
	online := err == nil

	previous := m.online.Swap(online)
	first := m.checkedAt.Swap(m.now().UnixNano()) == 0

	if first || previous != online {
		if online {
			m.logger.InfoContext(ctx, "Switched to online mode")
		} else {
			m.logger.WarnContext(ctx, "Switched to offline mode", slog.Any("error", err))
		}
	}
	return online
}
