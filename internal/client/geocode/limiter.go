package geocode

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultMinInterval минимальный интервал между запросами к геокодеру
const DefaultMinInterval = time.Second

const (
	jobPending int32 = iota
	jobDispatched
	jobAbandoned
)

type job struct {
	fn    func()
	done  chan struct{}
	state atomic.Int32
}

// Limiter dispatches calls one at a time in FIFO order, spacing dispatch
// starts by at least the minimum interval. A consumer goroutine runs while
// calls are queued and exits when the queue drains.
type Limiter struct {
	now         func() time.Time
	sleep       func(time.Duration)
	last        time.Time // last время начала последнего запуска, пишет только consumer
	queue       []*job
	minInterval time.Duration
	mu          sync.Mutex
	running     bool
}

// LimiterOption настраивает Limiter
type LimiterOption func(*Limiter)

// WithLimiterClock подменяет часы и функцию ожидания (для тестов)
func WithLimiterClock(now func() time.Time, sleep func(time.Duration)) LimiterOption {
	return func(l *Limiter) {
		l.now = now
		l.sleep = sleep
	}
}

// NewLimiter создает Limiter
func NewLimiter(minInterval time.Duration, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		now:         time.Now,
		sleep:       time.Sleep,
		minInterval: minInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Do queues fn and waits until it has run. If ctx is done before fn is
// dispatched, fn is dropped from the queue and ctx.Err() is returned. Once
// dispatched, fn runs to completion even if the caller stops waiting.
func (l *Limiter) Do(ctx context.Context, fn func()) error {
	j := &job{fn: fn, done: make(chan struct{})}

	l.mu.Lock()
	l.queue = append(l.queue, j)
	if !l.running {
		l.running = true
		go l.run()
	}
	l.mu.Unlock()

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		j.state.CompareAndSwap(jobPending, jobAbandoned)
		return ctx.Err()
	}
}

// Pending returns the number of queued calls not yet dispatched
func (l *Limiter) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Limiter) next() *job {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.queue) == 0 {
		l.running = false
		return nil
	}
	j := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return j
}

func (l *Limiter) run() {
	for j := l.next(); j != nil; j = l.next() {
		if j.state.Load() == jobAbandoned {
			continue
		}

		if !l.last.IsZero() {
			if wait := l.minInterval - l.now().Sub(l.last); wait > 0 {
				l.sleep(wait)
			}
		}

		// Вызывающий мог уйти, пока мы ждали
		if !j.state.CompareAndSwap(jobPending, jobDispatched) {
			continue
		}

		l.last = l.now()
		j.fn()
		close(j.done)
	}
}
