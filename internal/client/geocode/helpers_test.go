package geocode

import (
	"sync"
	"time"
)

var t0 = time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

// fakeClock потокобезопасные часы, sleep сдвигает время вперед
type fakeClock struct {
	now time.Time
	mu  sync.Mutex
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: t0}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(d time.Duration) {
	c.Advance(d)
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
