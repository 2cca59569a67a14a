package timeutil

import (
	"sync"
	"time"
)

var (
	_ Clock  = (*FakeClock)(nil)
	_ Ticker = (*FakeTicker)(nil)
)

// FakeClock only moves when told to. It is safe for concurrent use.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *FakeClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

type FakeTicker struct {
	ch chan time.Time
}

func NewFakeTicker() *FakeTicker {
	return &FakeTicker{make(chan time.Time)}
}

func (t *FakeTicker) Chan() <-chan time.Time {
	return t.ch
}

func (t *FakeTicker) Stop() {}

// Tick blocks until the ticker's consumer receives the tick.
func (t *FakeTicker) Tick(now time.Time) {
	t.ch <- now
}

func WrapFakeTicker(ticker *FakeTicker) NewTickerFunc {
	return func(d time.Duration) Ticker {
		return ticker
	}
}
