package timeutil

import "time"

var (
	_ Clock  = realClock{}
	_ Ticker = (*timeTicker)(nil)
)

type realClock struct{}

// RealClock returns a `Clock` backed by the `time` package.
func RealClock() Clock {
	return realClock{}
}

func (realClock) Now() time.Time {
	return time.Now()
}

func (realClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

type timeTicker struct {
	*time.Ticker
}

func (t *timeTicker) Chan() <-chan time.Time {
	return t.C
}

// NewTicker creates a new `Ticker` wrapping `time.NewTicker`.
func NewTicker(d time.Duration) Ticker {
	return &timeTicker{time.NewTicker(d)}
}
