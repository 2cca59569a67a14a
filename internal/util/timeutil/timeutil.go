package timeutil

import "time"

// Clock wraps the current time in an interface for testing.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// Ticker wraps `time.Ticker` in an interface for testing.
type Ticker interface {
	Chan() <-chan time.Time
	Stop()
}

// NewTickerFunc is a factory function that creates a new `Ticker`.
type NewTickerFunc func(d time.Duration) Ticker
