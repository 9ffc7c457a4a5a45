package scheduler

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// ClockFunc adapts a plain function, usually a fixed instant in tests.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
