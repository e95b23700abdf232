package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Every resolution step reads it on its own; callers must not assume a single
// consistent "now" across one message.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}
