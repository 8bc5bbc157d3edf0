package timeutil

import "time"

// Clock returns the current time. Services hold one so tests can move time.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}
