package service

import "time"

// Clock supplies the current time to token issuance and ledger checks.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now returns f().
func (f ClockFunc) Now() time.Time {
	return f()
}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() Clock {
	return ClockFunc(time.Now)
}
