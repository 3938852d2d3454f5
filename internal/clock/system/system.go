// Package system provides the real clock implementation.
package system

import "time"

// Clock returns the current UTC time. It satisfies the sitemap.Clock
// interface so build timestamps can be faked in tests.
type Clock struct{}

// New creates a Clock.
func New() *Clock {
	return &Clock{}
}

// Now returns the current time in UTC.
func (Clock) Now() time.Time {
	return time.Now().UTC()
}
