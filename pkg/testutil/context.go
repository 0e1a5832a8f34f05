package testutil

import (
	"net/http"
	"time"
)

// WithOrigin sets the Origin header, as a browser would for a cross-origin fetch.
func WithOrigin(req *http.Request, origin string) *http.Request {
	req.Header.Set("Origin", origin)
	return req
}

// WithClientAddress sets the trusted proxy header carrying the client address.
func WithClientAddress(req *http.Request, header, address string) *http.Request {
	req.Header.Set(header, address)
	return req
}

// Clock is a manually advanced time source for handler tests.
type Clock struct {
	now time.Time
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
