package service

import (
	"crypto/rand"
	"io"
	"time"
)

// Clock is the time source for every expiry decision.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in UTC.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func nowFrom(c Clock) time.Time {
	if c == nil {
		return time.Now().UTC()
	}
	return c.Now().UTC()
}

func randFrom(r io.Reader) io.Reader {
	if r == nil {
		return rand.Reader
	}
	return r
}
