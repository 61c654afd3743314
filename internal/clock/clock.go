// Package clock abstracts time so services can be tested at a fixed instant.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// System returns a clock backed by time.Now in UTC.
func System() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Fixed returns a clock frozen at t.
func Fixed(t time.Time) Clock {
	return fixedClock{t.UTC()}
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }
