package domain

import "time"

// Clock abstracts time for the session machine and the reminder scheduler so
// timeout and cutoff logic is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock Clock used in production.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }
