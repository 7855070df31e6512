package service

import "time"

type Clock interface {
	Now() time.Time
}

// RealClock reads the wall clock in Location, or the local zone when nil.
type RealClock struct {
	Location *time.Location
}

func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
