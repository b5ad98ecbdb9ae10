// Package billing computes the billing-cycle anchor for new subscriptions.
package billing

import (
	"fmt"
	"time"
)

// Defaults for the reference timezone and hour of day recurring charges are
// aligned to.
const (
	DefaultTimezone   = "America/Chicago"
	DefaultAnchorHour = 6
)

// Anchor returns the first day of the month following now, at hour:00:00
// wall-clock time in loc. The calendar month is taken from now as observed in
// loc, and the offset applied is the one in effect at the anchor itself.
func Anchor(now time.Time, loc *time.Location, hour int) time.Time {
	local := now.In(loc)
	return time.Date(local.Year(), local.Month()+1, 1, hour, 0, 0, 0, loc)
}

// AnchorUnix is Anchor as epoch seconds.
func AnchorUnix(now time.Time, loc *time.Location, hour int) int64 {
	return Anchor(now, loc, hour).Unix()
}

// Scheduler computes anchors from an injected clock.
type Scheduler struct {
	clock Clock
	loc   *time.Location
	hour  int
}

// NewScheduler creates a Scheduler for the named IANA timezone.
func NewScheduler(clock Clock, timezone string, hour int) (*Scheduler, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("anchor hour %d out of range 0-23", hour)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", timezone, err)
	}
	return &Scheduler{clock: clock, loc: loc, hour: hour}, nil
}

// NextAnchor returns the anchor for a subscription created now.
func (s *Scheduler) NextAnchor() time.Time {
	return Anchor(s.clock.Now(), s.loc, s.hour)
}

// Now reads the scheduler's clock.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Location returns the reference timezone.
func (s *Scheduler) Location() *time.Location {
	return s.loc
}
