// Package apptime decides where "now" falls relative to a scheduled
// appointment. All functions are pure; the scheduled wall-clock date and time
// are interpreted in now's location.
package apptime

import (
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"

	// JoinLead is how early before the scheduled instant joining opens.
	JoinLead = 5 * time.Minute
	// JoinGrace is how long after the scheduled instant joining stays open.
	JoinGrace = 30 * time.Minute
)

// ScheduledAt parses a YYYY-MM-DD date and HH:MM time in loc.
func ScheduledAt(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse appointment time %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Window returns the inclusive joinable range around scheduled.
func Window(scheduled time.Time) (start, end time.Time) {
	return scheduled.Add(-JoinLead), scheduled.Add(JoinGrace)
}

// IsJoinable reports whether now lies in [scheduled-5m, scheduled+30m].
func IsJoinable(date, clock string, now time.Time) (bool, error) {
	scheduled, err := ScheduledAt(date, clock, now.Location())
	if err != nil {
		return false, err
	}
	start, end := Window(scheduled)
	return !now.Before(start) && !now.After(end), nil
}

// IsPast reports whether now is later than scheduled+30m.
func IsPast(date, clock string, now time.Time) (bool, error) {
	scheduled, err := ScheduledAt(date, clock, now.Location())
	if err != nil {
		return false, err
	}
	_, end := Window(scheduled)
	return now.After(end), nil
}

// IsUpcoming reports whether now is earlier than scheduled-5m.
func IsUpcoming(date, clock string, now time.Time) (bool, error) {
	scheduled, err := ScheduledAt(date, clock, now.Location())
	if err != nil {
		return false, err
	}
	start, _ := Window(scheduled)
	return now.Before(start), nil
}
