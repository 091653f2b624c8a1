package domain

import (
	"errors"
	"time"
)

var ErrConflictingTravelTime = errors.New("departure and arrival time are mutually exclusive")

// Requested departure or arrival time for a journey query.
// At most one of the two may be set; neither means "now" for the backend.
type TravelTime struct {
	DepartAt *time.Time
	ArriveBy *time.Time
}

func DepartingAt(t time.Time) TravelTime { return TravelTime{DepartAt: &t} }

func ArrivingBy(t time.Time) TravelTime { return TravelTime{ArriveBy: &t} }

func (w TravelTime) Validate() error {
	if w.DepartAt != nil && w.ArriveBy != nil {
		return ErrConflictingTravelTime
	}
	return nil
}

// Moment returns whichever time is set and whether it is an arrival time.
func (w TravelTime) Moment() (t time.Time, arrival bool, ok bool) {
	switch {
	case w.ArriveBy != nil:
		return *w.ArriveBy, true, true
	case w.DepartAt != nil:
		return *w.DepartAt, false, true
	}
	return time.Time{}, false, false
}

// NextMondayAt returns the Monday of the week after now at the given
// time of day, in now's location. Queries are pinned to a fixed weekday
// morning so that cached durations describe a typical commute.
func NextMondayAt(now time.Time, hour, minute int) time.Time {
	offset := (int(now.Weekday()) + 6) % 7 // days since Monday
	monday := now.AddDate(0, 0, 7-offset)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), hour, minute, 0, 0, now.Location())
}
