package model

import "time"

// Event mirrors the subset of the events table this service reads.
// Events are created and scheduled elsewhere; the reservation core only
// needs the capacity ceiling and the start time.
//
// Fields:
//  ID            – events.event_id
//  Title         – events.title
//  StartsAt      – events.starts_at (nullable; some events have no fixed start)
//  AttendanceCap – events.attendance_cap (nullable; nil means unlimited)
type Event struct {
    ID            string
    Title         string
    StartsAt      *time.Time
    AttendanceCap *int
}

// HoursBefore returns the number of hours between now and the event's
// start, rounded to one decimal, or nil when the start time is unknown.
// Negative values mean the event has already started.
func (e *Event) HoursBefore(now time.Time) *float64 {
    if e.StartsAt == nil {
        return nil
    }
    h := e.StartsAt.Sub(now).Hours()
    rounded := float64(int64(h*10+sign(h)*0.5)) / 10
    return &rounded
}

func sign(f float64) float64 {
    if f < 0 {
        return -1
    }
    return 1
}
