// Package queue defines message payloads exchanged over the message broker.
package queue

// RSVPConfirmedEvent is published once per successful submission. It
// carries enough for downstream consumers (notification sender, metrics)
// to act without querying the primary database.
type RSVPConfirmedEvent struct {
    EventID           string              `json:"event_id"`
    GuardianEmail     string              `json:"guardian_email"`
    Attendees         []ConfirmedAttendee `json:"attendees"`
    CurrentAttendance int                 `json:"current_attendance"`
    AttendanceCap     *int                `json:"attendance_cap,omitempty"`
    ConfirmedAt       string              `json:"confirmed_at"`
}

// ConfirmedAttendee is one registered attendee inside an
// RSVPConfirmedEvent.
type ConfirmedAttendee struct {
    AttendeeID   string `json:"attendee_id"`
    AttendeeType string `json:"attendee_type"`
}

// RSVPCancelledEvent is published once per successful cancellation.
type RSVPCancelledEvent struct {
    EventID          string   `json:"event_id"`
    GuardianEmail    string   `json:"guardian_email"`
    AttendeeID       string   `json:"attendee_id"`
    AttendeeType     string   `json:"attendee_type"`
    HoursBeforeEvent *float64 `json:"hours_before_event,omitempty"`
    CancelledAt      string   `json:"cancelled_at"`
}
