package model

import "time"

// RSVP represents one row of the event_rsvps table: a single attendee's
// active registration for a single event.  The composite key
// (event_id, attendee_id) is unique among active records; cancellation
// deletes the row, so presence means active.
//
// Legacy rows written before multi-person registrations exist with only
// an email and NULL attendee_id/attendee_type.  The repository layer
// synthesizes AttendeeID = Email and Type = volunteer for those rows on
// every read, so consumers of this struct never see the legacy shape.
//
// Fields:
//  EventID       – event_rsvps.event_id (partition key)
//  AttendeeID    – event_rsvps.attendee_id (email for volunteers, minor_id for minors)
//  Type          – event_rsvps.attendee_type
//  Email         – event_rsvps.email (contact email; the guardian's for minors)
//  FirstName     – event_rsvps.first_name
//  LastName      – event_rsvps.last_name
//  GuardianEmail – event_rsvps.guardian_email (nullable; set for minors)
//  Age           – event_rsvps.age (nullable; minor age snapshot)
//  NoShow        – event_rsvps.no_show (set after the event by an operator)
//  CreatedAt     – event_rsvps.created_at
//  UpdatedAt     – event_rsvps.updated_at
type RSVP struct {
    EventID       string
    AttendeeID    string
    Type          AttendeeType
    Email         string
    FirstName     string
    LastName      string
    GuardianEmail *string
    Age           *int
    NoShow        bool
    CreatedAt     time.Time
    UpdatedAt     time.Time
}

// OwnedBy reports whether the given volunteer email may cancel this
// record: volunteers own their own row (attendee_id is their email),
// guardians own their minors' rows (guardian_email matches).
func (r *RSVP) OwnedBy(email string) bool {
    switch r.Type {
    case AttendeeTypeVolunteer:
        return r.AttendeeID == email
    case AttendeeTypeMinor:
        return r.GuardianEmail != nil && *r.GuardianEmail == email
    }
    return false
}
