// Package repository defines error values shared across repositories so
// that handlers can distinguish failure scenarios. ErrForbidden covers
// ownership violations (HTTP 403); the NotFound sentinels cover absent
// records (HTTP 404); the two structured conflict errors carry the
// detail a client needs to correct its batch without a second round
// trip (HTTP 409).
package repository

import (
    "errors"
    "fmt"
    "strings"
)

// ErrForbidden is returned when the caller attempts an operation on a
// record they do not own, such as cancelling another guardian's minor.
var ErrForbidden = errors.New("forbidden")

// ErrRSVPNotFound is returned when a cancellation targets a record that
// does not exist (or was already cancelled). It is deliberately
// distinct from ErrForbidden so callers can treat a retry of their own
// successful cancellation as already done.
var ErrRSVPNotFound = errors.New("rsvp not found")

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// ErrMinorNotFound is returned when a submission references a minor_id
// with no minors record.
var ErrMinorNotFound = errors.New("minor not found")

// DuplicateAttendeesError aborts a whole submission when one or more of
// the requested attendees already hold an active registration for the
// event. No records are created; the caller can drop the listed IDs and
// resubmit the remainder.
type DuplicateAttendeesError struct {
    AttendeeIDs []string
}

func (e *DuplicateAttendeesError) Error() string {
    return fmt.Sprintf("already registered: %s", strings.Join(e.AttendeeIDs, ", "))
}

// CapacityExceededError aborts a whole submission when the batch does
// not fit in the event's remaining capacity. Partial admission is never
// performed.
type CapacityExceededError struct {
    Remaining int
}

func (e *CapacityExceededError) Error() string {
    return fmt.Sprintf("capacity exceeded: %d spots remaining", e.Remaining)
}
