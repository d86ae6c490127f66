package service

import (
    "context"
    "strings"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
)

// CancelResult reports a successful cancellation. HoursBeforeEvent is
// how far ahead of the event start the cancellation happened, rounded
// to one decimal; it is nil when the event has no known start time.
// The value is informational only; the core never blocks a
// cancellation for arriving too close to the event; any such policy is
// a caller-side gate over this number.
type CancelResult struct {
    AttendeeID       string
    AttendeeType     model.AttendeeType
    HoursBeforeEvent *float64
}

// Cancel removes one attendee's registration on behalf of the
// requester. Ownership is enforced by the ledger: volunteers cancel
// their own record, guardians cancel their minors'. A repeat of an
// already-completed cancellation yields repository.ErrRSVPNotFound,
// never a second success, so retries after a timeout are safe.
func (s *ReservationService) Cancel(ctx context.Context, requesterEmail, eventID, attendeeID, attendeeType string) (*CancelResult, error) {
    if strings.TrimSpace(eventID) == "" || strings.TrimSpace(attendeeID) == "" {
        return nil, &ValidationError{Message: "event_id and attendee_id are required"}
    }
    if !model.AttendeeType(attendeeType).Valid() {
        return nil, &ValidationError{Message: "attendee_type must be \"volunteer\" or \"minor\""}
    }
    rec, err := s.ledger.Cancel(ctx, eventID, attendeeID, requesterEmail)
    if err != nil {
        return nil, err
    }
    res := &CancelResult{
        AttendeeID:   rec.AttendeeID,
        AttendeeType: rec.Type,
    }
    // Timing metadata only; a missing event or start time is not an
    // error at this point, the record is already gone.
    if ev, evErr := s.events.GetByID(ctx, eventID); evErr == nil {
        res.HoursBeforeEvent = ev.HoursBefore(s.now().UTC())
    }
    return res, nil
}
