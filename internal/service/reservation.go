// Package service implements the reservation core's business logic:
// resolving submitted attendees against the caller's identity,
// orchestrating the all-or-nothing reservation against the ledger, and
// the cancellation and query paths. It depends on narrow store
// interfaces so the logic can be exercised against in-memory fakes.
package service

import (
    "context"
    "errors"
    "time"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
)

// Ledger is the attendance ledger: the single shared mutable resource.
// Implementations must make Reserve and Cancel individually atomic:
// capacity check, duplicate check and insert indivisible in Reserve,
// ownership check and delete indivisible in Cancel. The MySQL
// implementation lives in internal/repository.
type Ledger interface {
    Reserve(ctx context.Context, eventID string, batch []model.Attendee) (total int, err error)
    Cancel(ctx context.Context, eventID, attendeeID, requesterEmail string) (*model.RSVP, error)
    CountActive(ctx context.Context, eventID string) (int, error)
    ListActive(ctx context.Context, eventID string) ([]model.RSVP, error)
    ListActiveForGuardian(ctx context.Context, eventID, guardianEmail string) ([]model.RSVP, error)
    MarkNoShow(ctx context.Context, eventID, attendeeID string, noShow bool) error
}

// EventStore looks up events (cap, start time). Read-only here.
type EventStore interface {
    GetByID(ctx context.Context, eventID string) (*model.Event, error)
}

// MinorStore resolves minor IDs to their owning guardian. Read-only here.
type MinorStore interface {
    GetByID(ctx context.Context, minorID string) (*model.Minor, error)
}

// ReservationService wires the resolver, the ledger and the external
// lookups together. It holds no mutable state of its own; all
// coordination between concurrent requests happens in the Ledger.
type ReservationService struct {
    ledger Ledger
    events EventStore
    minors MinorStore
    now    func() time.Time
}

// NewReservationService constructs a ReservationService. All
// dependencies must be non-nil.
func NewReservationService(ledger Ledger, events EventStore, minors MinorStore) *ReservationService {
    if ledger == nil || events == nil || minors == nil {
        panic("nil dependency passed to NewReservationService")
    }
    return &ReservationService{
        ledger: ledger,
        events: events,
        minors: minors,
        now:    time.Now,
    }
}

// AttendeeResult is one entry of a successful submission response.
type AttendeeResult struct {
    AttendeeID   string             `json:"attendee_id"`
    AttendeeType model.AttendeeType `json:"attendee_type"`
    Status       string             `json:"status"`
}

// SubmitResult reports a fully successful submission: one result per
// attendee plus the event's new active total and its cap.
type SubmitResult struct {
    Results           []AttendeeResult
    CurrentAttendance int
    AttendanceCap     *int
}

// Submit registers a whole batch of attendees for an event on behalf of
// the submitting volunteer. The batch is first resolved and
// de-duplicated (see ResolveAttendees), then handed to the ledger's
// atomic Reserve: either every attendee is registered or none is.
// Duplicate and capacity conflicts surface as the repository's
// structured errors so the caller can adjust and resubmit.
func (s *ReservationService) Submit(ctx context.Context, submitterEmail, eventID string, reqs []AttendeeRequest) (*SubmitResult, error) {
    batch, err := s.ResolveAttendees(ctx, submitterEmail, reqs)
    if err != nil {
        return nil, err
    }
    ev, err := s.events.GetByID(ctx, eventID)
    if err != nil {
        return nil, err
    }
    total, err := s.ledger.Reserve(ctx, eventID, batch)
    if err != nil {
        return nil, err
    }
    results := make([]AttendeeResult, 0, len(batch))
    for _, a := range batch {
        results = append(results, AttendeeResult{
            AttendeeID:   a.ID,
            AttendeeType: a.Type,
            Status:       "registered",
        })
    }
    return &SubmitResult{
        Results:           results,
        CurrentAttendance: total,
        AttendanceCap:     ev.AttendanceCap,
    }, nil
}

// EventAttendance is the read-path view of an event's ledger state.
type EventAttendance struct {
    Attendees         []model.RSVP
    CurrentAttendance int
    AttendanceCap     *int
}

// Attendance returns all active attendees for an event together with
// the active count and cap. It reads the same storage the reservation
// transaction writes; there is no separate replica to go stale.
// Unknown events report an empty ledger rather than an error, matching
// the behavior the content layer relies on.
func (s *ReservationService) Attendance(ctx context.Context, eventID string) (*EventAttendance, error) {
    attendees, err := s.ledger.ListActive(ctx, eventID)
    if err != nil {
        return nil, err
    }
    return s.attendanceView(ctx, eventID, attendees, len(attendees))
}

// GuardianAttendance returns the guardian's own record plus all their
// minors' records for an event. CurrentAttendance still reflects the
// whole event, not just the guardian's records.
func (s *ReservationService) GuardianAttendance(ctx context.Context, eventID, guardianEmail string) (*EventAttendance, error) {
    attendees, err := s.ledger.ListActiveForGuardian(ctx, eventID, guardianEmail)
    if err != nil {
        return nil, err
    }
    total, err := s.ledger.CountActive(ctx, eventID)
    if err != nil {
        return nil, err
    }
    return s.attendanceView(ctx, eventID, attendees, total)
}

func (s *ReservationService) attendanceView(ctx context.Context, eventID string, attendees []model.RSVP, total int) (*EventAttendance, error) {
    view := &EventAttendance{
        Attendees:         attendees,
        CurrentAttendance: total,
    }
    ev, err := s.events.GetByID(ctx, eventID)
    switch {
    case err == nil:
        view.AttendanceCap = ev.AttendanceCap
    case errors.Is(err, repository.ErrEventNotFound):
        // Unknown events keep the empty-ledger view with no cap.
    default:
        return nil, err
    }
    return view, nil
}

// MarkNoShow flags an attendee's registration as a no-show (or clears
// the flag). This is an operator action; ownership rules do not apply.
func (s *ReservationService) MarkNoShow(ctx context.Context, eventID, attendeeID string, noShow bool) error {
    if eventID == "" || attendeeID == "" {
        return &ValidationError{Message: "event_id and attendee_id are required"}
    }
    return s.ledger.MarkNoShow(ctx, eventID, attendeeID, noShow)
}
