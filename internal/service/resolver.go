package service

import (
    "context"
    "strings"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
)

// ValidationError marks a malformed request that was rejected before
// any store access. It is never retried.
type ValidationError struct {
    Message string
}

func (e *ValidationError) Error() string { return e.Message }

// AttendeeRequest is one raw entry of a submission batch as bound from
// the request body. Type selects the variant: "volunteer" entries are
// implicitly the submitter, "minor" entries must name one of the
// submitter's minors.
type AttendeeRequest struct {
    Type      string `json:"type"`
    MinorID   string `json:"minor_id,omitempty"`
    FirstName string `json:"first_name"`
    LastName  string `json:"last_name"`
    Age       *int   `json:"age,omitempty"`
}

// ResolveAttendees turns the raw request entries into a normalized,
// de-duplicated batch of attendees:
//
//   - volunteer entries resolve to the submitter (attendee ID = their
//     email);
//   - minor entries are looked up in the minors store, and the whole
//     batch fails with repository.ErrForbidden when the minor's
//     guardian is not the submitter;
//   - entries naming the same attendee twice collapse to the first
//     occurrence before any capacity accounting;
//   - an empty list, an unrecognised type or missing display fields
//     fail with ValidationError before any ledger access.
func (s *ReservationService) ResolveAttendees(ctx context.Context, submitterEmail string, reqs []AttendeeRequest) ([]model.Attendee, error) {
    if strings.TrimSpace(submitterEmail) == "" {
        return nil, &ValidationError{Message: "submitter email is required"}
    }
    if len(reqs) == 0 {
        return nil, &ValidationError{Message: "at least one attendee is required"}
    }
    batch := make([]model.Attendee, 0, len(reqs))
    seen := make(map[string]struct{}, len(reqs))
    for _, req := range reqs {
        typ := model.AttendeeType(strings.ToLower(strings.TrimSpace(req.Type)))
        if !typ.Valid() {
            return nil, &ValidationError{Message: "attendee type must be \"volunteer\" or \"minor\""}
        }
        if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
            return nil, &ValidationError{Message: "first_name and last_name are required for every attendee"}
        }
        a := model.Attendee{
            Type:          typ,
            FirstName:     strings.TrimSpace(req.FirstName),
            LastName:      strings.TrimSpace(req.LastName),
            GuardianEmail: submitterEmail,
            Age:           req.Age,
        }
        switch typ {
        case model.AttendeeTypeVolunteer:
            a.ID = submitterEmail
        case model.AttendeeTypeMinor:
            if strings.TrimSpace(req.MinorID) == "" {
                return nil, &ValidationError{Message: "minor_id is required for minor attendees"}
            }
            minor, err := s.minors.GetByID(ctx, req.MinorID)
            if err != nil {
                return nil, err
            }
            if minor.GuardianEmail != submitterEmail {
                return nil, repository.ErrForbidden
            }
            a.ID = minor.ID
            if a.Age == nil {
                a.Age = minor.Age(s.now().UTC())
            }
        }
        if _, dup := seen[a.ID]; dup {
            continue
        }
        seen[a.ID] = struct{}{}
        batch = append(batch, a)
    }
    return batch, nil
}
