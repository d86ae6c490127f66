package handler

import (
    "context"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/waterwaycleanups/rsvp-service/internal/middleware"
    "github.com/waterwaycleanups/rsvp-service/internal/model"
    "github.com/waterwaycleanups/rsvp-service/internal/queue"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
    "github.com/waterwaycleanups/rsvp-service/internal/service"
)

// RSVPHandler binds the reservation core to HTTP. All methods assume
// the identity middleware has stored the caller's verified email in the
// context. Publishing queue events is best-effort and happens after the
// ledger transaction has committed; the response never waits on the
// broker.
type RSVPHandler struct {
    Service *service.ReservationService
    Publish bool // enables queue publishing; off in tests
}

// NewRSVPHandler constructs an RSVPHandler.
func NewRSVPHandler(svc *service.ReservationService) *RSVPHandler {
    if svc == nil {
        panic("nil service passed to NewRSVPHandler")
    }
    return &RSVPHandler{Service: svc, Publish: true}
}

// submitBody accepts the multi-attendee shape and, for backwards
// compatibility with the original single-person form, a flat
// first_name/last_name pair that registers the caller alone.
type submitBody struct {
    Attendees []service.AttendeeRequest `json:"attendees"`
    FirstName string                    `json:"first_name"`
    LastName  string                    `json:"last_name"`
    Age       *int                      `json:"age"`
}

// Submit handles POST /v1/events/:id/rsvps. It registers the whole
// batch of attendees or none of them. Conflicts come back as 409 with
// enough structure for the client to fix its batch: the duplicate
// attendee IDs, or the number of spots remaining.
func (h *RSVPHandler) Submit(c echo.Context) error {
    email, ok := middleware.VolunteerEmail(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID := c.Param("id")
    if eventID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid_request", "message": "event id is required"})
    }
    var body submitBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid_request", "message": "invalid request body"})
    }
    reqs := body.Attendees
    if len(reqs) == 0 && (body.FirstName != "" || body.LastName != "") {
        // Legacy flat shape: the caller registering only themselves.
        reqs = []service.AttendeeRequest{{
            Type:      string(model.AttendeeTypeVolunteer),
            FirstName: body.FirstName,
            LastName:  body.LastName,
            Age:       body.Age,
        }}
    }

    result, err := h.Service.Submit(c.Request().Context(), email, eventID, reqs)
    if err != nil {
        return writeReservationError(c, err)
    }

    if h.Publish {
        go publishConfirmed(eventID, email, result)
    }

    return c.JSON(http.StatusOK, echo.Map{
        "success":            true,
        "results":            result.Results,
        "current_attendance": result.CurrentAttendance,
        "attendance_cap":     result.AttendanceCap,
    })
}

// cancelBody identifies the single record to cancel.
type cancelBody struct {
    AttendeeID   string `json:"attendee_id"`
    AttendeeType string `json:"attendee_type"`
}

// Cancel handles POST /v1/events/:id/rsvps/cancel. A record that is
// already gone yields 404 and a record owned by someone else yields
// 403; clients rely on the distinction to treat a retried cancellation
// of their own record as already done.
func (h *RSVPHandler) Cancel(c echo.Context) error {
    email, ok := middleware.VolunteerEmail(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    eventID := c.Param("id")
    var body cancelBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid_request", "message": "invalid request body"})
    }

    result, err := h.Service.Cancel(c.Request().Context(), email, eventID, body.AttendeeID, body.AttendeeType)
    if err != nil {
        return writeReservationError(c, err)
    }

    if h.Publish {
        go publishCancelled(eventID, email, result)
    }

    resp := echo.Map{
        "success":       true,
        "attendee_id":   result.AttendeeID,
        "attendee_type": result.AttendeeType,
    }
    if result.HoursBeforeEvent != nil {
        resp["hours_before_event"] = *result.HoursBeforeEvent
    }
    return c.JSON(http.StatusOK, resp)
}

// writeReservationError maps the core's error taxonomy onto HTTP
// responses. Every 4xx carries a stable error code plus the structured
// detail the client needs to self-correct.
func writeReservationError(c echo.Context, err error) error {
    var vErr *service.ValidationError
    if errors.As(err, &vErr) {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid_request", "message": vErr.Message})
    }
    var dupErr *repository.DuplicateAttendeesError
    if errors.As(err, &dupErr) {
        return c.JSON(http.StatusConflict, echo.Map{
            "success":             false,
            "error":               "duplicate_attendees",
            "duplicate_attendees": dupErr.AttendeeIDs,
        })
    }
    var capErr *repository.CapacityExceededError
    if errors.As(err, &capErr) {
        return c.JSON(http.StatusConflict, echo.Map{
            "success":            false,
            "error":              "capacity_exceeded",
            "remaining_capacity": capErr.Remaining,
        })
    }
    switch {
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"success": false, "error": "forbidden"})
    case errors.Is(err, repository.ErrRSVPNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "rsvp_not_found"})
    case errors.Is(err, repository.ErrEventNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "event_not_found"})
    case errors.Is(err, repository.ErrMinorNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"success": false, "error": "minor_not_found"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"success": false, "error": "internal_error"})
}

func publishConfirmed(eventID, email string, result *service.SubmitResult) {
    attendees := make([]queue.ConfirmedAttendee, 0, len(result.Results))
    for _, r := range result.Results {
        attendees = append(attendees, queue.ConfirmedAttendee{
            AttendeeID:   r.AttendeeID,
            AttendeeType: string(r.AttendeeType),
        })
    }
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = queue.PublishRSVPConfirmed(ctx, queue.RSVPConfirmedEvent{
        EventID:           eventID,
        GuardianEmail:     email,
        Attendees:         attendees,
        CurrentAttendance: result.CurrentAttendance,
        AttendanceCap:     result.AttendanceCap,
        ConfirmedAt:       time.Now().UTC().Format(time.RFC3339),
    })
}

func publishCancelled(eventID, email string, result *service.CancelResult) {
    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()
    _ = queue.PublishRSVPCancelled(ctx, queue.RSVPCancelledEvent{
        EventID:          eventID,
        GuardianEmail:    email,
        AttendeeID:       result.AttendeeID,
        AttendeeType:     string(result.AttendeeType),
        HoursBeforeEvent: result.HoursBeforeEvent,
        CancelledAt:      time.Now().UTC().Format(time.RFC3339),
    })
}
