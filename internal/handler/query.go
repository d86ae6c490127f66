package handler

import (
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/waterwaycleanups/rsvp-service/internal/middleware"
    "github.com/waterwaycleanups/rsvp-service/internal/model"
)

// ListAttendees handles GET /v1/events/:id/rsvps. It returns every
// active attendee for the event plus the active count and cap. The
// read goes against the same storage the reservation transaction
// writes, so the counts the content layer renders never lag behind the
// ledger.
func (h *RSVPHandler) ListAttendees(c echo.Context) error {
    view, err := h.Service.Attendance(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeReservationError(c, err)
    }
    return c.JSON(http.StatusOK, attendanceResponse(view.Attendees, view.CurrentAttendance, view.AttendanceCap))
}

// ListMyAttendees handles GET /v1/events/:id/rsvps/mine.  It returns
// the caller's own registration plus all of their minors' registrations
// for the event; current_attendance still counts the whole event so the
// client can show remaining capacity.
func (h *RSVPHandler) ListMyAttendees(c echo.Context) error {
    email, ok := middleware.VolunteerEmail(c)
    if !ok {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    view, err := h.Service.GuardianAttendance(c.Request().Context(), c.Param("id"), email)
    if err != nil {
        return writeReservationError(c, err)
    }
    return c.JSON(http.StatusOK, attendanceResponse(view.Attendees, view.CurrentAttendance, view.AttendanceCap))
}

// Attendance handles GET /v1/events/:id/attendance. It exposes only
// the aggregate count and cap for event listing pages.
func (h *RSVPHandler) Attendance(c echo.Context) error {
    view, err := h.Service.Attendance(c.Request().Context(), c.Param("id"))
    if err != nil {
        return writeReservationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "current_attendance": view.CurrentAttendance,
        "attendance_cap":     view.AttendanceCap,
    })
}

func attendanceResponse(attendees []model.RSVP, total int, capVal *int) echo.Map {
    items := make([]echo.Map, 0, len(attendees))
    for i := range attendees {
        items = append(items, attendeeJSON(&attendees[i]))
    }
    return echo.Map{
        "attendees":          items,
        "current_attendance": total,
        "attendance_cap":     capVal,
    }
}

// attendeeJSON shapes one ledger record for responses. Legacy rows have
// already been normalized by the repository, so attendee_id and
// attendee_type are always present.
func attendeeJSON(r *model.RSVP) echo.Map {
    m := echo.Map{
        "event_id":      r.EventID,
        "attendee_id":   r.AttendeeID,
        "attendee_type": r.Type,
        "email":         r.Email,
        "first_name":    r.FirstName,
        "last_name":     r.LastName,
        "no_show":       r.NoShow,
        "created_at":    r.CreatedAt.UTC().Format(time.RFC3339),
    }
    if r.GuardianEmail != nil {
        m["guardian_email"] = *r.GuardianEmail
    }
    if r.Age != nil {
        m["age"] = *r.Age
    }
    return m
}
