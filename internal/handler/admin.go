package handler

import (
    "encoding/csv"
    "fmt"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"
    "golang.org/x/crypto/bcrypt"

    "github.com/waterwaycleanups/rsvp-service/internal/service"
)

// AdminHandler serves the operator surface: CSV export for the
// analytics layer and post-event no-show marking. These routes are not
// tied to a volunteer identity; callers present an operator API key in
// X-Admin-Key which is compared against a configured bcrypt hash. An
// empty hash disables the surface entirely.
type AdminHandler struct {
    Service *service.ReservationService
    KeyHash string
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(svc *service.ReservationService, keyHash string) *AdminHandler {
    if svc == nil {
        panic("nil service passed to NewAdminHandler")
    }
    return &AdminHandler{Service: svc, KeyHash: keyHash}
}

// authorize verifies the operator key against the configured bcrypt
// hash. It reports false after writing the 403 response itself;
// handlers must return immediately without touching the ledger.
func (h *AdminHandler) authorize(c echo.Context) bool {
    if h.KeyHash == "" {
        _ = c.JSON(http.StatusForbidden, echo.Map{"error": "admin surface disabled"})
        return false
    }
    key := c.Request().Header.Get("X-Admin-Key")
    if key == "" || bcrypt.CompareHashAndPassword([]byte(h.KeyHash), []byte(key)) != nil {
        _ = c.JSON(http.StatusForbidden, echo.Map{"error": "invalid admin key"})
        return false
    }
    return true
}

// Export handles GET /v1/admin/events/:id/rsvps/export. It streams the
// event's active ledger records as CSV for the analytics/export layer,
// which only ever reads.
func (h *AdminHandler) Export(c echo.Context) error {
    if !h.authorize(c) {
        return nil
    }
    eventID := c.Param("id")
    view, err := h.Service.Attendance(c.Request().Context(), eventID)
    if err != nil {
        return writeReservationError(c, err)
    }

    c.Response().Header().Set(echo.HeaderContentType, "text/csv")
    c.Response().Header().Set(echo.HeaderContentDisposition,
        fmt.Sprintf("attachment; filename=%q", "rsvps-"+eventID+".csv"))
    c.Response().WriteHeader(http.StatusOK)

    w := csv.NewWriter(c.Response())
    if err := w.Write([]string{"event_id", "attendee_id", "attendee_type", "email", "first_name", "last_name", "guardian_email", "age", "no_show", "created_at"}); err != nil {
        return err
    }
    for _, r := range view.Attendees {
        guardian := ""
        if r.GuardianEmail != nil {
            guardian = *r.GuardianEmail
        }
        age := ""
        if r.Age != nil {
            age = strconv.Itoa(*r.Age)
        }
        row := []string{
            r.EventID, r.AttendeeID, string(r.Type), r.Email,
            r.FirstName, r.LastName, guardian, age,
            strconv.FormatBool(r.NoShow),
            r.CreatedAt.UTC().Format(time.RFC3339),
        }
        if err := w.Write(row); err != nil {
            return err
        }
    }
    w.Flush()
    return w.Error()
}

// noShowBody identifies the record to flag and the desired flag state.
// NoShow defaults to true when omitted.
type noShowBody struct {
    AttendeeID string `json:"attendee_id"`
    NoShow     *bool  `json:"no_show"`
}

// MarkNoShow handles POST /v1/admin/events/:id/rsvps/no-show. Marking
// never creates or removes ledger rows; it only flags an existing
// record for the volunteer-metrics pipeline.
func (h *AdminHandler) MarkNoShow(c echo.Context) error {
    if !h.authorize(c) {
        return nil
    }
    var body noShowBody
    if err := c.Bind(&body); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"success": false, "error": "invalid_request", "message": "invalid request body"})
    }
    noShow := true
    if body.NoShow != nil {
        noShow = *body.NoShow
    }
    if err := h.Service.MarkNoShow(c.Request().Context(), c.Param("id"), body.AttendeeID, noShow); err != nil {
        return writeReservationError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{
        "success":     true,
        "attendee_id": body.AttendeeID,
        "no_show":     noShow,
    })
}
