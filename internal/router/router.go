package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"

    "github.com/waterwaycleanups/rsvp-service/internal/handler"
    "github.com/waterwaycleanups/rsvp-service/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication:
// the health check and the aggregate attendance endpoint the public
// event listing pages poll for remaining capacity.
func RegisterRoutes(e *echo.Echo, h *handler.RSVPHandler) {
    e.GET("/healthz", handler.Health)
    e.GET("/v1/events/:id/attendance", h.Attendance)
}

// RegisterRSVP registers the authenticated reservation routes. The
// identity middleware resolves the caller's verified volunteer email
// (JWT from the auth service, or a legacy session token) before any
// handler runs; handlers trust that email without re-verifying it.
func RegisterRSVP(e *echo.Echo, h *handler.RSVPHandler, jwtSecret string, sessions middleware.SessionValidator) {
    g := e.Group("/v1/events")
    g.Use(middleware.Identity(jwtSecret, sessions))
    g.POST("/:id/rsvps", h.Submit)
    g.POST("/:id/rsvps/cancel", h.Cancel)
    g.GET("/:id/rsvps", h.ListAttendees)
    g.GET("/:id/rsvps/mine", h.ListMyAttendees)
}

// RegisterAdmin registers the operator surface: CSV export for the
// analytics layer and post-event no-show marking. These routes are
// guarded by the operator API key inside the handler, not by volunteer
// identity.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler) {
    g := e.Group("/v1/admin/events")
    g.GET("/:id/rsvps/export", a.Export)
    g.POST("/:id/rsvps/no-show", a.MarkNoShow)
}
