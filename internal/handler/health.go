package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

// Health is the liveness endpoint used by the load balancer. It does
// not touch the database; a wedged ledger should surface as request
// errors, not as the instance being pulled from rotation.
func Health(c echo.Context) error {
    return c.String(http.StatusOK, "ok")
}
