package middleware

// auth.go resolves the caller's verified volunteer email and stores it
// in the request context under "volunteer_email". Two credential forms
// are accepted during the session migration: a Bearer JWT issued by the
// auth service (HS256, email in the "email" or "sub" claim) and a
// legacy opaque session token in the X-Session-Token header, validated
// against the session store. The reservation core trusts the resulting
// email; it never re-verifies identity itself.

import (
    "context"
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// SessionValidator resolves an opaque session token to a verified
// email. Implemented by repository.SessionRepo.
type SessionValidator interface {
    Validate(ctx context.Context, token string) (string, error)
}

// Identity returns an echo middleware that authenticates the request
// via JWT or session token and injects the volunteer's email into the
// context. Requests with neither credential, or with an invalid one,
// are rejected with 401.
func Identity(jwtSecret string, sessions SessionValidator) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if auth := c.Request().Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
                raw := strings.TrimPrefix(auth, "Bearer ")
                email, err := emailFromJWT(raw, jwtSecret)
                if err != nil {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
                }
                c.Set("volunteer_email", email)
                return next(c)
            }
            if token := c.Request().Header.Get("X-Session-Token"); token != "" {
                if sessions == nil {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "session auth unavailable"})
                }
                email, err := sessions.Validate(c.Request().Context(), token)
                if err != nil {
                    return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired session"})
                }
                c.Set("volunteer_email", email)
                return next(c)
            }
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing credentials"})
        }
    }
}

// emailFromJWT parses and validates the token and extracts the email
// claim. Only HMAC signatures are accepted.
func emailFromJWT(raw, secret string) (string, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, echo.ErrUnauthorized
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return "", echo.ErrUnauthorized
    }
    claims, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return "", echo.ErrUnauthorized
    }
    if v, ok := claims["email"].(string); ok && v != "" {
        return v, nil
    }
    if v, ok := claims["sub"].(string); ok && strings.Contains(v, "@") {
        return v, nil
    }
    return "", echo.ErrUnauthorized
}

// VolunteerEmail extracts the verified email stored by Identity. The
// second return value is false when the middleware did not run.
func VolunteerEmail(c echo.Context) (string, bool) {
    v, ok := c.Get("volunteer_email").(string)
    if !ok || v == "" {
        return "", false
    }
    return v, true
}
