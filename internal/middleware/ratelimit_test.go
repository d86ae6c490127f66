package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"

    "github.com/waterwaycleanups/rsvp-service/internal/config"
)

func rateContext(email string) echo.Context {
    e := echo.New()
    req := httptest.NewRequest(http.MethodPost, "/v1/events/ev1/rsvps", nil)
    req.Header.Set("X-Real-Ip", "203.0.113.9")
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/events/:id/rsvps")
    if email != "" {
        c.Set("volunteer_email", email)
    }
    return c
}

func TestBuildRateKeyStrategies(t *testing.T) {
    cases := []struct {
        strategy string
        email    string
        want     string
    }{
        {"ip", "", "rl:ip:203.0.113.9"},
        {"user", "ana@example.org", "rl:user:ana@example.org"},
        {"user", "", "rl:user:anon"},
        {"route", "", "rl:route:POST /v1/events/:id/rsvps"},
        {"ip_user", "ana@example.org", "rl:ip:203.0.113.9:user:ana@example.org"},
        {"ip_route", "", "rl:ip:203.0.113.9:route:POST /v1/events/:id/rsvps"},
        {"user_route", "ana@example.org", "rl:user:ana@example.org:route:POST /v1/events/:id/rsvps"},
        {"ip_user_route", "ana@example.org", "rl:ip:203.0.113.9:user:ana@example.org:route:POST /v1/events/:id/rsvps"},
        {"bogus", "", "rl:ip:203.0.113.9:user:anon:route:POST /v1/events/:id/rsvps"},
    }
    for _, tc := range cases {
        t.Run(tc.strategy+"/"+tc.email, func(t *testing.T) {
            cfg := config.RateLimitConfig{KeyStrategy: tc.strategy, Prefix: "rl"}
            if got := buildRateKey(cfg, rateContext(tc.email)); got != tc.want {
                t.Errorf("buildRateKey = %q, want %q", got, tc.want)
            }
        })
    }
}

func TestCallerIdentity(t *testing.T) {
    if got := callerIdentity(rateContext("ana@example.org")); got != "ana@example.org" {
        t.Errorf("identified caller = %q", got)
    }
    if got := callerIdentity(rateContext("")); got != "anon" {
        t.Errorf("anonymous caller = %q, want anon", got)
    }
}

// Without a Redis client the limiter must be a transparent passthrough.
func TestTokenBucketDisabledWithoutRedis(t *testing.T) {
    mw := NewTokenBucket(config.RateLimitConfig{Enabled: true}, nil)
    c := rateContext("")
    called := false
    err := mw(func(c echo.Context) error {
        called = true
        return c.NoContent(http.StatusOK)
    })(c)
    if err != nil || !called {
        t.Errorf("passthrough: err = %v, next called = %v", err, called)
    }
}

func TestAsInt64(t *testing.T) {
    cases := []struct {
        in   interface{}
        want int64
    }{
        {int64(7), 7},
        {int(3), 3},
        {float64(2), 2},
        {"12", 12},
        {"junk", 0},
        {nil, 0},
    }
    for _, tc := range cases {
        if got := asInt64(tc.in); got != tc.want {
            t.Errorf("asInt64(%v) = %d, want %d", tc.in, got, tc.want)
        }
    }
}
