package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"

    "github.com/waterwaycleanups/rsvp-service/internal/config"
    "github.com/waterwaycleanups/rsvp-service/internal/database"
    "github.com/waterwaycleanups/rsvp-service/internal/handler"
    "github.com/waterwaycleanups/rsvp-service/internal/middleware"
    "github.com/waterwaycleanups/rsvp-service/internal/queue"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
    "github.com/waterwaycleanups/rsvp-service/internal/router"
    "github.com/waterwaycleanups/rsvp-service/internal/service"
)

func main() {
    _ = godotenv.Load() // optional .env for local development
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    // Redis backs the session cache and the rate limiter; both degrade
    // gracefully when it is unreachable.
    rdb := config.NewRedisClient()
    if rdb == nil {
        log.Printf("redis unavailable; session cache and rate limiting disabled")
    }

    rsvps := repository.NewRSVPRepo(db)
    events := repository.NewEventRepo(db)
    minors := repository.NewMinorRepo(db)
    sessions := repository.NewSessionRepo(db, rdb)

    svc := service.NewReservationService(rsvps, events, minors)
    rsvpHandler := handler.NewRSVPHandler(svc)
    adminHandler := handler.NewAdminHandler(svc, cfg.AdminKeyHash)

    e := echo.New()
    e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    router.RegisterRoutes(e, rsvpHandler)
    router.RegisterRSVP(e, rsvpHandler, cfg.JWTSecret, sessions)
    router.RegisterAdmin(e, adminHandler)

    // Background consumer mirrors confirmed/cancelled RSVPs into
    // logs/rsvp.log; it reconnects on broker failures forever.
    go func() {
        if err := queue.StartRSVPConsumer(); err != nil {
            log.Printf("rsvp consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)

    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
