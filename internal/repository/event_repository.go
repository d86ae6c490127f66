package repository

import (
    "context"
    "database/sql"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
)

// EventRepo reads the events table. Events are created, updated and
// scheduled by a separate service; this core only needs the attendance
// cap and the start time, and never writes the table.
type EventRepo struct {
    db *sql.DB
}

// NewEventRepo returns a new EventRepo bound to the given database.
func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

// GetByID returns the event or ErrEventNotFound.
func (r *EventRepo) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
    var ev model.Event
    var startsAt sql.NullTime
    var capCol sql.NullInt64
    err := r.db.QueryRowContext(ctx,
        `SELECT event_id, title, starts_at, attendance_cap FROM events WHERE event_id = ?`,
        eventID,
    ).Scan(&ev.ID, &ev.Title, &startsAt, &capCol)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrEventNotFound
        }
        return nil, err
    }
    if startsAt.Valid {
        t := startsAt.Time.UTC()
        ev.StartsAt = &t
    }
    if capCol.Valid {
        n := int(capCol.Int64)
        ev.AttendanceCap = &n
    }
    return &ev, nil
}
