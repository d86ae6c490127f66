package repository

import (
    "context"
    "database/sql"
    "strings"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
)

// RSVPRepo is the attendance ledger: one row per (event, attendee)
// pair in the event_rsvps table. Rows are created only through Reserve
// and removed only through Cancel; both run as single transactions so
// the ledger is the sole coordination point between concurrent
// requests.
//
// Legacy rows predating multi-person registrations carry only an email
// with NULL attendee_id and attendee_type. Every query normalizes them
// with COALESCE(attendee_id, email) and 'volunteer', so the uniqueness
// and ownership rules apply uniformly regardless of how a row was
// originally written.
type RSVPRepo struct {
    db *sql.DB
}

// NewRSVPRepo returns a new RSVPRepo bound to the given database.
func NewRSVPRepo(db *sql.DB) *RSVPRepo { return &RSVPRepo{db: db} }

// rsvpColumns is the normalized projection used by every read path.
const rsvpColumns = `event_id,
       COALESCE(attendee_id, email),
       COALESCE(attendee_type, 'volunteer'),
       email, first_name, last_name,
       guardian_email, age, no_show,
       created_at, updated_at`

// Reserve atomically registers a whole batch of attendees for an event.
// It runs one transaction that:
//
//  1. locks the event row with SELECT ... FOR UPDATE, serializing all
//     submissions for the same event and re-reading the cap at commit
//     time rather than trusting the caller's earlier snapshot;
//  2. rejects the batch with DuplicateAttendeesError when any attendee
//     already holds an active registration, listing the offenders;
//  3. re-counts active registrations and applies the capacity policy,
//     rejecting the batch with CapacityExceededError when it does not
//     fit;
//  4. inserts all rows in one statement and commits.
//
// Either every attendee in the batch is registered or none is. Two
// submissions racing for the last spots cannot both succeed because the
// row lock makes check and insert indivisible. On success Reserve
// returns the new total of active registrations for the event.
func (r *RSVPRepo) Reserve(ctx context.Context, eventID string, batch []model.Attendee) (int, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return 0, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    // Serialization point: every Reserve for this event queues here
    // until the winning transaction commits.
    var capCol sql.NullInt64
    err = tx.QueryRowContext(ctx,
        `SELECT attendance_cap FROM events WHERE event_id = ? FOR UPDATE`,
        eventID,
    ).Scan(&capCol)
    if err != nil {
        if err == sql.ErrNoRows {
            return 0, ErrEventNotFound
        }
        return 0, err
    }

    dupes, err := r.existingAttendeeIDsTx(ctx, tx, eventID, batch)
    if err != nil {
        return 0, err
    }
    if len(dupes) > 0 {
        return 0, &DuplicateAttendeesError{AttendeeIDs: dupes}
    }

    var current int
    err = tx.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM event_rsvps WHERE event_id = ?`,
        eventID,
    ).Scan(&current)
    if err != nil {
        return 0, err
    }
    var capPtr *int
    if capCol.Valid {
        n := int(capCol.Int64)
        capPtr = &n
    }
    if err := AdmitBatch(capPtr, current, len(batch)); err != nil {
        return 0, err
    }

    query := `INSERT INTO event_rsvps
              (event_id, attendee_id, attendee_type, email, first_name, last_name, guardian_email, age)
              VALUES `
    args := make([]interface{}, 0, len(batch)*8)
    for i, a := range batch {
        if i > 0 {
            query += ","
        }
        query += "(?, ?, ?, ?, ?, ?, ?, ?)"
        var guardian interface{}
        if a.Type == model.AttendeeTypeMinor {
            guardian = a.GuardianEmail
        }
        var age interface{}
        if a.Age != nil {
            age = *a.Age
        }
        args = append(args, eventID, a.ID, string(a.Type), a.GuardianEmail, a.FirstName, a.LastName, guardian, age)
    }
    if _, err := tx.ExecContext(ctx, query, args...); err != nil {
        return 0, err
    }
    if err := tx.Commit(); err != nil {
        return 0, err
    }
    committed = true
    return current + len(batch), nil
}

// existingAttendeeIDsTx returns the subset of the batch's attendee IDs
// that already have an active registration for the event, in batch
// order. Legacy rows match on their email.
func (r *RSVPRepo) existingAttendeeIDsTx(ctx context.Context, tx *sql.Tx, eventID string, batch []model.Attendee) ([]string, error) {
    if len(batch) == 0 {
        return nil, nil
    }
    placeholders := make([]string, 0, len(batch))
    args := make([]interface{}, 0, len(batch)+1)
    args = append(args, eventID)
    for _, a := range batch {
        placeholders = append(placeholders, "?")
        args = append(args, a.ID)
    }
    query := `SELECT COALESCE(attendee_id, email) FROM event_rsvps
              WHERE event_id = ? AND COALESCE(attendee_id, email) IN (` + strings.Join(placeholders, ",") + `)`
    rows, err := tx.QueryContext(ctx, query, args...)
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    existing := make(map[string]struct{})
    for rows.Next() {
        var id string
        if err := rows.Scan(&id); err != nil {
            return nil, err
        }
        existing[id] = struct{}{}
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    var dupes []string
    for _, a := range batch {
        if _, ok := existing[a.ID]; ok {
            dupes = append(dupes, a.ID)
        }
    }
    return dupes, nil
}

// Cancel removes a single attendee's registration iff it exists and the
// requester owns it: volunteers own their own row, guardians own their
// minors' rows. It returns the removed record so the caller can report
// what was cancelled. ErrRSVPNotFound and ErrForbidden are distinct so
// a retried cancellation of one's own record reads as already done
// rather than as a permission problem.
func (r *RSVPRepo) Cancel(ctx context.Context, eventID, attendeeID, requesterEmail string) (*model.RSVP, error) {
    tx, err := r.db.BeginTx(ctx, nil)
    if err != nil {
        return nil, err
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    rec, err := scanRSVP(tx.QueryRowContext(ctx,
        `SELECT `+rsvpColumns+` FROM event_rsvps
         WHERE event_id = ? AND COALESCE(attendee_id, email) = ?
         FOR UPDATE`,
        eventID, attendeeID,
    ))
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrRSVPNotFound
        }
        return nil, err
    }
    if !rec.OwnedBy(requesterEmail) {
        return nil, ErrForbidden
    }
    if _, err := tx.ExecContext(ctx,
        `DELETE FROM event_rsvps WHERE event_id = ? AND COALESCE(attendee_id, email) = ?`,
        eventID, attendeeID,
    ); err != nil {
        return nil, err
    }
    if err := tx.Commit(); err != nil {
        return nil, err
    }
    committed = true
    return rec, nil
}

// CountActive returns the number of active registrations for an event.
// It reads the same table the reservation transaction writes, so the
// count can never drift from the record set.
func (r *RSVPRepo) CountActive(ctx context.Context, eventID string) (int, error) {
    var n int
    err := r.db.QueryRowContext(ctx,
        `SELECT COUNT(*) FROM event_rsvps WHERE event_id = ?`,
        eventID,
    ).Scan(&n)
    return n, err
}

// ListActive returns all active registrations for an event ordered by
// attendee ID for deterministic output.
func (r *RSVPRepo) ListActive(ctx context.Context, eventID string) ([]model.RSVP, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+rsvpColumns+` FROM event_rsvps
         WHERE event_id = ?
         ORDER BY COALESCE(attendee_id, email)`,
        eventID,
    )
    if err != nil {
        return nil, err
    }
    return collectRSVPs(rows)
}

// ListActiveForGuardian returns the guardian's own registration plus
// all of their minors' registrations for an event.
func (r *RSVPRepo) ListActiveForGuardian(ctx context.Context, eventID, guardianEmail string) ([]model.RSVP, error) {
    rows, err := r.db.QueryContext(ctx,
        `SELECT `+rsvpColumns+` FROM event_rsvps
         WHERE event_id = ? AND (COALESCE(attendee_id, email) = ? OR guardian_email = ?)
         ORDER BY COALESCE(attendee_id, email)`,
        eventID, guardianEmail, guardianEmail,
    )
    if err != nil {
        return nil, err
    }
    return collectRSVPs(rows)
}

// MarkNoShow flags or unflags an attendee's registration as a no-show.
// Used by operators after the event; it never creates or removes rows.
func (r *RSVPRepo) MarkNoShow(ctx context.Context, eventID, attendeeID string, noShow bool) error {
    res, err := r.db.ExecContext(ctx,
        `UPDATE event_rsvps SET no_show = ?, updated_at = CURRENT_TIMESTAMP
         WHERE event_id = ? AND COALESCE(attendee_id, email) = ?`,
        noShow, eventID, attendeeID,
    )
    if err != nil {
        return err
    }
    affected, err := res.RowsAffected()
    if err != nil {
        return err
    }
    if affected == 0 {
        return ErrRSVPNotFound
    }
    return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
    Scan(dest ...interface{}) error
}

func scanRSVP(row rowScanner) (*model.RSVP, error) {
    var rec model.RSVP
    var typ string
    var guardian sql.NullString
    var age sql.NullInt64
    err := row.Scan(
        &rec.EventID, &rec.AttendeeID, &typ,
        &rec.Email, &rec.FirstName, &rec.LastName,
        &guardian, &age, &rec.NoShow,
        &rec.CreatedAt, &rec.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    rec.Type = model.AttendeeType(typ)
    if guardian.Valid {
        g := guardian.String
        rec.GuardianEmail = &g
    }
    if age.Valid {
        a := int(age.Int64)
        rec.Age = &a
    }
    return &rec, nil
}

func collectRSVPs(rows *sql.Rows) ([]model.RSVP, error) {
    defer rows.Close()
    out := make([]model.RSVP, 0)
    for rows.Next() {
        rec, err := scanRSVP(rows)
        if err != nil {
            return nil, err
        }
        out = append(out, *rec)
    }
    if err := rows.Err(); err != nil {
        return nil, err
    }
    return out, nil
}
