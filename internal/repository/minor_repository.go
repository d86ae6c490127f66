package repository

import (
    "context"
    "database/sql"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
)

// MinorRepo reads the minors table maintained by the profile service.
// The reservation core consults it only to resolve a requested minor_id
// to its owning guardian and display fields; minor CRUD lives elsewhere.
type MinorRepo struct {
    db *sql.DB
}

// NewMinorRepo returns a new MinorRepo bound to the given database.
func NewMinorRepo(db *sql.DB) *MinorRepo { return &MinorRepo{db: db} }

// GetByID returns the minor or ErrMinorNotFound.
func (r *MinorRepo) GetByID(ctx context.Context, minorID string) (*model.Minor, error) {
    var m model.Minor
    var dob sql.NullTime
    err := r.db.QueryRowContext(ctx,
        `SELECT minor_id, guardian_email, first_name, last_name, date_of_birth
         FROM minors WHERE minor_id = ?`,
        minorID,
    ).Scan(&m.ID, &m.GuardianEmail, &m.FirstName, &m.LastName, &dob)
    if err != nil {
        if err == sql.ErrNoRows {
            return nil, ErrMinorNotFound
        }
        return nil, err
    }
    if dob.Valid {
        t := dob.Time.UTC()
        m.DateOfBirth = &t
    }
    return &m, nil
}
