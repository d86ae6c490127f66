package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"

    "github.com/redis/go-redis/v9"
)

// ErrInvalidSession is returned when a session token is unknown or has
// expired. Handlers translate it into a 401 response.
var ErrInvalidSession = errors.New("invalid or expired session")

// SessionRepo validates opaque session tokens issued by the external
// auth service against the user_sessions table. Expired sessions are
// deleted when encountered. Valid lookups are cached in Redis until the
// session expires so the hot path of every authenticated request does
// not hit MySQL; when no Redis client is configured the repo degrades
// to database-only lookups.
type SessionRepo struct {
    db  *sql.DB
    rdb *redis.Client
}

// NewSessionRepo returns a SessionRepo. rdb may be nil.
func NewSessionRepo(db *sql.DB, rdb *redis.Client) *SessionRepo {
    return &SessionRepo{db: db, rdb: rdb}
}

const sessionCachePrefix = "session:"

// Validate resolves a session token to the verified volunteer email, or
// returns ErrInvalidSession.
func (r *SessionRepo) Validate(ctx context.Context, token string) (string, error) {
    if token == "" {
        return "", ErrInvalidSession
    }
    if r.rdb != nil {
        if email, err := r.rdb.Get(ctx, sessionCachePrefix+token).Result(); err == nil && email != "" {
            return email, nil
        }
    }
    var email string
    var expiresAt time.Time
    err := r.db.QueryRowContext(ctx,
        `SELECT email, expires_at FROM user_sessions WHERE session_token = ?`,
        token,
    ).Scan(&email, &expiresAt)
    if err != nil {
        if err == sql.ErrNoRows {
            return "", ErrInvalidSession
        }
        return "", err
    }
    now := time.Now().UTC()
    if !expiresAt.After(now) {
        // Reap the dead session; a failure here only delays cleanup.
        _, _ = r.db.ExecContext(ctx,
            `DELETE FROM user_sessions WHERE session_token = ?`, token)
        return "", ErrInvalidSession
    }
    if r.rdb != nil {
        _ = r.rdb.Set(ctx, sessionCachePrefix+token, email, expiresAt.Sub(now)).Err()
    }
    return email, nil
}
