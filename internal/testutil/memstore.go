// Package testutil provides an in-memory stand-in for the MySQL-backed
// stores. A single mutex plays the role of the database's transaction
// serialization: every Reserve and Cancel runs under it, so the same
// atomicity contract the repository promises holds here and concurrency
// properties can be exercised with plain goroutines.
package testutil

import (
    "context"
    "sort"
    "sync"
    "time"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
)

// MemStore implements service.Ledger, service.EventStore and
// service.MinorStore over maps.
type MemStore struct {
    mu      sync.Mutex
    events  map[string]model.Event
    minors  map[string]model.Minor
    records map[string]map[string]model.RSVP // eventID -> attendeeID -> record
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
    return &MemStore{
        events:  make(map[string]model.Event),
        minors:  make(map[string]model.Minor),
        records: make(map[string]map[string]model.RSVP),
    }
}

// AddEvent seeds an event.
func (s *MemStore) AddEvent(ev model.Event) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.events[ev.ID] = ev
}

// AddMinor seeds a minor profile.
func (s *MemStore) AddMinor(m model.Minor) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.minors[m.ID] = m
}

// AddRSVP seeds a ledger record directly, bypassing capacity checks.
func (s *MemStore) AddRSVP(rec model.RSVP) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.records[rec.EventID] == nil {
        s.records[rec.EventID] = make(map[string]model.RSVP)
    }
    s.records[rec.EventID][rec.AttendeeID] = rec
}

// GetByID implements service.EventStore.
func (s *MemStore) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[eventID]
    if !ok {
        return nil, repository.ErrEventNotFound
    }
    return &ev, nil
}

// MinorStore returns a view of the store implementing
// service.MinorStore, kept separate because GetByID collides with the
// event lookup.
func (s *MemStore) MinorStore() *MemMinorStore { return &MemMinorStore{s: s} }

// MemMinorStore adapts MemStore to service.MinorStore.
type MemMinorStore struct{ s *MemStore }

// GetByID implements service.MinorStore.
func (m *MemMinorStore) GetByID(ctx context.Context, minorID string) (*model.Minor, error) {
    m.s.mu.Lock()
    defer m.s.mu.Unlock()
    rec, ok := m.s.minors[minorID]
    if !ok {
        return nil, repository.ErrMinorNotFound
    }
    return &rec, nil
}

// Reserve implements service.Ledger with the same all-or-nothing
// semantics as the MySQL repository: duplicates first, then the
// commit-time capacity check, then insertion of the whole batch.
func (s *MemStore) Reserve(ctx context.Context, eventID string, batch []model.Attendee) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    ev, ok := s.events[eventID]
    if !ok {
        return 0, repository.ErrEventNotFound
    }
    active := s.records[eventID]
    var dupes []string
    for _, a := range batch {
        if _, exists := active[a.ID]; exists {
            dupes = append(dupes, a.ID)
        }
    }
    if len(dupes) > 0 {
        return 0, &repository.DuplicateAttendeesError{AttendeeIDs: dupes}
    }
    if err := repository.AdmitBatch(ev.AttendanceCap, len(active), len(batch)); err != nil {
        return 0, err
    }
    if active == nil {
        active = make(map[string]model.RSVP)
        s.records[eventID] = active
    }
    now := time.Now().UTC()
    for _, a := range batch {
        rec := model.RSVP{
            EventID:    eventID,
            AttendeeID: a.ID,
            Type:       a.Type,
            Email:      a.GuardianEmail,
            FirstName:  a.FirstName,
            LastName:   a.LastName,
            Age:        a.Age,
            CreatedAt:  now,
            UpdatedAt:  now,
        }
        if a.Type == model.AttendeeTypeMinor {
            g := a.GuardianEmail
            rec.GuardianEmail = &g
        }
        active[a.ID] = rec
    }
    return len(active), nil
}

// Cancel implements service.Ledger.
func (s *MemStore) Cancel(ctx context.Context, eventID, attendeeID, requesterEmail string) (*model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    rec, ok := s.records[eventID][attendeeID]
    if !ok {
        return nil, repository.ErrRSVPNotFound
    }
    if !rec.OwnedBy(requesterEmail) {
        return nil, repository.ErrForbidden
    }
    delete(s.records[eventID], attendeeID)
    return &rec, nil
}

// CountActive implements service.Ledger.
func (s *MemStore) CountActive(ctx context.Context, eventID string) (int, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return len(s.records[eventID]), nil
}

// ListActive implements service.Ledger.
func (s *MemStore) ListActive(ctx context.Context, eventID string) ([]model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.sortedRecords(eventID, func(model.RSVP) bool { return true }), nil
}

// ListActiveForGuardian implements service.Ledger.
func (s *MemStore) ListActiveForGuardian(ctx context.Context, eventID, guardianEmail string) ([]model.RSVP, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.sortedRecords(eventID, func(r model.RSVP) bool {
        if r.AttendeeID == guardianEmail {
            return true
        }
        return r.GuardianEmail != nil && *r.GuardianEmail == guardianEmail
    }), nil
}

// MarkNoShow implements service.Ledger.
func (s *MemStore) MarkNoShow(ctx context.Context, eventID, attendeeID string, noShow bool) error {
    s.mu.Lock()
    defer s.mu.Unlock()
    rec, ok := s.records[eventID][attendeeID]
    if !ok {
        return repository.ErrRSVPNotFound
    }
    rec.NoShow = noShow
    rec.UpdatedAt = time.Now().UTC()
    s.records[eventID][attendeeID] = rec
    return nil
}

func (s *MemStore) sortedRecords(eventID string, keep func(model.RSVP) bool) []model.RSVP {
    out := make([]model.RSVP, 0)
    for _, rec := range s.records[eventID] {
        if keep(rec) {
            out = append(out, rec)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].AttendeeID < out[j].AttendeeID })
    return out
}
