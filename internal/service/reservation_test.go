package service

import (
    "context"
    "errors"
    "sync"
    "testing"
    "time"

    "github.com/waterwaycleanups/rsvp-service/internal/model"
    "github.com/waterwaycleanups/rsvp-service/internal/repository"
    "github.com/waterwaycleanups/rsvp-service/internal/testutil"
)

func intPtr(n int) *int { return &n }

func newTestService(store *testutil.MemStore) *ReservationService {
    return NewReservationService(store, store, store.MinorStore())
}

func TestSubmitRegistersWholeBatch(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "cleanup-2026-09", AttendanceCap: intPtr(15)})
    dob := time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC)
    store.AddMinor(model.Minor{ID: "minor-1", GuardianEmail: "ana@example.org", FirstName: "Leo", LastName: "Diaz", DateOfBirth: &dob})
    svc := newTestService(store)

    res, err := svc.Submit(context.Background(), "ana@example.org", "cleanup-2026-09", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
        {Type: "minor", MinorID: "minor-1", FirstName: "Leo", LastName: "Diaz"},
    })
    if err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if len(res.Results) != 2 {
        t.Fatalf("got %d results, want 2", len(res.Results))
    }
    if res.Results[0].AttendeeID != "ana@example.org" || res.Results[0].AttendeeType != model.AttendeeTypeVolunteer {
        t.Errorf("first result = %+v", res.Results[0])
    }
    if res.Results[1].AttendeeID != "minor-1" || res.Results[1].AttendeeType != model.AttendeeTypeMinor {
        t.Errorf("second result = %+v", res.Results[1])
    }
    for _, r := range res.Results {
        if r.Status != "registered" {
            t.Errorf("status for %s = %q", r.AttendeeID, r.Status)
        }
    }
    if res.CurrentAttendance != 2 {
        t.Errorf("current attendance = %d, want 2", res.CurrentAttendance)
    }
    if res.AttendanceCap == nil || *res.AttendanceCap != 15 {
        t.Errorf("attendance cap = %v, want 15", res.AttendanceCap)
    }
}

func TestSubmitUnknownEvent(t *testing.T) {
    svc := newTestService(testutil.NewMemStore())
    _, err := svc.Submit(context.Background(), "ana@example.org", "nope", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
    })
    if !errors.Is(err, repository.ErrEventNotFound) {
        t.Fatalf("err = %v, want ErrEventNotFound", err)
    }
}

func TestSubmitDuplicateRejectsWholeBatch(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1"})
    dob := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
    store.AddMinor(model.Minor{ID: "m1", GuardianEmail: "ana@example.org", DateOfBirth: &dob})
    svc := newTestService(store)
    ctx := context.Background()

    if _, err := svc.Submit(ctx, "ana@example.org", "ev1", []AttendeeRequest{
        {Type: "minor", MinorID: "m1", FirstName: "Leo", LastName: "Diaz"},
    }); err != nil {
        t.Fatalf("seed submit: %v", err)
    }

    // Resubmitting m1 alongside a new volunteer must admit neither.
    _, err := svc.Submit(ctx, "ana@example.org", "ev1", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
        {Type: "minor", MinorID: "m1", FirstName: "Leo", LastName: "Diaz"},
    })
    var dup *repository.DuplicateAttendeesError
    if !errors.As(err, &dup) {
        t.Fatalf("err = %v, want DuplicateAttendeesError", err)
    }
    if len(dup.AttendeeIDs) != 1 || dup.AttendeeIDs[0] != "m1" {
        t.Errorf("duplicate ids = %v, want [m1]", dup.AttendeeIDs)
    }
    if n, _ := store.CountActive(ctx, "ev1"); n != 1 {
        t.Errorf("active count after rejected batch = %d, want 1", n)
    }
}

func TestSubmitCapacityRejectsWholeBatch(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1", AttendanceCap: intPtr(1)})
    dob := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
    store.AddMinor(model.Minor{ID: "m1", GuardianEmail: "ana@example.org", DateOfBirth: &dob})
    svc := newTestService(store)
    ctx := context.Background()

    // Cap 1, batch of 2: the batch is never split to fit.
    _, err := svc.Submit(ctx, "ana@example.org", "ev1", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
        {Type: "minor", MinorID: "m1", FirstName: "Leo", LastName: "Diaz"},
    })
    var full *repository.CapacityExceededError
    if !errors.As(err, &full) {
        t.Fatalf("err = %v, want CapacityExceededError", err)
    }
    if full.Remaining != 1 {
        t.Errorf("remaining = %d, want 1", full.Remaining)
    }
    if n, _ := store.CountActive(ctx, "ev1"); n != 0 {
        t.Errorf("active count = %d, want 0", n)
    }
}

func TestSubmitExactFitFillsEvent(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1", AttendanceCap: intPtr(2)})
    dob := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
    store.AddMinor(model.Minor{ID: "m1", GuardianEmail: "ana@example.org", DateOfBirth: &dob})
    svc := newTestService(store)

    res, err := svc.Submit(context.Background(), "ana@example.org", "ev1", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
        {Type: "minor", MinorID: "m1", FirstName: "Leo", LastName: "Diaz"},
    })
    if err != nil {
        t.Fatalf("Submit: %v", err)
    }
    if res.CurrentAttendance != 2 {
        t.Errorf("current attendance = %d, want 2", res.CurrentAttendance)
    }
}

func TestSubmitUncappedEvent(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1"}) // no cap
    svc := newTestService(store)
    ctx := context.Background()

    for i, email := range []string{"a@x.org", "b@x.org", "c@x.org"} {
        res, err := svc.Submit(ctx, email, "ev1", []AttendeeRequest{
            {Type: "volunteer", FirstName: "V", LastName: "W"},
        })
        if err != nil {
            t.Fatalf("submit %d: %v", i, err)
        }
        if res.AttendanceCap != nil {
            t.Errorf("cap = %v, want nil", res.AttendanceCap)
        }
    }
    if n, _ := store.CountActive(ctx, "ev1"); n != 3 {
        t.Errorf("active count = %d, want 3", n)
    }
}

// Two guardians race for the last two spots of a cap-2 event; a third
// arrives behind them. Exactly two registrations may land.
func TestSubmitConcurrentNeverExceedsCap(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1", AttendanceCap: intPtr(2)})
    svc := newTestService(store)
    ctx := context.Background()

    emails := []string{"a@x.org", "b@x.org", "c@x.org"}
    errs := make([]error, len(emails))
    var wg sync.WaitGroup
    for i, email := range emails {
        wg.Add(1)
        go func(i int, email string) {
            defer wg.Done()
            _, errs[i] = svc.Submit(ctx, email, "ev1", []AttendeeRequest{
                {Type: "volunteer", FirstName: "V", LastName: "W"},
            })
        }(i, email)
    }
    wg.Wait()

    var ok, rejected int
    for _, err := range errs {
        switch {
        case err == nil:
            ok++
        default:
            var full *repository.CapacityExceededError
            if !errors.As(err, &full) {
                t.Fatalf("unexpected error: %v", err)
            }
            if full.Remaining != 0 {
                t.Errorf("remaining = %d, want 0", full.Remaining)
            }
            rejected++
        }
    }
    if ok != 2 || rejected != 1 {
        t.Fatalf("ok=%d rejected=%d, want 2/1", ok, rejected)
    }
    if n, _ := store.CountActive(ctx, "ev1"); n != 2 {
        t.Errorf("active count = %d, want 2", n)
    }
}

// The same guardian submitting twice concurrently must end with exactly
// one record: one call wins, the other sees a duplicate.
func TestSubmitConcurrentSameAttendee(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1"})
    svc := newTestService(store)
    ctx := context.Background()

    errs := make([]error, 2)
    var wg sync.WaitGroup
    for i := 0; i < 2; i++ {
        wg.Add(1)
        go func(i int) {
            defer wg.Done()
            _, errs[i] = svc.Submit(ctx, "ana@example.org", "ev1", []AttendeeRequest{
                {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
            })
        }(i)
    }
    wg.Wait()

    var ok, dup int
    for _, err := range errs {
        if err == nil {
            ok++
            continue
        }
        var d *repository.DuplicateAttendeesError
        if !errors.As(err, &d) {
            t.Fatalf("unexpected error: %v", err)
        }
        dup++
    }
    if ok != 1 || dup != 1 {
        t.Fatalf("ok=%d dup=%d, want 1/1", ok, dup)
    }
    if n, _ := store.CountActive(ctx, "ev1"); n != 1 {
        t.Errorf("active count = %d, want 1", n)
    }
}

func TestAttendanceViews(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1", AttendanceCap: intPtr(15)})
    dob := time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC)
    store.AddMinor(model.Minor{ID: "m1", GuardianEmail: "ana@example.org", DateOfBirth: &dob})
    svc := newTestService(store)
    ctx := context.Background()

    mustSubmit := func(email string, reqs []AttendeeRequest) {
        t.Helper()
        if _, err := svc.Submit(ctx, email, "ev1", reqs); err != nil {
            t.Fatalf("submit for %s: %v", email, err)
        }
    }
    mustSubmit("ana@example.org", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
        {Type: "minor", MinorID: "m1", FirstName: "Leo", LastName: "Diaz"},
    })
    mustSubmit("bob@example.org", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Bob", LastName: "Reed"},
    })

    all, err := svc.Attendance(ctx, "ev1")
    if err != nil {
        t.Fatalf("Attendance: %v", err)
    }
    if len(all.Attendees) != 3 || all.CurrentAttendance != 3 {
        t.Errorf("attendees=%d total=%d, want 3/3", len(all.Attendees), all.CurrentAttendance)
    }
    if all.AttendanceCap == nil || *all.AttendanceCap != 15 {
        t.Errorf("cap = %v, want 15", all.AttendanceCap)
    }

    mine, err := svc.GuardianAttendance(ctx, "ev1", "ana@example.org")
    if err != nil {
        t.Fatalf("GuardianAttendance: %v", err)
    }
    if len(mine.Attendees) != 2 {
        t.Errorf("guardian attendees = %d, want 2 (self plus minor)", len(mine.Attendees))
    }
    if mine.CurrentAttendance != 3 {
        t.Errorf("guardian view total = %d, want event-wide 3", mine.CurrentAttendance)
    }
}

type failingEventStore struct{ err error }

func (f failingEventStore) GetByID(ctx context.Context, eventID string) (*model.Event, error) {
    return nil, f.err
}

// A transient event-store failure must surface to the caller as
// retryable, not read as an uncapped event.
func TestAttendanceEventStoreFailurePropagates(t *testing.T) {
    store := testutil.NewMemStore()
    storeErr := errors.New("connection refused")
    svc := NewReservationService(store, failingEventStore{err: storeErr}, store.MinorStore())

    if _, err := svc.Attendance(context.Background(), "ev1"); !errors.Is(err, storeErr) {
        t.Errorf("Attendance err = %v, want the store error", err)
    }
    if _, err := svc.GuardianAttendance(context.Background(), "ev1", "ana@example.org"); !errors.Is(err, storeErr) {
        t.Errorf("GuardianAttendance err = %v, want the store error", err)
    }
}

func TestAttendanceUnknownEventIsEmpty(t *testing.T) {
    svc := newTestService(testutil.NewMemStore())
    view, err := svc.Attendance(context.Background(), "nope")
    if err != nil {
        t.Fatalf("Attendance: %v", err)
    }
    if len(view.Attendees) != 0 || view.CurrentAttendance != 0 || view.AttendanceCap != nil {
        t.Errorf("view = %+v, want empty", view)
    }
}

func TestMarkNoShow(t *testing.T) {
    store := testutil.NewMemStore()
    store.AddEvent(model.Event{ID: "ev1"})
    svc := newTestService(store)
    ctx := context.Background()

    if _, err := svc.Submit(ctx, "ana@example.org", "ev1", []AttendeeRequest{
        {Type: "volunteer", FirstName: "Ana", LastName: "Diaz"},
    }); err != nil {
        t.Fatalf("seed submit: %v", err)
    }
    if err := svc.MarkNoShow(ctx, "ev1", "ana@example.org", true); err != nil {
        t.Fatalf("MarkNoShow: %v", err)
    }
    view, _ := svc.Attendance(ctx, "ev1")
    if len(view.Attendees) != 1 || !view.Attendees[0].NoShow {
        t.Errorf("no_show flag not set: %+v", view.Attendees)
    }
    if err := svc.MarkNoShow(ctx, "ev1", "ghost@example.org", true); !errors.Is(err, repository.ErrRSVPNotFound) {
        t.Errorf("unknown attendee err = %v, want ErrRSVPNotFound", err)
    }
    var verr *ValidationError
    if err := svc.MarkNoShow(ctx, "", "", true); !errors.As(err, &verr) {
        t.Errorf("empty ids err = %v, want ValidationError", err)
    }
}
