package model

import (
    "testing"
    "time"
)

func strPtr(s string) *string { return &s }

func TestAttendeeTypeValid(t *testing.T) {
    if !AttendeeTypeVolunteer.Valid() || !AttendeeTypeMinor.Valid() {
        t.Error("canonical types reported invalid")
    }
    for _, bad := range []AttendeeType{"", "adult", "Volunteer"} {
        if bad.Valid() {
            t.Errorf("%q reported valid", bad)
        }
    }
}

func TestRSVPOwnedBy(t *testing.T) {
    volunteer := RSVP{AttendeeID: "ana@example.org", Type: AttendeeTypeVolunteer}
    if !volunteer.OwnedBy("ana@example.org") {
        t.Error("volunteer does not own their own record")
    }
    if volunteer.OwnedBy("bob@example.org") {
        t.Error("stranger owns a volunteer record")
    }

    minor := RSVP{AttendeeID: "m1", Type: AttendeeTypeMinor, GuardianEmail: strPtr("ana@example.org")}
    if !minor.OwnedBy("ana@example.org") {
        t.Error("guardian does not own their minor's record")
    }
    if minor.OwnedBy("m1") || minor.OwnedBy("bob@example.org") {
        t.Error("non-guardian owns a minor record")
    }

    orphan := RSVP{AttendeeID: "m2", Type: AttendeeTypeMinor}
    if orphan.OwnedBy("ana@example.org") {
        t.Error("minor record without guardian_email is cancellable")
    }
}

func TestEventHoursBefore(t *testing.T) {
    now := time.Date(2026, 8, 31, 19, 0, 0, 0, time.UTC)

    none := Event{}
    if none.HoursBefore(now) != nil {
        t.Error("event without start time reported hours")
    }

    cases := []struct {
        name  string
        start time.Time
        want  float64
    }{
        {"62 hours out", time.Date(2026, 9, 3, 9, 0, 0, 0, time.UTC), 62.0},
        {"rounds down", time.Date(2026, 8, 31, 20, 32, 0, 0, time.UTC), 1.5},
        {"rounds up", time.Date(2026, 8, 31, 19, 40, 0, 0, time.UTC), 0.7},
        {"already started", time.Date(2026, 8, 31, 16, 0, 0, 0, time.UTC), -3.0},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            ev := Event{StartsAt: &tc.start}
            got := ev.HoursBefore(now)
            if got == nil || *got != tc.want {
                t.Errorf("HoursBefore = %v, want %v", got, tc.want)
            }
        })
    }
}

func TestMinorAge(t *testing.T) {
    now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

    unknown := Minor{}
    if unknown.Age(now) != nil {
        t.Error("minor without date of birth reported an age")
    }

    cases := []struct {
        name string
        dob  time.Time
        want int
    }{
        {"birthday passed", time.Date(2016, 3, 10, 0, 0, 0, 0, time.UTC), 10},
        {"birthday today", time.Date(2016, 8, 30, 0, 0, 0, 0, time.UTC), 10},
        {"birthday upcoming", time.Date(2016, 11, 2, 0, 0, 0, 0, time.UTC), 9},
        {"future dob clamps to zero", time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC), 0},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            m := Minor{DateOfBirth: &tc.dob}
            got := m.Age(now)
            if got == nil || *got != tc.want {
                t.Errorf("Age = %v, want %d", got, tc.want)
            }
        })
    }
}
