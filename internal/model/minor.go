package model

import "time"

// Minor mirrors the minors table maintained by the profile service.
// This core only reads it to resolve ownership and display fields when
// a guardian registers one of their minors.
//
// Fields:
//  ID            – minors.minor_id
//  GuardianEmail – minors.guardian_email (owning volunteer)
//  FirstName     – minors.first_name
//  LastName      – minors.last_name
//  DateOfBirth   – minors.date_of_birth (nullable)
type Minor struct {
    ID            string
    GuardianEmail string
    FirstName     string
    LastName      string
    DateOfBirth   *time.Time
}

// Age returns the minor's age in whole years at the given time, or nil
// when the date of birth is unknown.
func (m *Minor) Age(now time.Time) *int {
    if m.DateOfBirth == nil {
        return nil
    }
    years := now.Year() - m.DateOfBirth.Year()
    anniversary := m.DateOfBirth.AddDate(years, 0, 0)
    if anniversary.After(now) {
        years--
    }
    if years < 0 {
        years = 0
    }
    return &years
}
