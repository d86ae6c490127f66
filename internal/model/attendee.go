package model

// AttendeeType distinguishes the two kinds of people a guardian can
// register: themselves (volunteer) or one of their minors.
type AttendeeType string

const (
    AttendeeTypeVolunteer AttendeeType = "volunteer" // the authenticated guardian
    AttendeeTypeMinor     AttendeeType = "minor"     // a minor owned by the guardian
)

// Valid reports whether t is one of the recognised attendee types.
func (t AttendeeType) Valid() bool {
    return t == AttendeeTypeVolunteer || t == AttendeeTypeMinor
}

// Attendee is the normalized, resolved form of one entry in a submission
// batch.  It is produced once at the boundary by the identity resolver;
// nothing deeper in the core branches on raw request field presence.
//
// Fields:
//  ID            – stable attendee identifier; the volunteer's email for a
//                  self-registration, the minor_id for a minor.
//  Type          – volunteer or minor.
//  FirstName     – display first name, snapshot at registration time.
//  LastName      – display last name, snapshot at registration time.
//  GuardianEmail – the registering volunteer's email.  Always set; for
//                  volunteer entries it equals ID.
//  Age           – age snapshot for minors (nil for volunteers or when
//                  unknown).
type Attendee struct {
    ID            string
    Type          AttendeeType
    FirstName     string
    LastName      string
    GuardianEmail string
    Age           *int
}
