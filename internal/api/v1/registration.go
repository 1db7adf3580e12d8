package v1

import (
	"fmt"
	"strings"
	"time"
)

// Status is the admission state of a registration.
// The set is closed: ParseStatus rejects anything outside it.
type Status string

const (
	StatusRegistered Status = "registered"
	StatusWaitlisted Status = "waitlisted"
	StatusCheckedIn  Status = "checkedIn"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every valid status in declaration order.
var Statuses = []Status{StatusRegistered, StatusWaitlisted, StatusCheckedIn, StatusCancelled}

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Valid reports whether s is one of the declared statuses.
func (s Status) Valid() bool {
	_, err := ParseStatus(string(s))
	return err == nil
}

const maxOccurrenceYear = 9999

// Occurrence identifies one (event, year) instance. Capacity and counters are scoped to it.
type Occurrence struct {
	EventID string `json:"event_id"`
	Year    int    `json:"year"`
}

// Validate ensures the occurrence identity is well formed.
func (o Occurrence) Validate() error {
	if strings.TrimSpace(o.EventID) == "" {
		return fmt.Errorf("event_id is required")
	}
	if o.Year < 1 || o.Year > maxOccurrenceYear {
		return fmt.Errorf("year %d is out of range (1-%d)", o.Year, maxOccurrenceYear)
	}
	return nil
}

func (o Occurrence) String() string {
	return fmt.Sprintf("%s/%d", o.EventID, o.Year)
}

// RegistrationKey is the composite identity of a registration.
type RegistrationKey struct {
	AttendeeID string
	Occurrence Occurrence
}

// Validate checks both halves of the key.
func (k RegistrationKey) Validate() error {
	if strings.TrimSpace(k.AttendeeID) == "" {
		return fmt.Errorf("attendee_id is required")
	}
	return k.Occurrence.Validate()
}

// Registration is one attendee's relationship to one event occurrence.
type Registration struct {
	// ID is a surrogate identifier assigned on creation; the composite key
	// (AttendeeID, EventID, Year) is what enforces uniqueness.
	ID         string `json:"id"`
	AttendeeID string `json:"attendee_id"`
	EventID    string `json:"event_id"`
	Year       int    `json:"year"`
	Status     Status `json:"status"`

	// Fields holds attendee-supplied answers. Opaque to admission logic.
	Fields map[string]interface{} `json:"fields,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key returns the composite identity of the registration.
func (r *Registration) Key() RegistrationKey {
	return RegistrationKey{
		AttendeeID: r.AttendeeID,
		Occurrence: Occurrence{EventID: r.EventID, Year: r.Year},
	}
}

// EventAggregate is the counter record for one event occurrence.
type EventAggregate struct {
	EventID         string    `json:"event_id"`
	Year            int       `json:"year"`
	Capacity        int       `json:"capacity"`
	RegisteredCount int       `json:"registered_count"`
	CheckedInCount  int       `json:"checked_in_count"`
	WaitlistCount   int       `json:"waitlist_count"`
	CancelledCount  int       `json:"cancelled_count"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Admitted is the number of directly counted (non-waitlist, non-cancelled) attendees.
func (a *EventAggregate) Admitted() int {
	return a.RegisteredCount + a.CheckedInCount
}

// HasCapacity reports whether one more attendee can be admitted.
func (a *EventAggregate) HasCapacity() bool {
	return a.Admitted() < a.Capacity
}

// CreateRegistrationRequest is the payload for POST .../registrations.
type CreateRegistrationRequest struct {
	AttendeeID string                 `json:"attendee_id"`
	Fields     map[string]interface{} `json:"fields,omitempty"`
}

// UpdateRegistrationRequest is the payload for PUT .../registrations/:attendee_id.
type UpdateRegistrationRequest struct {
	Status string `json:"status"`
}
