// Package lifecycle holds the registration status machine: which bucket each status
// counts toward, which transitions are legal, and the counter delta each one implies.
package lifecycle

import (
	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	coreerrors "github.com/aevon-lab/eventreg/internal/core/errors"
)

// Delta is a signed change to the four counters of an EventAggregate.
// Stores apply it as named atomic increments, never as an overwrite.
type Delta struct {
	Registered int
	CheckedIn  int
	Waitlist   int
	Cancelled  int
}

// IsZero reports whether applying d would change nothing.
func (d Delta) IsZero() bool {
	return d == Delta{}
}

// Add returns the field-wise sum of d and o.
func (d Delta) Add(o Delta) Delta {
	return Delta{
		Registered: d.Registered + o.Registered,
		CheckedIn:  d.CheckedIn + o.CheckedIn,
		Waitlist:   d.Waitlist + o.Waitlist,
		Cancelled:  d.Cancelled + o.Cancelled,
	}
}

// Negate flips the sign of every field.
func (d Delta) Negate() Delta {
	return Delta{
		Registered: -d.Registered,
		CheckedIn:  -d.CheckedIn,
		Waitlist:   -d.Waitlist,
		Cancelled:  -d.Cancelled,
	}
}

// Apply returns a copy of agg with d added to its counters.
func (d Delta) Apply(agg v1.EventAggregate) v1.EventAggregate {
	agg.RegisteredCount += d.Registered
	agg.CheckedInCount += d.CheckedIn
	agg.WaitlistCount += d.Waitlist
	agg.CancelledCount += d.Cancelled
	return agg
}

// Increment is the delta of one new registration in status s.
func Increment(s v1.Status) Delta {
	switch s {
	case v1.StatusRegistered:
		return Delta{Registered: 1}
	case v1.StatusCheckedIn:
		return Delta{CheckedIn: 1}
	case v1.StatusWaitlisted:
		return Delta{Waitlist: 1}
	case v1.StatusCancelled:
		return Delta{Cancelled: 1}
	}
	return Delta{}
}

// Decrement is the delta of removing one registration in status s.
func Decrement(s v1.Status) Delta {
	return Increment(s).Negate()
}

// Admitted reports whether status s occupies a capacity slot.
func Admitted(s v1.Status) bool {
	return s == v1.StatusRegistered || s == v1.StatusCheckedIn
}

// transitions is the closed table of legal source -> target moves.
// Self-transitions are handled by the caller as no-ops and are not listed.
var transitions = map[v1.Status]map[v1.Status]struct{}{
	v1.StatusRegistered: {
		v1.StatusCheckedIn: {},
		v1.StatusCancelled: {},
	},
	v1.StatusWaitlisted: {
		v1.StatusCheckedIn:  {},
		v1.StatusCancelled:  {},
		v1.StatusRegistered: {},
	},
	v1.StatusCheckedIn: {
		v1.StatusCancelled: {},
	},
	v1.StatusCancelled: {},
}

// Allowed reports whether from -> to is in the transition table.
func Allowed(from, to v1.Status) bool {
	targets, ok := transitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// Transition validates from -> to and returns the counter delta it implies.
// A self-transition returns a zero delta and no error.
func Transition(from, to v1.Status) (Delta, error) {
	if from == to {
		return Delta{}, nil
	}
	if !Allowed(from, to) {
		return Delta{}, coreerrors.InvalidTransition("cannot move registration from %s to %s", from, to)
	}
	return Decrement(from).Add(Increment(to)), nil
}

// RequiresCapacity reports whether from -> to takes a new capacity slot,
// which must be re-checked against the aggregate before committing.
func RequiresCapacity(from, to v1.Status) bool {
	return Admitted(to) && !Admitted(from)
}

// Admit decides the status of a brand-new registration given the current aggregate.
func Admit(agg *v1.EventAggregate) v1.Status {
	if agg.HasCapacity() {
		return v1.StatusRegistered
	}
	return v1.StatusWaitlisted
}
