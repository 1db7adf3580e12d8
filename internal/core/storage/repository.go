package storage

import (
	"context"
	"errors"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/lifecycle"
)

var (
	// ErrNotFound is returned when the addressed row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a registration for the same (attendee, event, year) already exists.
	ErrDuplicate = errors.New("record already exists")

	// ErrConstraint is returned when a write would break a counter invariant
	// (negative count, admitted count above capacity, balance out of range).
	ErrConstraint = errors.New("constraint violation")

	// ErrTransient marks failures worth retrying: serialization failures, deadlocks, dropped connections.
	ErrTransient = errors.New("transient storage failure")
)

// RegistrationStore owns registrations and their per-occurrence aggregates.
// Every multi-row write goes through WithTx so that the registration row and
// its aggregate counter commit or roll back together.
type RegistrationStore interface {
	// WithTx runs fn in one atomic unit. A non-nil error from fn, a panic, or a
	// cancelled ctx rolls back every write made through tx.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	GetRegistration(ctx context.Context, key v1.RegistrationKey) (*v1.Registration, error)
	GetAggregate(ctx context.Context, occ v1.Occurrence) (*v1.EventAggregate, error)
}

// Tx is the write surface available inside RegistrationStore.WithTx.
type Tx interface {
	// LockAggregate reads the aggregate and holds it exclusively until the unit ends.
	LockAggregate(ctx context.Context, occ v1.Occurrence) (*v1.EventAggregate, error)

	// GetRegistration reads a registration and holds it exclusively until the unit ends.
	GetRegistration(ctx context.Context, key v1.RegistrationKey) (*v1.Registration, error)

	// InsertRegistration returns ErrDuplicate if the key is already taken.
	InsertRegistration(ctx context.Context, reg *v1.Registration) error

	UpdateRegistrationStatus(ctx context.Context, key v1.RegistrationKey, status v1.Status, at time.Time) error
	DeleteRegistration(ctx context.Context, key v1.RegistrationKey) error

	// ApplyDelta adds d to the aggregate counters as atomic increments.
	// Returns ErrConstraint if the result would violate a counter invariant.
	ApplyDelta(ctx context.Context, occ v1.Occurrence, d lifecycle.Delta, at time.Time) error
}

// Directory answers existence questions about events and attendees owned elsewhere.
type Directory interface {
	EventExists(ctx context.Context, occ v1.Occurrence) (bool, error)
	AttendeeExists(ctx context.Context, attendeeID string) (bool, error)
}
