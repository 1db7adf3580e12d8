// Package memory provides in-process implementations of the registration and
// ledger stores, used by tests and by the memory database mode.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/lifecycle"
	"github.com/aevon-lab/eventreg/internal/core/storage"
)

type eventRecord struct {
	name      string
	capacity  int
	createdAt time.Time
}

// Store implements storage.RegistrationStore and storage.Directory.
// Transactions are serialised by one mutex; every write inside a
// transaction records an undo step that runs if the unit fails.
type Store struct {
	mu            sync.Mutex
	events        map[v1.Occurrence]eventRecord
	attendees     map[string]string
	aggregates    map[v1.Occurrence]*v1.EventAggregate
	registrations map[v1.RegistrationKey]*v1.Registration
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		events:        make(map[v1.Occurrence]eventRecord),
		attendees:     make(map[string]string),
		aggregates:    make(map[v1.Occurrence]*v1.EventAggregate),
		registrations: make(map[v1.RegistrationKey]*v1.Registration),
	}
}

// SeedEvent creates an event occurrence if it does not exist yet.
func (s *Store) SeedEvent(_ context.Context, occ v1.Occurrence, name string, capacity int) error {
	if capacity < 0 {
		return fmt.Errorf("%w: negative capacity %d", storage.ErrConstraint, capacity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[occ]; !ok {
		s.events[occ] = eventRecord{name: name, capacity: capacity, createdAt: time.Now().UTC()}
	}
	return nil
}

// SeedAttendee creates an attendee if it does not exist yet.
func (s *Store) SeedAttendee(_ context.Context, attendeeID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attendees[attendeeID]; !ok {
		s.attendees[attendeeID] = email
	}
	return nil
}

func (s *Store) EventExists(_ context.Context, occ v1.Occurrence) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.events[occ]
	return ok, nil
}

func (s *Store) AttendeeExists(_ context.Context, attendeeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.attendees[attendeeID]
	return ok, nil
}

// WithTx runs fn while holding the store lock. Writes are undone if fn
// returns an error, panics, or ctx is done before commit.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx storage.Tx) error) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{store: s}
	defer func() {
		if p := recover(); p != nil {
			tx.rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		tx.rollback()
		return err
	}
	if err := ctx.Err(); err != nil {
		tx.rollback()
		return err
	}
	return nil
}

func (s *Store) GetRegistration(_ context.Context, key v1.RegistrationKey) (*v1.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.registrations[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRegistration(reg), nil
}

func (s *Store) GetAggregate(_ context.Context, occ v1.Occurrence) (*v1.EventAggregate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.aggregates[occ]; ok {
		cp := *agg
		return &cp, nil
	}
	evt, ok := s.events[occ]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &v1.EventAggregate{
		EventID:   occ.EventID,
		Year:      occ.Year,
		Capacity:  evt.capacity,
		UpdatedAt: evt.createdAt,
	}, nil
}

// CountByStatus recounts live registrations for occ. Tests use it to check
// that the aggregate never drifts from the rows it summarises.
func (s *Store) CountByStatus(occ v1.Occurrence) map[v1.Status]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	counts := make(map[v1.Status]int, len(v1.Statuses))
	for key, reg := range s.registrations {
		if key.Occurrence == occ {
			counts[reg.Status]++
		}
	}
	return counts
}

func cloneRegistration(reg *v1.Registration) *v1.Registration {
	cp := *reg
	if reg.Fields != nil {
		cp.Fields = make(map[string]interface{}, len(reg.Fields))
		for k, v := range reg.Fields {
			cp.Fields[k] = v
		}
	}
	return &cp
}

// memTx implements storage.Tx. The store lock is already held by WithTx.
type memTx struct {
	store *Store
	undo  []func()
}

func (t *memTx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i]()
	}
	t.undo = nil
}

func (t *memTx) LockAggregate(_ context.Context, occ v1.Occurrence) (*v1.EventAggregate, error) {
	s := t.store
	agg, ok := s.aggregates[occ]
	if !ok {
		evt, exists := s.events[occ]
		if !exists {
			return nil, storage.ErrNotFound
		}
		agg = &v1.EventAggregate{
			EventID:   occ.EventID,
			Year:      occ.Year,
			Capacity:  evt.capacity,
			UpdatedAt: time.Now().UTC(),
		}
		s.aggregates[occ] = agg
		t.undo = append(t.undo, func() { delete(s.aggregates, occ) })
	}
	cp := *agg
	return &cp, nil
}

func (t *memTx) GetRegistration(_ context.Context, key v1.RegistrationKey) (*v1.Registration, error) {
	reg, ok := t.store.registrations[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneRegistration(reg), nil
}

func (t *memTx) InsertRegistration(_ context.Context, reg *v1.Registration) error {
	s := t.store
	key := reg.Key()
	if _, exists := s.registrations[key]; exists {
		return storage.ErrDuplicate
	}
	s.registrations[key] = cloneRegistration(reg)
	t.undo = append(t.undo, func() { delete(s.registrations, key) })
	return nil
}

func (t *memTx) UpdateRegistrationStatus(_ context.Context, key v1.RegistrationKey, status v1.Status, at time.Time) error {
	reg, ok := t.store.registrations[key]
	if !ok {
		return storage.ErrNotFound
	}
	prevStatus, prevUpdated := reg.Status, reg.UpdatedAt
	reg.Status = status
	reg.UpdatedAt = at
	t.undo = append(t.undo, func() {
		reg.Status = prevStatus
		reg.UpdatedAt = prevUpdated
	})
	return nil
}

func (t *memTx) DeleteRegistration(_ context.Context, key v1.RegistrationKey) error {
	s := t.store
	reg, ok := s.registrations[key]
	if !ok {
		return storage.ErrNotFound
	}
	delete(s.registrations, key)
	t.undo = append(t.undo, func() { s.registrations[key] = reg })
	return nil
}

// ApplyDelta enforces the same invariants as the Postgres CHECK constraints.
func (t *memTx) ApplyDelta(_ context.Context, occ v1.Occurrence, d lifecycle.Delta, at time.Time) error {
	if d.IsZero() {
		return nil
	}
	agg, ok := t.store.aggregates[occ]
	if !ok {
		return storage.ErrNotFound
	}

	next := d.Apply(*agg)
	if next.RegisteredCount < 0 || next.CheckedInCount < 0 || next.WaitlistCount < 0 || next.CancelledCount < 0 {
		return fmt.Errorf("%w: negative count on %s", storage.ErrConstraint, occ)
	}
	if next.Admitted() > next.Capacity {
		return fmt.Errorf("%w: %s admitted %d exceeds capacity %d", storage.ErrConstraint, occ, next.Admitted(), next.Capacity)
	}

	prev := *agg
	next.UpdatedAt = at
	*agg = next
	t.undo = append(t.undo, func() { *agg = prev })
	return nil
}
