package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	coreerrors "github.com/aevon-lab/eventreg/internal/core/errors"
	"github.com/aevon-lab/eventreg/internal/core/lifecycle"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Service admits attendees, moves registrations between statuses and removes
// them, keeping each occurrence's EventAggregate in step with its rows.
//
// The service holds no locks of its own. Every write runs inside one
// store transaction that first locks the occurrence's aggregate row, so the
// capacity check and the paired counter delta commit together.
type Service struct {
	store            storage.RegistrationStore
	directory        storage.Directory
	maxBodySizeBytes int64

	now   func() time.Time
	newID func() string
}

func NewService(store storage.RegistrationStore, directory storage.Directory, maxBodySizeMB int) *Service {
	if store == nil {
		panic("registration: store must not be nil")
	}
	if directory == nil {
		panic("registration: directory must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		store:            store,
		directory:        directory,
		maxBodySizeBytes: int64(maxBodySizeMB) * 1024 * 1024,
		now:              func() time.Time { return time.Now().UTC() },
		newID:            uuid.NewString,
	}
}

// RegisterRoutes registers the registration routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/v1/events/:event_id/:year")
	g.POST("/registrations", s.CreateHandler)
	g.GET("/registrations/:attendee_id", s.GetHandler)
	g.PUT("/registrations/:attendee_id", s.UpdateHandler)
	g.DELETE("/registrations/:attendee_id", s.DeleteHandler)
	g.GET("/aggregate", s.AggregateHandler)
}

// Admit creates the registration for (attendeeID, occ). The attendee is
// registered while the occurrence has capacity and waitlisted otherwise.
// A second admit for the same pair fails with Conflict and leaves the
// counters untouched. Admit takes no requested status: the resulting status
// is always chosen from the aggregate, never by the caller.
func (s *Service) Admit(ctx context.Context, attendeeID string, occ v1.Occurrence, fields map[string]interface{}) (*v1.Registration, error) {
	key := v1.RegistrationKey{AttendeeID: attendeeID, Occurrence: occ}
	if err := key.Validate(); err != nil {
		return nil, coreerrors.ValidationFailed("%s", err.Error())
	}
	if err := s.checkDirectory(ctx, key); err != nil {
		return nil, err
	}

	var created *v1.Registration
	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		agg, err := tx.LockAggregate(ctx, occ)
		if err != nil {
			return lockError(occ, err)
		}

		now := s.now()
		reg := &v1.Registration{
			ID:         s.newID(),
			AttendeeID: attendeeID,
			EventID:    occ.EventID,
			Year:       occ.Year,
			Status:     lifecycle.Admit(agg),
			Fields:     fields,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := tx.InsertRegistration(ctx, reg); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return coreerrors.Conflict("attendee %s is already registered for %s", attendeeID, occ)
			}
			return fmt.Errorf("insert registration: %w", err)
		}

		if err := tx.ApplyDelta(ctx, occ, lifecycle.Increment(reg.Status), now); err != nil {
			if errors.Is(err, storage.ErrConstraint) {
				return coreerrors.CapacityExceeded("%s is full", occ)
			}
			return fmt.Errorf("apply admission delta: %w", err)
		}

		created = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("[Registration] Admitted",
		"attendee_id", attendeeID,
		"occurrence", occ.String(),
		"status", created.Status)
	return created, nil
}

// Transition moves a registration to newStatus and shifts one unit between
// the matching counters. Moving into an admitted status from the waitlist
// re-checks capacity under the aggregate lock. A transition to the current
// status is a no-op.
func (s *Service) Transition(ctx context.Context, attendeeID string, occ v1.Occurrence, newStatus v1.Status) (*v1.Registration, error) {
	key := v1.RegistrationKey{AttendeeID: attendeeID, Occurrence: occ}
	if err := key.Validate(); err != nil {
		return nil, coreerrors.ValidationFailed("%s", err.Error())
	}
	if !newStatus.Valid() {
		return nil, coreerrors.ValidationFailed("unknown status %q", newStatus)
	}

	var (
		updated *v1.Registration
		from    v1.Status
	)
	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		agg, err := tx.LockAggregate(ctx, occ)
		if err != nil {
			return lockError(occ, err)
		}

		reg, err := tx.GetRegistration(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return coreerrors.NotFound("no registration for attendee %s on %s", attendeeID, occ)
			}
			return fmt.Errorf("read registration: %w", err)
		}
		from = reg.Status

		if from == newStatus {
			updated = reg
			return nil
		}

		delta, err := lifecycle.Transition(from, newStatus)
		if err != nil {
			return err
		}
		if lifecycle.RequiresCapacity(from, newStatus) && !agg.HasCapacity() {
			return coreerrors.CapacityExceeded("%s is full (%d/%d admitted)", occ, agg.Admitted(), agg.Capacity)
		}

		now := s.now()
		if err := tx.UpdateRegistrationStatus(ctx, key, newStatus, now); err != nil {
			return fmt.Errorf("update registration status: %w", err)
		}
		if err := tx.ApplyDelta(ctx, occ, delta, now); err != nil {
			if errors.Is(err, storage.ErrConstraint) {
				return coreerrors.CapacityExceeded("%s is full", occ)
			}
			return fmt.Errorf("apply transition delta: %w", err)
		}

		reg.Status = newStatus
		reg.UpdatedAt = now
		updated = reg
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from != newStatus {
		slog.Info("[Registration] Status changed",
			"attendee_id", attendeeID,
			"occurrence", occ.String(),
			"from", from,
			"to", newStatus)
	}
	return updated, nil
}

// Remove deletes a registration and decrements the bucket it was counted in.
// Waitlisted attendees are not promoted into the freed slot.
func (s *Service) Remove(ctx context.Context, attendeeID string, occ v1.Occurrence) error {
	key := v1.RegistrationKey{AttendeeID: attendeeID, Occurrence: occ}
	if err := key.Validate(); err != nil {
		return coreerrors.ValidationFailed("%s", err.Error())
	}

	var removed v1.Status
	err := s.store.WithTx(ctx, func(ctx context.Context, tx storage.Tx) error {
		if _, err := tx.LockAggregate(ctx, occ); err != nil {
			return lockError(occ, err)
		}

		reg, err := tx.GetRegistration(ctx, key)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return coreerrors.NotFound("no registration for attendee %s on %s", attendeeID, occ)
			}
			return fmt.Errorf("read registration: %w", err)
		}

		if err := tx.DeleteRegistration(ctx, key); err != nil {
			return fmt.Errorf("delete registration: %w", err)
		}
		if err := tx.ApplyDelta(ctx, occ, lifecycle.Decrement(reg.Status), s.now()); err != nil {
			return fmt.Errorf("apply removal delta: %w", err)
		}
		removed = reg.Status
		return nil
	})
	if err != nil {
		return err
	}

	slog.Info("[Registration] Removed",
		"attendee_id", attendeeID,
		"occurrence", occ.String(),
		"status", removed)
	return nil
}

// Get returns the registration for (attendeeID, occ).
func (s *Service) Get(ctx context.Context, attendeeID string, occ v1.Occurrence) (*v1.Registration, error) {
	key := v1.RegistrationKey{AttendeeID: attendeeID, Occurrence: occ}
	if err := key.Validate(); err != nil {
		return nil, coreerrors.ValidationFailed("%s", err.Error())
	}
	reg, err := s.store.GetRegistration(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, coreerrors.NotFound("no registration for attendee %s on %s", attendeeID, occ)
	}
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	return reg, nil
}

// GetAggregate returns the counters for occ.
func (s *Service) GetAggregate(ctx context.Context, occ v1.Occurrence) (*v1.EventAggregate, error) {
	if err := occ.Validate(); err != nil {
		return nil, coreerrors.ValidationFailed("%s", err.Error())
	}
	agg, err := s.store.GetAggregate(ctx, occ)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, coreerrors.NotFound("event %s not found", occ)
	}
	if err != nil {
		return nil, fmt.Errorf("get aggregate: %w", err)
	}
	return agg, nil
}

func (s *Service) checkDirectory(ctx context.Context, key v1.RegistrationKey) error {
	ok, err := s.directory.EventExists(ctx, key.Occurrence)
	if err != nil {
		return fmt.Errorf("check event: %w", err)
	}
	if !ok {
		return coreerrors.NotFound("event %s not found", key.Occurrence)
	}

	ok, err = s.directory.AttendeeExists(ctx, key.AttendeeID)
	if err != nil {
		return fmt.Errorf("check attendee: %w", err)
	}
	if !ok {
		return coreerrors.NotFound("attendee %s not found", key.AttendeeID)
	}
	return nil
}

func lockError(occ v1.Occurrence, err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return coreerrors.NotFound("event %s not found", occ)
	}
	return fmt.Errorf("lock aggregate %s: %w", occ, err)
}
