package postgres

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the adapters translate into storage sentinels.
const (
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeNumericOutOfRange    = "22003"
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	classConnectionException = "08"
)

// mapError translates driver failures into storage sentinels.
// Errors it does not recognise are returned unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch {
		case pqErr.Code == codeUniqueViolation:
			return fmt.Errorf("%w: %s", storage.ErrDuplicate, pqErr.Message)
		case pqErr.Code == codeCheckViolation:
			return fmt.Errorf("%w: %s (%s)", storage.ErrConstraint, pqErr.Message, pqErr.Constraint)
		case pqErr.Code == codeNumericOutOfRange:
			return fmt.Errorf("%w: %s", storage.ErrConstraint, pqErr.Message)
		case pqErr.Code == codeSerializationFailure, pqErr.Code == codeDeadlockDetected:
			return fmt.Errorf("%w: %s", storage.ErrTransient, pqErr.Message)
		case string(pqErr.Code.Class()) == classConnectionException:
			return fmt.Errorf("%w: %s", storage.ErrTransient, pqErr.Message)
		}
		return err
	}

	if errors.Is(err, driver.ErrBadConn) {
		return fmt.Errorf("%w: %v", storage.ErrTransient, err)
	}
	return err
}

// marshalFields encodes attendee fields. Empty fields are stored as SQL NULL.
func marshalFields(fields map[string]interface{}) ([]byte, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal registration fields: %w", err)
	}
	return raw, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRegistration(row scanner) (*v1.Registration, error) {
	var reg v1.Registration
	var status string
	var fieldsJSON []byte

	if err := row.Scan(
		&reg.ID,
		&reg.AttendeeID,
		&reg.EventID,
		&reg.Year,
		&status,
		&fieldsJSON,
		&reg.CreatedAt,
		&reg.UpdatedAt,
	); err != nil {
		return nil, err
	}

	parsed, err := v1.ParseStatus(status)
	if err != nil {
		return nil, fmt.Errorf("registration %s has corrupt status: %w", reg.ID, err)
	}
	reg.Status = parsed

	if len(fieldsJSON) > 0 {
		if err := json.Unmarshal(fieldsJSON, &reg.Fields); err != nil {
			return nil, fmt.Errorf("failed to unmarshal registration fields: %w", err)
		}
	}
	return &reg, nil
}

func scanAggregate(row scanner) (*v1.EventAggregate, error) {
	var agg v1.EventAggregate
	if err := row.Scan(
		&agg.EventID,
		&agg.Year,
		&agg.Capacity,
		&agg.RegisteredCount,
		&agg.CheckedInCount,
		&agg.WaitlistCount,
		&agg.CancelledCount,
		&agg.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &agg, nil
}
