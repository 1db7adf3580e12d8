package v1

import (
	"fmt"
	"strings"
	"time"
)

// ChangeOp is the kind of write a change event describes.
type ChangeOp string

const (
	OpInsert ChangeOp = "insert"
	OpModify ChangeOp = "modify"
	OpRemove ChangeOp = "remove"
)

// CreditGrantEvent is an immutable fact: user UserID should receive Amount credits.
// Amount may be negative for deductions.
type CreditGrantEvent struct {
	UserID     string    `json:"user_id"`
	Amount     int64     `json:"amount"`
	ObservedAt time.Time `json:"observed_at"`
}

// Validate ensures the grant names a user.
func (e CreditGrantEvent) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("user_id is required")
	}
	return nil
}

// ChangeEvent is one record delivered by a change stream over the transaction log.
// ID is stream-specific (a sequence number or a stream entry ID).
type ChangeEvent struct {
	ID    string           `json:"id"`
	Op    ChangeOp         `json:"op"`
	Grant CreditGrantEvent `json:"grant"`
}

// UserBalance is the per-user credit aggregate.
type UserBalance struct {
	UserID    string    `json:"user_id"`
	Credits   int64     `json:"credits"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GrantCreditsRequest is the payload for POST /v1/users/:user_id/credits.
type GrantCreditsRequest struct {
	Amount int64 `json:"amount"`
}
