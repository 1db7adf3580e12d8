// Package ledger applies credit-grant change events to per-user balances.
package ledger

import (
	"context"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
)

// BalanceStore holds per-user credit balances.
type BalanceStore interface {
	// AddCredits adds delta to the user's balance as one atomic increment and
	// returns the new total. Returns storage.ErrNotFound if the user has no
	// balance record and storage.ErrTransient for retryable failures.
	AddCredits(ctx context.Context, userID string, delta int64) (int64, error)

	GetBalance(ctx context.Context, userID string) (*v1.UserBalance, error)

	// OpenBalance creates a zero balance if none exists.
	OpenBalance(ctx context.Context, userID string) (*v1.UserBalance, error)
}

// ChangeStream delivers change events off the credit transaction log with
// at-least-once semantics: anything not acked is delivered again.
type ChangeStream interface {
	Next(ctx context.Context, limit int) ([]v1.ChangeEvent, error)
	Ack(ctx context.Context, events []v1.ChangeEvent) error
}

// CreditLog is the write side of the transaction log.
type CreditLog interface {
	Append(ctx context.Context, grant v1.CreditGrantEvent) (string, error)
}
