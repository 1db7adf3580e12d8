package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/google/uuid"
)

// BalanceAdapter stores per-user credit balances.
type BalanceAdapter struct {
	db *sql.DB
}

// NewBalanceAdapter creates a BalanceAdapter sharing the given connection.
func NewBalanceAdapter(db *sql.DB) *BalanceAdapter {
	return &BalanceAdapter{db: db}
}

// AddCredits adds delta to the user's balance in one statement and returns the new total.
// Returns storage.ErrNotFound when the user has no balance record.
func (a *BalanceAdapter) AddCredits(ctx context.Context, userID string, delta int64) (int64, error) {
	var credits int64
	err := a.db.QueryRowContext(ctx, queryAddCredits, userID, delta, time.Now().UTC()).Scan(&credits)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, storage.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to add credits for %s: %w", userID, mapError(err))
	}
	return credits, nil
}

func (a *BalanceAdapter) GetBalance(ctx context.Context, userID string) (*v1.UserBalance, error) {
	var bal v1.UserBalance
	err := a.db.QueryRowContext(ctx, queryGetBalance, userID).Scan(&bal.UserID, &bal.Credits, &bal.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get balance for %s: %w", userID, mapError(err))
	}
	return &bal, nil
}

// OpenBalance creates a zero balance if none exists and returns the current record.
func (a *BalanceAdapter) OpenBalance(ctx context.Context, userID string) (*v1.UserBalance, error) {
	if _, err := a.db.ExecContext(ctx, queryOpenBalance, userID, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("failed to open balance for %s: %w", userID, mapError(err))
	}
	return a.GetBalance(ctx, userID)
}

// CreditStream is a change stream over credit_transactions. The position is
// kept in stream_checkpoints under name, so every Next re-reads from the last
// acked sequence and anything unacked is delivered again.
type CreditStream struct {
	db   *sql.DB
	name string
}

// NewCreditStream creates a stream reader with its own checkpoint row.
func NewCreditStream(db *sql.DB, name string) *CreditStream {
	return &CreditStream{db: db, name: name}
}

// Append records a credit grant in the transaction log and returns its ID.
// Appends hold a transaction-scoped advisory lock, so they commit in seq order.
func (s *CreditStream) Append(ctx context.Context, grant v1.CreditGrantEvent) (id string, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin credit append: %w", mapError(err))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, queryLockCreditAppend); err != nil {
		return "", fmt.Errorf("failed to lock credit log: %w", mapError(err))
	}

	id = uuid.NewString()
	var seq int64
	err = tx.QueryRowContext(ctx, queryAppendCredit,
		id, string(v1.OpInsert), grant.UserID, grant.Amount, grant.ObservedAt,
	).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("failed to append credit transaction: %w", mapError(err))
	}

	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit credit append: %w", mapError(err))
	}

	slog.Debug("[CreditStream] Appended transaction",
		"transaction_id", id,
		"user_id", grant.UserID,
		"amount", grant.Amount,
		"seq", seq)
	return id, nil
}

// Next returns up to limit change events after the durable checkpoint, in seq order.
func (s *CreditStream) Next(ctx context.Context, limit int) ([]v1.ChangeEvent, error) {
	cursor, err := s.checkpoint(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, queryCreditsAfterCursor, cursor, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query credit transactions: %w", mapError(err))
	}
	defer rows.Close()

	var events []v1.ChangeEvent
	for rows.Next() {
		var (
			seq   int64
			txID  string
			op    string
			grant v1.CreditGrantEvent
		)
		if err := rows.Scan(&seq, &txID, &op, &grant.UserID, &grant.Amount, &grant.ObservedAt); err != nil {
			return nil, fmt.Errorf("failed to scan credit transaction: %w", err)
		}
		events = append(events, v1.ChangeEvent{
			ID:    strconv.FormatInt(seq, 10),
			Op:    v1.ChangeOp(op),
			Grant: grant,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating credit transactions: %w", err)
	}
	return events, nil
}

// Ack advances the checkpoint to the highest seq in events. Never moves backwards.
func (s *CreditStream) Ack(ctx context.Context, events []v1.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}

	var maxSeq int64
	for _, evt := range events {
		seq, err := strconv.ParseInt(evt.ID, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid credit stream position %q: %w", evt.ID, err)
		}
		if seq > maxSeq {
			maxSeq = seq
		}
	}

	if _, err := s.db.ExecContext(ctx, queryAdvanceStreamCheckpoint, s.name, maxSeq, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to advance checkpoint for %s: %w", s.name, mapError(err))
	}
	return nil
}

func (s *CreditStream) checkpoint(ctx context.Context) (int64, error) {
	var cursor int64
	err := s.db.QueryRowContext(ctx, queryReadStreamCheckpoint, s.name).Scan(&cursor)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read checkpoint for %s: %w", s.name, mapError(err))
	}
	return cursor, nil
}
