package memory

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/storage"
)

// Balances holds per-user credit balances.
type Balances struct {
	mu       sync.Mutex
	balances map[string]*v1.UserBalance
}

func NewBalances() *Balances {
	return &Balances{balances: make(map[string]*v1.UserBalance)}
}

// AddCredits returns storage.ErrNotFound when the user has no balance record
// and storage.ErrConstraint when the new total does not fit in an int64.
func (b *Balances) AddCredits(_ context.Context, userID string, delta int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[userID]
	if !ok {
		return 0, storage.ErrNotFound
	}
	total := bal.Credits + delta
	if (delta > 0 && total < bal.Credits) || (delta < 0 && total > bal.Credits) {
		return 0, fmt.Errorf("%w: balance of %s out of range", storage.ErrConstraint, userID)
	}
	bal.Credits = total
	bal.UpdatedAt = time.Now().UTC()
	return bal.Credits, nil
}

func (b *Balances) GetBalance(_ context.Context, userID string) (*v1.UserBalance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *bal
	return &cp, nil
}

// OpenBalance creates a zero balance if none exists.
func (b *Balances) OpenBalance(_ context.Context, userID string) (*v1.UserBalance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[userID]
	if !ok {
		bal = &v1.UserBalance{UserID: userID, UpdatedAt: time.Now().UTC()}
		b.balances[userID] = bal
	}
	cp := *bal
	return &cp, nil
}

// CreditLog is an in-process transaction log with a single durable-style
// cursor. Next always starts from the last acked position, so unacked
// events are delivered again.
type CreditLog struct {
	mu     sync.Mutex
	events []v1.ChangeEvent
	acked  int
}

func NewCreditLog() *CreditLog {
	return &CreditLog{}
}

// Append records an insert of grant and returns its position, which is also
// the ID of the change event delivered by Next.
func (l *CreditLog) Append(ctx context.Context, grant v1.CreditGrantEvent) (string, error) {
	return l.Publish(ctx, v1.OpInsert, grant)
}

// Publish appends a change event with an explicit op and returns its position.
func (l *CreditLog) Publish(_ context.Context, op v1.ChangeOp, grant v1.CreditGrantEvent) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	pos := strconv.Itoa(len(l.events) + 1)
	l.events = append(l.events, v1.ChangeEvent{ID: pos, Op: op, Grant: grant})
	return pos, nil
}

func (l *CreditLog) Next(_ context.Context, limit int) ([]v1.ChangeEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	end := l.acked + limit
	if end > len(l.events) {
		end = len(l.events)
	}
	out := make([]v1.ChangeEvent, end-l.acked)
	copy(out, l.events[l.acked:end])
	return out, nil
}

// Ack moves the cursor to the highest position in events. Never moves backwards.
func (l *CreditLog) Ack(_ context.Context, events []v1.ChangeEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, evt := range events {
		pos, err := strconv.Atoi(evt.ID)
		if err != nil {
			return fmt.Errorf("invalid credit log position %q: %w", evt.ID, err)
		}
		if pos > len(l.events) {
			return fmt.Errorf("credit log position %d is beyond end %d", pos, len(l.events))
		}
		if pos > l.acked {
			l.acked = pos
		}
	}
	return nil
}

// Pending returns the number of appended but unacked events.
func (l *CreditLog) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events) - l.acked
}
