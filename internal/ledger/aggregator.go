package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"golang.org/x/sync/errgroup"
)

const (
	defaultWorkerCount  = 8
	defaultMaxAttempts  = 3
	defaultRetryBackoff = 100 * time.Millisecond
)

// Options controls how a batch is applied.
type Options struct {
	WorkerCount  int
	MaxAttempts  int
	RetryBackoff time.Duration
}

// DefaultOptions returns safe defaults.
func DefaultOptions() Options {
	return Options{
		WorkerCount:  defaultWorkerCount,
		MaxAttempts:  defaultMaxAttempts,
		RetryBackoff: defaultRetryBackoff,
	}
}

func (o Options) normalized() Options {
	n := o
	if n.WorkerCount <= 0 {
		n.WorkerCount = defaultWorkerCount
	}
	if n.MaxAttempts <= 0 {
		n.MaxAttempts = defaultMaxAttempts
	}
	if n.RetryBackoff < 0 {
		n.RetryBackoff = 0
	}
	return n
}

// BatchResult reports what one ProcessBatch call did.
type BatchResult struct {
	// Applied maps userID to the delta added to that user's balance.
	Applied map[string]int64
	// Skipped lists users with no balance record. Their grants are dropped.
	Skipped []string
	// Failed maps userID to the error that stopped its update.
	Failed map[string]error
	// Ignored counts events that were not inserts or carried an invalid grant.
	Ignored int
}

// Aggregator folds a batch of change events into one balance increment per user.
type Aggregator struct {
	balances BalanceStore
	opts     Options
}

func NewAggregator(balances BalanceStore, opts Options) *Aggregator {
	if balances == nil {
		panic("ledger: balance store must not be nil")
	}
	return &Aggregator{balances: balances, opts: opts.normalized()}
}

// SumByUser groups insert events by user and sums their amounts.
// Other ops, grants without a user and grants that would push the user's
// batch sum out of the int64 range are counted as ignored.
func SumByUser(events []v1.ChangeEvent) (sums map[string]int64, ignored int) {
	sums = make(map[string]int64)
	for _, evt := range events {
		if evt.Op != v1.OpInsert {
			ignored++
			continue
		}
		if err := evt.Grant.Validate(); err != nil {
			slog.Warn("[Ledger] Ignoring invalid grant", "event_id", evt.ID, "error", err)
			ignored++
			continue
		}
		sum, ok := addInt64(sums[evt.Grant.UserID], evt.Grant.Amount)
		if !ok {
			slog.Error("[Ledger] Ignoring grant that overflows the batch sum",
				"event_id", evt.ID,
				"user_id", evt.Grant.UserID,
				"amount", evt.Grant.Amount)
			ignored++
			continue
		}
		sums[evt.Grant.UserID] = sum
	}
	return sums, ignored
}

func addInt64(a, b int64) (int64, bool) {
	sum := a + b
	if (b > 0 && sum < a) || (b < 0 && sum > a) {
		return 0, false
	}
	return sum, true
}

// ProcessBatch applies one atomic increment per user with a non-zero sum.
//
// Users without a balance record are logged and skipped. Transient store
// errors are retried with the same amount. Other per-user errors are
// permanent: they are logged, reported in Failed and the batch can still be
// acked. Only when a user is still failing transiently after the last
// attempt is the returned error non-nil; the caller must then not ack, and
// the redelivered batch applies the successful users again.
func (a *Aggregator) ProcessBatch(ctx context.Context, events []v1.ChangeEvent) (*BatchResult, error) {
	sums, ignored := SumByUser(events)
	result := &BatchResult{
		Applied: make(map[string]int64, len(sums)),
		Failed:  make(map[string]error),
		Ignored: ignored,
	}

	users := make([]string, 0, len(sums))
	for user, sum := range sums {
		if sum != 0 {
			users = append(users, user)
		}
	}
	sort.Strings(users)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(a.opts.WorkerCount)

	for _, user := range users {
		user := user
		delta := sums[user]
		g.Go(func() error {
			err := a.applyWithRetry(ctx, user, delta)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Applied[user] = delta
			case errors.Is(err, storage.ErrNotFound):
				slog.Warn("[Ledger] User has no balance record, skipping grant",
					"user_id", user,
					"amount", delta)
				result.Skipped = append(result.Skipped, user)
			case isRetryable(err):
				slog.Error("[Ledger] Failed to apply credits, batch will be redelivered",
					"user_id", user,
					"amount", delta,
					"error", err)
				result.Failed[user] = err
			default:
				slog.Error("[Ledger] Dropping credits after permanent failure",
					"user_id", user,
					"amount", delta,
					"error", err)
				result.Failed[user] = err
			}
			return nil
		})
	}
	_ = g.Wait()
	sort.Strings(result.Skipped)

	slog.Info("[Ledger] Batch processed",
		"events", len(events),
		"ignored", result.Ignored,
		"users_applied", len(result.Applied),
		"users_skipped", len(result.Skipped),
		"users_failed", len(result.Failed))

	var retryable []error
	for _, user := range users {
		if err, ok := result.Failed[user]; ok && isRetryable(err) {
			retryable = append(retryable, fmt.Errorf("user %s: %w", user, err))
		}
	}
	if len(retryable) > 0 {
		return result, fmt.Errorf("ledger batch: %d of %d users failed transiently: %w", len(retryable), len(users), errors.Join(retryable...))
	}
	return result, nil
}

// isRetryable reports whether a failed user should hold back the ack so the
// batch is delivered again.
func isRetryable(err error) bool {
	return errors.Is(err, storage.ErrTransient) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}

// applyWithRetry retries only storage.ErrTransient, with linear backoff.
func (a *Aggregator) applyWithRetry(ctx context.Context, user string, delta int64) error {
	for attempt := 1; ; attempt++ {
		_, err := a.balances.AddCredits(ctx, user, delta)
		if err == nil {
			return nil
		}
		if !errors.Is(err, storage.ErrTransient) || attempt >= a.opts.MaxAttempts {
			return err
		}

		slog.Warn("[Ledger] Transient failure, retrying",
			"user_id", user,
			"attempt", attempt,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(a.opts.RetryBackoff * time.Duration(attempt)):
		}
	}
}
