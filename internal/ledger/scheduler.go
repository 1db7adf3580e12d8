package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	defaultBatchSize      = 1000
	maxConsecutiveBatches = 100
	finalDrainTimeout     = 30 * time.Second
)

// Scheduler periodically drains a ChangeStream through an Aggregator.
// It keeps no position of its own: the stream redelivers anything unacked.
type Scheduler struct {
	interval   time.Duration
	batchSize  int
	stream     ChangeStream
	aggregator *Aggregator
}

func NewScheduler(interval time.Duration, batchSize int, stream ChangeStream, aggregator *Aggregator) *Scheduler {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Scheduler{
		interval:   interval,
		batchSize:  batchSize,
		stream:     stream,
		aggregator: aggregator,
	}
}

// Start runs until ctx is cancelled, then does one bounded final drain.
func (s *Scheduler) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("[LedgerScheduler] Starting",
		"interval", s.interval,
		"batch_size", s.batchSize)

	s.drainBacklog(ctx)

	for {
		select {
		case <-ticker.C:
			s.drainBacklog(ctx)
		case <-ctx.Done():
			slog.Info("[LedgerScheduler] Stopping (context cancelled)")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), finalDrainTimeout)
			defer cancel()

			slog.Info("[LedgerScheduler] Running final drain before shutdown...")
			s.drainBacklog(shutdownCtx)
			slog.Info("[LedgerScheduler] Final drain complete")
			return nil
		}
	}
}

// RunOnce reads one batch, applies it and acks it. It returns the number of
// events read. On a processing error the batch is left unacked.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	events, err := s.stream.Next(ctx, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("read change stream: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	if _, err := s.aggregator.ProcessBatch(ctx, events); err != nil {
		return len(events), fmt.Errorf("process batch: %w", err)
	}

	if err := s.stream.Ack(ctx, events); err != nil {
		return len(events), fmt.Errorf("ack batch: %w", err)
	}
	return len(events), nil
}

func (s *Scheduler) drainBacklog(ctx context.Context) {
	batchCount := 0

	for batchCount < maxConsecutiveBatches {
		select {
		case <-ctx.Done():
			slog.Info("[LedgerScheduler] Drain interrupted by context cancellation",
				"batches_processed", batchCount)
			return
		default:
		}

		n, err := s.RunOnce(ctx)
		if err != nil {
			slog.Error("[LedgerScheduler] Batch failed, will retry on next tick",
				"error", err,
				"batch_number", batchCount+1)
			return
		}
		batchCount++

		if n < s.batchSize {
			if batchCount > 1 {
				slog.Info("[LedgerScheduler] Backlog drained", "total_batches", batchCount)
			}
			return
		}

		slog.Info("[LedgerScheduler] Backlog detected, continuing to drain",
			"batches_so_far", batchCount)
	}

	slog.Warn("[LedgerScheduler] Max consecutive batches reached, pausing drain",
		"max_batches", maxConsecutiveBatches)
}
