// Package redisstream reads credit change events from a Redis Stream through
// a consumer group.
package redisstream

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/redis/rueidis"
)

// Entry field names.
const (
	fieldOp         = "op"
	fieldUserID     = "user_id"
	fieldAmount     = "amount"
	fieldObservedAt = "observed_at"
)

const (
	idPending = "0"
	idNew     = ">"
)

// Options configures one consumer in a consumer group.
type Options struct {
	Key      string
	Group    string
	Consumer string
	// Block is how long a read for new entries waits. Zero does not block.
	Block time.Duration
}

// Stream implements ledger.ChangeStream and ledger.CreditLog on a Redis Stream.
// Entries read but not acked stay in the consumer's pending list and are
// returned again by the next Next call.
type Stream struct {
	client rueidis.Client
	opts   Options
}

// New creates the consumer group if needed and returns the stream.
func New(ctx context.Context, client rueidis.Client, opts Options) (*Stream, error) {
	if opts.Key == "" || opts.Group == "" || opts.Consumer == "" {
		return nil, fmt.Errorf("redis stream key, group and consumer are required")
	}
	s := &Stream{client: client, opts: opts}
	if err := s.ensureGroup(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Stream) ensureGroup(ctx context.Context) error {
	cmd := s.client.B().XgroupCreate().Key(s.opts.Key).Group(s.opts.Group).Id("0").Mkstream().Build()
	err := s.client.Do(ctx, cmd).Error()
	if err == nil {
		slog.Info("[RedisStream] Consumer group created", "stream", s.opts.Key, "group", s.opts.Group)
		return nil
	}
	if strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil
	}
	return fmt.Errorf("failed to create consumer group %s on %s: %w", s.opts.Group, s.opts.Key, err)
}

// Append publishes an insert entry for grant and returns the entry ID.
func (s *Stream) Append(ctx context.Context, grant v1.CreditGrantEvent) (string, error) {
	cmd := s.client.B().Xadd().Key(s.opts.Key).Id("*").
		FieldValue().
		FieldValue(fieldOp, string(v1.OpInsert)).
		FieldValue(fieldUserID, grant.UserID).
		FieldValue(fieldAmount, strconv.FormatInt(grant.Amount, 10)).
		FieldValue(fieldObservedAt, grant.ObservedAt.UTC().Format(time.RFC3339Nano)).
		Build()

	id, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		return "", fmt.Errorf("failed to publish credit grant: %w", err)
	}
	return id, nil
}

// Next returns this consumer's pending entries if it has any, otherwise up
// to limit new entries. Malformed entries are logged and acked away.
func (s *Stream) Next(ctx context.Context, limit int) ([]v1.ChangeEvent, error) {
	entries, err := s.read(ctx, idPending, limit)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		entries, err = s.read(ctx, idNew, limit)
		if err != nil {
			return nil, err
		}
	}

	events := make([]v1.ChangeEvent, 0, len(entries))
	var malformed []string
	for _, entry := range entries {
		evt, err := parseEntry(entry)
		if err != nil {
			slog.Warn("[RedisStream] Dropping malformed entry",
				"stream", s.opts.Key,
				"entry_id", entry.ID,
				"error", err)
			malformed = append(malformed, entry.ID)
			continue
		}
		events = append(events, evt)
	}

	if len(malformed) > 0 {
		if err := s.ack(ctx, malformed); err != nil {
			return nil, err
		}
	}
	return events, nil
}

// Ack removes events from the consumer's pending list.
func (s *Stream) Ack(ctx context.Context, events []v1.ChangeEvent) error {
	if len(events) == 0 {
		return nil
	}
	ids := make([]string, len(events))
	for i, evt := range events {
		ids[i] = evt.ID
	}
	return s.ack(ctx, ids)
}

func (s *Stream) ack(ctx context.Context, ids []string) error {
	cmd := s.client.B().Xack().Key(s.opts.Key).Group(s.opts.Group).Id(ids...).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to ack %d entries on %s: %w", len(ids), s.opts.Key, err)
	}
	slog.Debug("[RedisStream] Acked entries", "stream", s.opts.Key, "count", len(ids))
	return nil
}

func (s *Stream) read(ctx context.Context, id string, limit int) ([]rueidis.XRangeEntry, error) {
	var cmd rueidis.Completed
	if id == idNew && s.opts.Block > 0 {
		cmd = s.client.B().Xreadgroup().Group(s.opts.Group, s.opts.Consumer).
			Count(int64(limit)).
			Block(s.opts.Block.Milliseconds()).
			Streams().Key(s.opts.Key).Id(id).
			Build()
	} else {
		cmd = s.client.B().Xreadgroup().Group(s.opts.Group, s.opts.Consumer).
			Count(int64(limit)).
			Streams().Key(s.opts.Key).Id(id).
			Build()
	}

	streams, err := s.client.Do(ctx, cmd).AsXRead()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s from %s: %w", id, s.opts.Key, err)
	}
	return streams[s.opts.Key], nil
}

// parseEntry converts a stream entry to a change event. A missing op means insert.
func parseEntry(entry rueidis.XRangeEntry) (v1.ChangeEvent, error) {
	fields := entry.FieldValues

	op := v1.ChangeOp(fields[fieldOp])
	switch op {
	case "":
		op = v1.OpInsert
	case v1.OpInsert, v1.OpModify, v1.OpRemove:
	default:
		return v1.ChangeEvent{}, fmt.Errorf("unknown op %q", op)
	}

	userID := fields[fieldUserID]
	if userID == "" {
		return v1.ChangeEvent{}, fmt.Errorf("missing %s", fieldUserID)
	}

	amount, err := strconv.ParseInt(fields[fieldAmount], 10, 64)
	if err != nil {
		return v1.ChangeEvent{}, fmt.Errorf("invalid %s %q: %w", fieldAmount, fields[fieldAmount], err)
	}

	var observedAt time.Time
	if raw := fields[fieldObservedAt]; raw != "" {
		observedAt, err = time.Parse(time.RFC3339Nano, raw)
		if err != nil {
			return v1.ChangeEvent{}, fmt.Errorf("invalid %s %q: %w", fieldObservedAt, raw, err)
		}
	}

	return v1.ChangeEvent{
		ID: entry.ID,
		Op: op,
		Grant: v1.CreditGrantEvent{
			UserID:     userID,
			Amount:     amount,
			ObservedAt: observedAt,
		},
	}, nil
}
