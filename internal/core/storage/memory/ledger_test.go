package memory

import (
	"context"
	"math"
	"testing"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/aevon-lab/eventreg/internal/core/storage"
	"github.com/stretchr/testify/require"
)

func TestBalances(t *testing.T) {
	ctx := context.Background()
	b := NewBalances()

	_, err := b.AddCredits(ctx, "user-1", 10)
	require.ErrorIs(t, err, storage.ErrNotFound)

	bal, err := b.OpenBalance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(0), bal.Credits)

	total, err := b.AddCredits(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Equal(t, int64(10), total)

	bal, err = b.OpenBalance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(10), bal.Credits, "reopening keeps the existing balance")
}

func TestCreditLog_RedeliversUntilAcked(t *testing.T) {
	ctx := context.Background()
	l := NewCreditLog()

	for i := 0; i < 3; i++ {
		_, err := l.Append(ctx, v1.CreditGrantEvent{UserID: "user-1", Amount: 5})
		require.NoError(t, err)
	}

	first, err := l.Next(ctx, 2)
	require.NoError(t, err)
	require.Len(t, first, 2)

	again, err := l.Next(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, first, again)

	require.NoError(t, l.Ack(ctx, first))
	require.Equal(t, 1, l.Pending())

	rest, err := l.Next(ctx, 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	require.Equal(t, "3", rest[0].ID)

	require.NoError(t, l.Ack(ctx, first), "stale ack does not rewind")
	require.Equal(t, 1, l.Pending())

	require.Error(t, l.Ack(ctx, []v1.ChangeEvent{{ID: "99"}}))
}

func TestBalances_AddCreditsOutOfRange(t *testing.T) {
	ctx := context.Background()
	b := NewBalances()
	_, err := b.OpenBalance(ctx, "user-1")
	require.NoError(t, err)

	_, err = b.AddCredits(ctx, "user-1", math.MaxInt64)
	require.NoError(t, err)

	_, err = b.AddCredits(ctx, "user-1", 2)
	require.ErrorIs(t, err, storage.ErrConstraint)

	bal, err := b.GetBalance(ctx, "user-1")
	require.NoError(t, err)
	require.Equal(t, int64(math.MaxInt64), bal.Credits, "a rejected increment leaves the balance unchanged")

	_, err = b.AddCredits(ctx, "user-1", math.MinInt64)
	require.NoError(t, err, "large deductions that stay in range are applied")
}

func TestCreditLog_AppendReturnsDeliveredID(t *testing.T) {
	ctx := context.Background()
	l := NewCreditLog()

	id, err := l.Append(ctx, v1.CreditGrantEvent{UserID: "user-1", Amount: 5})
	require.NoError(t, err)

	events, err := l.Next(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, id, events[0].ID)
}
