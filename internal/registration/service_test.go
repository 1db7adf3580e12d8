package registration

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	coreerrors "github.com/aevon-lab/eventreg/internal/core/errors"
	"github.com/aevon-lab/eventreg/internal/core/storage/memory"
	storagemocks "github.com/aevon-lab/eventreg/internal/mocks/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var occ = v1.Occurrence{EventID: "devfest", Year: 2026}

func newTestService(t *testing.T, capacity int, attendees ...string) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, store.SeedEvent(ctx, occ, "DevFest", capacity))
	for _, a := range attendees {
		require.NoError(t, store.SeedAttendee(ctx, a, a+"@example.com"))
	}
	return NewService(store, store, 1), store
}

func attendeeIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("att-%d", i)
	}
	return ids
}

func aggregate(t *testing.T, svc *Service) *v1.EventAggregate {
	t.Helper()
	agg, err := svc.GetAggregate(context.Background(), occ)
	require.NoError(t, err)
	return agg
}

// requireConsistent checks the counter invariants and that the aggregate
// matches a recount of the live rows.
func requireConsistent(t *testing.T, svc *Service, store *memory.Store) {
	t.Helper()
	agg := aggregate(t, svc)
	require.LessOrEqual(t, agg.Admitted(), agg.Capacity)
	require.GreaterOrEqual(t, agg.RegisteredCount, 0)
	require.GreaterOrEqual(t, agg.CheckedInCount, 0)
	require.GreaterOrEqual(t, agg.WaitlistCount, 0)
	require.GreaterOrEqual(t, agg.CancelledCount, 0)

	counts := store.CountByStatus(occ)
	require.Equal(t, counts[v1.StatusRegistered], agg.RegisteredCount)
	require.Equal(t, counts[v1.StatusCheckedIn], agg.CheckedInCount)
	require.Equal(t, counts[v1.StatusWaitlisted], agg.WaitlistCount)
	require.Equal(t, counts[v1.StatusCancelled], agg.CancelledCount)
}

func TestAdmit_WaitlistsPastCapacity(t *testing.T) {
	const capacity = 3
	ids := attendeeIDs(capacity + 1)
	svc, store := newTestService(t, capacity, ids...)
	ctx := context.Background()

	for _, id := range ids[:capacity] {
		reg, err := svc.Admit(ctx, id, occ, nil)
		require.NoError(t, err)
		require.Equal(t, v1.StatusRegistered, reg.Status)
	}

	reg, err := svc.Admit(ctx, ids[capacity], occ, map[string]interface{}{"note": "late"})
	require.NoError(t, err)
	require.Equal(t, v1.StatusWaitlisted, reg.Status)
	require.Equal(t, "late", reg.Fields["note"])

	agg := aggregate(t, svc)
	require.Equal(t, capacity, agg.RegisteredCount)
	require.Equal(t, 1, agg.WaitlistCount)
	requireConsistent(t, svc, store)
}

func TestAdmit_ZeroCapacityWaitlistsEveryone(t *testing.T) {
	svc, _ := newTestService(t, 0, "att-0")

	reg, err := svc.Admit(context.Background(), "att-0", occ, nil)
	require.NoError(t, err)
	require.Equal(t, v1.StatusWaitlisted, reg.Status)
}

func TestAdmit_DuplicateIsConflictWithoutCounterChange(t *testing.T) {
	svc, store := newTestService(t, 5, "att-0")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "att-0", occ, nil)
	require.NoError(t, err)

	_, err = svc.Admit(ctx, "att-0", occ, nil)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindConflict), "got %v", err)

	require.Equal(t, 1, aggregate(t, svc).RegisteredCount)
	requireConsistent(t, svc, store)
}

func TestAdmit_ConcurrentSamePair(t *testing.T) {
	svc, store := newTestService(t, 10, "att-0")
	ctx := context.Background()

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Admit(ctx, "att-0", occ, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case coreerrors.IsKind(err, coreerrors.KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, conflicts)
	require.Equal(t, 1, aggregate(t, svc).RegisteredCount)
	requireConsistent(t, svc, store)
}

func TestAdmit_ConcurrentDistinctAttendeesNeverOverbook(t *testing.T) {
	const capacity = 5
	ids := attendeeIDs(40)
	svc, store := newTestService(t, capacity, ids...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := svc.Admit(ctx, id, occ, nil)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	agg := aggregate(t, svc)
	require.Equal(t, capacity, agg.RegisteredCount)
	require.Equal(t, len(ids)-capacity, agg.WaitlistCount)
	requireConsistent(t, svc, store)
}

func TestAdmit_UnknownEventOrAttendee(t *testing.T) {
	svc, _ := newTestService(t, 1, "att-0")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "att-0", v1.Occurrence{EventID: "devfest", Year: 2025}, nil)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindNotFound))

	_, err = svc.Admit(ctx, "stranger", occ, nil)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindNotFound))
}

func TestAdmit_ValidationFailed(t *testing.T) {
	svc, _ := newTestService(t, 1, "att-0")
	ctx := context.Background()

	tests := []struct {
		name     string
		attendee string
		occ      v1.Occurrence
	}{
		{"empty attendee", "", occ},
		{"empty event", "att-0", v1.Occurrence{Year: 2026}},
		{"year zero", "att-0", v1.Occurrence{EventID: "devfest"}},
		{"year too large", "att-0", v1.Occurrence{EventID: "devfest", Year: 10000}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Admit(ctx, tc.attendee, tc.occ, nil)
			require.True(t, coreerrors.IsKind(err, coreerrors.KindValidationFailed), "got %v", err)
		})
	}
}

func TestAdmit_DirectoryFailureIsInternal(t *testing.T) {
	store := memory.NewStore()
	dir := storagemocks.NewDirectory(t)
	dir.EXPECT().EventExists(mock.Anything, occ).Return(false, errors.New("directory down")).Once()

	svc := NewService(store, dir, 1)
	_, err := svc.Admit(context.Background(), "att-0", occ, nil)
	require.Error(t, err)
	require.Equal(t, coreerrors.Kind(""), coreerrors.KindOf(err))
	require.ErrorContains(t, err, "directory down")
}

func TestRemoveThenPromoteScenario(t *testing.T) {
	svc, store := newTestService(t, 1, "A", "B")
	ctx := context.Background()

	a, err := svc.Admit(ctx, "A", occ, nil)
	require.NoError(t, err)
	require.Equal(t, v1.StatusRegistered, a.Status)
	require.Equal(t, 1, aggregate(t, svc).RegisteredCount)

	b, err := svc.Admit(ctx, "B", occ, nil)
	require.NoError(t, err)
	require.Equal(t, v1.StatusWaitlisted, b.Status)
	require.Equal(t, 1, aggregate(t, svc).WaitlistCount)

	require.NoError(t, svc.Remove(ctx, "A", occ))
	agg := aggregate(t, svc)
	require.Equal(t, 0, agg.RegisteredCount)
	require.Equal(t, 1, agg.WaitlistCount, "removal does not promote")

	b, err = svc.Transition(ctx, "B", occ, v1.StatusRegistered)
	require.NoError(t, err)
	require.Equal(t, v1.StatusRegistered, b.Status)

	agg = aggregate(t, svc)
	require.Equal(t, 1, agg.RegisteredCount)
	require.Equal(t, 0, agg.WaitlistCount)
	requireConsistent(t, svc, store)
}

func TestTransition_PromotionWhenFull(t *testing.T) {
	svc, store := newTestService(t, 1, "A", "B")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "A", occ, nil)
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "B", occ, nil)
	require.NoError(t, err)

	for _, target := range []v1.Status{v1.StatusRegistered, v1.StatusCheckedIn} {
		_, err = svc.Transition(ctx, "B", occ, target)
		require.True(t, coreerrors.IsKind(err, coreerrors.KindCapacityExceeded), "target %s: %v", target, err)
	}

	reg, err := svc.Get(ctx, "B", occ)
	require.NoError(t, err)
	require.Equal(t, v1.StatusWaitlisted, reg.Status)
	requireConsistent(t, svc, store)
}

func TestTransition_CheckInIsIdempotent(t *testing.T) {
	svc, store := newTestService(t, 2, "A")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "A", occ, nil)
	require.NoError(t, err)

	first, err := svc.Transition(ctx, "A", occ, v1.StatusCheckedIn)
	require.NoError(t, err)
	require.Equal(t, v1.StatusCheckedIn, first.Status)
	after := aggregate(t, svc)

	second, err := svc.Transition(ctx, "A", occ, v1.StatusCheckedIn)
	require.NoError(t, err)
	require.Equal(t, v1.StatusCheckedIn, second.Status)
	require.Equal(t, first.UpdatedAt, second.UpdatedAt)

	again := aggregate(t, svc)
	require.Equal(t, after.CheckedInCount, again.CheckedInCount)
	require.Equal(t, after.RegisteredCount, again.RegisteredCount)
	require.Equal(t, 1, again.CheckedInCount)
	requireConsistent(t, svc, store)
}

func TestTransition_InvalidLeavesStateUntouched(t *testing.T) {
	svc, store := newTestService(t, 2, "A")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "A", occ, nil)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "A", occ, v1.StatusCancelled)
	require.NoError(t, err)
	before := aggregate(t, svc)

	for _, target := range []v1.Status{v1.StatusRegistered, v1.StatusWaitlisted, v1.StatusCheckedIn} {
		_, err = svc.Transition(ctx, "A", occ, target)
		require.True(t, coreerrors.IsKind(err, coreerrors.KindInvalidTransition), "target %s: %v", target, err)
	}

	require.Equal(t, before.CancelledCount, aggregate(t, svc).CancelledCount)
	requireConsistent(t, svc, store)
}

func TestTransition_Errors(t *testing.T) {
	svc, _ := newTestService(t, 2, "A")
	ctx := context.Background()

	_, err := svc.Transition(ctx, "A", occ, v1.StatusCheckedIn)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindNotFound), "missing registration: %v", err)

	_, err = svc.Transition(ctx, "A", occ, v1.Status("pending"))
	require.True(t, coreerrors.IsKind(err, coreerrors.KindValidationFailed))

	_, err = svc.Transition(ctx, "A", v1.Occurrence{EventID: "ghost", Year: 2026}, v1.StatusCancelled)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindNotFound))
}

func TestRemove_DecrementsCurrentBucket(t *testing.T) {
	svc, store := newTestService(t, 3, "A", "B")
	ctx := context.Background()

	_, err := svc.Admit(ctx, "A", occ, nil)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "A", occ, v1.StatusCheckedIn)
	require.NoError(t, err)
	_, err = svc.Admit(ctx, "B", occ, nil)
	require.NoError(t, err)
	_, err = svc.Transition(ctx, "B", occ, v1.StatusCancelled)
	require.NoError(t, err)

	require.NoError(t, svc.Remove(ctx, "A", occ))
	require.NoError(t, svc.Remove(ctx, "B", occ))

	agg := aggregate(t, svc)
	require.Equal(t, 0, agg.CheckedInCount)
	require.Equal(t, 0, agg.CancelledCount)
	requireConsistent(t, svc, store)

	err = svc.Remove(ctx, "A", occ)
	require.True(t, coreerrors.IsKind(err, coreerrors.KindNotFound))
}

func TestRandomOperationsKeepInvariants(t *testing.T) {
	const capacity = 3
	ids := attendeeIDs(8)
	svc, store := newTestService(t, capacity, ids...)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for step := 0; step < 600; step++ {
		id := ids[rng.Intn(len(ids))]

		var err error
		switch rng.Intn(3) {
		case 0:
			_, err = svc.Admit(ctx, id, occ, nil)
		case 1:
			_, err = svc.Transition(ctx, id, occ, v1.Statuses[rng.Intn(len(v1.Statuses))])
		case 2:
			err = svc.Remove(ctx, id, occ)
		}
		if err != nil {
			require.NotEqual(t, coreerrors.Kind(""), coreerrors.KindOf(err), "step %d: untyped error %v", step, err)
		}
		requireConsistent(t, svc, store)
	}
}

func TestRandomConcurrentOperationsKeepInvariants(t *testing.T) {
	const capacity = 4
	ids := attendeeIDs(12)
	svc, store := newTestService(t, capacity, ids...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for i := 0; i < 100; i++ {
				id := ids[rng.Intn(len(ids))]
				var err error
				switch rng.Intn(3) {
				case 0:
					_, err = svc.Admit(ctx, id, occ, nil)
				case 1:
					_, err = svc.Transition(ctx, id, occ, v1.Statuses[rng.Intn(len(v1.Statuses))])
				case 2:
					err = svc.Remove(ctx, id, occ)
				}
				if err != nil {
					assert.NotEqual(t, coreerrors.Kind(""), coreerrors.KindOf(err), "untyped error %v", err)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	requireConsistent(t, svc, store)
}
