//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func TestRegistrationAPI_ConcurrentAdmissionsRespectCapacity(t *testing.T) {
	h := startHarnessWithoutScheduler(t)
	defer h.close(t)

	ctx := context.Background()
	occ := v1.Occurrence{EventID: "gophercon", Year: 2026}
	require.NoError(t, h.adapter.SeedEvent(ctx, occ, "GopherCon", 5))

	const attendees = 40
	for i := 0; i < attendees; i++ {
		require.NoError(t, h.adapter.SeedAttendee(ctx, fmt.Sprintf("a-%d", i), ""))
	}

	base := fmt.Sprintf("%s/v1/events/%s/%d", h.baseURL, occ.EventID, occ.Year)

	var wg sync.WaitGroup
	statuses := make(chan v1.Status, attendees)
	for i := 0; i < attendees; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			code, body := doJSON(t, h.client, http.MethodPost, base+"/registrations",
				v1.CreateRegistrationRequest{AttendeeID: fmt.Sprintf("a-%d", i)})
			if code != http.StatusCreated {
				t.Errorf("unexpected status %d: %s", code, body)
				return
			}
			var reg v1.Registration
			if err := json.Unmarshal(body, &reg); err != nil {
				t.Error(err)
				return
			}
			statuses <- reg.Status
		}(i)
	}
	wg.Wait()
	close(statuses)

	counts := map[v1.Status]int{}
	for s := range statuses {
		counts[s]++
	}
	require.Equal(t, 5, counts[v1.StatusRegistered])
	require.Equal(t, attendees-5, counts[v1.StatusWaitlisted])

	agg := getAggregate(t, h, base)
	require.Equal(t, 5, agg.RegisteredCount)
	require.Equal(t, attendees-5, agg.WaitlistCount)
	requireAggregateMatchesRows(t, h, occ, agg)
}

func TestRegistrationAPI_RemoveThenPromote(t *testing.T) {
	h := startHarnessWithoutScheduler(t)
	defer h.close(t)

	ctx := context.Background()
	occ := v1.Occurrence{EventID: "meetup", Year: 2026}
	require.NoError(t, h.adapter.SeedEvent(ctx, occ, "Meetup", 1))
	require.NoError(t, h.adapter.SeedAttendee(ctx, "first", ""))
	require.NoError(t, h.adapter.SeedAttendee(ctx, "second", ""))

	base := fmt.Sprintf("%s/v1/events/%s/%d", h.baseURL, occ.EventID, occ.Year)

	code, body := doJSON(t, h.client, http.MethodPost, base+"/registrations", v1.CreateRegistrationRequest{AttendeeID: "first"})
	require.Equal(t, http.StatusCreated, code, string(body))
	code, body = doJSON(t, h.client, http.MethodPost, base+"/registrations", v1.CreateRegistrationRequest{AttendeeID: "second"})
	require.Equal(t, http.StatusCreated, code, string(body))

	code, body = doJSON(t, h.client, http.MethodPost, base+"/registrations", v1.CreateRegistrationRequest{AttendeeID: "second"})
	require.Equal(t, http.StatusConflict, code, string(body))

	code, body = doJSON(t, h.client, http.MethodPut, base+"/registrations/second", v1.UpdateRegistrationRequest{Status: "registered"})
	require.Equal(t, http.StatusConflict, code, "promotion is rejected while the event is full: %s", body)

	code, _ = doJSON(t, h.client, http.MethodDelete, base+"/registrations/first", nil)
	require.Equal(t, http.StatusNoContent, code)

	code, body = doJSON(t, h.client, http.MethodPut, base+"/registrations/second", v1.UpdateRegistrationRequest{Status: "registered"})
	require.Equal(t, http.StatusOK, code, string(body))

	agg := getAggregate(t, h, base)
	require.Equal(t, 1, agg.RegisteredCount)
	require.Zero(t, agg.WaitlistCount)
	requireAggregateMatchesRows(t, h, occ, agg)
}

func getAggregate(t *testing.T, h *integrationHarness, base string) v1.EventAggregate {
	t.Helper()
	code, body := doJSON(t, h.client, http.MethodGet, base+"/aggregate", nil)
	require.Equal(t, http.StatusOK, code, string(body))
	var agg v1.EventAggregate
	require.NoError(t, json.Unmarshal(body, &agg))
	return agg
}

func requireAggregateMatchesRows(t *testing.T, h *integrationHarness, occ v1.Occurrence, agg v1.EventAggregate) {
	t.Helper()

	rows, err := h.db.Query(`
		SELECT status, COUNT(*) FROM registrations
		WHERE event_id = $1 AND year = $2
		GROUP BY status
	`, occ.EventID, occ.Year)
	require.NoError(t, err)
	defer rows.Close()

	counts := map[v1.Status]int{}
	for rows.Next() {
		var status string
		var n int
		require.NoError(t, rows.Scan(&status, &n))
		counts[v1.Status(status)] = n
	}
	require.NoError(t, rows.Err())

	require.Equal(t, counts[v1.StatusRegistered], agg.RegisteredCount)
	require.Equal(t, counts[v1.StatusCheckedIn], agg.CheckedInCount)
	require.Equal(t, counts[v1.StatusWaitlisted], agg.WaitlistCount)
	require.Equal(t, counts[v1.StatusCancelled], agg.CancelledCount)
}
