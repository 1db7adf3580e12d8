//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	v1 "github.com/aevon-lab/eventreg/internal/api/v1"
	"github.com/stretchr/testify/require"
)

func TestLedgerAPI_GrantsAreAggregated(t *testing.T) {
	h := startHarness(t)
	defer h.close(t)

	base := h.baseURL + "/v1/users/alice"

	code, body := doJSON(t, h.client, http.MethodPut, base+"/balance", nil)
	require.Equal(t, http.StatusOK, code, string(body))

	for _, amount := range []int64{100, 50, -30} {
		code, body = doJSON(t, h.client, http.MethodPost, base+"/credits", v1.GrantCreditsRequest{Amount: amount})
		require.Equal(t, http.StatusAccepted, code, string(body))
	}

	require.Eventually(t, func() bool {
		code, body := doJSON(t, h.client, http.MethodGet, base+"/balance", nil)
		if code != http.StatusOK {
			return false
		}
		var bal v1.UserBalance
		return json.Unmarshal(body, &bal) == nil && bal.Credits == 120
	}, 5*time.Second, 50*time.Millisecond)
}

func TestLedgerAPI_UnknownUserIsSkippedAndCheckpointAdvances(t *testing.T) {
	h := startHarnessWithoutScheduler(t)
	defer h.close(t)

	code, body := doJSON(t, h.client, http.MethodPost, h.baseURL+"/v1/users/ghost/credits", v1.GrantCreditsRequest{Amount: 10})
	require.Equal(t, http.StatusAccepted, code, string(body))

	n, err := h.scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, n)

	n, err = h.scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	require.Zero(t, n, "skipped events are acked, not redelivered")

	code, _ = doJSON(t, h.client, http.MethodGet, h.baseURL+"/v1/users/ghost/balance", nil)
	require.Equal(t, http.StatusNotFound, code)
}
