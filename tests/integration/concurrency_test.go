package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentClaims_SameKey fires many simultaneous claims with one
// idempotency key. The cooldown slot is an atomic SETNX, so regardless of
// interleaving the reward is credited exactly once: racers either replay the
// recorded claim or hit the active cooldown.
func TestConcurrentClaims_SameKey(t *testing.T) {
	app := newTestApp(t)
	token, _ := app.register(t, "racer@integration.test")

	const workers = 10
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int64
		conflicts atomic.Int64
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := app.request(t, http.MethodPost, "/api/v1/wallet/claim", token, map[string]any{
				"idempotency_key": "race-day-1",
			})
			switch resp.StatusCode {
			case http.StatusOK:
				succeeded.Add(1)
			case http.StatusConflict:
				conflicts.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.GreaterOrEqual(t, succeeded.Load(), int64(1))
	assert.Equal(t, int64(workers), succeeded.Load()+conflicts.Load())

	// The balance reflects exactly one credit
	resp, body := app.request(t, http.MethodGet, "/api/v1/wallet", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(500), body["data"].(map[string]interface{})["balance"])
}

// TestConcurrentClaims_DistinctProfiles runs independent accounts in
// parallel; each gets its own reward and cooldown slot.
func TestConcurrentClaims_DistinctProfiles(t *testing.T) {
	app := newTestApp(t)

	// Registration is rate limited per client IP, keep this under the cap.
	const accounts = 4
	tokens := make([]string, accounts)
	for i := range tokens {
		tokens[i], _ = app.register(t, fmt.Sprintf("parallel-%d@integration.test", i))
	}

	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func(i int, token string) {
			defer wg.Done()
			resp, body := app.request(t, http.MethodPost, "/api/v1/wallet/claim", token, map[string]any{
				"idempotency_key": fmt.Sprintf("parallel-claim-%d", i),
			})
			assert.Equal(t, http.StatusOK, resp.StatusCode, "claim %d failed: %v", i, body)
		}(i, token)
	}
	wg.Wait()

	for _, token := range tokens {
		resp, body := app.request(t, http.MethodGet, "/api/v1/wallet", token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, float64(500), body["data"].(map[string]interface{})["balance"])
	}
}

// TestConcurrentAcknowledge hammers the ack endpoint for one reviewed
// payment; every call lands on the same row and none may error.
func TestConcurrentAcknowledge(t *testing.T) {
	app := newTestApp(t)
	userToken, _ := app.register(t, "acker@integration.test")
	_, adminID := app.register(t, "ack-admin@integration.test")
	adminToken := app.promoteAdmin(t, adminID, "ack-admin@integration.test")

	resp, body := app.request(t, http.MethodPost, "/api/v1/payments", userToken, map[string]any{
		"amount": 1200,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	paymentID := body["data"].(map[string]interface{})["id"].(string)

	resp, _ = app.request(t, http.MethodPost, "/api/v1/admin/payments/"+paymentID+"/review", adminToken, map[string]any{
		"approve": true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	const workers = 10
	var wg sync.WaitGroup
	var ok atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := app.request(t, http.MethodPost, "/api/v1/payments/"+paymentID+"/ack", userToken, nil)
			if resp.StatusCode == http.StatusOK {
				ok.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(workers), ok.Load())

	resp, body = app.request(t, http.MethodGet, "/api/v1/payments/latest", userToken, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotNil(t, body["data"].(map[string]interface{})["acknowledged_at"])
}
