package integration

import (
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentCancel fires simultaneous cancellations at one escrow. The
// aggregate row lock serializes them: exactly one request wins, the rest see
// a terminal status and fail the transition check.
func TestConcurrentCancel(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "tuan.nguyen", "BUYER")
	token := app.login(t, "tuan.nguyen")

	txID := app.createEscrow(t, token)
	code, _ := app.do(t, http.MethodPost, escrowPath(txID, "/deposit"), token, map[string]any{
		"amount": 30_000_000,
		"method": "BANK_TRANSFER",
	})
	require.Equal(t, http.StatusCreated, code)

	concurrency := 10
	var wg sync.WaitGroup
	var cancelled atomic.Int64
	var rejected atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, body := app.do(t, http.MethodPost, escrowPath(txID, "/cancel"), token, map[string]string{
				"reason": "buyer pulled out",
			})
			switch status {
			case http.StatusOK:
				cancelled.Add(1)
			case http.StatusUnprocessableEntity:
				rejected.Add(1)
				assert.Equal(t, "ESC_002", body["error_code"])
			default:
				t.Errorf("unexpected status %d: %v", status, body)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), cancelled.Load())
	assert.Equal(t, int64(concurrency-1), rejected.Load())

	// Exactly one cancellation event was appended
	code, body := app.do(t, http.MethodGet, escrowPath(txID, "/events"), token, nil)
	require.Equal(t, http.StatusOK, code)
	events := body["data"].([]interface{})
	require.Len(t, events, 3)
	last := events[len(events)-1].(map[string]interface{})
	assert.Equal(t, "EscrowCancelled", last["event_type"])
	assert.Equal(t, float64(3), last["sequence"])
}

// TestConcurrentDeposits checks that once one deposit confirms, every other
// in-flight deposit fails the INITIATED precondition instead of stacking
// duplicate confirmations.
func TestConcurrentDeposits(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.register(t, "tuan.nguyen", "BUYER")
	token := app.login(t, "tuan.nguyen")
	txID := app.createEscrow(t, token)

	concurrency := 5
	var wg sync.WaitGroup
	var confirmed atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, _ := app.do(t, http.MethodPost, escrowPath(txID, "/deposit"), token, map[string]any{
				"amount": 30_000_000,
				"method": "BANK_TRANSFER",
			})
			if status == http.StatusCreated {
				confirmed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), confirmed.Load())

	code, body := app.do(t, http.MethodGet, escrowPath(txID, ""), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "DEPOSITED", body["data"].(map[string]interface{})["status"])
}
