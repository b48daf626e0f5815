package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"wallet-service/internal/core/domain"
	"wallet-service/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentWebhookDeliveries fires the same signed charge.success
// delivery from many goroutines at once. The unique (event, reference)
// log row must guarantee the deposit is credited exactly once.
func TestConcurrentWebhookDeliveries(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := loginUser(t, app, "code-cw", &ports.Identity{SubjectID: "sub-cw", Email: "cw@example.com", Name: "CW"})
	reference := initiateDeposit(t, app, token, 50000)

	delivery := webhookBody(domain.WebhookEventChargeSuccess, reference, "success", 50000)
	signature := app.verifier.Sign(delivery)

	concurrency := 20
	var wg sync.WaitGroup
	var acked atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/webhooks/paystack", bytes.NewReader(delivery))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Signature", signature)

			r, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer r.Body.Close()

			var ack struct {
				Status bool `json:"status"`
			}
			if json.NewDecoder(r.Body).Decode(&ack) == nil && ack.Status {
				acked.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Duplicate deliveries: %d of %d acknowledged", acked.Load(), concurrency)
	assert.Equal(t, int64(concurrency), acked.Load(), "every redelivery should be acknowledged")

	// Credited once, no matter how many deliveries raced.
	assert.Equal(t, int64(50000), getWallet(t, app, token).Balance)
}

// TestConcurrentTransfers drains a wallet with parallel transfers that
// together exactly equal the balance. Wallet locking must let all of
// them through sequentially with no lost updates.
func TestConcurrentTransfers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken, _ := loginUser(t, app, "code-ct", &ports.Identity{SubjectID: "sub-ct", Email: "ct@example.com", Name: "CT"})
	recipientToken, _ := loginUser(t, app, "code-ct2", &ports.Identity{SubjectID: "sub-ct2", Email: "ct2@example.com", Name: "CT2"})

	fundWallet(t, app, senderToken, 100000)
	recipientNumber := getWallet(t, app, recipientToken).WalletNumber

	concurrency := 20
	amount := int64(5000) // 20 * 5000 = exactly the funded balance

	var wg sync.WaitGroup
	var successCount, failCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status := doTransfer(app, senderToken, recipientNumber, amount)
			if status == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Concurrent transfers: %d succeeded, %d failed", successCount.Load(), failCount.Load())
	assert.Equal(t, int64(concurrency), successCount.Load(), "all transfers fit the balance exactly")

	assert.Equal(t, int64(0), getWallet(t, app, senderToken).Balance)
	assert.Equal(t, int64(100000), getWallet(t, app, recipientToken).Balance)
}

// TestConcurrentTransfers_InsufficientFunds requests twice the available
// balance in parallel. Exactly half may succeed and the sender must never
// go negative.
func TestConcurrentTransfers_InsufficientFunds(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	senderToken, _ := loginUser(t, app, "code-os", &ports.Identity{SubjectID: "sub-os", Email: "os@example.com", Name: "OS"})
	recipientToken, _ := loginUser(t, app, "code-os2", &ports.Identity{SubjectID: "sub-os2", Email: "os2@example.com", Name: "OS2"})

	fundWallet(t, app, senderToken, 50000)
	recipientNumber := getWallet(t, app, recipientToken).WalletNumber

	concurrency := 20
	amount := int64(5000) // 20 * 5000 = double the funded balance

	var wg sync.WaitGroup
	var successCount, insufficientCount atomic.Int64

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch doTransfer(app, senderToken, recipientNumber, amount) {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Overspend test: %d succeeded, %d rejected", successCount.Load(), insufficientCount.Load())
	assert.Equal(t, int64(10), successCount.Load(), "exactly the covered transfers succeed")
	assert.Equal(t, int64(10), insufficientCount.Load())

	senderBalance := getWallet(t, app, senderToken).Balance
	recipientBalance := getWallet(t, app, recipientToken).Balance
	assert.Equal(t, int64(0), senderBalance)
	assert.Equal(t, int64(50000), recipientBalance)
	assert.Equal(t, int64(50000), senderBalance+recipientBalance, "funds are conserved")
}

// TestConcurrentOpposingTransfers runs transfer pairs in both directions
// at once. Locking wallets in ascending ID order must prevent deadlock
// and conserve the combined balance.
func TestConcurrentOpposingTransfers(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	tokenA, _ := loginUser(t, app, "code-opA", &ports.Identity{SubjectID: "sub-opA", Email: "opa@example.com", Name: "OpA"})
	tokenB, _ := loginUser(t, app, "code-opB", &ports.Identity{SubjectID: "sub-opB", Email: "opb@example.com", Name: "OpB"})

	fundWallet(t, app, tokenA, 50000)
	fundWallet(t, app, tokenB, 50000)

	numberA := getWallet(t, app, tokenA).WalletNumber
	numberB := getWallet(t, app, tokenB).WalletNumber

	pairs := 10
	amount := int64(1000)

	var wg sync.WaitGroup
	var successCount atomic.Int64

	for i := 0; i < pairs; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if doTransfer(app, tokenA, numberB, amount) == http.StatusCreated {
				successCount.Add(1)
			}
		}()
		go func() {
			defer wg.Done()
			if doTransfer(app, tokenB, numberA, amount) == http.StatusCreated {
				successCount.Add(1)
			}
		}()
	}

	wg.Wait()

	t.Logf("Opposing transfers: %d of %d succeeded", successCount.Load(), pairs*2)
	assert.Equal(t, int64(pairs*2), successCount.Load())

	balanceA := getWallet(t, app, tokenA).Balance
	balanceB := getWallet(t, app, tokenB).Balance
	assert.Equal(t, int64(50000), balanceA, "equal opposing amounts cancel out")
	assert.Equal(t, int64(50000), balanceB)
	assert.Equal(t, int64(100000), balanceA+balanceB, "funds are conserved")
}

// TestConcurrentWalletCreation hits the lazy wallet endpoint from many
// goroutines on a fresh account. The unique user constraint must collapse
// the race to a single wallet.
func TestConcurrentWalletCreation(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token, _ := loginUser(t, app, "code-lazy", &ports.Identity{SubjectID: "sub-lazy", Email: "lazy@example.com", Name: "Lazy"})

	concurrency := 10
	var wg sync.WaitGroup
	numbers := make([]string, concurrency)

	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			req, _ := http.NewRequest(http.MethodGet, app.server.URL+"/api/v1/wallet", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			r, err := http.DefaultClient.Do(req)
			if err != nil {
				return
			}
			defer r.Body.Close()
			if r.StatusCode != http.StatusOK {
				return
			}

			var body struct {
				Data walletView `json:"data"`
			}
			if json.NewDecoder(r.Body).Decode(&body) == nil {
				numbers[idx] = body.Data.WalletNumber
			}
		}(i)
	}

	wg.Wait()

	unique := make(map[string]struct{})
	for _, n := range numbers {
		require.NotEmpty(t, n, "every request should have seen a wallet")
		unique[n] = struct{}{}
	}
	assert.Len(t, unique, 1, "all requests resolve to the same wallet")
}

func doTransfer(app *testApp, token, recipientNumber string, amount int64) int {
	body, _ := json.Marshal(map[string]interface{}{
		"recipient_wallet_number": recipientNumber,
		"amount":                  amount,
	})
	req, _ := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/transfers", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	r, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0
	}
	defer r.Body.Close()
	_, _ = io.ReadAll(r.Body)
	return r.StatusCode
}
