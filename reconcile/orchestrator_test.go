package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/models"
	"github.com/bmt-labs/checkout-bridge/store"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	mu          sync.Mutex
	verifyValid bool
	verifyErr   error
	statusRes   *gateway.StatusResult
	fetchErr    error
	fetchCalls  int
}

func (f *fakeGateway) VerifyPaymentHash(orderID, claimedHash string) (bool, error) {
	return f.verifyValid, f.verifyErr
}

func (f *fakeGateway) FetchStatus(ctx context.Context, paymentUUID string) (*gateway.StatusResult, error) {
	f.mu.Lock()
	f.fetchCalls++
	f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.statusRes, nil
}

func newTestOrder(t *testing.T, s store.OrderStore, status string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderID:  "ORD-TEST-1",
		Amount:   250,
		Currency: "HNL",
		Mode:     "sale",
		Status:   status,
	}
	require.NoError(t, s.Create(context.Background(), order))
	return order
}

func TestConfirmRequiresOrderID(t *testing.T) {
	orch := NewOrchestrator(store.NewMemoryStore(), &fakeGateway{}, time.Second)
	_, err := orch.Confirm(context.Background(), ConfirmRequest{})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestConfirmUnknownOrder(t *testing.T) {
	orch := NewOrchestrator(store.NewMemoryStore(), &fakeGateway{}, time.Second)
	_, err := orch.Confirm(context.Background(), ConfirmRequest{OrderID: "ORD-NOPE"})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindNotFound))
}

func TestConfirmClaimOnlyFallback(t *testing.T) {
	tests := []struct {
		claim      string
		wantStatus string
		wantHTTP   int
	}{
		{"APPROVED", models.OrderStatusPaid, 200},
		{"DECLINED", models.OrderStatusDeclined, 402},
	}
	for _, tt := range tests {
		t.Run(tt.claim, func(t *testing.T) {
			s := store.NewMemoryStore()
			newTestOrder(t, s, models.OrderStatusCreated)
			orch := NewOrchestrator(s, &fakeGateway{}, time.Second)

			res, err := orch.Confirm(context.Background(), ConfirmRequest{
				OrderID: "ORD-TEST-1",
				Claim:   tt.claim,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Status)
			assert.Equal(t, tt.wantHTTP, res.HTTP)

			stored, err := s.Get(context.Background(), "ORD-TEST-1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, stored.Status)
			assert.NotNil(t, stored.StatusCheckedAt)
		})
	}
}

func TestConfirmHashOverridesClaim(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{verifyValid: true}, time.Second)

	// A valid proof wins even against a declined claim.
	res, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		PaymentHash: "some-hash",
		Claim:       "DECLINED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.True(t, res.Verified)
}

func TestConfirmHashMismatchWithApprovedClaim(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	gw := &fakeGateway{verifyValid: false}
	orch := NewOrchestrator(s, gw, time.Second)

	res, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		PaymentHash: "wrong-hash",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, res.Status)
	assert.Equal(t, 200, res.HTTP)
	// A checked hash settles the pass; the remote query must not run.
	assert.Equal(t, 0, gw.fetchCalls)
}

func TestConfirmRemoteApproved(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{statusRes: &gateway.StatusResult{
		Status:   gateway.StatusApproved,
		HTTPCode: 200,
		Message:  "Transaction approved",
	}}, time.Second)

	res, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.Equal(t, "Transaction approved", res.Message)
}

func TestConfirmRemoteTimeoutKeepsPending(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusPending)
	orch := NewOrchestrator(s, &fakeGateway{fetchErr: context.DeadlineExceeded}, time.Second)

	res, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, res.Status)

	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
	assert.NotNil(t, stored.StatusCheckedAt)
}

func TestConfirmUpstreamAuthFailure(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{statusRes: &gateway.StatusResult{
		Status:   gateway.StatusUnknown,
		HTTPCode: 401,
	}}, time.Second)

	res, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusError, res.Status)
	assert.Equal(t, 500, res.HTTP)
}

func TestConfirmTerminalOrderIsIdempotent(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{}, time.Second)

	req := ConfirmRequest{OrderID: "ORD-TEST-1", Claim: "APPROVED"}
	first, err := orch.Confirm(context.Background(), req)
	require.NoError(t, err)
	second, err := orch.Confirm(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaid, first.Status)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.HTTP, second.HTTP)

	// A later declined claim must not flip a paid order.
	third, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID: "ORD-TEST-1", Claim: "DECLINED",
	})
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, third.Status)

	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestConfirmMissingSecretIsConfigurationError(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{verifyErr: errors.New("no secret configured")}, time.Second)

	_, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		PaymentHash: "some-hash",
		Claim:       "APPROVED",
	})
	require.Error(t, err)
	assert.True(t, utils.IsKind(err, utils.KindConfiguration))

	// The attempt is not lost: the order carries the error status and
	// an audit event exists.
	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusError, stored.Status)
	assert.NotEmpty(t, s.Events())
}

func TestConfirmAuditRoundTrip(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{verifyValid: false}, time.Second)

	_, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		PaymentHash: "wrong-hash",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)

	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)

	var evidence map[string]interface{}
	require.NoError(t, json.Unmarshal(stored.PixelRaw, &evidence))
	assert.Equal(t, "hash", evidence["source"])
	assert.Equal(t, "APPROVED", evidence["claim"])
	assert.Equal(t, true, evidence["hash_checked"])
	assert.Equal(t, false, evidence["hash_valid"])
}

func TestConfirmConcurrentDuplicateDelivery(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{}, time.Second)

	req := ConfirmRequest{OrderID: "ORD-TEST-1", Claim: "APPROVED"}

	var wg sync.WaitGroup
	results := make([]*Result, 2)
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = orch.Confirm(context.Background(), req)
		}(i)
	}
	wg.Wait()

	for i := 0; i < 2; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, models.OrderStatusPaid, results[i].Status)
	}

	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, stored.Status)
}

func TestConfirmBindsIdentifiersOnce(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	orch := NewOrchestrator(s, &fakeGateway{statusRes: &gateway.StatusResult{
		Status:   gateway.StatusPending,
		HTTPCode: 200,
	}}, time.Second)

	_, err := orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-1",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)

	stored, err := s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", stored.PaymentUUID)

	// A different uuid on a later delivery does not rebind.
	_, err = orch.Confirm(context.Background(), ConfirmRequest{
		OrderID:     "ORD-TEST-1",
		PaymentUUID: "uuid-2",
		Claim:       "APPROVED",
	})
	require.NoError(t, err)

	stored, err = s.Get(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, "uuid-1", stored.PaymentUUID)
}

func TestRefreshUsesStoredIdentifiers(t *testing.T) {
	s := store.NewMemoryStore()
	order := &models.Order{
		OrderID:     "ORD-TEST-2",
		Status:      models.OrderStatusPending,
		PaymentUUID: "uuid-9",
	}
	require.NoError(t, s.Create(context.Background(), order))

	gw := &fakeGateway{statusRes: &gateway.StatusResult{
		Status:   gateway.StatusApproved,
		HTTPCode: 200,
	}}
	orch := NewOrchestrator(s, gw, time.Second)

	res, err := orch.Refresh(context.Background(), "ORD-TEST-2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.Equal(t, 1, gw.fetchCalls)

	// Terminal now: refresh becomes a no-op read.
	res, err = orch.Refresh(context.Background(), "ORD-TEST-2")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaid, res.Status)
	assert.Equal(t, 1, gw.fetchCalls)
}

func TestRefreshWithoutIdentifiersIsNoOp(t *testing.T) {
	s := store.NewMemoryStore()
	newTestOrder(t, s, models.OrderStatusCreated)
	gw := &fakeGateway{}
	orch := NewOrchestrator(s, gw, time.Second)

	res, err := orch.Refresh(context.Background(), "ORD-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCreated, res.Status)
	assert.Equal(t, 0, gw.fetchCalls)
}
