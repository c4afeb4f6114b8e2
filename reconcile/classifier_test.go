package reconcile

import (
	"testing"

	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/models"
	"github.com/stretchr/testify/assert"
)

func TestClassifyNoIdentifiers(t *testing.T) {
	tests := []struct {
		name  string
		claim string
		want  string
	}{
		{"approved claim", ClaimApproved, models.OrderStatusPaid},
		{"declined claim", ClaimDeclined, models.OrderStatusDeclined},
		{"empty claim", "", models.OrderStatusDeclined},
		{"garbage claim", "MAYBE", models.OrderStatusDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Evidence{Claim: tt.claim, PriorStatus: models.OrderStatusCreated})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyHashProof(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
		claim string
		want  string
	}{
		{"valid hash wins", true, ClaimApproved, models.OrderStatusPaid},
		// The proof outranks the claim in both directions.
		{"valid hash beats declined claim", true, ClaimDeclined, models.OrderStatusPaid},
		{"mismatch with approved claim defers", false, ClaimApproved, models.OrderStatusPending},
		{"mismatch with declined claim", false, ClaimDeclined, models.OrderStatusDeclined},
		{"mismatch with no claim", false, "", models.OrderStatusDeclined},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Evidence{
				HasUUID:     true,
				HasHash:     true,
				HashChecked: true,
				HashValid:   tt.valid,
				Claim:       tt.claim,
				PriorStatus: models.OrderStatusCreated,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRemoteStatus(t *testing.T) {
	tests := []struct {
		name   string
		remote gateway.Status
		claim  string
		want   string
	}{
		{"approved", gateway.StatusApproved, "", models.OrderStatusPaid},
		{"declined beats approved claim", gateway.StatusDeclined, ClaimApproved, models.OrderStatusDeclined},
		{"pending", gateway.StatusPending, ClaimApproved, models.OrderStatusPending},
		{"unknown is not a decline", gateway.StatusUnknown, ClaimDeclined, models.OrderStatusPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(Evidence{
				HasUUID:       true,
				RemoteChecked: true,
				Remote:        tt.remote,
				RemoteHTTP:    200,
				Claim:         tt.claim,
				PriorStatus:   models.OrderStatusCreated,
			})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUpstreamFailures(t *testing.T) {
	t.Run("auth rejection is an error, not a decline", func(t *testing.T) {
		got := Classify(Evidence{
			HasUUID:            true,
			RemoteChecked:      true,
			Remote:             gateway.StatusUnknown,
			RemoteHTTP:         401,
			UpstreamAuthFailed: true,
			Claim:              ClaimApproved,
			PriorStatus:        models.OrderStatusCreated,
		})
		assert.Equal(t, models.OrderStatusError, got)
	})

	t.Run("transient failure on open order stays pending", func(t *testing.T) {
		got := Classify(Evidence{
			HasUUID:        true,
			RemoteChecked:  true,
			Remote:         gateway.StatusUnknown,
			UpstreamFailed: true,
			Claim:          ClaimApproved,
			PriorStatus:    models.OrderStatusPending,
		})
		assert.Equal(t, models.OrderStatusPending, got)
	})

	t.Run("transient failure without a prior state errors", func(t *testing.T) {
		got := Classify(Evidence{
			HasUUID:        true,
			RemoteChecked:  true,
			Remote:         gateway.StatusUnknown,
			UpstreamFailed: true,
			Claim:          ClaimApproved,
		})
		assert.Equal(t, models.OrderStatusError, got)
	})
}

func TestHTTPForStatus(t *testing.T) {
	assert.Equal(t, 200, HTTPForStatus(models.OrderStatusPaid, Evidence{}))
	assert.Equal(t, 200, HTTPForStatus(models.OrderStatusPending, Evidence{}))
	assert.Equal(t, 402, HTTPForStatus(models.OrderStatusDeclined, Evidence{}))
	assert.Equal(t, 500, HTTPForStatus(models.OrderStatusError, Evidence{UpstreamAuthFailed: true}))
	assert.Equal(t, 502, HTTPForStatus(models.OrderStatusError, Evidence{UpstreamFailed: true}))
}
