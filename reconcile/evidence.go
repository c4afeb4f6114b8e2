// Package reconcile decides what actually happened to the money. It
// combines partially-trusted signals (hash proof, remote gateway query,
// client claim) into one canonical order status and applies it under a
// monotonic-transition rule.
package reconcile

import "github.com/bmt-labs/checkout-bridge/gateway"

// Client claim values reported by the checkout widget.
const (
	ClaimApproved = "APPROVED"
	ClaimDeclined = "DECLINED"
)

// Evidence is everything one reconciliation pass knows. Fields default
// to "not gathered"; the classifier only trusts what was actually
// computed.
type Evidence struct {
	HasUUID bool
	HasHash bool

	HashChecked bool
	HashValid   bool

	RemoteChecked      bool
	Remote             gateway.Status
	RemoteHTTP         int
	UpstreamAuthFailed bool
	UpstreamFailed     bool // network, timeout, gateway 5xx

	Claim string // APPROVED or DECLINED, upper-cased; may be empty on refresh

	PriorStatus string
}
