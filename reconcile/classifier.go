package reconcile

import (
	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/models"
)

// Classify maps one evidence bundle to a canonical status. Pure
// function, ordered rules, first match wins.
//
// Trust ordering: hash proof > remote gateway query > bare client
// claim. A lower-trust source never overrides what a higher-trust one
// already established in the same pass.
func Classify(ev Evidence) string {
	// No identifiers at all: the claim is the only evidence there is.
	if !ev.HasUUID && !ev.HasHash {
		if ev.Claim == ClaimApproved {
			return models.OrderStatusPaid
		}
		return models.OrderStatusDeclined
	}

	// A computed hash proof outranks everything else.
	if ev.HashChecked {
		if ev.HashValid {
			return models.OrderStatusPaid
		}
		// Mismatched proof against a claimed approval is a conflict,
		// not a decline: defer to manual or async resolution.
		if ev.Claim == ClaimApproved {
			return models.OrderStatusPending
		}
		return models.OrderStatusDeclined
	}

	if ev.RemoteChecked {
		// Credential rejection is an operator problem and must not
		// read as a business decline.
		if ev.UpstreamAuthFailed {
			return models.OrderStatusError
		}
		if ev.UpstreamFailed {
			if ev.PriorStatus != "" && !models.IsTerminalStatus(ev.PriorStatus) {
				return models.OrderStatusPending
			}
			return models.OrderStatusError
		}
		switch ev.Remote {
		case gateway.StatusApproved:
			return models.OrderStatusPaid
		case gateway.StatusDeclined:
			return models.OrderStatusDeclined
		default:
			// pending, processing, unknown: no new evidence, keep the
			// order open for a later re-check.
			return models.OrderStatusPending
		}
	}

	// Identifiers exist but no proof could be gathered at all.
	if ev.PriorStatus != "" && !models.IsTerminalStatus(ev.PriorStatus) {
		return models.OrderStatusPending
	}
	return models.OrderStatusError
}

// HTTPForStatus maps a canonical status to the confirm response code.
// Advisory UI plumbing, not part of the canonical status.
func HTTPForStatus(status string, ev Evidence) int {
	switch status {
	case models.OrderStatusPaid, models.OrderStatusPending, models.OrderStatusCreated:
		return 200
	case models.OrderStatusDeclined:
		return 402
	default:
		if ev.UpstreamFailed && !ev.UpstreamAuthFailed {
			return 502
		}
		return 500
	}
}
