package reconcile

import "github.com/bmt-labs/checkout-bridge/models"

// Display is the user-facing rendering of a canonical status. Pure
// mapping, never drives persisted state.
type Display struct {
	Title    string   `json:"title"`
	Severity string   `json:"severity"` // success, info, warning, error
	Body     string   `json:"body"`
	Tips     []string `json:"tips,omitempty"`
}

// BuildMessage renders the outcome of a reconciliation for the widget.
func BuildMessage(status string, verified bool, claim, message string) Display {
	switch status {
	case models.OrderStatusPaid:
		body := message
		if body == "" {
			body = "Your payment was approved."
		}
		d := Display{Title: "Payment approved", Severity: "success", Body: body}
		if verified {
			d.Tips = []string{"A confirmation was verified with the payment provider."}
		}
		return d

	case models.OrderStatusPending:
		body := message
		if body == "" {
			body = "Your payment is still being processed."
		}
		tips := []string{
			"Do not retry the payment yet; you could be charged twice.",
			"Check the order again in a few minutes.",
		}
		if claim == ClaimApproved && !verified {
			tips = append(tips, "If the charge appears on your statement, contact support with your order id.")
		}
		return Display{Title: "Payment in review", Severity: "info", Body: body, Tips: tips}

	case models.OrderStatusDeclined:
		body := message
		if body == "" {
			body = "The payment was declined."
		}
		return Display{
			Title:    "Payment declined",
			Severity: "warning",
			Body:     body,
			Tips: []string{
				"Verify the card details and available balance.",
				"Try another card or contact your bank.",
			},
		}

	default:
		return Display{
			Title:    "Something went wrong",
			Severity: "error",
			Body:     "We could not confirm your payment. No charge was finalized.",
			Tips:     []string{"Contact support with your order id."},
		}
	}
}
