package models

import (
	"time"

	"gorm.io/datatypes"
)

// Canonical order status constants
const (
	OrderStatusCreated  = "CREATED"
	OrderStatusPending  = "PENDING"
	OrderStatusPaid     = "PAID"
	OrderStatusDeclined = "DECLINED"
	OrderStatusError    = "ERROR"
)

// TerminalStatuses lists the statuses an order can never leave.
var TerminalStatuses = []string{OrderStatusPaid, OrderStatusDeclined, OrderStatusError}

// IsTerminalStatus reports whether a status is absorbing.
func IsTerminalStatus(status string) bool {
	switch status {
	case OrderStatusPaid, OrderStatusDeclined, OrderStatusError:
		return true
	}
	return false
}

type Order struct {
	ID              uint           `gorm:"primaryKey" json:"-"`
	OrderID         string         `gorm:"uniqueIndex;not null" json:"order_id"`
	Amount          float64        `json:"amount"`
	Currency        string         `json:"currency"`
	Description     string         `json:"description"`
	CustomerName    string         `json:"customer_name,omitempty"`
	CustomerEmail   string         `json:"customer_email,omitempty"`
	BillingAddress  string         `json:"billing_address,omitempty"`
	BillingCountry  string         `json:"billing_country,omitempty"`
	BillingState    string         `json:"billing_state,omitempty"`
	BillingCity     string         `json:"billing_city,omitempty"`
	BillingPhone    string         `json:"billing_phone,omitempty"`
	Partner         string         `json:"partner,omitempty"`
	Mode            string         `json:"mode"` // sale or auth
	Status          string         `json:"status"`
	PaymentUUID     string         `json:"payment_uuid,omitempty"`
	PaymentHash     string         `json:"payment_hash,omitempty"`
	PixelStatus     string         `json:"pixel_status,omitempty"`
	PixelMessage    string         `json:"pixel_message,omitempty"`
	PixelCode       string         `json:"pixel_code,omitempty"`
	PixelRaw        datatypes.JSON `json:"pixel_raw,omitempty"`
	StatusCheckedAt *time.Time     `json:"status_checked_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Payment event kinds, one row per reconciliation attempt.
const (
	EventKindSale     = "sale"
	EventKindStatus   = "status"
	EventKindCallback = "callback"
	EventKindError    = "error"
)

// PaymentEvent is an append-only audit row. Payload is redacted before
// it reaches this struct; see utils.RedactPayload.
type PaymentEvent struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	OrderID   string         `gorm:"index;not null" json:"order_id"`
	Kind      string         `json:"kind"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `json:"created_at"`
}
