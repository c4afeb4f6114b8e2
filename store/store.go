// Package store is the durable order record: the single source of
// truth for canonical status.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/bmt-labs/checkout-bridge/models"
	"gorm.io/datatypes"
)

// ErrNotFound is returned when no order exists for an order id.
var ErrNotFound = errors.New("order not found")

// ReconUpdate is one reconciliation outcome to apply atomically.
// Status is only written while the stored status is non-terminal; the
// guard is re-checked inside the UPDATE, not just at read time.
type ReconUpdate struct {
	Status       string
	PixelStatus  string
	PixelMessage string
	PixelCode    string
	PixelRaw     datatypes.JSON
	PaymentUUID  string // bound only if the order has none yet
	PaymentHash  string
	CheckedAt    time.Time
}

// AuditUpdate refreshes advisory fields on a terminal order without
// touching canonical status.
type AuditUpdate struct {
	PixelStatus  string
	PixelMessage string
	PixelRaw     datatypes.JSON
	CheckedAt    time.Time
}

// OrderStore persists orders and their audit trail.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	Get(ctx context.Context, orderID string) (*models.Order, error)

	// ApplyReconciliation performs the conditional read-modify-write.
	// applied is false when a concurrent writer already made the order
	// terminal; the returned order is the stored record either way.
	ApplyReconciliation(ctx context.Context, orderID string, upd ReconUpdate) (applied bool, order *models.Order, err error)

	// RefreshAudit updates advisory fields only. Safe on terminal orders.
	RefreshAudit(ctx context.Context, orderID string, upd AuditUpdate) error

	// BindPayment attaches payment identifiers to a non-terminal order.
	// bound is false when the order is already terminal.
	BindPayment(ctx context.Context, orderID, paymentUUID, paymentHash string) (bound bool, err error)

	AppendEvent(ctx context.Context, event *models.PaymentEvent) error
}
