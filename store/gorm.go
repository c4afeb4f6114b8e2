package store

import (
	"context"
	"errors"

	"github.com/bmt-labs/checkout-bridge/models"
	"gorm.io/gorm"
)

// GormStore is the Postgres-backed OrderStore.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps a GORM handle.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Create(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Create(order).Error
}

func (s *GormStore) Get(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// ApplyReconciliation is a single conditional UPDATE guarded on the
// stored status still being non-terminal, so two concurrent
// reconciliations cannot interleave into a torn or regressive status.
func (s *GormStore) ApplyReconciliation(ctx context.Context, orderID string, upd ReconUpdate) (bool, *models.Order, error) {
	fields := map[string]interface{}{
		"status":            upd.Status,
		"pixel_status":      upd.PixelStatus,
		"pixel_message":     upd.PixelMessage,
		"pixel_code":        upd.PixelCode,
		"pixel_raw":         upd.PixelRaw,
		"status_checked_at": upd.CheckedAt,
	}
	if upd.PaymentUUID != "" {
		fields["payment_uuid"] = upd.PaymentUUID
	}
	if upd.PaymentHash != "" {
		fields["payment_hash"] = upd.PaymentHash
	}

	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status NOT IN ?", orderID, models.TerminalStatuses).
		Updates(fields)
	if res.Error != nil {
		return false, nil, res.Error
	}

	order, err := s.Get(ctx, orderID)
	if err != nil {
		return false, nil, err
	}
	return res.RowsAffected > 0, order, nil
}

func (s *GormStore) RefreshAudit(ctx context.Context, orderID string, upd AuditUpdate) error {
	fields := map[string]interface{}{
		"status_checked_at": upd.CheckedAt,
	}
	if upd.PixelStatus != "" {
		fields["pixel_status"] = upd.PixelStatus
	}
	if upd.PixelMessage != "" {
		fields["pixel_message"] = upd.PixelMessage
	}
	if upd.PixelRaw != nil {
		fields["pixel_raw"] = upd.PixelRaw
	}
	return s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ?", orderID).
		Updates(fields).Error
}

func (s *GormStore) BindPayment(ctx context.Context, orderID, paymentUUID, paymentHash string) (bool, error) {
	fields := map[string]interface{}{
		"payment_uuid": paymentUUID,
	}
	if paymentHash != "" {
		fields["payment_hash"] = paymentHash
	}

	res := s.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("order_id = ? AND status NOT IN ?", orderID, models.TerminalStatuses).
		Updates(fields)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		// Distinguish missing order from terminal order.
		if _, err := s.Get(ctx, orderID); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (s *GormStore) AppendEvent(ctx context.Context, event *models.PaymentEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}
