package store

import (
	"context"
	"sync"

	"github.com/bmt-labs/checkout-bridge/models"
)

// MemoryStore is an in-memory OrderStore with the same conditional
// update semantics as GormStore. Used by tests.
type MemoryStore struct {
	mu     sync.Mutex
	orders map[string]*models.Order
	events []*models.PaymentEvent
	nextID uint
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: make(map[string]*models.Order)}
}

func (s *MemoryStore) Create(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	order.ID = s.nextID
	cp := *order
	s.orders[order.OrderID] = &cp
	return nil
}

func (s *MemoryStore) Get(_ context.Context, orderID string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (s *MemoryStore) ApplyReconciliation(_ context.Context, orderID string, upd ReconUpdate) (bool, *models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, nil, ErrNotFound
	}
	if models.IsTerminalStatus(order.Status) {
		cp := *order
		return false, &cp, nil
	}
	order.Status = upd.Status
	order.PixelStatus = upd.PixelStatus
	order.PixelMessage = upd.PixelMessage
	order.PixelCode = upd.PixelCode
	order.PixelRaw = upd.PixelRaw
	checkedAt := upd.CheckedAt
	order.StatusCheckedAt = &checkedAt
	if upd.PaymentUUID != "" {
		order.PaymentUUID = upd.PaymentUUID
	}
	if upd.PaymentHash != "" {
		order.PaymentHash = upd.PaymentHash
	}
	cp := *order
	return true, &cp, nil
}

func (s *MemoryStore) RefreshAudit(_ context.Context, orderID string, upd AuditUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return ErrNotFound
	}
	if upd.PixelStatus != "" {
		order.PixelStatus = upd.PixelStatus
	}
	if upd.PixelMessage != "" {
		order.PixelMessage = upd.PixelMessage
	}
	if upd.PixelRaw != nil {
		order.PixelRaw = upd.PixelRaw
	}
	checkedAt := upd.CheckedAt
	order.StatusCheckedAt = &checkedAt
	return nil
}

func (s *MemoryStore) BindPayment(_ context.Context, orderID, paymentUUID, paymentHash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	order, ok := s.orders[orderID]
	if !ok {
		return false, ErrNotFound
	}
	if models.IsTerminalStatus(order.Status) {
		return false, nil
	}
	order.PaymentUUID = paymentUUID
	if paymentHash != "" {
		order.PaymentHash = paymentHash
	}
	return true, nil
}

func (s *MemoryStore) AppendEvent(_ context.Context, event *models.PaymentEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *event
	cp.ID = uint(len(s.events) + 1)
	s.events = append(s.events, &cp)
	return nil
}

// Events returns a snapshot of the audit trail, newest last.
func (s *MemoryStore) Events() []*models.PaymentEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.PaymentEvent, len(s.events))
	copy(out, s.events)
	return out
}
