package reconcile

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/bmt-labs/checkout-bridge/gateway"
	"github.com/bmt-labs/checkout-bridge/models"
	"github.com/bmt-labs/checkout-bridge/store"
	"github.com/bmt-labs/checkout-bridge/utils"
	"gorm.io/datatypes"
)

// Gateway is what the orchestrator needs from the payment gateway.
// *gateway.Client satisfies it; tests inject fakes.
type Gateway interface {
	VerifyPaymentHash(orderID, claimedHash string) (bool, error)
	FetchStatus(ctx context.Context, paymentUUID string) (*gateway.StatusResult, error)
}

// Orchestrator runs one reconciliation pass per confirmation request:
// load, gather evidence, classify, persist under the terminal guard.
type Orchestrator struct {
	store   store.OrderStore
	gw      Gateway
	timeout time.Duration
	now     func() time.Time
}

// NewOrchestrator wires the orchestrator. timeout bounds each outbound
// gateway call.
func NewOrchestrator(s store.OrderStore, gw Gateway, timeout time.Duration) *Orchestrator {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Orchestrator{store: s, gw: gw, timeout: timeout, now: time.Now}
}

// ConfirmRequest is the widget's confirmation claim.
type ConfirmRequest struct {
	OrderID     string
	PaymentUUID string
	PaymentHash string
	Claim       string // APPROVED or DECLINED
	Message     string
	PixelCode   string
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	OrderID  string
	Status   string
	HTTP     int
	Message  string
	Verified bool
	Display  Display
}

// Confirm processes one confirmation claim. Validation and not-found
// failures return an error without touching storage; every other path
// persists at least an audit record.
func (o *Orchestrator) Confirm(ctx context.Context, req ConfirmRequest) (*Result, error) {
	orderID := strings.TrimSpace(req.OrderID)
	if orderID == "" {
		return nil, utils.ValidationError("order_id required", nil)
	}

	order, err := o.store.Get(ctx, orderID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, utils.NotFoundError("Order not found", err)
		}
		return nil, err
	}

	claim := strings.ToUpper(strings.TrimSpace(req.Claim))

	// Terminal orders absorb repeated deliveries: refresh advisory
	// fields for audit, never status.
	if models.IsTerminalStatus(order.Status) {
		return o.replayTerminal(ctx, order, claim, req)
	}

	paymentUUID, paymentHash := resolveIdentifiers(order, req.PaymentUUID, req.PaymentHash)

	ev := Evidence{
		HasUUID:     paymentUUID != "",
		HasHash:     paymentHash != "",
		Claim:       claim,
		PriorStatus: order.Status,
	}

	var remote *gateway.StatusResult

	if ev.HasHash {
		valid, verr := o.gw.VerifyPaymentHash(orderID, paymentHash)
		if verr != nil {
			return o.failConfiguration(ctx, order, claim, req, verr)
		}
		ev.HashChecked = true
		ev.HashValid = valid
	}

	// The hash proof, once computed, outranks any remote answer, so
	// the remote query only runs when no proof was checkable.
	if ev.HasUUID && !ev.HashChecked {
		remote = o.fetchRemote(ctx, paymentUUID, &ev)
	}

	status := Classify(ev)
	verified := ev.HashChecked && ev.HashValid

	message := req.Message
	if message == "" && remote != nil {
		message = remote.Message
	}
	pixelCode := req.PixelCode
	if remote != nil && remote.ResponseCode != "" {
		pixelCode = remote.ResponseCode
	}

	raw := o.evidenceBlob(ev, req, remote)

	update := store.ReconUpdate{
		Status:       status,
		PixelStatus:  advisoryStatus(status),
		PixelMessage: message,
		PixelCode:    pixelCode,
		PixelRaw:     raw,
		CheckedAt:    o.now(),
	}
	// Bind identifiers on first appearance; a stored identifier that
	// differs is never silently overwritten here.
	if order.PaymentUUID == "" {
		update.PaymentUUID = paymentUUID
	}
	if order.PaymentHash == "" {
		update.PaymentHash = paymentHash
	}

	applied, stored, err := o.store.ApplyReconciliation(ctx, orderID, update)
	if err != nil {
		return nil, err
	}
	if !applied {
		// A concurrent reconciliation made the order terminal between
		// our read and our write. The stored terminal result wins.
		utils.LogInfo("Order %s turned terminal mid-reconciliation, serving stored status %s", orderID, stored.Status)
		status = stored.Status
		verified = false
	}

	o.appendEvent(ctx, orderID, eventKind(ev, status), raw)

	return &Result{
		OrderID:  orderID,
		Status:   status,
		HTTP:     HTTPForStatus(status, ev),
		Message:  message,
		Verified: verified,
		Display:  BuildMessage(status, verified, claim, message),
	}, nil
}

// Refresh re-runs classification for an order using stored identifiers
// only. Idempotent; used by the order-read path and safe to repeat.
func (o *Orchestrator) Refresh(ctx context.Context, orderID string) (*Result, error) {
	orderID = strings.TrimSpace(orderID)
	if orderID == "" {
		return nil, utils.ValidationError("order_id required", nil)
	}

	order, err := o.store.Get(ctx, orderID)
	if err != nil {
		if err == store.ErrNotFound {
			return nil, utils.NotFoundError("Order not found", err)
		}
		return nil, err
	}

	// Nothing to do for terminal orders or orders with no gateway
	// attempt bound yet.
	if models.IsTerminalStatus(order.Status) || (order.PaymentUUID == "" && order.PaymentHash == "") {
		return &Result{
			OrderID: orderID,
			Status:  order.Status,
			HTTP:    HTTPForStatus(order.Status, Evidence{}),
			Message: order.PixelMessage,
			Display: BuildMessage(order.Status, false, "", order.PixelMessage),
		}, nil
	}

	// The hash proof already had its say at confirm time; without the
	// client claim its mismatch branch is ambiguous. Refresh gathers
	// remote evidence only.
	ev := Evidence{
		HasUUID:     order.PaymentUUID != "",
		HasHash:     order.PaymentHash != "",
		PriorStatus: order.Status,
	}

	var remote *gateway.StatusResult
	if ev.HasUUID {
		remote = o.fetchRemote(ctx, order.PaymentUUID, &ev)
	}

	status := Classify(ev)

	message := ""
	if remote != nil {
		message = remote.Message
	}

	raw := o.evidenceBlob(ev, ConfirmRequest{OrderID: orderID}, remote)

	_, stored, err := o.store.ApplyReconciliation(ctx, orderID, store.ReconUpdate{
		Status:       status,
		PixelStatus:  advisoryStatus(status),
		PixelMessage: message,
		PixelRaw:     raw,
		CheckedAt:    o.now(),
	})
	if err != nil {
		return nil, err
	}
	status = stored.Status

	o.appendEvent(ctx, orderID, models.EventKindStatus, raw)

	return &Result{
		OrderID:  orderID,
		Status:   status,
		HTTP:     HTTPForStatus(status, ev),
		Message:  message,
		Display:  BuildMessage(status, false, "", message),
	}, nil
}

// replayTerminal serves a repeated confirmation for a finalized order.
func (o *Orchestrator) replayTerminal(ctx context.Context, order *models.Order, claim string, req ConfirmRequest) (*Result, error) {
	raw := mustJSON(utils.RedactPayload(map[string]interface{}{
		"source":  "client",
		"replay":  true,
		"claim":   claim,
		"message": req.Message,
		"codes":   req.PixelCode,
	}))

	if err := o.store.RefreshAudit(ctx, order.OrderID, store.AuditUpdate{
		PixelRaw:  raw,
		CheckedAt: o.now(),
	}); err != nil {
		utils.LogError("Audit refresh failed for order %s: %v", order.OrderID, err)
	}
	o.appendEvent(ctx, order.OrderID, models.EventKindCallback, raw)

	message := order.PixelMessage
	return &Result{
		OrderID: order.OrderID,
		Status:  order.Status,
		HTTP:    HTTPForStatus(order.Status, Evidence{}),
		Message: message,
		Display: BuildMessage(order.Status, false, claim, message),
	}, nil
}

// failConfiguration persists an audit record for a confirmation that
// could not be verified because credentials are missing. The attempt
// must not be lost even though the outcome is an operator error.
func (o *Orchestrator) failConfiguration(ctx context.Context, order *models.Order, claim string, req ConfirmRequest, cause error) (*Result, error) {
	utils.LogError("Hash verification unavailable for order %s: %v", order.OrderID, cause)

	raw := mustJSON(utils.RedactPayload(map[string]interface{}{
		"source":  "config",
		"error":   cause.Error(),
		"claim":   claim,
		"message": req.Message,
	}))

	_, _, err := o.store.ApplyReconciliation(ctx, order.OrderID, store.ReconUpdate{
		Status:       models.OrderStatusError,
		PixelStatus:  "",
		PixelMessage: "payment verification unavailable",
		PixelRaw:     raw,
		CheckedAt:    o.now(),
	})
	if err != nil {
		utils.LogError("Failed to persist configuration failure for order %s: %v", order.OrderID, err)
	}
	o.appendEvent(ctx, order.OrderID, models.EventKindError, raw)

	return nil, utils.ConfigurationError("Payment verification is not configured", cause)
}

// fetchRemote performs the bounded remote status query and folds the
// outcome into the evidence bundle.
func (o *Orchestrator) fetchRemote(ctx context.Context, paymentUUID string, ev *Evidence) *gateway.StatusResult {
	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	ev.RemoteChecked = true
	res, err := o.gw.FetchStatus(cctx, paymentUUID)
	if err != nil {
		utils.LogError("Gateway status fetch failed for payment %s: %v", paymentUUID, err)
		ev.Remote = gateway.StatusUnknown
		ev.UpstreamFailed = true
		return nil
	}

	ev.Remote = res.Status
	ev.RemoteHTTP = res.HTTPCode
	ev.UpstreamAuthFailed = res.AuthRejected()
	if res.HTTPCode >= 500 {
		ev.UpstreamFailed = true
	}
	return res
}

// evidenceBlob builds the redacted audit payload that reproduces the
// inputs of this classification.
func (o *Orchestrator) evidenceBlob(ev Evidence, req ConfirmRequest, remote *gateway.StatusResult) datatypes.JSON {
	blob := map[string]interface{}{
		"source":  evidenceSource(ev),
		"claim":   ev.Claim,
		"message": req.Message,
	}
	if req.PixelCode != "" {
		blob["codes"] = map[string]interface{}{"code": req.PixelCode}
	}
	if ev.HashChecked {
		blob["hash_checked"] = true
		blob["hash_valid"] = ev.HashValid
	}
	if ev.RemoteChecked {
		blob["remote_http"] = ev.RemoteHTTP
		blob["remote_failed"] = ev.UpstreamFailed
		if remote != nil {
			blob["remote"] = remote.Raw
		}
	}
	return mustJSON(utils.RedactPayload(blob))
}

func (o *Orchestrator) appendEvent(ctx context.Context, orderID, kind string, payload datatypes.JSON) {
	err := o.store.AppendEvent(ctx, &models.PaymentEvent{
		OrderID: orderID,
		Kind:    kind,
		Payload: payload,
	})
	if err != nil {
		utils.LogError("Failed to append %s event for order %s: %v", kind, orderID, err)
	}
}

// resolveIdentifiers prefers identifiers already bound to the order. A
// request carrying different ones does not silently rebind; pixel-init
// is the explicit rebinding operation.
func resolveIdentifiers(order *models.Order, reqUUID, reqHash string) (string, string) {
	paymentUUID := strings.TrimSpace(reqUUID)
	paymentHash := strings.TrimSpace(reqHash)
	if order.PaymentUUID != "" {
		if paymentUUID != "" && paymentUUID != order.PaymentUUID {
			utils.LogInfo("Order %s: ignoring payment_uuid differing from bound identifier", order.OrderID)
		}
		paymentUUID = order.PaymentUUID
	}
	if order.PaymentHash != "" {
		if paymentHash != "" && paymentHash != order.PaymentHash {
			utils.LogInfo("Order %s: ignoring payment_hash differing from bound identifier", order.OrderID)
		}
		paymentHash = order.PaymentHash
	}
	return paymentUUID, paymentHash
}

// advisoryStatus derives the last-observed gateway-side label. Never
// used to drive decisions.
func advisoryStatus(status string) string {
	switch status {
	case models.OrderStatusPaid:
		return "APPROVED"
	case models.OrderStatusPending:
		return "PENDING"
	case models.OrderStatusDeclined:
		return "DECLINED"
	default:
		return "ERROR"
	}
}

func evidenceSource(ev Evidence) string {
	switch {
	case ev.HashChecked:
		return "hash"
	case ev.RemoteChecked:
		return "remote"
	default:
		return "client"
	}
}

func eventKind(ev Evidence, status string) string {
	if status == models.OrderStatusError {
		return models.EventKindError
	}
	if ev.RemoteChecked {
		return models.EventKindStatus
	}
	return models.EventKindSale
}

func mustJSON(v interface{}) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte(`{}`))
	}
	return datatypes.JSON(b)
}
