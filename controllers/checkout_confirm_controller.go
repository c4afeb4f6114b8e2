package controllers

import (
	"fmt"
	"strings"

	"github.com/bmt-labs/checkout-bridge/reconcile"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

type confirmPixelCodes struct {
	Code interface{} `json:"code"`
}

type confirmRequest struct {
	OrderID     string             `json:"order_id"`
	PaymentUUID *string            `json:"payment_uuid"`
	PaymentHash *string            `json:"payment_hash"`
	Status      string             `json:"status"`
	Message     string             `json:"message"`
	PixelCodes  *confirmPixelCodes `json:"pixel_codes"`
}

// POST /api/v1/checkout/confirm
func ConfirmCheckout(c *gin.Context) {
	utils.LogInfo("ConfirmCheckout called")

	var req confirmRequest
	// A malformed body is treated as an empty claim; the orchestrator
	// rejects it on the missing order id.
	_ = c.ShouldBindJSON(&req)

	pr := reconcile.ConfirmRequest{
		OrderID: req.OrderID,
		Claim:   req.Status,
		Message: req.Message,
	}
	if req.PaymentUUID != nil {
		pr.PaymentUUID = *req.PaymentUUID
	}
	if req.PaymentHash != nil {
		pr.PaymentHash = *req.PaymentHash
	}
	if req.PixelCodes != nil {
		pr.PixelCode = codeToString(req.PixelCodes.Code)
	}

	result, err := recon.Confirm(c.Request.Context(), pr)
	if err != nil {
		if appErr := utils.GetAppError(err); appErr != nil {
			utils.LogError("Confirm failed for order %q: %v", req.OrderID, err)
			utils.FromAppError(c, appErr)
			return
		}
		utils.LogError("Confirm failed for order %q: %v", req.OrderID, err)
		utils.InternalServerError(c, "Failed to reconcile payment", nil)
		return
	}

	utils.LogInfo("Order %s reconciled to %s", result.OrderID, result.Status)
	c.JSON(result.HTTP, gin.H{
		"success": true,
		"status":  result.Status,
		"message": result.Message,
		"display": result.Display,
		"data": gin.H{
			"http":     result.HTTP,
			"order_id": result.OrderID,
		},
	})
}

// codeToString flattens the widget's loosely-typed code field, which
// arrives as a string or a number depending on widget version.
func codeToString(v interface{}) string {
	switch code := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(code)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%f", code), "0"), ".")
	default:
		return fmt.Sprintf("%v", code)
	}
}
