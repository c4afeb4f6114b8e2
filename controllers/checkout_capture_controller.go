package controllers

import (
	"strings"

	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

type captureRequest struct {
	PaymentUUID string      `json:"payment_uuid"`
	Amount      interface{} `json:"amount"`
}

// POST /api/v1/checkout/capture
//
// Settles a previously authorized amount for auth-mode orders. The
// gateway's verdict is returned as-is; reconciliation of the order
// itself still goes through confirm.
func CaptureCheckout(c *gin.Context) {
	var req captureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	paymentUUID := strings.TrimSpace(req.PaymentUUID)
	if paymentUUID == "" {
		utils.BadRequest(c, "payment_uuid required", nil)
		return
	}
	amount, ok := parseAmount(req.Amount)
	if !ok {
		utils.BadRequest(c, "amount required and numeric", nil)
		return
	}

	result, err := gw.Capture(c.Request.Context(), paymentUUID, amount)
	if err != nil {
		utils.LogError("Capture failed for payment %s: %v", paymentUUID, err)
		utils.BadGateway(c, "Capture failed", nil)
		return
	}

	utils.LogInfo("Capture for payment %s: success=%v", paymentUUID, result.Success)
	c.JSON(200, result)
}
