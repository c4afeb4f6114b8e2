package controllers

import (
	"strings"

	"github.com/bmt-labs/checkout-bridge/store"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

type pixelInitRequest struct {
	PaymentUUID string `json:"payment_uuid"`
	PaymentHash string `json:"payment_hash"`
}

// POST /api/v1/orders/:orderId/pixel-init
//
// Binds gateway payment identifiers to an order once an attempt starts.
// The explicit rebinding path for non-terminal orders; terminal orders
// acknowledge without binding.
func BindPaymentIdentifiers(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		utils.BadRequest(c, "orderId required", nil)
		return
	}

	var req pixelInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}
	paymentUUID := strings.TrimSpace(req.PaymentUUID)
	if paymentUUID == "" {
		utils.BadRequest(c, "payment_uuid required", nil)
		return
	}

	bound, err := orders.BindPayment(c.Request.Context(), orderID, paymentUUID, strings.TrimSpace(req.PaymentHash))
	if err != nil {
		if err == store.ErrNotFound {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("Failed to bind payment to order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to bind payment identifiers", nil)
		return
	}
	if !bound {
		utils.LogInfo("Order %s already finalized, skipping payment bind", orderID)
		utils.Success(c, "Order already finalized", nil)
		return
	}

	utils.LogInfo("Bound payment %s to order %s", paymentUUID, orderID)
	utils.Success(c, "payment_uuid bound to order", nil)
}
