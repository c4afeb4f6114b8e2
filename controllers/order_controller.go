package controllers

import (
	"strings"

	"github.com/bmt-labs/checkout-bridge/models"
	"github.com/bmt-labs/checkout-bridge/store"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
)

// GET /api/v1/orders/:orderId
//
// Reading a non-terminal order with a bound payment triggers a
// best-effort status refresh first, so pollers converge without a
// separate confirm delivery. Refresh failures degrade to serving the
// stored record.
func GetOrder(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		utils.BadRequest(c, "orderId required", nil)
		return
	}

	order, err := orders.Get(c.Request.Context(), orderID)
	if err != nil {
		if err == store.ErrNotFound {
			utils.NotFound(c, "Order not found")
			return
		}
		utils.LogError("Failed to load order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to load order", nil)
		return
	}

	if !models.IsTerminalStatus(order.Status) && order.PaymentUUID != "" {
		if _, rerr := recon.Refresh(c.Request.Context(), orderID); rerr != nil {
			utils.LogError("Best-effort refresh failed for order %s: %v", orderID, rerr)
		} else if refreshed, gerr := orders.Get(c.Request.Context(), orderID); gerr == nil {
			order = refreshed
		}
	}

	utils.Success(c, "OK", gin.H{
		"order": gin.H{
			"order_id":    order.OrderID,
			"amount":      order.Amount,
			"currency":    order.Currency,
			"description": order.Description,
			"customer": gin.H{
				"name":  order.CustomerName,
				"email": order.CustomerEmail,
			},
			"billing": gin.H{
				"address": order.BillingAddress,
				"country": order.BillingCountry,
				"state":   order.BillingState,
				"city":    order.BillingCity,
				"phone":   order.BillingPhone,
			},
			"status":            order.Status,
			"mode":              order.Mode,
			"pixel_status":      order.PixelStatus,
			"pixel_message":     order.PixelMessage,
			"status_checked_at": order.StatusCheckedAt,
		},
	})
}
