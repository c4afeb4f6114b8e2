package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/bmt-labs/checkout-bridge/models"
	"github.com/bmt-labs/checkout-bridge/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Merchant-side amount bounds, in order currency.
const (
	minOrderAmount = 100
	maxOrderAmount = 50000
)

type initOrder struct {
	OrderID     string      `json:"order_id"`
	Amount      interface{} `json:"amount"`
	Currency    string      `json:"currency"`
	Description string      `json:"description"`
}

type initRequest struct {
	Order *initOrder `json:"order"`
	// Flat fallback: the merchant backend sends both shapes.
	Amount      interface{} `json:"amount"`
	Currency    string      `json:"currency"`
	Description string      `json:"description"`
	Customer    *struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer"`
	Billing *struct {
		Address string `json:"address"`
		Country string `json:"country"`
		State   string `json:"state"`
		City    string `json:"city"`
		Phone   string `json:"phone"`
	} `json:"billing"`
	Partner string `json:"partner"`
	Mode    string `json:"mode"`
}

// POST /api/v1/checkout/init
func InitCheckout(c *gin.Context) {
	utils.LogInfo("InitCheckout called")

	var req initRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request body", err.Error())
		return
	}

	nested := req.Order
	if nested == nil {
		nested = &initOrder{}
	}

	amountRaw := req.Amount
	if amountRaw == nil {
		amountRaw = nested.Amount
	}
	amount, ok := parseAmount(amountRaw)
	if !ok {
		utils.BadRequest(c, "amount missing or not numeric", gin.H{"error": "AMOUNT_INVALID"})
		return
	}
	if amount < minOrderAmount || amount > maxOrderAmount {
		utils.BadRequest(c, "amount out of range", gin.H{"error": "AMOUNT_OUT_OF_RANGE"})
		return
	}

	currency := normalizeCurrency(firstNonEmpty(req.Currency, nested.Currency))
	description := firstNonEmpty(req.Description, nested.Description, "Account top-up")

	orderID := strings.TrimSpace(nested.OrderID)
	if orderID == "" {
		orderID = newOrderID()
	}

	mode := "sale"
	if req.Mode == "auth" {
		mode = "auth"
	}

	order := &models.Order{
		OrderID:     orderID,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		Partner:     firstNonEmpty(req.Partner, "DEFAULT"),
		Mode:        mode,
		Status:      models.OrderStatusCreated,
	}
	if req.Customer != nil {
		order.CustomerName = req.Customer.Name
		order.CustomerEmail = req.Customer.Email
	}
	if req.Billing != nil {
		order.BillingAddress = req.Billing.Address
		order.BillingCountry = firstNonEmpty(req.Billing.Country, "HN")
		order.BillingState = req.Billing.State
		order.BillingCity = req.Billing.City
		order.BillingPhone = req.Billing.Phone
	}

	if err := orders.Create(c.Request.Context(), order); err != nil {
		utils.LogError("Failed to create order %s: %v", orderID, err)
		utils.InternalServerError(c, "Failed to create order", nil)
		return
	}

	utils.LogInfo("Created order %s for %.2f %s", orderID, amount, currency)
	utils.Created(c, "Order created", gin.H{
		"order": gin.H{
			"order_id":    order.OrderID,
			"amount":      order.Amount,
			"currency":    order.Currency,
			"description": order.Description,
			"mode":        order.Mode,
			"status":      order.Status,
		},
		"checkout_url": "/checkout/" + order.OrderID,
	})
}

// parseAmount accepts numbers and the merchant backend's string
// formats: "1.234,56", "1,234.56", "1234,56", "1234.56".
func parseAmount(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		clean := strings.Map(func(r rune) rune {
			if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
				return r
			}
			return -1
		}, s)
		if strings.Contains(clean, ",") {
			if strings.Contains(clean, ".") {
				// Both separators: the last one is the decimal mark.
				if strings.LastIndex(clean, ",") > strings.LastIndex(clean, ".") {
					clean = strings.ReplaceAll(clean, ".", "")
					clean = strings.Replace(clean, ",", ".", 1)
				} else {
					clean = strings.ReplaceAll(clean, ",", "")
				}
			} else {
				clean = strings.Replace(clean, ",", ".", 1)
			}
		}
		parsed, err := strconv.ParseFloat(clean, 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

func normalizeCurrency(v string) string {
	switch strings.ToUpper(strings.TrimSpace(v)) {
	case "USD":
		return "USD"
	case "NIO":
		return "NIO"
	default:
		return "HNL"
	}
}

func newOrderID() string {
	ts := time.Now().Format("20060102-150405")
	suffix := strings.ToUpper(uuid.New().String()[:8])
	return "ORD-" + ts + "-" + suffix
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
