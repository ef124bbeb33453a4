package api

import (
	"billing-api/internal/config"
	"billing-api/internal/database"
	"billing-api/internal/services"
	"billing-api/pkg/logging"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// PaymentHandler holds the payment endpoints and their collaborators. The
// gateway client is built once at startup and injected here.
type PaymentHandler struct {
	gateway *services.RazorpayClient
	redis   *services.RedisService
	brevo   *services.BrevoService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(gateway *services.RazorpayClient) *PaymentHandler {
	return &PaymentHandler{
		gateway: gateway,
		redis:   services.NewRedisService(),
		brevo:   services.NewBrevoService(),
	}
}

// CreateOrderRequest represents create order request
type CreateOrderRequest struct {
	Plan string `json:"plan"` // monthly, fiveMonths or yearly
}

// CreateOrderResponse represents create order response
type CreateOrderResponse struct {
	OrderID  string `json:"order_id"`
	Amount   int64  `json:"amount"` // minor currency units
	Currency string `json:"currency"`
	KeyID    string `json:"key_id"` // public key for the checkout UI
}

// CreateOrder creates a gateway order for the selected plan.
// POST /api/payment/order
func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID := c.GetString("user_id")

	limited, err := h.redis.CheckOrderRateLimit(userID)
	if err != nil {
		logging.Errorf("CreateOrder: rate limit check failed for user %s (request %s): %v", userID, c.GetString("request_id"), err)
	} else if limited {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many order requests, try again later"})
		return
	}

	// An unknown plan prices at 0 here; the gateway rejects the amount and
	// the request fails below like any other gateway error
	amount := int64(services.PlanPrice(req.Plan)) * 100
	receipt := fmt.Sprintf("receipt_order_%d", time.Now().UnixMilli())

	order, err := h.gateway.CreateOrder(amount, "INR", receipt)
	if err != nil {
		logging.Errorf("CreateOrder: order create error for user %s plan %q (request %s): %v", userID, req.Plan, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	if err := h.redis.SetOrderRateLimit(userID, config.AppConfig.OrderRateLimitMinutes); err != nil {
		logging.Errorf("CreateOrder: failed to set rate limit for user %s (request %s): %v", userID, c.GetString("request_id"), err)
	}

	c.JSON(http.StatusOK, CreateOrderResponse{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    h.gateway.KeyID(),
	})
}

// VerifyPaymentRequest represents verify payment request
type VerifyPaymentRequest struct {
	OrderID   string `json:"order_id" binding:"required"`
	PaymentID string `json:"payment_id" binding:"required"`
	Signature string `json:"signature" binding:"required"`
	Plan      string `json:"plan"`
}

// VerifyPaymentResponse represents verify payment response
type VerifyPaymentResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// VerifyPayment checks the gateway signature and activates the subscription.
// POST /api/payment/verify
// The acting user comes from the authenticated context, never from the body.
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, VerifyPaymentResponse{
			Success: false,
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	// Step 1: verify the gateway signature before touching any state
	if !h.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		c.JSON(http.StatusBadRequest, VerifyPaymentResponse{
			Success: false,
			Message: "Invalid signature",
		})
		return
	}

	// Step 2: resolve the paying user
	userID := c.GetString("user_id")
	user, err := database.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, VerifyPaymentResponse{
				Success: false,
				Message: "User not found",
			})
			return
		}
		logging.Errorf("VerifyPayment: failed to load user %s (request %s): %v", userID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, VerifyPaymentResponse{
			Success: false,
			Message: "Internal server error",
		})
		return
	}

	// Step 3: billing dates from the plan interval. An unrecognized plan
	// keeps whatever next billing date the record already had.
	now := time.Now()
	subscription := user.Subscription
	if next, ok := services.NextBillingDate(now, req.Plan); ok {
		subscription.NextBillingDate = &next
	}

	// Step 4: update the subscription fields, everything else on the user
	// keeps its value
	subscription.Active = true
	subscription.Plan = req.Plan
	subscription.Price = services.PlanPrice(req.Plan)
	subscription.PaymentID = req.PaymentID
	subscription.OrderID = req.OrderID
	subscription.Signature = req.Signature
	subscription.StartDate = &now

	// Step 5: write the sub-record back as a whole value. There is no
	// compensation if this fails after a payment was taken.
	if err := database.ReplaceUserSubscription(user, subscription); err != nil {
		logging.Errorf("VerifyPayment: failed to save user %s order %s (request %s): %v", userID, req.OrderID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, VerifyPaymentResponse{
			Success: false,
			Message: "Internal server error",
		})
		return
	}

	// Confirmation email is best effort
	confirmed := *user
	go func() {
		if err := h.brevo.SendSubscriptionConfirmationEmail(&confirmed); err != nil {
			logging.Errorf("VerifyPayment: confirmation email failed for user %s: %v", confirmed.UserID, err)
		}
	}()

	c.JSON(http.StatusOK, VerifyPaymentResponse{
		Success: true,
		Message: "Subscription activated",
	})
}
