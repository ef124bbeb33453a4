package api

import (
	"billing-api/internal/database"
	"billing-api/internal/models"
	"billing-api/pkg/logging"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ActivateSubscriptionRequest represents activate subscription request
type ActivateSubscriptionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// ActivateSubscriptionResponse represents activate subscription response
type ActivateSubscriptionResponse struct {
	Message      string               `json:"message"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// ActivateSubscription activates a subscription without a payment.
// POST /api/subscription/activate
// Baseline manual activation: always a 1 month term, no plan attached.
func ActivateSubscription(c *gin.Context) {
	var req ActivateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ActivateSubscriptionResponse{
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	user, err := database.FindUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, ActivateSubscriptionResponse{Message: "User not found"})
			return
		}
		logging.Errorf("Activate: failed to load user %s (request %s): %v", req.UserID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, ActivateSubscriptionResponse{Message: "Internal server error"})
		return
	}

	now := time.Now()
	nextBillingDate := now.AddDate(0, 1, 0)

	// The sub-record is replaced wholesale: a manual activation carries no
	// plan, price or payment metadata
	subscription := models.Subscription{
		Active:          true,
		StartDate:       &now,
		NextBillingDate: &nextBillingDate,
	}

	if err := database.ReplaceUserSubscription(user, subscription); err != nil {
		logging.Errorf("Activate: failed to save user %s (request %s): %v", req.UserID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, ActivateSubscriptionResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, ActivateSubscriptionResponse{
		Message:      "Subscription activated",
		Subscription: &user.Subscription,
	})
}

// CancelSubscriptionRequest represents cancel subscription request
type CancelSubscriptionRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// CancelSubscriptionResponse represents cancel subscription response
type CancelSubscriptionResponse struct {
	Message string `json:"message"`
}

// CancelSubscription cancels a subscription.
// POST /api/subscription/cancel
// Only the active flag and the billing dates are cleared; plan, price and
// payment identifiers from the last verified payment stay on the record.
func CancelSubscription(c *gin.Context) {
	var req CancelSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, CancelSubscriptionResponse{
			Message: "Invalid request format: " + err.Error(),
		})
		return
	}

	user, err := database.FindUserByID(req.UserID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, CancelSubscriptionResponse{Message: "User not found"})
			return
		}
		logging.Errorf("Cancel: failed to load user %s (request %s): %v", req.UserID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, CancelSubscriptionResponse{Message: "Internal server error"})
		return
	}

	subscription := user.Subscription
	subscription.Active = false
	subscription.StartDate = nil
	subscription.NextBillingDate = nil

	if err := database.ReplaceUserSubscription(user, subscription); err != nil {
		logging.Errorf("Cancel: failed to save user %s (request %s): %v", req.UserID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, CancelSubscriptionResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, CancelSubscriptionResponse{Message: "Subscription cancelled"})
}

// GetSubscriptionResponse represents subscription status response
type GetSubscriptionResponse struct {
	Message      string               `json:"message,omitempty"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
}

// GetSubscription returns the subscription record as stored, nulls included.
// GET /api/subscription/status/:userId
func GetSubscription(c *gin.Context) {
	userID := c.Param("userId")

	user, err := database.FindUserByID(userID)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, GetSubscriptionResponse{Message: "User not found"})
			return
		}
		logging.Errorf("Status: failed to load user %s (request %s): %v", userID, c.GetString("request_id"), err)
		c.JSON(http.StatusInternalServerError, GetSubscriptionResponse{Message: "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, GetSubscriptionResponse{Subscription: &user.Subscription})
}
