package api

import (
	"billing-api/internal/middleware"
	"billing-api/internal/services"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, gateway *services.RazorpayClient) {
	r.Use(middleware.RequestIDMiddleware())

	paymentHandler := NewPaymentHandler(gateway)

	// API route group
	api := r.Group("/api")
	{
		// Subscription lifecycle routes
		subscription := api.Group("/subscription")
		{
			subscription.POST("/activate", ActivateSubscription)
			subscription.POST("/cancel", CancelSubscription)
			subscription.GET("/status/:userId", GetSubscription)
		}

		// Payment routes (require an authenticated user)
		payment := api.Group("/payment")
		payment.Use(middleware.AuthMiddleware())
		{
			payment.POST("/order", paymentHandler.CreateOrder)
			payment.POST("/verify", paymentHandler.VerifyPayment)
		}
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "billing-service",
		})
	})
}
