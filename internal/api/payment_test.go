package api

import (
	"billing-api/internal/database"
	"billing-api/internal/models"
	"billing-api/internal/services"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrderKnownPlans(t *testing.T) {
	r, mr := setupRouter(t)
	createTestUser(t, "u1")
	auth := bearerToken(t, "u1")

	cases := []struct {
		plan   string
		amount int64
	}{
		{"monthly", 29900},
		{"fiveMonths", 99900},
		{"yearly", 200000},
	}

	for _, tc := range cases {
		mr.FlushAll() // reset the rate-limit window between checkouts

		w := doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": tc.plan}, auth)
		require.Equal(t, http.StatusOK, w.Code, "plan %s", tc.plan)

		var resp CreateOrderResponse
		decodeBody(t, w, &resp)
		assert.Equal(t, "order_test123", resp.OrderID)
		assert.Equal(t, tc.amount, resp.Amount, "plan %s", tc.plan)
		assert.Equal(t, "INR", resp.Currency)
		assert.Equal(t, testGatewayKeyID, resp.KeyID)
	}
}

func TestCreateOrderUnknownPlan(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")

	// Unknown plan prices at 0, the gateway rejects the order
	w := doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "weekly"}, bearerToken(t, "u1"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreateOrderRequiresAuth(t *testing.T) {
	r, _ := setupRouter(t)

	w := doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "monthly"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "monthly"}, "Bearer not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateOrderRateLimited(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")
	auth := bearerToken(t, "u1")

	w := doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "monthly"}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "monthly"}, auth)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestVerifyPaymentActivatesSubscription(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")
	auth := bearerToken(t, "u1")

	// Full checkout round-trip: order, pay, verify
	w := doJSON(t, r, http.MethodPost, "/api/payment/order", map[string]string{"plan": "monthly"}, auth)
	require.Equal(t, http.StatusOK, w.Code)
	var order CreateOrderResponse
	decodeBody(t, w, &order)
	require.Equal(t, int64(29900), order.Amount)

	signature := services.SignPayment(order.OrderID, "pay_1", testGatewaySecret)
	w = doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id":   order.OrderID,
		"payment_id": "pay_1",
		"signature":  signature,
		"plan":       "monthly",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	var resp VerifyPaymentResponse
	decodeBody(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Subscription activated", resp.Message)

	user, err := database.FindUserByID("u1")
	require.NoError(t, err)
	sub := user.Subscription
	assert.True(t, sub.Active)
	assert.Equal(t, "monthly", sub.Plan)
	assert.Equal(t, 299, sub.Price)
	assert.Equal(t, "pay_1", sub.PaymentID)
	assert.Equal(t, order.OrderID, sub.OrderID)
	assert.Equal(t, signature, sub.Signature)
	require.NotNil(t, sub.StartDate)
	require.NotNil(t, sub.NextBillingDate)
	assert.WithinDuration(t, sub.StartDate.AddDate(0, 1, 0), *sub.NextBillingDate, time.Second)
}

func TestVerifyPaymentYearly(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")
	auth := bearerToken(t, "u1")

	signature := services.SignPayment("order_y", "pay_y", testGatewaySecret)
	w := doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id":   "order_y",
		"payment_id": "pay_y",
		"signature":  signature,
		"plan":       "yearly",
	}, auth)
	require.Equal(t, http.StatusOK, w.Code)

	user, err := database.FindUserByID("u1")
	require.NoError(t, err)
	sub := user.Subscription
	assert.Equal(t, 2000, sub.Price)
	require.NotNil(t, sub.StartDate)
	require.NotNil(t, sub.NextBillingDate)
	assert.WithinDuration(t, sub.StartDate.AddDate(1, 0, 0), *sub.NextBillingDate, time.Second)
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")

	signature := services.SignPayment("order_1", "pay_1", "wrong-secret")
	w := doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  signature,
		"plan":       "monthly",
	}, bearerToken(t, "u1"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp VerifyPaymentResponse
	decodeBody(t, w, &resp)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid signature", resp.Message)

	// A failed verification never touches the record
	user, err := database.FindUserByID("u1")
	require.NoError(t, err)
	assert.False(t, user.Subscription.Active)
	assert.Empty(t, user.Subscription.PaymentID)
	assert.Nil(t, user.Subscription.StartDate)
}

func TestVerifyPaymentUserNotFound(t *testing.T) {
	r, _ := setupRouter(t)

	// Token subject has no matching user record
	signature := services.SignPayment("order_1", "pay_1", testGatewaySecret)
	w := doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  signature,
		"plan":       "monthly",
	}, bearerToken(t, "ghost"))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// Known defect, kept for compatibility: verifying a payment with a plan the
// price table does not know still activates the subscription but leaves the
// next billing date at whatever value the record already held.
func TestVerifyPaymentUnknownPlanKeepsBillingDate(t *testing.T) {
	r, _ := setupRouter(t)

	staleStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	staleNext := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, database.CreateUser(&models.User{
		UserID: "u1",
		Subscription: models.Subscription{
			Active:          true,
			Plan:            "monthly",
			Price:           299,
			StartDate:       &staleStart,
			NextBillingDate: &staleNext,
		},
	}))

	signature := services.SignPayment("order_1", "pay_1", testGatewaySecret)
	w := doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id":   "order_1",
		"payment_id": "pay_1",
		"signature":  signature,
		"plan":       "weekly",
	}, bearerToken(t, "u1"))
	require.Equal(t, http.StatusOK, w.Code)

	user, err := database.FindUserByID("u1")
	require.NoError(t, err)
	sub := user.Subscription
	assert.True(t, sub.Active)
	assert.Equal(t, "weekly", sub.Plan)
	assert.Zero(t, sub.Price)
	require.NotNil(t, sub.StartDate)
	assert.WithinDuration(t, time.Now(), *sub.StartDate, 5*time.Second)
	// The stale date survives: next billing now precedes the new start
	require.NotNil(t, sub.NextBillingDate)
	assert.WithinDuration(t, staleNext, *sub.NextBillingDate, time.Second)
	assert.True(t, sub.NextBillingDate.Before(*sub.StartDate))
}

func TestVerifyPaymentMissingFields(t *testing.T) {
	r, _ := setupRouter(t)
	createTestUser(t, "u1")

	w := doJSON(t, r, http.MethodPost, "/api/payment/verify", map[string]string{
		"order_id": "order_1",
	}, bearerToken(t, "u1"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
