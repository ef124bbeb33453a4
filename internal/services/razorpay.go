package services

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const razorpayBaseURL = "https://api.razorpay.com"

// RazorpayClient talks to the Razorpay REST API. It is constructed once at
// startup from the configured credentials and injected into the payment
// handlers; the secret never leaves this service.
type RazorpayClient struct {
	keyID      string
	secret     string
	baseURL    string
	httpClient *http.Client
}

// NewRazorpayClient creates a new Razorpay client
func NewRazorpayClient(keyID, secret string) *RazorpayClient {
	return &RazorpayClient{
		keyID:   keyID,
		secret:  secret,
		baseURL: razorpayBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NewRazorpayClientWithBaseURL creates a client against a non-default API
// endpoint, used by tests
func NewRazorpayClientWithBaseURL(keyID, secret, baseURL string) *RazorpayClient {
	client := NewRazorpayClient(keyID, secret)
	client.baseURL = baseURL
	return client
}

// KeyID returns the public key id, safe to hand to a client for the
// checkout UI
func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

// Order represents a Razorpay order
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`   // minor currency units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// RazorpayError represents an error response from the Razorpay API
type RazorpayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *RazorpayError) Error() string {
	return fmt.Sprintf("razorpay API error: status %d, code %s: %s", e.StatusCode, e.Code, e.Description)
}

// CreateOrder creates an order with the gateway
func (c *RazorpayClient) CreateOrder(amount int64, currency, receipt string) (*Order, error) {
	jsonData, err := json.Marshal(createOrderRequest{
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/v1/orders", bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"error"`
		}
		// Best effort decode, the status code alone is enough to fail
		_ = json.Unmarshal(body, &errResp)
		return nil, &RazorpayError{
			StatusCode:  resp.StatusCode,
			Code:        errResp.Error.Code,
			Description: errResp.Error.Description,
		}
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	return &order, nil
}

// VerifySignature checks that the signature returned after checkout was
// produced by the gateway: HMAC-SHA256 over "<orderID>|<paymentID>" with the
// shared secret, hex encoded
func (c *RazorpayClient) VerifySignature(orderID, paymentID, signature string) bool {
	return SignPayment(orderID, paymentID, c.secret) == signature
}

// SignPayment computes the gateway signature for an order/payment pair
func SignPayment(orderID, paymentID, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}
