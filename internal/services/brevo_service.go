package services

import (
	"billing-api/internal/config"
	"billing-api/internal/models"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// BrevoService provides Brevo email service
type BrevoService struct {
	APIKey     string
	FromEmail  string
	FromName   string
	httpClient *http.Client
}

// NewBrevoService creates a new Brevo service instance
func NewBrevoService() *BrevoService {
	return &BrevoService{
		APIKey:    config.AppConfig.BrevoAPIKey,
		FromEmail: config.AppConfig.BrevoFromEmail,
		FromName:  config.AppConfig.BrevoFromName,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// EmailRequest represents Brevo email request structure
type EmailRequest struct {
	Sender      EmailSender `json:"sender"`
	To          []EmailTo   `json:"to"`
	Subject     string      `json:"subject"`
	HTMLContent string      `json:"htmlContent"`
	TextContent string      `json:"textContent"`
}

type EmailSender struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type EmailTo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// SendSubscriptionConfirmationEmail sends a confirmation email after a
// payment has been verified. Best effort: callers fire it in a goroutine and
// only log failures.
func (s *BrevoService) SendSubscriptionConfirmationEmail(user *models.User) error {
	if s.APIKey == "" || user.Email == "" {
		// Email not configured or no address on file, skip
		return nil
	}

	sub := user.Subscription
	nextBilling := ""
	if sub.NextBillingDate != nil {
		nextBilling = sub.NextBillingDate.Format("2 January 2006")
	}

	subject := fmt.Sprintf("Subscription activated - %s", config.AppConfig.ServiceName)
	htmlContent := fmt.Sprintf(`
		<!DOCTYPE html>
		<html>
		<head>
			<meta charset="UTF-8">
			<title>Subscription activated</title>
		</head>
		<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
			<div style="background-color: #f8f9fa; padding: 30px; border-radius: 10px;">
				<h1 style="color: #333; margin-bottom: 20px;">Your subscription is active</h1>
				<p style="color: #666; font-size: 16px;">Hi %s,</p>
				<p style="color: #666; font-size: 16px;">Your %s plan is now active. You were charged &#8377;%d.</p>
				<p style="color: #666; font-size: 16px;">Next billing date: %s</p>
				<p style="color: #999; font-size: 12px; margin-top: 30px;">Payment reference: %s</p>
			</div>
		</body>
		</html>
	`, user.Name, sub.Plan, sub.Price, nextBilling, sub.PaymentID)

	textContent := fmt.Sprintf(`
		Your subscription is active

		Hi %s,

		Your %s plan is now active. You were charged Rs. %d.
		Next billing date: %s

		Payment reference: %s
	`, user.Name, sub.Plan, sub.Price, nextBilling, sub.PaymentID)

	emailReq := EmailRequest{
		Sender: EmailSender{
			Name:  s.FromName,
			Email: s.FromEmail,
		},
		To: []EmailTo{
			{Email: user.Email, Name: user.Name},
		},
		Subject:     subject,
		HTMLContent: htmlContent,
		TextContent: textContent,
	}

	return s.sendEmail(emailReq)
}

// sendEmail sends email via Brevo API
func (s *BrevoService) sendEmail(req EmailRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest("POST", "https://api.brevo.com/v3/smtp/email", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", s.APIKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("brevo API error: status %d", resp.StatusCode)
	}

	return nil
}
