package models

import (
	"time"
)

// Subscription holds a user's billing state. It is embedded in the User row
// and acts as the single source of truth for subscription status.
type Subscription struct {
	Active bool   `json:"active"`
	Plan   string `json:"plan,omitempty" gorm:"size:20"` // monthly, fiveMonths or yearly
	Price  int    `json:"price,omitempty"`               // whole currency units, from the plan table

	// Gateway identifiers, set once a payment has been verified
	PaymentID string `json:"payment_id,omitempty" gorm:"size:100"`
	OrderID   string `json:"order_id,omitempty" gorm:"size:100"`
	Signature string `json:"signature,omitempty" gorm:"size:128"`

	// Null while the subscription is inactive
	StartDate       *time.Time `json:"start_date"`
	NextBillingDate *time.Time `json:"next_billing_date"`
}

// User represents an account holder
type User struct {
	BaseModel

	UserID string `json:"user_id" gorm:"uniqueIndex;not null;size:64"` // external identifier, also the JWT subject
	Name   string `json:"name" gorm:"size:100"`
	Email  string `json:"email" gorm:"size:255;index"`

	Subscription Subscription `json:"subscription" gorm:"embedded;embeddedPrefix:subscription_"`
}
