package database

import (
	"billing-api/internal/models"
	"errors"

	"gorm.io/gorm"
)

// ErrUserNotFound is returned when no user matches the given identifier
var ErrUserNotFound = errors.New("user not found")

// subscriptionColumns lists every embedded subscription column. Writes always
// cover the full set so persistence never depends on the ORM noticing which
// nested field changed.
var subscriptionColumns = []string{
	"subscription_active",
	"subscription_plan",
	"subscription_price",
	"subscription_payment_id",
	"subscription_order_id",
	"subscription_signature",
	"subscription_start_date",
	"subscription_next_billing_date",
}

// FindUserByID gets a user by external user ID
func FindUserByID(userID string) (*models.User, error) {
	var user models.User
	err := DB.Where("user_id = ?", userID).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// CreateUser creates a user record
func CreateUser(user *models.User) error {
	return DB.Create(user).Error
}

// ReplaceUserSubscription writes the user's subscription sub-record back as a
// whole value, zero fields included
func ReplaceUserSubscription(user *models.User, subscription models.Subscription) error {
	user.Subscription = subscription
	return DB.Model(user).Select(subscriptionColumns).Updates(user).Error
}
