package services

import (
	"billing-api/internal/database"
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisService provides Redis operations
type RedisService struct {
	client *redis.Client
}

// NewRedisService creates a new Redis service instance
func NewRedisService() *RedisService {
	return &RedisService{client: database.GetRedis()}
}

// SetOrderRateLimit marks a user as having just created an order
func (r *RedisService) SetOrderRateLimit(userID string, limitMinutes int) error {
	ctx := context.Background()
	key := fmt.Sprintf("order_rate_limit:%s", userID)
	expire := time.Duration(limitMinutes) * time.Minute
	return r.client.Set(ctx, key, "1", expire).Err()
}

// CheckOrderRateLimit reports whether the user is still inside the
// order-creation rate-limit window
func (r *RedisService) CheckOrderRateLimit(userID string) (bool, error) {
	ctx := context.Background()
	key := fmt.Sprintf("order_rate_limit:%s", userID)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return exists > 0, nil
}
