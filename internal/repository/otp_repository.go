package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPNotFound is returned when no live code exists for a mobile number.
var ErrOTPNotFound = fmt.Errorf("otp not found")

// OTPRepository keeps one live code per mobile number in Redis. Writing a
// new code overwrites any pending one, and the key expires on its own so
// stale codes never need sweeping.
type OTPRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPRepository constructs the repository with the configured code
// lifetime.
func NewOTPRepository(client *redis.Client, ttl time.Duration) *OTPRepository {
	return &OTPRepository{client: client, ttl: ttl}
}

func otpKey(mobile string) string {
	return "otp:" + mobile
}

// Put stores the code for the mobile number, replacing any pending code
// and resetting the expiry window.
func (r *OTPRepository) Put(ctx context.Context, mobile, code string) error {
	if err := r.client.Set(ctx, otpKey(mobile), code, r.ttl).Err(); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Get returns the live code for the mobile number or ErrOTPNotFound.
func (r *OTPRepository) Get(ctx context.Context, mobile string) (string, error) {
	code, err := r.client.Get(ctx, otpKey(mobile)).Result()
	if err == redis.Nil {
		return "", ErrOTPNotFound
	}
	if err != nil {
		return "", fmt.Errorf("load otp: %w", err)
	}
	return code, nil
}

// Delete consumes the code so it cannot be replayed.
func (r *OTPRepository) Delete(ctx context.Context, mobile string) error {
	if err := r.client.Del(ctx, otpKey(mobile)).Err(); err != nil {
		return fmt.Errorf("delete otp: %w", err)
	}
	return nil
}
