package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// OTP purposes; each purpose gets its own key namespace so a sign-in code
// can never confirm a deletion.
const (
	PurposeMagicLink = "magiclink"
	PurposeDelete    = "delete"
)

const (
	codeLength = 6
	codeTTL    = 15 * time.Minute
)

// OTPStore holds one-time codes keyed by purpose and email
type OTPStore interface {
	Set(ctx context.Context, purpose, email, code string) error
	Get(ctx context.Context, purpose, email string) (string, error)
	Delete(ctx context.Context, purpose, email string) error
}

// RedisOTPStore stores codes in Redis with a TTL
type RedisOTPStore struct {
	client *redis.Client
}

// NewRedisOTPStore creates redis-backed OTP store
func NewRedisOTPStore(client *redis.Client) *RedisOTPStore {
	return &RedisOTPStore{client: client}
}

func otpKey(purpose, email string) string {
	return fmt.Sprintf("%s:%s", purpose, strings.ToLower(email))
}

// Set stores a code, replacing any previous code for the same purpose
func (s *RedisOTPStore) Set(ctx context.Context, purpose, email, code string) error {
	return s.client.Set(ctx, otpKey(purpose, email), code, codeTTL).Err()
}

// Get returns the stored code, or "" when none exists
func (s *RedisOTPStore) Get(ctx context.Context, purpose, email string) (string, error) {
	code, err := s.client.Get(ctx, otpKey(purpose, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

// Delete removes the stored code
func (s *RedisOTPStore) Delete(ctx context.Context, purpose, email string) error {
	return s.client.Del(ctx, otpKey(purpose, email)).Err()
}

// generateCode produces a random numeric code
func generateCode() (string, error) {
	digits := make([]byte, codeLength)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
