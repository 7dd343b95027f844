package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const codeKeyPrefix = "verify:"

// CodeRepository stores verification codes in Redis. The TTL handles
// expiry; no sweep job is needed.
type CodeRepository struct {
	client *redis.Client
}

// NewCodeRepository constructs the repository.
func NewCodeRepository(client *redis.Client) *CodeRepository {
	return &CodeRepository{client: client}
}

// Set stores a code for the email, replacing any previous one.
func (r *CodeRepository) Set(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := r.client.Set(ctx, codeKey(email), code, ttl).Err(); err != nil {
		return fmt.Errorf("store verification code: %w", err)
	}
	return nil
}

// Get returns the live code for the email, or ("", nil) when none exists.
func (r *CodeRepository) Get(ctx context.Context, email string) (string, error) {
	code, err := r.client.Get(ctx, codeKey(email)).Result()
	if err != nil {
		if err == redis.Nil {
			return "", nil
		}
		return "", fmt.Errorf("read verification code: %w", err)
	}
	return code, nil
}

// Delete removes the code for the email.
func (r *CodeRepository) Delete(ctx context.Context, email string) error {
	if err := r.client.Del(ctx, codeKey(email)).Err(); err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	return nil
}

func codeKey(email string) string {
	return codeKeyPrefix + strings.ToLower(strings.TrimSpace(email))
}
