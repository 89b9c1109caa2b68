// Package blacklist keeps revoked bearer tokens in Redis until their
// natural expiry, so logout takes effect before the token would lapse on
// its own.
package blacklist

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

type TokenBlacklist struct {
	client *redis.Client
}

type Config struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// New connects to Redis and verifies the connection. Returns nil when Redis
// is unreachable; callers treat a nil blacklist as "revocation disabled"
// rather than failing startup.
func New(cfg Config) *TokenBlacklist {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis connection failed, token revocation disabled: %v", err)
		return nil
	}

	log.Println("Successfully connected to Redis")
	return &TokenBlacklist{client: client}
}

// Revoke stores the token until expiresAt; Redis drops the key afterwards.
func (b *TokenBlacklist) Revoke(ctx context.Context, token string, expiresAt time.Time) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("token blacklist not available")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return b.client.Set(ctx, key(token), "revoked", ttl).Err()
}

// IsRevoked reports whether the token has been revoked. Lookup failures are
// treated as not revoked so a Redis outage cannot lock every user out.
func (b *TokenBlacklist) IsRevoked(ctx context.Context, token string) bool {
	if b == nil || b.client == nil {
		return false
	}
	count, err := b.client.Exists(ctx, key(token)).Result()
	if err != nil {
		log.Printf("Failed to check token blacklist: %v", err)
		return false
	}
	return count > 0
}

func (b *TokenBlacklist) Close() error {
	if b != nil && b.client != nil {
		return b.client.Close()
	}
	return nil
}

func key(token string) string {
	return "blacklist:token:" + token
}
