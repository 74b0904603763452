package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/nexxintel-tech/VeriHealthMVP-sub000/pkg/jwt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisTokenStore is the allow-list of issued tokens. A token whose key is gone is revoked.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func tokenKey(kind jwt.TokenType, userID uuid.UUID, tokenID string) string {
	return fmt.Sprintf("%s_token:%s:%s", kind, userID.String(), tokenID)
}

func (s *RedisTokenStore) Save(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string, ttl time.Duration) error {
	if err := s.client.Set(ctx, tokenKey(kind, userID, tokenID), "valid", ttl).Err(); err != nil {
		return fmt.Errorf("store %s token: %w", kind, err)
	}
	return nil
}

func (s *RedisTokenStore) Exists(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) (bool, error) {
	n, err := s.client.Exists(ctx, tokenKey(kind, userID, tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("check %s token: %w", kind, err)
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Delete(ctx context.Context, kind jwt.TokenType, userID uuid.UUID, tokenID string) error {
	if err := s.client.Del(ctx, tokenKey(kind, userID, tokenID)).Err(); err != nil {
		return fmt.Errorf("delete %s token: %w", kind, err)
	}
	return nil
}

// RevokeAll drops every access and refresh token of the user. SCAN keeps Redis responsive
// where KEYS would block on a large keyspace.
func (s *RedisTokenStore) RevokeAll(ctx context.Context, userID uuid.UUID) error {
	for _, kind := range []jwt.TokenType{jwt.AccessToken, jwt.RefreshToken} {
		pattern := tokenKey(kind, userID, "*")
		iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
		var keys []string
		for iter.Next(ctx) {
			keys = append(keys, iter.Val())
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("scan %s tokens: %w", kind, err)
		}
		if len(keys) == 0 {
			continue
		}
		if err := s.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("delete %s tokens: %w", kind, err)
		}
	}
	return nil
}
