package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"verigate/internal/platform/redis"
	"verigate/internal/verification/models"
	id "verigate/pkg/domain"
)

// RedisVerdictCache caches issued verdicts so repeated status lookups skip
// the request store. Entries expire after the configured TTL; the request
// store remains the source of truth.
type RedisVerdictCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisVerdictCache(client *redis.Client, ttl time.Duration) *RedisVerdictCache {
	return &RedisVerdictCache{client: client, ttl: ttl}
}

func verdictKey(requestID id.RequestID) string {
	return "verigate:verdict:" + requestID.String()
}

func (c *RedisVerdictCache) Put(ctx context.Context, requestID id.RequestID, v *models.VerificationVerdict) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal verdict for %s: %w", requestID, err)
	}
	if err := c.client.Set(ctx, verdictKey(requestID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache verdict for %s: %w", requestID, err)
	}
	return nil
}

func (c *RedisVerdictCache) Get(ctx context.Context, requestID id.RequestID) (*models.VerificationVerdict, error) {
	payload, err := c.client.Get(ctx, verdictKey(requestID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read cached verdict for %s: %w", requestID, err)
	}

	var v models.VerificationVerdict
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("unmarshal cached verdict for %s: %w", requestID, err)
	}
	return &v, nil
}
