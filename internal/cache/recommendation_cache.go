package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"crypto-idx-bot/internal/domain"
)

const latestKey = "crypto-idx:recommendation:latest"

// RecommendationCache keeps the most recent recommendation in Redis. The TTL
// follows the signal cooldown, so a cold key means the last signal has aged
// out.
type RecommendationCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecommendationCache(client *redis.Client, ttl time.Duration) *RecommendationCache {
	return &RecommendationCache{client: client, ttl: ttl}
}

func (c *RecommendationCache) StoreLatest(ctx context.Context, rec domain.Recommendation) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode recommendation: %w", err)
	}
	if err := c.client.Set(ctx, latestKey, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("store recommendation: %w", err)
	}
	return nil
}

// Latest returns nil without error on a cold or expired key.
func (c *RecommendationCache) Latest(ctx context.Context) (*domain.Recommendation, error) {
	data, err := c.client.Get(ctx, latestKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch recommendation: %w", err)
	}
	var rec domain.Recommendation
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode recommendation: %w", err)
	}
	return &rec, nil
}
