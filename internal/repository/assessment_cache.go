package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/talentflow/talentflow-backend/internal/config"
	"github.com/talentflow/talentflow-backend/internal/model"
)

// AssessmentCache keeps serialized assessment documents in Redis so the
// taker stream does not hit the database on every connect.
type AssessmentCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewAssessmentCache creates a new AssessmentCache. A nil client disables
// caching.
func NewAssessmentCache(rdb *redis.Client, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{rdb: rdb, ttl: ttl}
}

// Get returns the cached document, or ErrNotFound on a miss.
func (c *AssessmentCache) Get(ctx context.Context, id string) (*model.Assessment, error) {
	if c == nil || c.rdb == nil {
		return nil, ErrNotFound
	}
	data, err := c.rdb.Get(ctx, config.CacheKey.AssessmentPayloadKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get assessment payload: %w", err)
	}

	var a model.Assessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("unmarshal assessment payload: %w", err)
	}
	return &a, nil
}

// Set stores the document.
func (c *AssessmentCache) Set(ctx context.Context, a *model.Assessment) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("marshal assessment payload: %w", err)
	}
	return c.rdb.Set(ctx, config.CacheKey.AssessmentPayloadKey(a.ID), data, c.ttl).Err()
}

// Invalidate drops the cached document.
func (c *AssessmentCache) Invalidate(ctx context.Context, id string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, config.CacheKey.AssessmentPayloadKey(id)).Err()
}
