package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"tripplanner/internal/common/database"
	"tripplanner/internal/common/logger"
	"tripplanner/internal/common/metrics"
	"tripplanner/internal/planner/models"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "tripplanner:plan:"

// PlanCache stores finished plans keyed by a hash of the request context,
// so repeated requests for the same trip skip the provider entirely.
// Cache failures are logged and treated as misses, never surfaced.
type PlanCache struct {
	redis *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func New(redis *database.RedisClient, ttl time.Duration, log logger.Logger) *PlanCache {
	return &PlanCache{redis: redis, ttl: ttl, log: log}
}

// Key derives a deterministic cache key from the request context. Struct
// fields marshal in declaration order, so identical requests always hash
// to the same key.
func Key(req models.TripRequestContext) string {
	data, err := json.Marshal(req)
	if err != nil {
		data = []byte(fmt.Sprintf("%+v", req))
	}
	sum := sha256.Sum256(data)
	return keyPrefix + hex.EncodeToString(sum[:])
}

func (c *PlanCache) Get(ctx context.Context, key string) (*models.StructuredTripPlan, bool) {
	if c == nil || c.redis == nil {
		return nil, false
	}
	raw, err := c.redis.Get(ctx, key)
	if err != nil {
		if err != redis.Nil {
			c.log.Warn("plan cache read failed", map[string]interface{}{
				"key":   key,
				"error": err.Error(),
			})
		}
		return nil, false
	}
	var plan models.StructuredTripPlan
	if err := json.Unmarshal([]byte(raw), &plan); err != nil {
		c.log.Warn("plan cache entry corrupt, dropping", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		if delErr := c.redis.Del(ctx, key); delErr != nil {
			c.log.Warn("plan cache delete failed", map[string]interface{}{"key": key, "error": delErr.Error()})
		}
		return nil, false
	}
	metrics.CacheHits.Inc()
	return &plan, true
}

func (c *PlanCache) Put(ctx context.Context, key string, plan *models.StructuredTripPlan) {
	if c == nil || c.redis == nil || plan == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		c.log.Warn("plan cache marshal failed", map[string]interface{}{"key": key, "error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("plan cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
