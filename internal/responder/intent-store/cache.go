package intentstore

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"messenger-responder/internal/common/logger"
	"messenger-responder/internal/common/metrics"
	"messenger-responder/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedStore is a read-through Redis cache in front of another store. Cache
// failures fall back to the inner store; misses from the inner store are not cached.
type CachedStore struct {
	inner  IntentStore
	redis  *redis.Client
	ttl    time.Duration
	prefix string
	logger logger.Logger
}

func NewCachedStore(inner IntentStore, rdb *redis.Client, ttl time.Duration, prefix string, log logger.Logger) *CachedStore {
	return &CachedStore{
		inner:  inner,
		redis:  rdb,
		ttl:    ttl,
		prefix: prefix,
		logger: log.WithFields(map[string]interface{}{"component": "intent-cache"}),
	}
}

func (s *CachedStore) key(intent string) string {
	return s.prefix + intent
}

func (s *CachedStore) GetIntent(ctx context.Context, intent string) (*models.IntentRecord, error) {
	cacheKey := s.key(intent)

	val, err := s.redis.Get(ctx, cacheKey).Result()
	switch {
	case err == nil:
		var rec models.IntentRecord
		if jsonErr := json.Unmarshal([]byte(val), &rec); jsonErr == nil {
			metrics.CacheRequests.WithLabelValues("hit").Inc()
			return &rec, nil
		}
		metrics.CacheRequests.WithLabelValues("corrupt").Inc()
		s.logger.Warn("discarding undecodable cache entry", map[string]interface{}{"key": cacheKey})
	case errors.Is(err, redis.Nil):
		metrics.CacheRequests.WithLabelValues("miss").Inc()
	default:
		metrics.CacheRequests.WithLabelValues("error").Inc()
		s.logger.Warn("cache read failed, using store", map[string]interface{}{
			"key":   cacheKey,
			"error": err.Error(),
		})
	}

	rec, err := s.inner.GetIntent(ctx, intent)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(rec)
	if err == nil {
		if setErr := s.redis.Set(ctx, cacheKey, data, s.ttl).Err(); setErr != nil {
			s.logger.Warn("cache write failed", map[string]interface{}{
				"key":   cacheKey,
				"error": setErr.Error(),
			})
		}
	}
	return rec, nil
}

// Invalidate drops the cached copy of intent.
func (s *CachedStore) Invalidate(ctx context.Context, intent string) error {
	return s.redis.Del(ctx, s.key(intent)).Err()
}
