package classifier

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/blake2b"
)

const cacheKeyPrefix = "diario:classify:"

// CachedClassifier memoises successful classifications in Redis. Degraded
// results are never stored so a transient AI outage is not remembered.
type CachedClassifier struct {
	next   Classifier
	client redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedClassifier wraps next with a Redis cache.
func NewCachedClassifier(next Classifier, client redis.Cmdable, ttl time.Duration, logger *zap.Logger) *CachedClassifier {
	return &CachedClassifier{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedClassifier) Classify(ctx context.Context, description, clientName string) Classification {
	key := cacheKey(description, clientName)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached Classification
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && cached.Valid() {
			return cached
		}
		c.logger.Warn("discarding unreadable cached classification", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("classification cache lookup failed", zap.Error(err))
	}

	result := c.next.Classify(ctx, description, clientName)
	if result.Degraded {
		return result
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return result
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("classification cache store failed", zap.Error(err))
	}
	return result
}

func cacheKey(description, clientName string) string {
	sum := blake2b.Sum256([]byte(clientName + "\x00" + description))
	return cacheKeyPrefix + hex.EncodeToString(sum[:])
}
