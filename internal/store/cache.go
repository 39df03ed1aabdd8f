// internal/store/cache.go
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"repobounty/internal/common/logger"
	"repobounty/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache memoizes evaluation results in Redis keyed by submission content, so
// re-submitting an unchanged diff returns the earlier verdict instead of
// re-running the tiers (and never double-pays).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewCache(client *redis.Client, ttl time.Duration, log logger.Logger) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "cache"}),
	}
}

// Key hashes the parts of a submission that affect its verdict.
func (c *Cache) Key(sub *models.Submission) string {
	h := sha256.Sum256([]byte(sub.Repo + "\x00" + sub.Title + "\x00" + sub.Diff))
	return "evaluation:" + hex.EncodeToString(h[:])
}

// Get returns the cached evaluation for a submission, or nil on a miss.
// Cache errors degrade to a miss; the pipeline must keep working with Redis
// down.
func (c *Cache) Get(ctx context.Context, sub *models.Submission) *models.Evaluation {
	raw, err := c.client.Get(ctx, c.Key(sub)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("cache read failed", map[string]interface{}{"error": err.Error()})
		}
		return nil
	}

	var eval models.Evaluation
	if err := json.Unmarshal([]byte(raw), &eval); err != nil {
		c.logger.Warn("cache entry corrupt, dropping", map[string]interface{}{"error": err.Error()})
		c.client.Del(ctx, c.Key(sub))
		return nil
	}

	c.logger.Debug("cache hit", map[string]interface{}{"evaluationId": eval.ID})
	return &eval
}

// Put stores an evaluation against its submission's content key.
func (c *Cache) Put(ctx context.Context, sub *models.Submission, eval *models.Evaluation) error {
	raw, err := json.Marshal(eval)
	if err != nil {
		return fmt.Errorf("marshal evaluation: %w", err)
	}
	if err := c.client.Set(ctx, c.Key(sub), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}
