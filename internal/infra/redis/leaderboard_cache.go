package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizzle/internal/domain"
)

// TopLoader reads a category's top entries from the durable store.
type TopLoader interface {
	TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error)
}

// LeaderboardCache keeps the per-category top board in Redis as JSON
// and falls back to the loader on a miss. Submits invalidate the key so
// the next read repopulates it.
type LeaderboardCache struct {
	client *redis.Client
	loader TopLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewLeaderboardCache(client *redis.Client, loader TopLoader, ttl time.Duration) *LeaderboardCache {
	return &LeaderboardCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *LeaderboardCache) TopScores(ctx context.Context, categoryID, limit int) ([]domain.LeaderboardEntry, error) {
	key := c.key(categoryID)

	if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}
		// Unreadable payload; treat as a miss and refill below.
	}

	result, err, _ := c.sf.Do(key, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		if cached, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var entries []domain.LeaderboardEntry
			if err := json.Unmarshal(cached, &entries); err == nil {
				return entries, nil
			}
		}

		entries, err := c.loader.TopScores(ctx, categoryID, limit)
		if err != nil {
			return nil, err
		}

		if payload, err := json.Marshal(entries); err == nil {
			_ = c.client.Set(ctx, key, payload, c.ttlWithJitter()).Err()
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.LeaderboardEntry), nil
}

func (c *LeaderboardCache) Invalidate(ctx context.Context, categoryID int) error {
	return c.client.Del(ctx, c.key(categoryID)).Err()
}

func (c *LeaderboardCache) key(categoryID int) string {
	return "leaderboard:" + strconv.Itoa(categoryID) + ":top"
}

func (c *LeaderboardCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
