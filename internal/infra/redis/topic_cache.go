package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"brainquest/internal/domain"
	"brainquest/internal/infra/memory"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// TopicCache caches the topic list in Redis and falls back to a loader on cache miss.
// The list is stored as JSON: SET topics:all {json} EX ttl
type TopicCache struct {
	client *redis.Client
	loader memory.TopicLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewTopicCache(client *redis.Client, loader memory.TopicLoader, ttl time.Duration) *TopicCache {
	return &TopicCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TopicCache) Topics(ctx context.Context) ([]domain.Topic, error) {
	if topics, ok := c.cached(ctx); ok {
		return topics, nil
	}

	result, err, _ := c.sf.Do(topicsKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if topics, ok := c.cached(ctx); ok {
			return topics, nil
		}

		topics, err := c.loader.Topics(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(topics)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(ctx, topicsKey, raw, c.ttlWithJitter()).Err(); err != nil {
			log.Warn().Err(err).Msg("failed to cache topics in redis")
		}
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Topic), nil
}

// Invalidate drops the cached list.
func (c *TopicCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, topicsKey).Err()
}

const topicsKey = "topics:all"

func (c *TopicCache) cached(ctx context.Context) ([]domain.Topic, bool) {
	raw, err := c.client.Get(ctx, topicsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("failed to read topics from redis")
		}
		return nil, false
	}
	var topics []domain.Topic
	if err := json.Unmarshal(raw, &topics); err != nil {
		log.Warn().Err(err).Msg("discarding malformed cached topics")
		return nil, false
	}
	return topics, true
}

func (c *TopicCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
