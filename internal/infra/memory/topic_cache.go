package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"brainquest/internal/domain"

	"golang.org/x/sync/singleflight"
)

// TopicLoader fetches the topic list from its source (usually the remote API).
type TopicLoader interface {
	Topics(ctx context.Context) ([]domain.Topic, error)
}

// TopicCache caches the topic list with TTL to avoid repeated API hits.
type TopicCache struct {
	loader TopicLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	topics    []domain.Topic
	expiresAt time.Time
}

func NewTopicCache(loader TopicLoader, ttl time.Duration) *TopicCache {
	return &TopicCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *TopicCache) Topics(ctx context.Context) ([]domain.Topic, error) {
	if topics, ok := c.cached(c.clock()); ok {
		return topics, nil
	}

	result, err, _ := c.sf.Do("topics", func() (interface{}, error) {
		now := c.clock()
		if topics, ok := c.cached(now); ok {
			return topics, nil
		}

		topics, err := c.loader.Topics(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.topics = topics
		c.expiresAt = now.Add(c.ttlWithJitter())
		c.mu.Unlock()
		return topics, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Topic), nil
}

// Invalidate drops the cached list.
func (c *TopicCache) Invalidate(context.Context) error {
	c.mu.Lock()
	c.topics = nil
	c.expiresAt = time.Time{}
	c.mu.Unlock()
	return nil
}

func (c *TopicCache) cached(now time.Time) ([]domain.Topic, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.topics != nil && c.expiresAt.After(now) {
		return c.topics, true
	}
	return nil, false
}

// StaticTopics is a loader backed by a fixed list (useful for tests/demos).
type StaticTopics []domain.Topic

func (s StaticTopics) Topics(context.Context) ([]domain.Topic, error) {
	return s, nil
}

func (c *TopicCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
