// Package redis caches quiz content in Redis so multiple instances share the
// participant join path without hitting Postgres on every request.
package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"quizlink/internal/domain"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// SlugLoader fetches quiz content by shareable slug from a backing store.
type SlugLoader interface {
	QuizBySlug(ctx context.Context, slug string) (domain.Quiz, error)
}

// QuizCache stores the full quiz document as JSON under quiz:slug:{slug} and
// falls back to a loader on cache miss. Not-found is never cached: an unknown
// slug always consults the loader.
type QuizCache struct {
	client *redis.Client
	loader SlugLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuizCache(client *redis.Client, loader SlugLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) QuizBySlug(ctx context.Context, slug string) (domain.Quiz, error) {
	key := c.key(slug)

	if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err == nil {
			return quiz, nil
		}
		// Corrupt entry: drop it and reload below.
		_ = c.client.Del(ctx, key).Err()
	}

	result, err, _ := c.sf.Do(slug, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := c.client.Get(ctx, key).Bytes(); err == nil {
			var quiz domain.Quiz
			if err := json.Unmarshal(raw, &quiz); err == nil {
				return quiz, nil
			}
		}

		quiz, err := c.loader.QuizBySlug(ctx, slug)
		if err != nil {
			return domain.Quiz{}, err
		}

		if raw, err := json.Marshal(quiz); err == nil {
			_ = c.client.Set(ctx, key, raw, c.ttlWithJitter()).Err()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

func (c *QuizCache) key(slug string) string {
	return "quiz:slug:" + slug
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
