// Package cache keeps generated practice questions in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lms/backend/models"

	goredis "github.com/redis/go-redis/v9"
)

type RedisPracticeCache struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisPracticeCache(rdb *goredis.Client, ttl time.Duration) *RedisPracticeCache {
	return &RedisPracticeCache{rdb: rdb, ttl: ttl}
}

func (c *RedisPracticeCache) Get(ctx context.Context, key string) ([]models.PracticeQuestion, bool, error) {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	var questions []models.PracticeQuestion
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false, fmt.Errorf("decode cached practice: %w", err)
	}
	return questions, true, nil
}

func (c *RedisPracticeCache) Set(ctx context.Context, key string, questions []models.PracticeQuestion) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
