package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"hotspothub.io/platform/internal/config"
)

var ctx = context.Background()

type Client struct {
	client *redis.Client
}

func Connect(cfg config.Redis) (*Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) Ping() error {
	return c.client.Ping(ctx).Err()
}

// CheckRateLimit implements a fixed window counter. Returns whether the
// request is allowed and, when rejected, seconds until the window resets.
func (c *Client) CheckRateLimit(key string, limit int, window time.Duration) (bool, int, error) {
	current, err := c.client.Get(ctx, key).Int()
	if err != nil && err != redis.Nil {
		return true, 0, err
	}

	if current >= limit {
		ttl, _ := c.client.TTL(ctx, key).Result()
		return false, int(ttl.Seconds()), nil
	}

	pipe := c.client.Pipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, window)
	_, err = pipe.Exec(ctx)

	return true, 0, err
}

// SetJSON caches value as JSON under key.
func (c *Client) SetJSON(key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, expiration).Err()
}

// GetJSON loads key into dest. Returns false when the key is absent.
func (c *Client) GetJSON(key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *Client) Delete(key string) error {
	return c.client.Del(ctx, key).Err()
}
