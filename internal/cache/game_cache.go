package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"splenderra/internal/model"

	"github.com/redis/go-redis/v9"
)

// GameCache handles Redis operations for game state
type GameCache interface {
	SetMeta(ctx context.Context, code string, meta *model.GameMeta) error
	GetMeta(ctx context.Context, code string) (*model.GameMeta, error)
	SetStatus(ctx context.Context, code string, status model.GameStatus) error
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)
}

type gameCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewGameCache creates a new game cache
func NewGameCache(client *redis.Client) GameCache {
	return &gameCache{
		client: client,
		ttl:    24 * time.Hour, // Games expire after 24h
	}
}

func (c *gameCache) key(code string) string {
	return fmt.Sprintf("game:%s", code)
}

func (c *gameCache) SetMeta(ctx context.Context, code string, meta *model.GameMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(code), data, c.ttl).Err()
}

func (c *gameCache) GetMeta(ctx context.Context, code string) (*model.GameMeta, error) {
	data, err := c.client.Get(ctx, c.key(code)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var meta model.GameMeta
	if err := json.Unmarshal([]byte(data), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (c *gameCache) SetStatus(ctx context.Context, code string, status model.GameStatus) error {
	meta, err := c.GetMeta(ctx, code)
	if err != nil {
		return err
	}
	if meta == nil {
		return fmt.Errorf("game %s not found", code)
	}
	meta.Status = status
	return c.SetMeta(ctx, code, meta)
}

func (c *gameCache) Delete(ctx context.Context, code string) error {
	return c.client.Del(ctx, c.key(code)).Err()
}

func (c *gameCache) Exists(ctx context.Context, code string) (bool, error) {
	n, err := c.client.Exists(ctx, c.key(code)).Result()
	return n > 0, err
}
