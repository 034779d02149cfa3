package repository

import (
	"context"
	"fmt"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"

	"livraria/internal/domains/activity/model"
)

const DefaultRedisKey = "livraria:activity"

var jsonCodec = jsoniter.ConfigCompatibleWithStandardLibrary

// RedisRepository stores entries as JSON in a single redis list.
type RedisRepository struct {
	client redis.Cmdable
	key    string
}

func NewRedisRepository(client redis.Cmdable, key string) *RedisRepository {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepository{client: client, key: key}
}

func (r *RedisRepository) Append(ctx context.Context, entry model.Entry) error {
	data, err := jsonCodec.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal activity entry: %w", err)
	}
	if err := r.client.RPush(ctx, r.key, data).Err(); err != nil {
		return fmt.Errorf("append activity entry: %w", err)
	}
	return nil
}

func (r *RedisRepository) List(ctx context.Context) ([]model.Entry, error) {
	raw, err := r.client.LRange(ctx, r.key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity log: %w", err)
	}

	entries := make([]model.Entry, 0, len(raw))
	for _, item := range raw {
		var e model.Entry
		if err := jsonCodec.UnmarshalFromString(item, &e); err != nil {
			return nil, fmt.Errorf("decode activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
