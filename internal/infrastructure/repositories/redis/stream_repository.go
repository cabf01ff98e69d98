package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"

	"github.com/redis/go-redis/v9"
)

type RedisStreamRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisStreamRepository(client *redis.Client) ports.StreamRepository {
	return &RedisStreamRepository{
		client: client,
		prefix: "streamwall:custom_stream:",
	}
}

func (r *RedisStreamRepository) streamKey(url string) string {
	return r.prefix + url
}

func (r *RedisStreamRepository) indexKey() string {
	return r.prefix + "index"
}

func (r *RedisStreamRepository) Upsert(ctx context.Context, stream *domain.Stream) error {
	data, err := json.Marshal(stream)
	if err != nil {
		return fmt.Errorf("failed to marshal stream: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.streamKey(stream.Link), data, 0)
	pipe.SAdd(ctx, r.indexKey(), stream.Link)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save stream in Redis: %w", err)
	}
	return nil
}

func (r *RedisStreamRepository) GetByURL(ctx context.Context, url string) (*domain.Stream, error) {
	data, err := r.client.Get(ctx, r.streamKey(url)).Result()
	if err == redis.Nil {
		return nil, domain.ErrStreamNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stream from Redis: %w", err)
	}

	var stream domain.Stream
	if err := json.Unmarshal([]byte(data), &stream); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stream: %w", err)
	}
	return &stream, nil
}

func (r *RedisStreamRepository) Delete(ctx context.Context, url string) error {
	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, r.streamKey(url))
	pipe.SRem(ctx, r.indexKey(), url)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete stream from Redis: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrStreamNotFound
	}
	return nil
}

func (r *RedisStreamRepository) List(ctx context.Context) ([]*domain.Stream, error) {
	urls, err := r.client.SMembers(ctx, r.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list streams from Redis: %w", err)
	}

	streams := make([]*domain.Stream, 0, len(urls))
	for _, url := range urls {
		stream, err := r.GetByURL(ctx, url)
		if err == domain.ErrStreamNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	}
	sort.Slice(streams, func(i, j int) bool {
		return streams[i].Link < streams[j].Link
	})
	return streams, nil
}
