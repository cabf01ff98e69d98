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

type RedisTokenRepository struct {
	client *redis.Client
	prefix string
}

func NewRedisTokenRepository(client *redis.Client) ports.TokenRepository {
	return &RedisTokenRepository{
		client: client,
		prefix: "streamwall:token:",
	}
}

func (r *RedisTokenRepository) tokenKey(id string) string {
	return r.prefix + id
}

func (r *RedisTokenRepository) kindKey(kind domain.TokenKind) string {
	return r.prefix + "kind:" + string(kind)
}

func (r *RedisTokenRepository) secretKey(kind domain.TokenKind, secret string) string {
	return r.prefix + "secret:" + string(kind) + ":" + secret
}

func (r *RedisTokenRepository) Save(ctx context.Context, token *domain.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, r.tokenKey(token.ID), data, 0)
	pipe.SAdd(ctx, r.kindKey(token.Kind), token.ID)
	pipe.Set(ctx, r.secretKey(token.Kind, token.Secret), token.ID, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save token in Redis: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	data, err := r.client.Get(ctx, r.tokenKey(id)).Result()
	if err == redis.Nil {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get token from Redis: %w", err)
	}

	var token domain.Token
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("failed to unmarshal token: %w", err)
	}
	return &token, nil
}

func (r *RedisTokenRepository) GetBySecret(ctx context.Context, kind domain.TokenKind, secret string) (*domain.Token, error) {
	id, err := r.client.Get(ctx, r.secretKey(kind, secret)).Result()
	if err == redis.Nil {
		return nil, domain.ErrTokenNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve token secret in Redis: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *RedisTokenRepository) Delete(ctx context.Context, id string) error {
	token, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.Del(ctx, r.tokenKey(id))
	pipe.SRem(ctx, r.kindKey(token.Kind), id)
	pipe.Del(ctx, r.secretKey(token.Kind, token.Secret))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete token from Redis: %w", err)
	}
	return nil
}

func (r *RedisTokenRepository) ListByKind(ctx context.Context, kind domain.TokenKind) ([]*domain.Token, error) {
	ids, err := r.client.SMembers(ctx, r.kindKey(kind)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list tokens from Redis: %w", err)
	}

	tokens := make([]*domain.Token, 0, len(ids))
	for _, id := range ids {
		token, err := r.GetByID(ctx, id)
		if err == domain.ErrTokenNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].ID < tokens[j].ID
		}
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})
	return tokens, nil
}
