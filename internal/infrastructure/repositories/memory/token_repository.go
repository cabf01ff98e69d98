package memory

import (
	"context"
	"sort"
	"sync"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"
)

type MemoryTokenRepository struct {
	tokens map[string]*domain.Token
	mu     sync.RWMutex
}

func NewMemoryTokenRepository() ports.TokenRepository {
	return &MemoryTokenRepository{
		tokens: make(map[string]*domain.Token),
	}
}

func (r *MemoryTokenRepository) Save(ctx context.Context, token *domain.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *token
	r.tokens[token.ID] = &copied
	return nil
}

func (r *MemoryTokenRepository) GetByID(ctx context.Context, id string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, exists := r.tokens[id]
	if !exists {
		return nil, domain.ErrTokenNotFound
	}

	copied := *token
	return &copied, nil
}

func (r *MemoryTokenRepository) GetBySecret(ctx context.Context, kind domain.TokenKind, secret string) (*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, token := range r.tokens {
		if token.Kind == kind && token.Secret == secret {
			copied := *token
			return &copied, nil
		}
	}
	return nil, domain.ErrTokenNotFound
}

func (r *MemoryTokenRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tokens[id]; !exists {
		return domain.ErrTokenNotFound
	}
	delete(r.tokens, id)
	return nil
}

func (r *MemoryTokenRepository) ListByKind(ctx context.Context, kind domain.TokenKind) ([]*domain.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tokens := make([]*domain.Token, 0)
	for _, token := range r.tokens {
		if token.Kind == kind {
			copied := *token
			tokens = append(tokens, &copied)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if tokens[i].CreatedAt.Equal(tokens[j].CreatedAt) {
			return tokens[i].ID < tokens[j].ID
		}
		return tokens[i].CreatedAt.Before(tokens[j].CreatedAt)
	})
	return tokens, nil
}
