package ports

import (
	"context"

	"streamwall/internal/core/domain"
)

type TokenRepository interface {
	Save(ctx context.Context, token *domain.Token) error
	GetByID(ctx context.Context, id string) (*domain.Token, error)
	GetBySecret(ctx context.Context, kind domain.TokenKind, secret string) (*domain.Token, error)
	Delete(ctx context.Context, id string) error
	ListByKind(ctx context.Context, kind domain.TokenKind) ([]*domain.Token, error)
}

type StreamRepository interface {
	Upsert(ctx context.Context, stream *domain.Stream) error
	GetByURL(ctx context.Context, url string) (*domain.Stream, error)
	Delete(ctx context.Context, url string) error
	List(ctx context.Context) ([]*domain.Stream, error)
}
