package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"streamwall/internal/core/domain"
	"streamwall/internal/core/ports"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type tokenService struct {
	repo   ports.TokenRepository
	logger *zap.Logger

	mu        sync.Mutex
	listeners []func()
}

func NewTokenService(repo ports.TokenRepository, logger *zap.Logger) ports.TokenService {
	return &tokenService{
		repo:   repo,
		logger: logger,
	}
}

func (s *tokenService) CreateInvite(ctx context.Context, name string, role domain.Role) (*domain.Token, error) {
	if _, err := domain.ParseRole(string(role)); err != nil {
		return nil, err
	}
	secret, err := generateSecret()
	if err != nil {
		return nil, err
	}

	token := &domain.Token{
		ID:        uuid.NewString(),
		Kind:      domain.TokenKindInvite,
		Name:      name,
		Role:      role,
		Secret:    secret,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save invite: %w", err)
	}

	s.logger.Info("invite created",
		zap.String("token_id", token.ID),
		zap.String("name", name),
		zap.String("role", string(role)))
	s.notify()
	return token, nil
}

// RedeemInvite exchanges an invite secret for a session token. Invites are
// single use: the invite is deleted before the session is handed out, so a
// second redemption of the same secret fails.
func (s *tokenService) RedeemInvite(ctx context.Context, secret string) (*domain.Token, error) {
	invite, err := s.repo.GetBySecret(ctx, domain.TokenKindInvite, secret)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	if err := s.repo.Delete(ctx, invite.ID); err != nil {
		return nil, fmt.Errorf("failed to consume invite: %w", err)
	}

	sessionSecret, err := generateSecret()
	if err != nil {
		return nil, err
	}
	session := &domain.Token{
		ID:        uuid.NewString(),
		Kind:      domain.TokenKindSession,
		Name:      invite.Name,
		Role:      invite.Role,
		Secret:    sessionSecret,
		CreatedAt: time.Now(),
	}
	if err := s.repo.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	s.logger.Info("invite redeemed",
		zap.String("invite_id", invite.ID),
		zap.String("session_id", session.ID),
		zap.String("role", string(session.Role)))
	s.notify()
	return session, nil
}

func (s *tokenService) ValidateSession(ctx context.Context, secret string) (*domain.Identity, error) {
	session, err := s.repo.GetBySecret(ctx, domain.TokenKindSession, secret)
	if err != nil {
		return nil, domain.ErrInvalidToken
	}
	return &domain.Identity{
		ID:   session.ID,
		Name: session.Name,
		Role: session.Role,
	}, nil
}

func (s *tokenService) DeleteToken(ctx context.Context, tokenID string) error {
	if err := s.repo.Delete(ctx, tokenID); err != nil {
		return err
	}
	s.logger.Info("token deleted", zap.String("token_id", tokenID))
	s.notify()
	return nil
}

func (s *tokenService) AuthState(ctx context.Context) (*domain.AuthState, error) {
	invites, err := s.repo.ListByKind(ctx, domain.TokenKindInvite)
	if err != nil {
		return nil, err
	}
	sessions, err := s.repo.ListByKind(ctx, domain.TokenKindSession)
	if err != nil {
		return nil, err
	}

	state := &domain.AuthState{
		Invites:  make([]domain.TokenInfo, 0, len(invites)),
		Sessions: make([]domain.TokenInfo, 0, len(sessions)),
	}
	for _, t := range invites {
		state.Invites = append(state.Invites, t.Info())
	}
	for _, t := range sessions {
		state.Sessions = append(state.Sessions, t.Info())
	}
	return state, nil
}

// OnChange registers a listener invoked after every token mutation. The
// control plane uses it to re-project auth state and evict connections whose
// session disappeared.
func (s *tokenService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *tokenService) notify() {
	s.mu.Lock()
	listeners := append([]func(){}, s.listeners...)
	s.mu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
