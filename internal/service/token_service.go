package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type TokenStore interface {
	Upsert(ctx context.Context, token string, userID uuid.UUID) error
}

type TokenService struct {
	tokens TokenStore
}

func NewTokenService(tokens TokenStore) *TokenService {
	return &TokenService{tokens: tokens}
}

// Register attaches a device token to the user, taking it over from whoever
// held it before.
func (s *TokenService) Register(ctx context.Context, userID uuid.UUID, token string) error {
	token = cleanText(token)
	if token == "" {
		return ErrInvalidToken
	}
	if err := s.tokens.Upsert(ctx, token, userID); err != nil {
		return fmt.Errorf("failed to save push token: %w", err)
	}
	return nil
}
