package service

import (
	"context"

	"voting/internal/domain"
	"voting/internal/dto"
)

type TokenService interface {
	Issue(ctx context.Context, user *domain.User, ip, ua string) (*dto.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string, ip, ua string) (*dto.TokenResponse, error)
	// Verify checks an access token and returns the user id it was issued to.
	Verify(ctx context.Context, accessToken string) (uint, error)
	JWKs() []map[string]any
}
