package service

import (
	"context"

	"voting/internal/domain"
	"voting/internal/dto"
)

type AuthService interface {
	Register(ctx context.Context, r dto.RegisterRequest, ip, ua string) (*dto.AuthResponse, error)
	Login(ctx context.Context, r dto.LoginRequest, ip, ua string) (*dto.AuthResponse, error)
	// Authenticate resolves a bearer access token to an active caller.
	Authenticate(ctx context.Context, accessToken string) (domain.Caller, error)
	CreateSuperuser(ctx context.Context, r dto.RegisterRequest) (*domain.User, error)
	// Deactivate disables the user with cpf and revokes every refresh session.
	Deactivate(ctx context.Context, cpf string) error
}
