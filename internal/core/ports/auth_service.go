package ports

import (
	"context"

	"github.com/terapia/practice-api/internal/core/domain"
)

// RegisterInput carries the data for a self-service sign up.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Role     domain.Role
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	ExpiresIn    int64        `json:"expires_in"`
	User         *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
	MustChangePassword(ctx context.Context, userID string) (bool, error)
}
