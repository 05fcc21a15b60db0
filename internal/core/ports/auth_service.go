package ports

import (
	"context"

	"github.com/slconcert/theatre-system/internal/core/domain"
)

type RegisterInput struct {
	Email    string
	Username string
	Password string
	FullName string
	Role     string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	// Login verifies the credentials and returns a signed access token.
	Login(ctx context.Context, username, password string) (string, *domain.User, error)
	Me(ctx context.Context, who Principal) (*domain.User, error)
}
