package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/slconcert/theatre-system/internal/core/domain"
	"github.com/slconcert/theatre-system/internal/core/ports"
)

// AuthService implements registration, login and the current-user lookup.
type AuthService struct {
	store     ports.DocumentStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

var _ ports.AuthService = (*AuthService)(nil)

func NewAuthService(store ports.DocumentStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 30 * time.Minute
	}
	return &AuthService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidArgument)
	}
	role := in.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	if !domain.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidArgument, role)
	}

	if err := s.checkFree(ctx, domain.FieldEmail, in.Email, domain.ErrEmailTaken); err != nil {
		return nil, err
	}
	if err := s.checkFree(ctx, domain.FieldUsername, in.Username, domain.ErrUsernameTaken); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := domain.Now()
	user := &domain.User{
		ID:             domain.NewID(),
		Email:          in.Email,
		Username:       in.Username,
		HashedPassword: string(hash),
		FullName:       in.FullName,
		Role:           role,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.store.Insert(ctx, domain.CollectionUsers, user); err != nil {
		if errors.Is(err, ports.ErrDuplicateKey) {
			return nil, fmt.Errorf("%w: user already exists", domain.ErrConflict)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.log.Info().Str("user_id", user.ID).Str("username", user.Username).Str("role", role).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	var user domain.User
	err := s.store.FindOne(ctx, domain.CollectionUsers, ports.Filter{ports.Eq(domain.FieldUsername, username)}, &user)
	if errors.Is(err, ports.ErrDocumentNotFound) {
		return "", nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	if user.Disabled {
		return "", nil, domain.ErrInactiveUser
	}

	token, err := s.generateToken(&user)
	if err != nil {
		return "", nil, err
	}
	return token, &user, nil
}

func (s *AuthService) Me(ctx context.Context, who ports.Principal) (*domain.User, error) {
	user, err := load[domain.User](ctx, s.store, domain.CollectionUsers, "user", who.UserID)
	if err != nil {
		return nil, err
	}
	if user.Disabled {
		return nil, domain.ErrInactiveUser
	}
	return user, nil
}

func (s *AuthService) checkFree(ctx context.Context, field, value string, taken error) error {
	n, err := s.store.Count(ctx, domain.CollectionUsers, ports.Filter{ports.Eq(field, value)})
	if err != nil {
		return fmt.Errorf("lookup user: %w", err)
	}
	if n > 0 {
		return taken
	}
	return nil
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      user.ID,
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      now.Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}
