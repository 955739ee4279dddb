package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/server/cache"
	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleUser          = "user"
	minPasswordLength = 6
)

type TokenStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Lookup(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type AuthService struct {
	users  repository.UserRepository
	tokens TokenStore
	cost   int
	logger *zap.Logger
}

func NewAuthService(users repository.UserRepository, tokens TokenStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:  users,
		tokens: tokens,
		cost:   bcrypt.DefaultCost,
		logger: logger,
	}
}

func (s *AuthService) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	reg.Name = strings.TrimSpace(reg.Name)
	reg.Email = strings.ToLower(strings.TrimSpace(reg.Email))
	reg.Phone = strings.TrimSpace(reg.Phone)
	if reg.Name == "" {
		return nil, invalid("name", "is required")
	}
	if err := validateEmail(reg.Email); err != nil {
		return nil, err
	}
	if len(reg.Password) < minPasswordLength {
		return nil, invalid("password", "must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           uuid.New(),
		Name:         reg.Name,
		Email:        reg.Email,
		Phone:        reg.Phone,
		PasswordHash: string(hash),
		Role:         RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(ctx, user)
}

func (s *AuthService) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	login := strings.TrimSpace(creds.EmailOrPhone)
	if login == "" || creds.Password == "" {
		return nil, invalid("", "email/phone and password are required")
	}

	user, err := s.users.GetUserByLogin(ctx, login)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Authenticate resolves a bearer token to the user it was issued for.
func (s *AuthService) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrUnauthorized
	}
	raw, err := s.tokens.Lookup(ctx, token)
	if errors.Is(err, cache.ErrTokenNotFound) {
		return uuid.Nil, ErrUnauthorized
	}
	if err != nil {
		return uuid.Nil, err
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Warn("token maps to malformed user id", zap.String("user_id", raw))
		return uuid.Nil, ErrUnauthorized
	}
	return id, nil
}

// UpdateProfile overwrites the non-empty fields of update. The location is replaced
// as a whole.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(update.Email)); email != "" {
		if err := validateEmail(email); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if phone := strings.TrimSpace(update.Phone); phone != "" {
		user.Phone = phone
	}
	if update.Location != (domain.Location{}) {
		loc := update.Location
		user.Location = &loc
	}
	user.UpdatedAt = time.Now().UTC()

	if err := s.users.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	public := user.Public()
	return &public, nil
}

func (s *AuthService) issue(ctx context.Context, user *model.User) (*domain.AuthResult, error) {
	token, err := s.tokens.Issue(ctx, user.ID.String())
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{User: user.Public(), Token: token}, nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return invalid("email", "is not a valid address")
	}
	return nil
}
