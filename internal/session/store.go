// Package session holds the signed-in user and bearer token, persisted so they survive
// restarts.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
	"go.uber.org/zap"
)

const (
	keyUser  = "user"
	keyToken = "token"
)

type Store struct {
	mu        sync.RWMutex
	user      *domain.User
	token     string
	persister Persister
	logger    *zap.Logger
}

func NewStore(persister Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persister: persister, logger: logger}
}

// Load rehydrates the session. Both the user and the token must be present and the
// user must decode, otherwise the session starts signed out.
func (s *Store) Load(ctx context.Context) error {
	token, okToken, err := s.persister.Get(ctx, keyToken)
	if err != nil {
		return fmt.Errorf("load session token: %w", err)
	}
	raw, okUser, err := s.persister.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("load session user: %w", err)
	}
	if !okToken || !okUser || token == "" || raw == "" {
		return nil
	}

	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.Error("failed to parse persisted user", zap.Error(err))
		return nil
	}

	s.mu.Lock()
	s.user = &user
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user != nil
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	if s.user.Location != nil {
		loc := *s.user.Location
		u.Location = &loc
	}
	return &u
}

// LoginSuccess signs the user in and persists the session.
func (s *Store) LoginSuccess(ctx context.Context, user domain.User, token string) error {
	s.set(user, token)
	return s.persist(ctx, user, token)
}

// SetUser replaces the session, e.g. after a profile update. Storage errors are
// logged and otherwise ignored.
func (s *Store) SetUser(ctx context.Context, user domain.User, token string) {
	s.set(user, token)
	if err := s.persist(ctx, user, token); err != nil {
		s.logger.Warn("failed to persist session", zap.Error(err))
	}
}

func (s *Store) LogoutSuccess(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()

	if err := s.persister.Delete(ctx, keyUser, keyToken); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (s *Store) set(user domain.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.token = token
}

func (s *Store) persist(ctx context.Context, user domain.User, token string) error {
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}
	if err := s.persister.Set(ctx, keyUser, string(raw)); err != nil {
		return err
	}
	return s.persister.Set(ctx, keyToken, token)
}
