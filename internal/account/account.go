// Package account runs the sign-in, profile and newsletter flows and keeps the
// session in step with them.
package account

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/transport"
	"go.uber.org/zap"
)

const (
	MsgLoggedIn          = "Login successful!"
	MsgRegistered        = "Registration successful!"
	MsgLoggedOut         = "Logged out"
	MsgProfileUpdated    = "Profile updated successfully"
	MsgSubscribed        = "Thank you for subscribing to our newsletter!"
	MsgAlreadySubscribed = "This email is already subscribed."

	msgLoginFailed     = "Login failed. Please check your credentials."
	msgRegisterFailed  = "Registration failed."
	msgProfileFailed   = "Failed to update profile."
	msgSubscribeFailed = "Subscription failed. Please try again."
)

var (
	ErrNotSignedIn  = errors.New("not signed in")
	ErrInvalidInput = errors.New("invalid input")
)

type Service interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error)
	Logout(ctx context.Context, token string) error
	UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error)
	Subscribe(ctx context.Context, email string) error
}

type Session interface {
	Token() string
	LoginSuccess(ctx context.Context, user domain.User, token string) error
	SetUser(ctx context.Context, user domain.User, token string)
	LogoutSuccess(ctx context.Context) error
}

// Cart is reloaded after sign-in and emptied on sign-out.
type Cart interface {
	Fetch(ctx context.Context) error
	Clear()
}

type Manager struct {
	service  Service
	session  Session
	cart     Cart
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewManager(service Service, session Session, cart Cart, notifier notify.Notifier, logger *zap.Logger) *Manager {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{service: service, session: session, cart: cart, notifier: notifier, logger: logger}
}

func (m *Manager) Login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	if strings.TrimSpace(creds.EmailOrPhone) == "" || creds.Password == "" {
		return nil, fmt.Errorf("%w: email or phone and password are required", ErrInvalidInput)
	}

	result, err := m.service.Login(ctx, creds)
	if err != nil {
		m.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgLoginFailed))
		return nil, fmt.Errorf("login: %w", err)
	}
	return m.signedIn(ctx, result, MsgLoggedIn)
}

func (m *Manager) Register(ctx context.Context, reg domain.Registration) (*domain.User, error) {
	if strings.TrimSpace(reg.Name) == "" || strings.TrimSpace(reg.Email) == "" || reg.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrInvalidInput)
	}

	result, err := m.service.Register(ctx, reg)
	if err != nil {
		m.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgRegisterFailed))
		return nil, fmt.Errorf("register: %w", err)
	}
	return m.signedIn(ctx, result, MsgRegistered)
}

func (m *Manager) signedIn(ctx context.Context, result *domain.AuthResult, msg string) (*domain.User, error) {
	if err := m.session.LoginSuccess(ctx, result.User, result.Token); err != nil {
		// still signed in for this run, just not remembered
		m.logger.Warn("session not persisted", zap.Error(err))
	}
	m.notifier.Notify(notify.LevelSuccess, msg)

	if m.cart != nil {
		if err := m.cart.Fetch(ctx); err != nil {
			m.logger.Warn("cart reload after sign-in failed", zap.Error(err))
		}
	}
	user := result.User
	return &user, nil
}

// Logout always ends the local session, even when the service call fails.
func (m *Manager) Logout(ctx context.Context) error {
	token := m.session.Token()
	if token != "" {
		if err := m.service.Logout(ctx, token); err != nil {
			m.logger.Warn("remote logout failed", zap.Error(err))
		}
	}
	if m.cart != nil {
		m.cart.Clear()
	}
	if err := m.session.LogoutSuccess(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.notifier.Notify(notify.LevelInfo, MsgLoggedOut)
	return nil
}

func (m *Manager) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.User, error) {
	token := m.session.Token()
	if token == "" {
		return nil, ErrNotSignedIn
	}

	user, err := m.service.UpdateProfile(ctx, token, update)
	if err != nil {
		m.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgProfileFailed))
		return nil, fmt.Errorf("update profile: %w", err)
	}

	m.session.SetUser(ctx, *user, token)
	m.notifier.Notify(notify.LevelSuccess, MsgProfileUpdated)
	return user, nil
}

// Subscribe signs email up for the newsletter. Subscribing twice is reported as a
// warning, not an error.
func (m *Manager) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}

	err := m.service.Subscribe(ctx, email)
	switch {
	case err == nil:
		m.notifier.Notify(notify.LevelSuccess, MsgSubscribed)
		return nil
	case transport.StatusCode(err) == http.StatusConflict:
		m.notifier.Notify(notify.LevelWarning, MsgAlreadySubscribed)
		return nil
	default:
		m.notifier.Notify(notify.LevelError, transport.UserMessage(err, msgSubscribeFailed))
		return fmt.Errorf("subscribe: %w", err)
	}
}
