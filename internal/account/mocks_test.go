package account

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

type mockService struct {
	result       *domain.AuthResult
	user         *domain.User
	err          error
	logoutErr    error
	subscribeErr error

	logoutToken string
	subscribed  []string
}

func (m *mockService) Login(context.Context, domain.Credentials) (*domain.AuthResult, error) {
	return m.result, m.err
}

func (m *mockService) Register(context.Context, domain.Registration) (*domain.AuthResult, error) {
	return m.result, m.err
}

func (m *mockService) Logout(_ context.Context, token string) error {
	m.logoutToken = token
	return m.logoutErr
}

func (m *mockService) UpdateProfile(context.Context, string, domain.ProfileUpdate) (*domain.User, error) {
	return m.user, m.err
}

func (m *mockService) Subscribe(_ context.Context, email string) error {
	m.subscribed = append(m.subscribed, email)
	return m.subscribeErr
}

type mockSession struct {
	user       *domain.User
	token      string
	persistErr error
}

func (m *mockSession) Token() string { return m.token }

func (m *mockSession) LoginSuccess(_ context.Context, user domain.User, token string) error {
	m.user, m.token = &user, token
	return m.persistErr
}

func (m *mockSession) SetUser(_ context.Context, user domain.User, token string) {
	m.user, m.token = &user, token
}

func (m *mockSession) LogoutSuccess(context.Context) error {
	m.user, m.token = nil, ""
	return nil
}

type mockCart struct {
	fetches int
	cleared int
}

func (m *mockCart) Fetch(context.Context) error {
	m.fetches++
	return nil
}

func (m *mockCart) Clear() { m.cleared++ }
