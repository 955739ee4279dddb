package order

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

type staticToken string

func (t staticToken) Token() string { return string(t) }

type mockService struct {
	confirmation *domain.OrderConfirmation
	err          error
	calls        int
	lastToken    string
	lastRequest  domain.OrderRequest
	// started, when set, is closed once a call arrives and release gates its return
	started chan struct{}
	release chan struct{}
}

func (m *mockService) CreateOrder(_ context.Context, token string, req domain.OrderRequest) (*domain.OrderConfirmation, error) {
	m.calls++
	m.lastToken = token
	m.lastRequest = req
	if m.started != nil {
		close(m.started)
		<-m.release
	}
	return m.confirmation, m.err
}
