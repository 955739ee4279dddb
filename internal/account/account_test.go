package account

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/notify"
	"github.com/fjod/go_storefront/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(svc *mockService, sess *mockSession) (*Manager, *mockCart, *notify.Feed) {
	feed := notify.NewFeed(8)
	cart := &mockCart{}
	return NewManager(svc, sess, cart, feed, nil), cart, feed
}

func TestLogin_StoresSessionAndReloadsCart(t *testing.T) {
	svc := &mockService{result: &domain.AuthResult{User: domain.User{ID: "u1", Name: "Asha"}, Token: "tok"}}
	sess := &mockSession{}
	m, cart, feed := newTestManager(svc, sess)

	user, err := m.Login(context.Background(), domain.Credentials{EmailOrPhone: "asha@example.com", Password: "secret"})

	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "tok", sess.token)
	assert.Equal(t, 1, cart.fetches)
	assert.Equal(t, MsgLoggedIn, feed.Drain()[0].Message)
}

func TestLogin_PersistFailureStillSignsIn(t *testing.T) {
	svc := &mockService{result: &domain.AuthResult{User: domain.User{ID: "u1"}, Token: "tok"}}
	sess := &mockSession{persistErr: errors.New("disk full")}
	m, _, _ := newTestManager(svc, sess)

	_, err := m.Login(context.Background(), domain.Credentials{EmailOrPhone: "a@b.c", Password: "x"})

	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Token())
}

func TestLogin_Rejected(t *testing.T) {
	svc := &mockService{err: &transport.Error{Status: http.StatusUnauthorized, Message: "Invalid credentials"}}
	sess := &mockSession{}
	m, cart, feed := newTestManager(svc, sess)

	_, err := m.Login(context.Background(), domain.Credentials{EmailOrPhone: "a@b.c", Password: "bad"})

	require.Error(t, err)
	assert.Empty(t, sess.token)
	assert.Zero(t, cart.fetches)
	n := feed.Drain()
	require.Len(t, n, 1)
	assert.Equal(t, notify.LevelError, n[0].Level)
	assert.Equal(t, "Invalid credentials", n[0].Message)
}

func TestLogin_MissingFields(t *testing.T) {
	m, _, _ := newTestManager(&mockService{}, &mockSession{})

	_, err := m.Login(context.Background(), domain.Credentials{EmailOrPhone: "  "})

	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegister(t *testing.T) {
	svc := &mockService{result: &domain.AuthResult{User: domain.User{ID: "u2", Name: "Ravi"}, Token: "tok2"}}
	sess := &mockSession{}
	m, _, feed := newTestManager(svc, sess)

	user, err := m.Register(context.Background(), domain.Registration{Name: "Ravi", Email: "ravi@example.com", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, "Ravi", user.Name)
	assert.Equal(t, "tok2", sess.token)
	assert.Equal(t, MsgRegistered, feed.Drain()[0].Message)
}

func TestLogout_EndsSessionEvenWhenRemoteFails(t *testing.T) {
	svc := &mockService{logoutErr: transport.ErrTransport}
	sess := &mockSession{token: "tok", user: &domain.User{ID: "u1"}}
	m, cart, _ := newTestManager(svc, sess)

	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, "tok", svc.logoutToken)
	assert.Empty(t, sess.token)
	assert.Nil(t, sess.user)
	assert.Equal(t, 1, cart.cleared)
}

func TestUpdateProfile(t *testing.T) {
	svc := &mockService{user: &domain.User{ID: "u1", Name: "Asha K", Location: &domain.Location{City: "Pune"}}}
	sess := &mockSession{token: "tok", user: &domain.User{ID: "u1", Name: "Asha"}}
	m, _, feed := newTestManager(svc, sess)

	user, err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{Name: "Asha K", Location: domain.Location{City: "Pune"}})

	require.NoError(t, err)
	assert.Equal(t, "Asha K", user.Name)
	assert.Equal(t, "Asha K", sess.user.Name)
	assert.Equal(t, "tok", sess.token)
	assert.Equal(t, MsgProfileUpdated, feed.Drain()[0].Message)
}

func TestUpdateProfile_NotSignedIn(t *testing.T) {
	m, _, _ := newTestManager(&mockService{}, &mockSession{})

	_, err := m.UpdateProfile(context.Background(), domain.ProfileUpdate{})

	assert.ErrorIs(t, err, ErrNotSignedIn)
}

func TestSubscribe(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantErr bool
		level   notify.Level
		message string
	}{
		{"new address", nil, false, notify.LevelSuccess, MsgSubscribed},
		{"already subscribed", &transport.Error{Status: http.StatusConflict, Message: "exists"}, false, notify.LevelWarning, MsgAlreadySubscribed},
		{"server error", &transport.Error{Status: http.StatusInternalServerError}, true, notify.LevelError, msgSubscribeFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockService{subscribeErr: tt.err}
			m, _, feed := newTestManager(svc, &mockSession{})

			err := m.Subscribe(context.Background(), " farmer@example.com ")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, []string{"farmer@example.com"}, svc.subscribed)
			n := feed.Drain()
			require.Len(t, n, 1)
			assert.Equal(t, tt.level, n[0].Level)
			assert.Equal(t, tt.message, n[0].Message)
		})
	}
}

func TestSubscribe_InvalidEmail(t *testing.T) {
	svc := &mockService{}
	m, _, _ := newTestManager(svc, &mockSession{})

	assert.ErrorIs(t, m.Subscribe(context.Background(), "not-an-email"), ErrInvalidInput)
	assert.Empty(t, svc.subscribed)
}
