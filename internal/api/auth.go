package api

import (
	"context"

	"github.com/fjod/go_storefront/internal/domain"
)

func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.with("").Post(ctx, "/auth/login", creds, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, reg domain.Registration) (*domain.AuthResult, error) {
	var result domain.AuthResult
	if err := c.with("").Post(ctx, "/auth/register", reg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.with(token).Post(ctx, "/auth/logout", nil, nil)
}

func (c *Client) UpdateProfile(ctx context.Context, token string, update domain.ProfileUpdate) (*domain.User, error) {
	var user domain.User
	if err := c.with(token).Put(ctx, "/users/profile-update", update, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
