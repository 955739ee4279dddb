// Package api is the typed client of the storefront REST service. Every call builds a
// fresh transport client for the token it is given.
package api

import (
	"github.com/fjod/go_storefront/internal/transport"
)

type Client struct {
	baseURL string
	opts    []transport.Option
}

func New(baseURL string, opts ...transport.Option) *Client {
	return &Client{baseURL: baseURL, opts: opts}
}

func (c *Client) with(token string) *transport.Client {
	return transport.New(c.baseURL, token, c.opts...)
}
