package api

import "context"

type subscribeRequest struct {
	Email string `json:"email"`
}

// Subscribe adds email to the newsletter. A second subscription of the same address
// comes back as a *transport.Error with status 409.
func (c *Client) Subscribe(ctx context.Context, email string) error {
	return c.with("").Post(ctx, "/newsletter/subscribe", subscribeRequest{Email: email}, nil)
}
