package service

import (
	"context"
	"strings"

	"github.com/fjod/go_storefront/internal/server/repository"
)

type NewsletterService struct {
	subscribers repository.SubscriberRepository
}

func NewNewsletterService(subscribers repository.SubscriberRepository) *NewsletterService {
	return &NewsletterService{subscribers: subscribers}
}

// Subscribe returns repository.ErrAlreadySubscribed for an address already on the list.
func (s *NewsletterService) Subscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := validateEmail(email); err != nil {
		return err
	}
	return s.subscribers.AddSubscriber(ctx, email)
}
