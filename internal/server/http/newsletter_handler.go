package http

import (
	"context"
	"net/http"

	"go.uber.org/zap"
)

type Newsletter interface {
	Subscribe(ctx context.Context, email string) error
}

type NewsletterHandler struct {
	newsletter Newsletter
	logger     *zap.Logger
}

func NewNewsletterHandler(newsletter Newsletter, logger *zap.Logger) *NewsletterHandler {
	return &NewsletterHandler{newsletter: newsletter, logger: logger}
}

type subscribeRequest struct {
	Email string `json:"email"`
}

func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.newsletter.Subscribe(r.Context(), req.Email); err != nil {
		handleError(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"message": "subscribed"})
}
