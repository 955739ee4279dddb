// Package consumer holds the Kafka consumers of the storefront API.
package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var (
	errMissingUserID   = errors.New("missing or invalid user_id")
	errMissingPlacedAt = errors.New("missing placed_at")
)

type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type CartClearer interface {
	ClearCart(ctx context.Context, userID string, placedAt time.Time) error
}

// CartCleaner empties the cart of every user with a placed order. Placing an order
// already clears the cart in-line; this catches the orders where that step failed.
// Events can arrive late, so a cart changed after the order was placed is kept.
type CartCleaner struct {
	reader  MessageReader
	carts   CartClearer
	backoff time.Duration
	logger  *zap.Logger
}

func NewKafkaReader(brokers []string, topic, groupID string) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
}

func NewCartCleaner(reader MessageReader, carts CartClearer, logger *zap.Logger) *CartCleaner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartCleaner{reader: reader, carts: carts, backoff: time.Second, logger: logger}
}

func (c *CartCleaner) Run(ctx context.Context) {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("error reading message", zap.Error(err))
			select {
			case <-time.After(c.backoff):
			case <-ctx.Done():
				return
			}
			continue
		}
		if err := c.handle(ctx, msg); err != nil {
			c.logger.Warn("failed to handle order event",
				zap.String("key", string(msg.Key)),
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

func (c *CartCleaner) handle(ctx context.Context, msg kafka.Message) error {
	if eventType(msg) != model.EventOrderPlaced {
		return nil
	}

	var payload struct {
		UserID   string    `json:"user_id"`
		PlacedAt time.Time `json:"placed_at"`
	}
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		return fmt.Errorf("error parsing message: %w", err)
	}
	if payload.UserID == "" {
		return errMissingUserID
	}
	if payload.PlacedAt.IsZero() {
		return errMissingPlacedAt
	}
	return c.carts.ClearCart(ctx, payload.UserID, payload.PlacedAt)
}

func eventType(msg kafka.Message) string {
	for _, h := range msg.Headers {
		if h.Key == "event_type" {
			return string(h.Value)
		}
	}
	return ""
}
