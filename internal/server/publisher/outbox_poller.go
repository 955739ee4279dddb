package publisher

import (
	"context"
	"time"

	"github.com/fjod/go_storefront/internal/server/model"
	"github.com/fjod/go_storefront/internal/server/repository"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const batchSize = 100

type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type Recorder interface {
	OutboxPublished()
	OutboxFailed()
}

type nopRecorder struct{}

func (nopRecorder) OutboxPublished() {}
func (nopRecorder) OutboxFailed()    {}

// OutboxPoller relays committed outbox events to Kafka. Delivery is at least once: an
// event whose mark fails is published again on the next tick.
type OutboxPoller struct {
	timeout   time.Duration
	eventTick time.Duration
	repo      repository.OutboxRepository
	writer    MessageWriter
	recorder  Recorder
	logger    *zap.Logger
}

type Option func(*OutboxPoller)

func WithInterval(d time.Duration) Option {
	return func(p *OutboxPoller) {
		if d > 0 {
			p.eventTick = d
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(p *OutboxPoller) {
		if r != nil {
			p.recorder = r
		}
	}
}

func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}
}

func NewOutboxPoller(repo repository.OutboxRepository, writer MessageWriter, logger *zap.Logger, opts ...Option) *OutboxPoller {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &OutboxPoller{
		timeout:   5 * time.Second,
		eventTick: time.Second,
		repo:      repo,
		writer:    writer,
		recorder:  nopRecorder{},
		logger:    logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run polls until ctx is cancelled.
func (p *OutboxPoller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.eventTick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.processUnpublishedEvents(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *OutboxPoller) processUnpublishedEvents(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	events, err := p.repo.GetUnprocessedEvents(ctx, batchSize)
	if err != nil {
		p.logger.Error("failed to fetch outbox events", zap.Error(err))
		return
	}

	for _, event := range events {
		if err := p.publish(ctx, event); err != nil {
			p.recorder.OutboxFailed()
			p.logger.Warn("failed to publish event", zap.Int64("event_id", event.ID), zap.Error(err))
			continue
		}
		p.recorder.OutboxPublished()

		if err := p.repo.MarkEventAsProcessed(ctx, event.ID); err != nil {
			p.logger.Warn("failed to mark event as processed", zap.Int64("event_id", event.ID), zap.Error(err))
		}
	}
}

func (p *OutboxPoller) publish(ctx context.Context, event *model.OutboxEvent) error {
	msg := kafka.Message{
		Key:   []byte(event.AggregateID), // order id keeps one order's events on one partition
		Value: event.Payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	}
	return p.writer.WriteMessages(ctx, msg)
}
