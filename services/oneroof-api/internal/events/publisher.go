// Package events publishes booking lifecycle events to Kafka for
// downstream reminder and notification pipelines. Publishing is
// best-effort: the booking write is already confirmed by the time an
// event is emitted, and a broker failure is logged, never surfaced.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/daddycoders/oneroof/libs/kafkax"
	"github.com/daddycoders/oneroof/services/oneroof-api/internal/model"
)

const (
	TopicBookingCreated   = "booking.created.v1"
	TopicBookingCancelled = "booking.cancelled.v1"
)

type Publisher struct {
	writer *kafka.Writer
	logger *slog.Logger
}

// NewPublisher returns a disabled publisher when no brokers are
// configured; every emit becomes a no-op.
func NewPublisher(brokers string, logger *slog.Logger) *Publisher {
	list := kafkax.SplitBrokers(brokers)
	if len(list) == 0 {
		logger.Warn("booking events disabled (no kafka brokers configured)")
		return &Publisher{logger: logger}
	}
	return &Publisher{writer: kafkax.NewWriter(list), logger: logger}
}

func (p *Publisher) Close() error {
	if p.writer == nil {
		return nil
	}
	return p.writer.Close()
}

type bookingEvent struct {
	BookingID  string `json:"booking_id"`
	UserID     string `json:"user_id"`
	ServiceID  string `json:"service_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Status     string `json:"status"`
	OccurredAt string `json:"occurred_at"`
}

func (p *Publisher) BookingCreated(ctx context.Context, b *model.Booking) {
	p.publish(ctx, TopicBookingCreated, b)
}

func (p *Publisher) BookingCancelled(ctx context.Context, b *model.Booking) {
	p.publish(ctx, TopicBookingCancelled, b)
}

func (p *Publisher) publish(ctx context.Context, topic string, b *model.Booking) {
	if p.writer == nil {
		return
	}

	payload, err := json.Marshal(bookingEvent{
		BookingID:  b.ID,
		UserID:     b.UserID,
		ServiceID:  b.ServiceID,
		Date:       b.Date,
		Time:       b.Time,
		Status:     b.Status,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		p.logger.Error("booking event encode failed", "topic", topic, "err", err)
		return
	}

	msg := kafka.Message{
		Topic: topic,
		Key:   []byte(b.ID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(uuid.NewString())},
			{Key: "event_type", Value: []byte(topic)},
		},
	}
	msg.Headers = kafkax.InjectTraceHeaders(ctx, msg.Headers)

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("booking event publish failed", "topic", topic, "booking_id", b.ID, "err", err)
	}
}
