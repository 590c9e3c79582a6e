package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ctateo21/homelead/internal/domain/event"
	pkgkafka "github.com/ctateo21/homelead/pkg/kafka"
)

// Producer is the slice of pkg/kafka.Producer the publisher needs.
type Producer interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// EventPublisher implements port.EventPublisher by writing events to Kafka.
// Every event goes to the events topic; SessionCompleted is also written to
// the leads topic consumed by `wizardd forward`.
type EventPublisher struct {
	producer    Producer
	eventsTopic string
	leadsTopic  string
	logger      *slog.Logger
}

// NewEventPublisher creates a publisher for the given topics.
func NewEventPublisher(producer Producer, eventsTopic, leadsTopic string, logger *slog.Logger) *EventPublisher {
	return &EventPublisher{
		producer:    producer,
		eventsTopic: eventsTopic,
		leadsTopic:  leadsTopic,
		logger:      logger,
	}
}

// Publish serialises and sends domain events to Kafka.
func (p *EventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	messages := make([]pkgkafka.Message, 0, len(events))
	var leads []pkgkafka.Message

	for _, evt := range events {
		payload, err := json.Marshal(evt)
		if err != nil {
			return fmt.Errorf("marshal event %s: %w", evt.EventType(), err)
		}

		p.logger.DebugContext(ctx, "publishing domain event",
			"event_type", evt.EventType(),
			"session_id", evt.AggregateID(),
			"topic", p.eventsTopic,
			"payload_size", len(payload),
		)

		msg := pkgkafka.Message{
			Key:   []byte(evt.AggregateID()),
			Value: payload,
			Headers: map[string]string{
				"event_type": evt.EventType(),
				"event_id":   evt.EventID(),
			},
		}
		messages = append(messages, msg)
		if evt.EventType() == event.TypeSessionCompleted {
			leads = append(leads, msg)
		}
	}

	if len(messages) == 0 {
		return nil
	}
	if err := p.producer.Publish(ctx, p.eventsTopic, messages...); err != nil {
		return fmt.Errorf("publish events to topic %s: %w", p.eventsTopic, err)
	}
	if len(leads) > 0 && p.leadsTopic != "" {
		if err := p.producer.Publish(ctx, p.leadsTopic, leads...); err != nil {
			return fmt.Errorf("publish leads to topic %s: %w", p.leadsTopic, err)
		}
	}
	return nil
}
