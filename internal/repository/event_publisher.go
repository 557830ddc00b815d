package repository

import (
	"context"

	"TrafficLight/internal/domain/models"
	drepo "TrafficLight/internal/domain/repository"
)

// MessageProducer is the subset of pkg/kafka.Producer used for events.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaEventPublisher writes transition events as JSON, keyed by event id.
type KafkaEventPublisher struct {
	producer MessageProducer
	topic    string
}

// NewKafkaEventPublisher creates an event publisher on topic.
func NewKafkaEventPublisher(producer MessageProducer, topic string) *KafkaEventPublisher {
	return &KafkaEventPublisher{producer: producer, topic: topic}
}

func (p *KafkaEventPublisher) Publish(ctx context.Context, e models.TransitionEvent) error {
	return p.producer.Publish(ctx, p.topic, []byte(e.ID), e)
}

func (p *KafkaEventPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

var _ drepo.EventPublisher = (*KafkaEventPublisher)(nil)
