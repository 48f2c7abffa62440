package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cloud.google.com/go/pubsub"

	"scribe/internal/domain"
)

// Publisher sends messages to one topic.
type Publisher struct {
	topic *pubsub.Topic
}

func NewPublisher(topic *pubsub.Topic) (*Publisher, error) {
	if topic == nil {
		return nil, errors.New("queue: topic is required")
	}
	return &Publisher{topic: topic}, nil
}

// Publish sends a job message and waits for the server id.
func (p *Publisher) Publish(ctx context.Context, msg domain.QueueMessage) (string, error) {
	if msg.JobID == "" {
		return "", fmt.Errorf("queue: publish: %w", domain.ErrMalformedMessage)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("queue: marshal message: %w", err)
	}
	id, err := p.topic.Publish(ctx, &pubsub.Message{Data: data}).Get(ctx)
	if err != nil {
		return "", fmt.Errorf("queue: publish to %s: %w", p.topic.ID(), err)
	}
	return id, nil
}

// PublishDeadLetter forwards an unprocessable body unchanged, with the
// rejection reason as an attribute.
func (p *Publisher) PublishDeadLetter(ctx context.Context, body []byte, reason string) error {
	_, err := p.topic.Publish(ctx, &pubsub.Message{
		Data:       body,
		Attributes: map[string]string{"reason": reason},
	}).Get(ctx)
	if err != nil {
		return fmt.Errorf("queue: dead-letter to %s: %w", p.topic.ID(), err)
	}
	return nil
}

// Stop flushes pending publishes.
func (p *Publisher) Stop() { p.topic.Stop() }
