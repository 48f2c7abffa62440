// Package queue connects the orchestrator to Google Cloud Pub/Sub.
package queue

import (
	"context"
	"errors"

	"cloud.google.com/go/pubsub"

	"scribe/internal/infra"
	"scribe/internal/orchestrator"
)

// Handler processes one delivery. *orchestrator.Orchestrator satisfies it.
type Handler interface {
	Handle(ctx context.Context, d orchestrator.Delivery) orchestrator.Result
}

type acker interface {
	Ack()
	Nack()
}

// Consumer pulls messages one at a time and hands them to a Handler.
type Consumer struct {
	sub     *pubsub.Subscription
	handler Handler
	logger  *infra.Logger
}

// NewConsumer configures sub for a single sequential worker.
func NewConsumer(sub *pubsub.Subscription, handler Handler, logger *infra.Logger) (*Consumer, error) {
	if sub == nil {
		return nil, errors.New("queue: subscription is required")
	}
	if handler == nil {
		return nil, errors.New("queue: handler is required")
	}
	if logger == nil {
		logger = infra.NopLogger()
	}
	sub.ReceiveSettings.MaxOutstandingMessages = 1
	sub.ReceiveSettings.NumGoroutines = 1
	return &Consumer{sub: sub, handler: handler, logger: logger}, nil
}

// Run receives until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info().Str("subscription", c.sub.ID()).Msg("queue: receiving")
	err := c.sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		c.dispatch(ctx, msg.ID, msg.Data, msg)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// dispatch acks everything except outcomes that ask for redelivery.
func (c *Consumer) dispatch(ctx context.Context, id string, data []byte, m acker) orchestrator.Outcome {
	res := c.handler.Handle(ctx, orchestrator.Delivery{MessageID: id, Body: data})
	if res.Outcome.Redeliver() {
		c.logger.Info().Str("message_id", id).Str("job_id", res.JobID).Msg("queue: nack for redelivery")
		m.Nack()
		return res.Outcome
	}
	m.Ack()
	return res.Outcome
}
