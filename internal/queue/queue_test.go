package queue

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/pubsub/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"scribe/internal/domain"
	"scribe/internal/infra"
	"scribe/internal/orchestrator"
)

type fakeAck struct{ acked, nacked int }

func (f *fakeAck) Ack()  { f.acked++ }
func (f *fakeAck) Nack() { f.nacked++ }

type handlerFunc func(ctx context.Context, d orchestrator.Delivery) orchestrator.Result

func (f handlerFunc) Handle(ctx context.Context, d orchestrator.Delivery) orchestrator.Result {
	return f(ctx, d)
}

func TestDispatchAckPolicy(t *testing.T) {
	cases := []struct {
		outcome orchestrator.Outcome
		nack    bool
	}{
		{orchestrator.Completed, false},
		{orchestrator.Failed, false},
		{orchestrator.Denied, false},
		{orchestrator.Dropped, false},
		{orchestrator.Retry, true},
	}
	for _, tc := range cases {
		t.Run(tc.outcome.String(), func(t *testing.T) {
			c := &Consumer{
				handler: handlerFunc(func(ctx context.Context, d orchestrator.Delivery) orchestrator.Result {
					return orchestrator.Result{MessageID: d.MessageID, Outcome: tc.outcome}
				}),
				logger: infra.NopLogger(),
			}
			m := &fakeAck{}
			c.dispatch(context.Background(), "m-1", []byte(`{}`), m)
			if tc.nack {
				assert.Equal(t, 1, m.nacked)
				assert.Zero(t, m.acked)
			} else {
				assert.Equal(t, 1, m.acked)
				assert.Zero(t, m.nacked)
			}
		})
	}
}

func newTestClient(t *testing.T) *pubsub.Client {
	t.Helper()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })
	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	client, err := pubsub.NewClient(context.Background(), "scribe-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestPublishAndConsume(t *testing.T) {
	client := newTestClient(t)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topic, err := client.CreateTopic(ctx, "jobs")
	require.NoError(t, err)
	sub, err := client.CreateSubscription(ctx, "jobs-worker", pubsub.SubscriptionConfig{Topic: topic})
	require.NoError(t, err)

	pub, err := NewPublisher(topic)
	require.NoError(t, err)
	defer pub.Stop()
	_, err = pub.Publish(ctx, domain.QueueMessage{JobID: "job-1", IsRegeneration: true, PromptAdjustment: "plus court"})
	require.NoError(t, err)

	var (
		mu  sync.Mutex
		got []orchestrator.Delivery
	)
	runCtx, stop := context.WithCancel(ctx)
	consumer, err := NewConsumer(sub, handlerFunc(func(_ context.Context, d orchestrator.Delivery) orchestrator.Result {
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
		stop()
		return orchestrator.Result{MessageID: d.MessageID, Outcome: orchestrator.Completed}
	}), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, sub.ReceiveSettings.MaxOutstandingMessages)

	require.NoError(t, consumer.Run(runCtx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	var msg domain.QueueMessage
	require.NoError(t, json.Unmarshal(got[0].Body, &msg))
	assert.Equal(t, "job-1", msg.JobID)
	assert.True(t, msg.IsRegeneration)
	assert.NotEmpty(t, got[0].MessageID)
}

func TestPublishRejectsEmptyJob(t *testing.T) {
	client := newTestClient(t)
	topic, err := client.CreateTopic(context.Background(), "jobs")
	require.NoError(t, err)
	pub, err := NewPublisher(topic)
	require.NoError(t, err)
	defer pub.Stop()

	_, err = pub.Publish(context.Background(), domain.QueueMessage{})
	assert.ErrorIs(t, err, domain.ErrMalformedMessage)
}
