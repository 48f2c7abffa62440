// Command regenerate queues a new pass over an existing job, optionally with
// user feedback on the previous result.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"scribe/internal/domain"
	"scribe/internal/infra"
	"scribe/internal/queue"
)

func main() {
	_ = godotenv.Load()

	var (
		jobFlag      string
		userFlag     string
		feedbackFlag string
		topicFlag    string
	)
	flag.StringVar(&jobFlag, "job", "", "job ID to regenerate")
	flag.StringVar(&userFlag, "user", "", "user ID (defaults to the job owner)")
	flag.StringVar(&feedbackFlag, "feedback", "", "what to change in the new result")
	flag.StringVar(&topicFlag, "topic", "", "Pub/Sub topic (defaults to PUBSUB_TOPIC)")
	flag.Parse()

	jobID := strings.TrimSpace(jobFlag)
	if jobID == "" {
		exitWithError(errors.New("-job is required"))
	}
	projectID := strings.TrimSpace(os.Getenv("PUBSUB_PROJECT_ID"))
	topicName := strings.TrimSpace(topicFlag)
	if topicName == "" {
		topicName = strings.TrimSpace(os.Getenv("PUBSUB_TOPIC"))
	}
	if projectID == "" || topicName == "" {
		exitWithError(errors.New("PUBSUB_PROJECT_ID and a topic (-topic or PUBSUB_TOPIC) are required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := infra.NewPubSubClient(ctx, &infra.Config{
		PubSubProjectID:       projectID,
		PubSubCredentialsJSON: os.Getenv("PUBSUB_CREDENTIALS_JSON"),
	})
	if err != nil {
		exitWithError(err)
	}
	defer client.Close()

	topic, err := infra.EnsureTopic(ctx, client, topicName)
	if err != nil {
		exitWithError(err)
	}
	pub, err := queue.NewPublisher(topic)
	if err != nil {
		exitWithError(err)
	}
	defer pub.Stop()

	id, err := pub.Publish(ctx, domain.QueueMessage{
		JobID:            jobID,
		UserID:           strings.TrimSpace(userFlag),
		IsRegeneration:   true,
		PromptAdjustment: strings.TrimSpace(feedbackFlag),
	})
	if err != nil {
		exitWithError(fmt.Errorf("failed to publish regeneration: %w", err))
	}
	fmt.Printf("Regeneration for job %s queued as message %s\n", jobID, id)
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
