package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// QueueMessage is the JSON body delivered by the job queue.
type QueueMessage struct {
	JobID            string `json:"job_id"`
	UserID           string `json:"user_id,omitempty"`
	TranscriptText   string `json:"transcript_text,omitempty"`
	IsRegeneration   bool   `json:"is_regeneration,omitempty"`
	PromptAdjustment string `json:"prompt_adjustment,omitempty"`
}

// DecodeQueueMessage parses a queue body. Bodies that are not JSON objects or
// carry no job_id wrap ErrMalformedMessage.
func DecodeQueueMessage(body []byte) (QueueMessage, error) {
	var msg QueueMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return QueueMessage{}, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}
	msg.JobID = strings.TrimSpace(msg.JobID)
	msg.UserID = strings.TrimSpace(msg.UserID)
	if msg.JobID == "" {
		return QueueMessage{}, fmt.Errorf("%w: job_id is required", ErrMalformedMessage)
	}
	return msg, nil
}

// KnownUserID reports whether the message names a concrete user.
func (m QueueMessage) KnownUserID() bool {
	return m.UserID != "" && m.UserID != "unknown"
}
