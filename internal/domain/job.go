package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Variant selects which text artifact a worker produces.
type Variant string

const (
	VariantArticle Variant = "article"
	VariantTitre   Variant = "titre"
)

// JobStatus enumerates job lifecycle states.
type JobStatus string

const (
	JobStatusGenerating JobStatus = "GENERATING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job is one unit of requested text generation.
type Job struct {
	ID            string
	UserID        string
	UserGroup     string
	FileName      string
	FileExtension string
	SourceKey     string
	Status        JobStatus
	Result        json.RawMessage
	ErrorMessage  string
	UpdatedAt     time.Time
	CompletedAt   *time.Time
}

// JobUpdate describes one status write. Result is only persisted when non-empty.
type JobUpdate struct {
	Status       JobStatus
	Result       []byte
	ErrorMessage string
}

// ResultField returns a string field from the previously stored result, or "".
func (j *Job) ResultField(key string) string {
	if j == nil || len(j.Result) == 0 {
		return ""
	}
	var fields map[string]any
	if err := json.Unmarshal(j.Result, &fields); err != nil {
		return ""
	}
	if v, ok := fields[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// FileNameOr returns the job's file name or the fallback when unset.
func (j *Job) FileNameOr(fallback string) string {
	if j == nil || strings.TrimSpace(j.FileName) == "" {
		return fallback
	}
	return j.FileName
}

// FileExtensionOr returns the job's file extension or the fallback when unset.
func (j *Job) FileExtensionOr(fallback string) string {
	if j == nil || strings.TrimSpace(j.FileExtension) == "" {
		return fallback
	}
	return strings.TrimPrefix(strings.TrimSpace(j.FileExtension), ".")
}
