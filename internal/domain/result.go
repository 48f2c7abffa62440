package domain

import "time"

// ResultRecord mirrors a completed artifact into the expiring result store.
type ResultRecord struct {
	JobID      string    `json:"job_id"`
	UserID     string    `json:"user_id"`
	UserGroup  string    `json:"user_group,omitempty"`
	Variant    Variant   `json:"variant"`
	Artifact   Artifact  `json:"artifact"`
	StorageKey string    `json:"storage_key,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	TTL        int64     `json:"ttl"`
}
