package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"scribe/internal/domain"
)

// NewGCSClient builds a storage client. Explicit credentials JSON wins over
// application default credentials.
func NewGCSClient(ctx context.Context, credentialsJSON string) (*storage.Client, error) {
	if strings.TrimSpace(credentialsJSON) != "" {
		return storage.NewClient(ctx, option.WithCredentialsJSON([]byte(credentialsJSON)))
	}
	return storage.NewClient(ctx)
}

// GCSStore keeps blobs in one Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
}

func NewGCSStore(client *storage.Client, bucket string) (*GCSStore, error) {
	if client == nil {
		return nil, errors.New("storage: gcs client is required")
	}
	bucket = strings.TrimSpace(bucket)
	if bucket == "" {
		return nil, errors.New("storage: bucket is required")
	}
	return &GCSStore{client: client, bucket: bucket}, nil
}

func (s *GCSStore) Bucket() string { return s.bucket }

// Write uploads data to key and returns the cleaned key.
func (s *GCSStore) Write(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	wc := s.client.Bucket(s.bucket).Object(cleanKey).NewWriter(ctx)
	if contentType != "" {
		wc.ContentType = contentType
	}
	if _, err := wc.Write(data); err != nil {
		_ = wc.Close()
		return "", fmt.Errorf("storage: write gs://%s/%s: %w", s.bucket, cleanKey, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("storage: close gs://%s/%s: %w", s.bucket, cleanKey, err)
	}
	return cleanKey, nil
}

// Read downloads key, returning domain.ErrNotFound for a missing object.
func (s *GCSStore) Read(ctx context.Context, key string) ([]byte, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return nil, err
	}
	rc, err := s.client.Bucket(s.bucket).Object(cleanKey).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("storage: gs://%s/%s: %w", s.bucket, cleanKey, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: open gs://%s/%s: %w", s.bucket, cleanKey, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("storage: read gs://%s/%s: %w", s.bucket, cleanKey, err)
	}
	return data, nil
}

var _ domain.BlobStore = (*GCSStore)(nil)
