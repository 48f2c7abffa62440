package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("WORKER_VARIANT", "")
	t.Setenv("GENERATION_PROVIDER", "")
	t.Setenv("BLOB_BACKEND", "")
	t.Setenv("GENERATION_BACKOFF_UNIT_MS", "")
	t.Setenv("RESULT_TTL_DAYS", "")
	t.Setenv("ARTICLE_REQUIRE_CREDITS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.WorkerVariant != "titre" {
		t.Fatalf("WorkerVariant mismatch: got %q want %q", cfg.WorkerVariant, "titre")
	}
	if cfg.GenerationProvider != ProviderAnthropic {
		t.Fatalf("GenerationProvider mismatch: got %q", cfg.GenerationProvider)
	}
	if cfg.BlobBackend != BlobBackendFilesystem {
		t.Fatalf("BlobBackend mismatch: got %q", cfg.BlobBackend)
	}
	if cfg.GenerationBackoffUnit != time.Second {
		t.Fatalf("GenerationBackoffUnit mismatch: got %s", cfg.GenerationBackoffUnit)
	}
	if cfg.ResultTTL != 30*24*time.Hour {
		t.Fatalf("ResultTTL mismatch: got %s", cfg.ResultTTL)
	}
	if !cfg.ArticleRequireCredits {
		t.Fatal("ArticleRequireCredits should default to true")
	}
}

func TestLoadConfigRequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when DATABASE_URL is missing")
	}
}

func TestLoadConfigRejectsUnknownValues(t *testing.T) {
	cases := map[string]string{
		"WORKER_VARIANT":      "podcast",
		"GENERATION_PROVIDER": "openai",
		"BLOB_BACKEND":        "s3",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv("DATABASE_URL", "postgres://example")
			t.Setenv(key, value)
			if _, err := LoadConfig(); err == nil {
				t.Fatalf("expected error for %s=%s", key, value)
			}
		})
	}
}

func TestLoadConfigPubSubNeedsProject(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("PUBSUB_SUBSCRIPTION", "titre-jobs")
	t.Setenv("PUBSUB_PROJECT_ID", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error when PUBSUB_PROJECT_ID is missing")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("WORKER_VARIANT", "Article")
	t.Setenv("ARTICLE_REQUIRE_CREDITS", "false")
	t.Setenv("GENERATION_BACKOFF_UNIT_MS", "5")
	t.Setenv("JOB_LOCK_TTL_SECONDS", "30")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.WorkerVariant != "article" {
		t.Fatalf("WorkerVariant mismatch: got %q", cfg.WorkerVariant)
	}
	if cfg.ArticleRequireCredits {
		t.Fatal("ArticleRequireCredits should be false")
	}
	if cfg.GenerationBackoffUnit != 5*time.Millisecond {
		t.Fatalf("GenerationBackoffUnit mismatch: got %s", cfg.GenerationBackoffUnit)
	}
	if cfg.JobLockTTL != 30*time.Second {
		t.Fatalf("JobLockTTL mismatch: got %s", cfg.JobLockTTL)
	}
}

func TestLoadConfigDeliveryTimeoutOutlastsGeneration(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("GENERATION_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_WRITE_TIMEOUT_SECONDS", "")
	t.Setenv("HTTP_DELIVERY_TIMEOUT_SECONDS", "")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.DeliveryTimeout <= cfg.GenerationTimeout {
		t.Fatalf("delivery timeout %s does not outlast generation timeout %s", cfg.DeliveryTimeout, cfg.GenerationTimeout)
	}
	if cfg.DeliveryTimeout != 3*time.Minute {
		t.Fatalf("DeliveryTimeout mismatch: got %s", cfg.DeliveryTimeout)
	}

	t.Setenv("HTTP_DELIVERY_TIMEOUT_SECONDS", "60")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for a delivery timeout shorter than the generation timeout")
	}
}
