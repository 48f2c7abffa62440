package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	BlobBackendFilesystem = "filesystem"
	BlobBackendGCS        = "gcs"
)

// Config represents worker configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	WorkerVariant         string
	ArticleRequireCredits bool

	GenerationProvider    string
	GenerationBackoffUnit time.Duration
	GenerationTimeout     time.Duration
	AnthropicAPIKey       string
	AnthropicModel        string
	AnthropicBaseURL      string
	GeminiAPIKey          string
	GeminiModel           string
	GeminiBaseURL         string

	BlobBackend        string
	StoragePath        string
	UploadsBucket      string
	ResultsBucket      string
	GCSCredentialsJSON string

	PubSubProjectID       string
	PubSubSubscription    string
	PubSubTopic           string
	PubSubDeadLetterTopic string
	PubSubCredentialsJSON string

	JobLockTTL time.Duration
	ResultTTL  time.Duration

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	// DeliveryTimeout bounds the write deadline of one push or batch record,
	// overriding HTTPWriteTimeout on the intake routes.
	DeliveryTimeout time.Duration
}

const (
	// deliveryMargin covers the source read, status writes and sink around
	// one generation.
	deliveryMargin    = time.Minute
	unboundedDelivery = 15 * time.Minute
)

// LoadConfig loads configuration from environment variables and applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		WorkerVariant:         strings.ToLower(getEnv("WORKER_VARIANT", "titre")),
		ArticleRequireCredits: getEnvBool("ARTICLE_REQUIRE_CREDITS", true),

		GenerationProvider:    strings.ToLower(getEnv("GENERATION_PROVIDER", ProviderAnthropic)),
		GenerationBackoffUnit: getEnvDuration("GENERATION_BACKOFF_UNIT_MS", time.Millisecond, 1000),
		GenerationTimeout:     getEnvDuration("GENERATION_TIMEOUT_SECONDS", time.Second, 120),
		AnthropicAPIKey:       os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:        os.Getenv("ANTHROPIC_MODEL"),
		AnthropicBaseURL:      getEnv("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		GeminiAPIKey:          os.Getenv("GEMINI_API_KEY"),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiBaseURL:         getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),

		BlobBackend:        strings.ToLower(getEnv("BLOB_BACKEND", BlobBackendFilesystem)),
		StoragePath:        getEnv("STORAGE_PATH", "./storage"),
		UploadsBucket:      getEnv("UPLOADS_BUCKET", "uploads"),
		ResultsBucket:      getEnv("RESULTS_BUCKET", "results"),
		GCSCredentialsJSON: os.Getenv("GCS_CREDENTIALS_JSON"),

		PubSubProjectID:       os.Getenv("PUBSUB_PROJECT_ID"),
		PubSubSubscription:    os.Getenv("PUBSUB_SUBSCRIPTION"),
		PubSubTopic:           os.Getenv("PUBSUB_TOPIC"),
		PubSubDeadLetterTopic: os.Getenv("PUBSUB_DEAD_LETTER_TOPIC"),
		PubSubCredentialsJSON: os.Getenv("PUBSUB_CREDENTIALS_JSON"),

		JobLockTTL: getEnvDuration("JOB_LOCK_TTL_SECONDS", time.Second, 600),
		ResultTTL:  getEnvDuration("RESULT_TTL_DAYS", 24*time.Hour, 30),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 30)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		DeliveryTimeout:  getEnvDuration("HTTP_DELIVERY_TIMEOUT_SECONDS", time.Second, 0),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	switch cfg.WorkerVariant {
	case "article", "titre":
	default:
		return nil, fmt.Errorf("WORKER_VARIANT %q is not supported", cfg.WorkerVariant)
	}

	switch cfg.GenerationProvider {
	case ProviderAnthropic, ProviderGemini:
	default:
		return nil, fmt.Errorf("GENERATION_PROVIDER %q is not supported", cfg.GenerationProvider)
	}

	switch cfg.BlobBackend {
	case BlobBackendFilesystem:
	case BlobBackendGCS:
		if cfg.UploadsBucket == "" || cfg.ResultsBucket == "" {
			return nil, fmt.Errorf("UPLOADS_BUCKET and RESULTS_BUCKET are required for the gcs backend")
		}
	default:
		return nil, fmt.Errorf("BLOB_BACKEND %q is not supported", cfg.BlobBackend)
	}

	if cfg.PubSubSubscription != "" && cfg.PubSubProjectID == "" {
		return nil, fmt.Errorf("PUBSUB_PROJECT_ID is required when PUBSUB_SUBSCRIPTION is set")
	}

	switch {
	case cfg.DeliveryTimeout <= 0 && cfg.GenerationTimeout > 0:
		cfg.DeliveryTimeout = cfg.GenerationTimeout + deliveryMargin
	case cfg.DeliveryTimeout <= 0:
		cfg.DeliveryTimeout = unboundedDelivery
	case cfg.GenerationTimeout > 0 && cfg.DeliveryTimeout <= cfg.GenerationTimeout:
		return nil, fmt.Errorf("HTTP_DELIVERY_TIMEOUT_SECONDS must exceed GENERATION_TIMEOUT_SECONDS")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, unit time.Duration, fallback int) time.Duration {
	return unit * time.Duration(getEnvInt(key, fallback))
}
