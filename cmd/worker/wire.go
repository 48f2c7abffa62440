package main

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	"cloud.google.com/go/pubsub"
	"golang.org/x/sync/errgroup"

	"scribe/internal/adapter/redisstore"
	"scribe/internal/adapter/repo"
	"scribe/internal/credit"
	"scribe/internal/domain"
	"scribe/internal/generation"
	"scribe/internal/http/handlers"
	"scribe/internal/http/httpapi"
	"scribe/internal/infra"
	"scribe/internal/infra/credentials"
	"scribe/internal/orchestrator"
	"scribe/internal/profile"
	"scribe/internal/providers/anthropic"
	"scribe/internal/providers/genai"
	"scribe/internal/providers/llm"
	"scribe/internal/queue"
	"scribe/internal/sink"
	"scribe/internal/source"
	"scribe/internal/storage"
)

func run(ctx context.Context, cfg *infra.Config, logger *infra.Logger) error {
	prof, err := profile.ForVariant(cfg.WorkerVariant, cfg.ArticleRequireCredits)
	if err != nil {
		return err
	}
	log := logger.With().Str("variant", string(prof.Variant)).Logger()
	logger = &log

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("worker: db connection failed: %w", err)
	}
	defer pool.Close()
	runner := infra.NewSQLRunner(pool, *logger)

	rdb, err := infra.NewRedisClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("worker: redis connection failed: %w", err)
	}
	if rdb != nil {
		defer rdb.Close()
	} else {
		logger.Warn().Msg("worker: REDIS_ADDR not set, result store and job lock disabled")
	}

	uploads, results, closeBlobs, err := newBlobStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeBlobs()

	completer, model, err := newCompleter(ctx, cfg, credentials.NewStore(runner), prof, logger)
	if err != nil {
		return err
	}
	gen, err := generation.NewClient(generation.Options{
		Completer:   completer,
		Model:       model,
		BackoffUnit: cfg.GenerationBackoffUnit,
		Logger:      logger,
	})
	if err != nil {
		return err
	}

	var (
		resultStore domain.ResultStore
		locker      orchestrator.JobLocker
		deadLetter  orchestrator.DeadLetter
	)
	checks := []handlers.Check{{Name: "postgres", Ping: runner.Ping}}
	if rdb != nil {
		resultStore = redisstore.NewResultStore(rdb)
		locker = redisstore.NewJobLocker(rdb, cfg.JobLockTTL, logger)
		checks = append(checks, handlers.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}

	resultSink, err := sink.New(sink.Options{
		Profile: prof,
		Blobs:   results,
		Results: resultStore,
		TTL:     cfg.ResultTTL,
		Logger:  logger,
	})
	if err != nil {
		return err
	}

	var (
		psClient *pubsub.Client
		sub      *pubsub.Subscription
	)
	if cfg.PubSubProjectID != "" {
		psClient, err = infra.NewPubSubClient(ctx, cfg)
		if err != nil {
			return err
		}
		defer psClient.Close()

		if cfg.PubSubDeadLetterTopic != "" {
			topic, err := infra.EnsureTopic(ctx, psClient, cfg.PubSubDeadLetterTopic)
			if err != nil {
				return err
			}
			pub, err := queue.NewPublisher(topic)
			if err != nil {
				return err
			}
			defer pub.Stop()
			deadLetter = pub
		}
		if cfg.PubSubSubscription != "" {
			var topic *pubsub.Topic
			if cfg.PubSubTopic != "" {
				if topic, err = infra.EnsureTopic(ctx, psClient, cfg.PubSubTopic); err != nil {
					return err
				}
			}
			if sub, err = infra.EnsureSubscription(ctx, psClient, cfg.PubSubSubscription, topic); err != nil {
				return err
			}
		}
	}

	orch, err := orchestrator.New(orchestrator.Options{
		Profile:           prof,
		Jobs:              repo.NewJobRepository(runner),
		Gate:              credit.NewGate(repo.NewCreditRepository(runner), logger),
		Generator:         gen,
		Source:            source.NewLoader(uploads, logger),
		Sink:              resultSink,
		Locker:            locker,
		DeadLetter:        deadLetter,
		GenerationTimeout: cfg.GenerationTimeout,
		Logger:            logger,
	})
	if err != nil {
		return err
	}

	app := handlers.NewApp(orch, logger, checks...)
	app.DeliveryTimeout = cfg.DeliveryTimeout
	server := infra.NewHTTPServer(cfg, httpapi.NewRouter(app, logger))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", server.Addr()).Msg("worker: http listening")
		return server.Run(gctx)
	})
	if sub != nil {
		consumer, err := queue.NewConsumer(sub, orch, logger)
		if err != nil {
			return err
		}
		g.Go(func() error { return consumer.Run(gctx) })
	} else {
		logger.Info().Msg("worker: no subscription configured, accepting push and batch deliveries only")
	}
	logger.Info().Str("provider", gen.Provider()).Str("model", model).Msg("worker: started")
	return g.Wait()
}

func newBlobStores(ctx context.Context, cfg *infra.Config) (uploads, results domain.BlobStore, closeFn func(), err error) {
	if cfg.BlobBackend == infra.BlobBackendGCS {
		client, err := storage.NewGCSClient(ctx, cfg.GCSCredentialsJSON)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("worker: gcs client: %w", err)
		}
		up, err := storage.NewGCSStore(client, cfg.UploadsBucket)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		res, err := storage.NewGCSStore(client, cfg.ResultsBucket)
		if err != nil {
			_ = client.Close()
			return nil, nil, nil, err
		}
		return up, res, func() { _ = client.Close() }, nil
	}

	root := cfg.StoragePath
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	up, err := storage.NewFileStore(filepath.Join(root, cfg.UploadsBucket))
	if err != nil {
		return nil, nil, nil, err
	}
	res, err := storage.NewFileStore(filepath.Join(root, cfg.ResultsBucket))
	if err != nil {
		return nil, nil, nil, err
	}
	return up, res, func() {}, nil
}

// newCompleter builds the configured provider. A key missing from the
// environment is looked up in integration_tokens.
func newCompleter(ctx context.Context, cfg *infra.Config, creds *credentials.Store, prof profile.Profile, logger *infra.Logger) (llm.Completer, string, error) {
	httpClient := &http.Client{Timeout: cfg.GenerationTimeout}

	switch cfg.GenerationProvider {
	case infra.ProviderGemini:
		key := resolveKey(ctx, creds, credentials.ProviderGemini, cfg.GeminiAPIKey, logger)
		client, err := genai.NewClient(genai.Options{
			APIKey:     key,
			BaseURL:    cfg.GeminiBaseURL,
			Model:      cfg.GeminiModel,
			HTTPClient: httpClient,
			Logger:     logger,
		})
		if err != nil {
			return nil, "", fmt.Errorf("worker: failed to configure gemini client: %w", err)
		}
		return client, client.Model(), nil
	default:
		key := resolveKey(ctx, creds, credentials.ProviderAnthropic, cfg.AnthropicAPIKey, logger)
		model := cfg.AnthropicModel
		if model == "" {
			model = prof.DefaultModel
		}
		return anthropic.NewClient(anthropic.Options{
			APIKey:     key,
			BaseURL:    cfg.AnthropicBaseURL,
			Model:      model,
			HTTPClient: httpClient,
			Logger:     logger,
		}), model, nil
	}
}

func resolveKey(ctx context.Context, creds *credentials.Store, provider, configured string, logger *infra.Logger) string {
	key, err := creds.Resolve(ctx, provider, configured)
	if err != nil {
		logger.Warn().Err(err).Str("provider", provider).Msg("worker: failed to load api key from store")
		return configured
	}
	if key == "" {
		logger.Warn().Str("provider", provider).Msg("worker: api key missing, generations will fail as not configured")
	}
	return key
}
