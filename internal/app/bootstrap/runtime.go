package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	cacheadapter "github.com/veribank/faceauth/internal/adapters/cache"
	engineadapter "github.com/veribank/faceauth/internal/adapters/engine"
	eventadapter "github.com/veribank/faceauth/internal/adapters/events"
	httpadapter "github.com/veribank/faceauth/internal/adapters/http"
	"github.com/veribank/faceauth/internal/adapters/postgres"
	"github.com/veribank/faceauth/internal/application"
	"github.com/veribank/faceauth/internal/domain"
	"github.com/veribank/faceauth/internal/ports"
)

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)
	logger.Info("bootstrapping face auth service", "http_port", cfg.HTTPPort, "engine_url", cfg.EngineBaseURL)

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := pool.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}

	if err := postgres.RunMigrations(ctx, pool); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	repos := postgres.NewRepositories(pool)
	sessions := cacheadapter.NewRedisLivenessSessionStore(redisClient)
	engineClient := engineadapter.NewClient(engineadapter.Options{
		BaseURL:         cfg.EngineBaseURL,
		DefaultTimeout:  cfg.EngineTimeout,
		LivenessTimeout: cfg.LivenessTimeout,
		Retry: engineadapter.RetryPolicy{
			MaxAttempts: cfg.EngineRetryMax,
			Backoff:     cfg.EngineRetryBackoff,
		},
		Logger: logger,
	})

	challenges := make([]domain.Challenge, 0, len(cfg.DefaultChallenges))
	for _, c := range cfg.DefaultChallenges {
		challenges = append(challenges, domain.Challenge(c))
	}

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			MinRequiredImages:        cfg.MinRequiredImages,
			EnrollDetectionThreshold: cfg.EnrollDetectionThreshold,
			LoginDetectionThreshold:  cfg.LoginDetectionThreshold,
			SpoofingThreshold:        cfg.SpoofingThreshold,
			SimilarityThreshold:      cfg.SimilarityThreshold,
			LivenessThreshold:        cfg.LivenessThreshold,
			ModelName:                cfg.ModelName,
			DetectorBackend:          cfg.DetectorBackend,
			EmbeddingVersion:         cfg.EmbeddingVersion,
			SessionTTL:               cfg.LivenessSessionTTL,
			SessionMaxAttempts:       cfg.LivenessMaxAttempts,
			DefaultChallenges:        challenges,
		},
		Logger:     logger,
		Profiles:   repos.Profiles,
		Embeddings: repos.Embeddings,
		Audit:      repos.Audit,
		Outbox:     repos.Outbox,
		Sessions:   sessions,
		Engine:     engineClient,
	})

	handler := httpadapter.NewHandler(svc)
	router := httpadapter.NewRouter(handler)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	var publisher ports.EventPublisher
	var closePublisher func() error
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, nil)
		if err != nil {
			_ = sqlDB.Close()
			_ = redisClient.Close()
			return nil, fmt.Errorf("init kafka publisher: %w", err)
		}
		publisher = kafkaPublisher
		closePublisher = kafkaPublisher.Close
	} else {
		logger.Warn("no kafka brokers configured; events go to the log")
		publisher = eventadapter.NewLoggingPublisher(logger)
	}

	outbox := eventadapter.NewOutboxWorker(
		logger,
		repos.Outbox,
		publisher,
		cfg.OutboxPollInterval,
		cfg.OutboxBatchSize,
		cfg.OutboxClaimTTL,
		cfg.OutboxMaxRetries,
	)

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		outbox:     outbox,
		cleanupFn: func(ctx context.Context) {
			if closePublisher != nil {
				_ = closePublisher()
			}
			_ = redisClient.Close()
			_ = sqlDB.Close()
		},
	}, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errCh:
		r.logger.Error("server failure", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.cleanupFn(shutdownCtx)
	return nil
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	return nil
}
