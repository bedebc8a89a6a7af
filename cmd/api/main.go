package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/documentor-api/internal/application/notification"
	"github.com/documentor-api/internal/config"
	"github.com/documentor-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/documentor-api/internal/infrastructure/jwt"
	"github.com/documentor-api/internal/infrastructure/kv"
	"github.com/documentor-api/internal/infrastructure/metrics"
	s3infra "github.com/documentor-api/internal/infrastructure/s3"
	"github.com/documentor-api/internal/infrastructure/smtp"
	"github.com/documentor-api/internal/infrastructure/sns"
	transporthttp "github.com/documentor-api/internal/transport/http"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	envErr := godotenv.Load()
	cfg := config.Load()
	setupLogger(cfg)
	if envErr != nil {
		slog.Info("no .env file found, reading from environment")
	}
	if err := run(cfg); err != nil {
		slog.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func setupLogger(cfg *config.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(os.Stdout, opts)
	if cfg.IsProduction() {
		h = slog.NewJSONHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := dynamo.LoadAWSConfig(ctx, cfg)
	if err != nil {
		return err
	}

	// Bootstrap DynamoDB tables (creates them if they don't exist).
	dynamoClient := dynamo.NewClient(awsCfg, cfg)
	dynamo.Bootstrap(ctx, dynamoClient, cfg.DynamoTables)

	store, err := newKVStore(ctx, cfg)
	if err != nil {
		return err
	}

	jwtProvider, err := jwtinfra.NewProvider(cfg)
	if err != nil {
		return fmt.Errorf("jwt provider: %w", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sender, err := newSender(cfg)
	if err != nil {
		return err
	}

	tables := cfg.DynamoTables
	deps := &transporthttp.Deps{
		UserRepo:         dynamo.NewUserRepo(dynamoClient, tables.Users, tables.UserEmails),
		AppRepo:          dynamo.NewAppRepo(dynamoClient, tables.Apps),
		PackageRepo:      dynamo.NewPackageRepo(dynamoClient, tables.Packages),
		APIDocRepo:       dynamo.NewAPIDocRepo(dynamoClient, tables.APIDocs),
		TransactionRepo:  dynamo.NewTransactionRepo(dynamoClient, tables.Transactions),
		SubscriptionRepo: dynamo.NewSubscriptionRepo(dynamoClient, tables.Subscriptions),
		HistoryRepo:      dynamo.NewHistoryRepo(dynamoClient, tables.Histories),
		LogRepo:          dynamo.NewLogRepo(dynamoClient, tables.Logs),
		KV:               store,
		Notifier: notification.NewService(notification.ServiceDeps{
			Sender:  sender,
			Timeout: cfg.EmailSendTimeout,
			Metrics: m,
		}),
		JWTProvider: jwtProvider,
		S3Store:     s3infra.NewStore(s3infra.NewClient(awsCfg, cfg), cfg.S3BucketName),
		Metrics:     m,
		Gatherer:    reg,
	}

	router, err := transporthttp.NewRouter(ctx, cfg, deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.AppPort, "env", cfg.AppEnv, "kv", cfg.KVBackend, "notifier", cfg.Notifier)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

func newKVStore(ctx context.Context, cfg *config.Config) (kv.Store, error) {
	if strings.EqualFold(cfg.KVBackend, "redis") {
		s := kv.NewRedisStore(kv.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), "documentor")
		if err := s.Ping(ctx); err != nil {
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return s, nil
	}
	s := kv.NewMemoryStore(cfg.KVMemoryCapacity, time.Now)
	go s.Run(ctx, time.Minute)
	return s, nil
}

func newSender(cfg *config.Config) (notification.Sender, error) {
	switch cfg.Notifier {
	case "sns":
		n, err := sns.NewNotifier(cfg)
		if err != nil {
			return nil, fmt.Errorf("sns notifier: %w", err)
		}
		return n, nil
	case "log":
		slog.Warn("NOTIFIER=log: login codes are written to the log")
		return notification.LogSender{}, nil
	default:
		return smtp.NewMailer(cfg), nil
	}
}
