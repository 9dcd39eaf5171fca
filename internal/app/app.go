package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/INOCcent-afk/productly-server/internal/auth"
	"github.com/INOCcent-afk/productly-server/internal/config"
	"github.com/INOCcent-afk/productly-server/internal/event"
	handler "github.com/INOCcent-afk/productly-server/internal/handler/http"
	"github.com/INOCcent-afk/productly-server/internal/repository/postgres"
	"github.com/INOCcent-afk/productly-server/internal/service"
	"github.com/INOCcent-afk/productly-server/internal/storage"
	"github.com/INOCcent-afk/productly-server/internal/storage/memory"
	"github.com/INOCcent-afk/productly-server/internal/storage/s3"
	"github.com/INOCcent-afk/productly-server/migrations"
	"github.com/INOCcent-afk/productly-server/pkg/database"
	"github.com/INOCcent-afk/productly-server/pkg/health"
	pkgkafka "github.com/INOCcent-afk/productly-server/pkg/kafka"
	"github.com/INOCcent-afk/productly-server/pkg/middleware"
)

// eventsTopic is the single topic all productly domain events land on.
const eventsTopic = "productly.events"

// App wires together all dependencies and runs the productly server.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize PostgreSQL connection pool.
	pgCfg := cfg.PostgresConfig()
	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	logger.Info("connected to PostgreSQL",
		slog.String("host", cfg.PostgresHost),
		slog.Int("port", cfg.PostgresPort),
		slog.String("database", cfg.PostgresDB),
	)
	database.RegisterPoolMetrics(pool, "productly")

	// Run database migrations.
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	logger.Info("database migrations completed")

	// Initialize Kafka producer.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers, eventsTopic)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.String("topic", eventsTopic),
	)

	// Image storage for profile uploads.
	store, err := newImageStorage(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("init image storage: %w", err)
	}
	logger.Info("image storage initialized", slog.String("driver", cfg.StorageDriver))

	// Build the dependency graph.
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTExpiry)
	userRepo := postgres.NewUserRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	reviewRepo := postgres.NewReviewRepository(pool)
	eventProducer := event.NewProducer(producer, logger)
	userService := service.NewUserService(userRepo, tokens, eventProducer, store, logger)
	productService := service.NewProductService(productRepo, reviewRepo, logger)
	reviewService := service.NewReviewService(reviewRepo, productRepo, eventProducer, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.RegisterCritical("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.RegisterNonCritical("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// HTTP router.
	router := handler.NewRouter(userService, productService, reviewService, tokens, healthHandler, logger, middleware.CORSConfig{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Environment:    cfg.Environment,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		producer:   producer,
		httpServer: httpServer,
	}, nil
}

func newImageStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageDriver {
	case "s3":
		return s3.New(ctx, s3.Config{
			Region:        cfg.S3Region,
			Bucket:        cfg.S3Bucket,
			Endpoint:      cfg.S3Endpoint,
			AccessKey:     cfg.S3AccessKey,
			SecretKey:     cfg.S3SecretKey,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return memory.New(fmt.Sprintf("http://localhost:%d", cfg.HTTPPort)), nil
	}
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components in the correct order:
// 1. HTTP server (drain in-flight requests)
// 2. Kafka producer (flush buffered events)
// 3. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// 1. Drain in-flight HTTP requests (5s budget).
	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 2. Close Kafka producer.
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// 3. Close PostgreSQL pool.
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
