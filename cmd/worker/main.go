package main

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

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/hszk-dev/cliprelay/internal/api/handler"
	"github.com/hszk-dev/cliprelay/internal/api/middleware"
	"github.com/hszk-dev/cliprelay/internal/config"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/cache"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/extractor"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/queue"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/telegram"
	"github.com/hszk-dev/cliprelay/internal/probe"
	"github.com/hszk-dev/cliprelay/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Ensure temp directory exists
	if err := os.MkdirAll(cfg.Worker.TempDir, 0755); err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}

	backend, err := openCacheBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.close()
	logger.Info("cache backend ready", slog.String("backend", cfg.Cache.Backend))

	urls := cache.NewStore(backend.document("urls"), cache.StoreConfig{
		Name:    "urls",
		Backend: cfg.Cache.Backend,
		Expiry:  cache.ExpiryFromTTL(cfg.Cache.URLTTL),
	})
	contentIDs := cache.NewStore(backend.document("content_ids"), cache.StoreConfig{
		Name:    "content_ids",
		Backend: cfg.Cache.Backend,
		Expiry:  cache.ExpiryFromTTL(cfg.Cache.ContentIDTTL),
	})
	for _, store := range []*cache.Store{urls, contentIDs} {
		if err := store.Initialize(ctx); err != nil {
			return fmt.Errorf("failed to initialize %s cache: %w", store.Name(), err)
		}
	}

	queueCfg := queue.DefaultClientConfig(cfg.RabbitMQ.URL())
	queueCfg.MessageTTL = cfg.RabbitMQ.MessageTTL
	queueCfg.MaxBacklog = cfg.RabbitMQ.MaxBacklog
	queueClient, err := queue.NewClient(ctx, queueCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	defer queueClient.Close()
	logger.Info("connected to RabbitMQ")

	bot, err := telegram.NewBotAPI(telegram.ClientConfig{
		Token:       cfg.Telegram.Token,
		APIEndpoint: cfg.Telegram.APIEndpoint,
	})
	if err != nil {
		return err
	}
	logger.Info("authorized on telegram", slog.String("bot_username", bot.Self.UserName))

	ext := extractor.NewClient(extractor.ClientConfig{
		BaseURL: cfg.Extractor.BaseURL,
		Timeout: cfg.Extractor.Timeout,
	})

	relaySvc := usecase.NewRelayService(
		telegram.NewMessenger(bot),
		ext,
		newAnalyzer(cfg, ext),
		usecase.Caches{URLs: urls, ContentIDs: contentIDs},
		usecase.RelayServiceConfig{MaxRetries: cfg.Worker.MaxRetries},
	)

	checks := backend.checks
	checks["rabbitmq"] = func(context.Context) error { return queueClient.Ping() }
	cacheHandler := handler.NewCacheHandler(map[string]cache.MediaCache{
		urls.Name():       urls,
		contentIDs.Name(): contentIDs,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Worker.Port),
		Handler:           setupRouter(logger, handler.NewHealthHandler(checks), cacheHandler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// In-flight tasks outlive the signal by at most the shutdown timeout.
	taskCtx, cancelTasks := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelTasks()
	context.AfterFunc(ctx, func() {
		time.AfterFunc(cfg.Worker.ShutdownTimeout, cancelTasks)
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting ops server", slog.Int("port", cfg.Worker.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Worker.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		logger.Info("starting worker, consuming link tasks")
		err := queueClient.ConsumeLinkTasks(gctx, func(task repository.LinkTask) error {
			logger.Info("processing task",
				slog.String("task_id", task.ID.String()),
				slog.Int64("chat_id", task.ChatID),
				slog.Int("retry_count", task.RetryCount),
			)
			return relaySvc.ProcessLink(taskCtx, task)
		})
		if err != nil && gctx.Err() == nil {
			return fmt.Errorf("consumer error: %w", err)
		}
		logger.Info("shutting down worker")
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("worker stopped")
	return nil
}

// newAnalyzer returns nil when analysis is switched off.
func newAnalyzer(cfg *config.Config, ext *extractor.Client) repository.VideoAnalyzer {
	switch cfg.Analyzer.Mode {
	case config.AnalyzerRemote:
		return ext
	case config.AnalyzerLocal:
		pcfg := probe.DefaultFFprobeConfig()
		pcfg.FFprobePath = cfg.Analyzer.FFprobePath
		pcfg.TempDir = cfg.Worker.TempDir
		return probe.NewFFprobeAnalyzer(pcfg)
	default:
		return nil
	}
}

func setupRouter(logger *slog.Logger, health *handler.HealthHandler, cacheHandler *handler.CacheHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/cache", cacheHandler.Stats)
		r.Get("/cache/{store}", cacheHandler.Get)
		r.Delete("/cache/{store}", cacheHandler.Delete)
	})

	return r
}
