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
	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/queue"
	"github.com/hszk-dev/cliprelay/internal/infrastructure/telegram"
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

	intakeSvc := usecase.NewIntakeService(queueClient)
	poller := telegram.NewPoller(bot, cfg.Telegram.PollTimeout)

	health := handler.NewHealthHandler(map[string]handler.Check{
		"rabbitmq": func(context.Context) error { return queueClient.Ping() },
	})
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Bot.Port),
		Handler:           setupRouter(logger, health),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.Int("port", cfg.Bot.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Bot.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		err := poller.Run(gctx, func(ctx context.Context, msg model.InboundMessage) {
			if _, err := intakeSvc.HandleMessage(ctx, msg); err != nil {
				logger.Error("failed to queue link",
					slog.Int64("chat_id", msg.ChatID),
					slog.Int("message_id", msg.MessageID),
					slog.String("error", err.Error()),
				)
			}
		})
		if err != nil {
			return err
		}
		if gctx.Err() == nil {
			return errors.New("telegram update stream ended")
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("bot stopped")
	return nil
}

func setupRouter(logger *slog.Logger, health *handler.HealthHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))

	r.Get("/health", health.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
