package main

import (
	"context"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/metric"
	lumberjack "gopkg.in/natefinch/lumberjack.v2"

	"log/slog"

	"shopassist/internal/assistant"
	"shopassist/internal/catalog"
	"shopassist/internal/config"
	"shopassist/internal/httpserver"
	"shopassist/internal/llm"
	"shopassist/internal/search"
	"shopassist/internal/session"
	"shopassist/internal/telemetry"
	"shopassist/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFile)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, meter, telemetryCleanup, err := telemetry.Init(ctx)
	if err != nil {
		log.Fatalf("failed to init telemetry: %v", err)
	}
	defer telemetryCleanup()

	metrics, err := telemetry.NewMetrics(meter)
	if err != nil {
		log.Fatalf("failed to register metrics: %v", err)
	}

	catalogStore, err := catalog.NewSQLiteStore(cfg.CatalogDBPath)
	if err != nil {
		log.Fatalf("failed to open catalog: %v", err)
	}
	defer catalogStore.Close()
	if err := catalogStore.Seed(ctx); err != nil {
		log.Fatalf("failed to seed catalog: %v", err)
	}

	searchCache, err := search.NewCache(catalogStore, cfg.SearchCacheSize)
	if err != nil {
		log.Fatalf("failed to create search cache: %v", err)
	}

	sessions := session.NewStore(session.Config{
		TTL:           cfg.SessionTTL,
		SweepInterval: cfg.SweepInterval,
		Logger:        logger,
	})
	sessions.Start(ctx)
	defer sessions.Stop()

	if err := registerGauges(meter, searchCache, sessions); err != nil {
		log.Fatalf("failed to register gauges: %v", err)
	}

	httpClient := transport.NewHTTPClient(cfg.RequestTimeout)
	llmClient := llm.NewOpenRouterClient(cfg.OpenRouter, httpClient, logger)

	service := assistant.NewService(assistant.Deps{
		Sessions:  sessions,
		Search:    searchCache,
		Generator: llmClient,
		Logger:    logger,
		Metrics:   metrics,
		Tracer:    tracer,
	})

	router := httpserver.NewRouter(httpserver.RouterDeps{
		Logger:    logger,
		Assistant: httpserver.NewAssistantHandler(service, logger),
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// registerGauges exposes cache and session occupancy as observable gauges.
func registerGauges(meter metric.Meter, cache *search.Cache, sessions *session.Store) error {
	_, err := meter.Int64ObservableGauge("search_cache.entries",
		metric.WithDescription("live entries in the search cache"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(cache.Stats().Entries))
			return nil
		}))
	if err != nil {
		return err
	}
	_, err = meter.Int64ObservableGauge("sessions.live",
		metric.WithDescription("sessions currently held in memory"),
		metric.WithInt64Callback(func(ctx context.Context, o metric.Int64Observer) error {
			o.Observe(int64(sessions.Len()))
			return nil
		}))
	return err
}

func newLogger(level, file string) *slog.Logger {
	slogLevel := slog.LevelInfo
	switch level {
	case "debug":
		slogLevel = slog.LevelDebug
	case "info":
		slogLevel = slog.LevelInfo
	case "warn":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	}

	var out io.Writer = os.Stdout
	if file != "" {
		out = &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28,
			Compress:   true,
		}
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: slogLevel}))
}
