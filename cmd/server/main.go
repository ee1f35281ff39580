package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hiroki-koketsu/todo-tracker/internal/config"
	"github.com/hiroki-koketsu/todo-tracker/internal/handler"
	"github.com/hiroki-koketsu/todo-tracker/internal/repository"
	"github.com/hiroki-koketsu/todo-tracker/internal/telemetry"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

func main() {
	// Create a basic logger for startup (before OTel is initialized)
	startupLogger := telemetry.NewJSONLogger(os.Stdout, "info")

	cfg, err := config.Load()
	if err != nil {
		startupLogger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	startupLogger = telemetry.NewJSONLogger(os.Stdout, cfg.LogLevel)
	startupLogger.Info("starting application",
		slog.String("service", cfg.ServiceName),
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("store", cfg.StoreDriver),
	)

	ctx := context.Background()
	logger := startupLogger

	if cfg.TelemetryEnabled {
		tp, err := telemetry.InitTracerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			startupLogger.Error("failed to initialize tracer provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := tp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown tracer provider", slog.Any("error", err))
			}
		}()

		mp, err := telemetry.InitMeterProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			startupLogger.Error("failed to initialize meter provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := mp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown meter provider", slog.Any("error", err))
			}
		}()

		// Initialized after the other providers for log-trace correlation
		lp, otelLogger, err := telemetry.InitLoggerProvider(ctx, cfg.ServiceName, cfg.OTLPEndpoint, cfg.Environment)
		if err != nil {
			startupLogger.Error("failed to initialize logger provider", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := lp.Shutdown(ctx); err != nil {
				startupLogger.Error("failed to shutdown logger provider", slog.Any("error", err))
			}
		}()
		logger = otelLogger
	}

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		startupLogger.Error("failed to open task store", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeStore()

	meter := otel.Meter(cfg.ServiceName)
	metrics, err := telemetry.NewMetrics(meter, store.Count)
	if err != nil {
		logger.Error("failed to create metrics", slog.Any("error", err))
		os.Exit(1)
	}

	taskHandler := handler.NewTaskHandler(store, logger, metrics)
	r := handler.NewRouter(taskHandler, cfg.AllowedOrigins())

	otelHandler := otelhttp.NewHandler(r, "http-server",
		otelhttp.WithFilter(func(r *http.Request) bool {
			// Skip tracing for liveness probes
			return r.URL.Path != "/health" && r.URL.Path != "/"
		}),
	)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      otelHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}

	logger.Info("server stopped")
}

// openStore builds the configured task store. The returned func releases it.
func openStore(ctx context.Context, cfg *config.Config) (repository.TaskStore, func(), error) {
	if cfg.StoreDriver == config.DriverMemory {
		return repository.NewMemoryTaskStore(), func() {}, nil
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := repository.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}

	store := repository.NewMongoTaskStore(client.Database(cfg.DatabaseName))
	if err := store.EnsureSchema(connectCtx); err != nil {
		disconnect(client)
		return nil, nil, err
	}

	return store, func() { disconnect(client) }, nil
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = client.Disconnect(ctx)
}
