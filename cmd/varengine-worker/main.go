package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kaoru0429/Prompt-Master/internal/config"
	"github.com/kaoru0429/Prompt-Master/internal/eval/cel"
	"github.com/kaoru0429/Prompt-Master/internal/eval/template"
	"github.com/kaoru0429/Prompt-Master/internal/form"
	"github.com/kaoru0429/Prompt-Master/internal/processor"
	"github.com/kaoru0429/Prompt-Master/internal/worker"
)

var (
	// Version is set at build time
	Version = "dev"
	// BuildTime is set at build time
	BuildTime = "unknown"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting render worker",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
		zap.String("worker_id", cfg.WorkerID),
	)

	// Log configuration (without sensitive data)
	logger.Info("configuration loaded", zap.String("config", cfg.String()))

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("connected to redis", zap.String("addr", cfg.RedisAddr))

	// Initialize processor
	proc, err := initProcessor(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize processor", zap.Error(err))
	}
	logger.Info("processor initialized", zap.Bool("fields", cfg.CELEnabled))

	// Initialize worker
	w := worker.NewWorker(cfg, redisClient, proc, logger)

	// Start worker
	if err := w.Start(); err != nil {
		logger.Fatal("failed to start worker", zap.Error(err))
	}

	// Start health server
	healthServer := worker.NewHealthServer(cfg, redisClient, logger)
	if err := healthServer.Start(); err != nil {
		logger.Fatal("failed to start health server", zap.Error(err))
	}

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	logger.Info("render worker running, press Ctrl+C to stop")
	<-sigChan

	logger.Info("shutdown signal received, stopping worker")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := healthServer.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop health server", zap.Error(err))
	}

	if err := w.Stop(shutdownCtx); err != nil {
		logger.Error("failed to stop worker", zap.Error(err))
	}

	if err := redisClient.Close(); err != nil {
		logger.Error("failed to close redis connection", zap.Error(err))
	}

	select {
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded, forcing exit")
	default:
		logger.Info("worker stopped gracefully")
	}
}

// initLogger initializes the logger
func initLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	config := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	return config.Build()
}

// initProcessor builds the request processor: card engine, optional widget
// fields and the configured card layout
func initProcessor(cfg *config.Config, logger *zap.Logger) (*processor.Processor, error) {
	engine := template.NewEngine()

	opts := []processor.Option{}
	if cfg.CardLayout != "" {
		if err := engine.ValidateTemplate(cfg.CardLayout); err != nil {
			return nil, fmt.Errorf("invalid CARD_LAYOUT: %w", err)
		}
		opts = append(opts, processor.WithLayout(cfg.CardLayout))
	}

	if cfg.CELEnabled {
		builder, err := form.NewBuilder(cel.NewEvaluator())
		if err != nil {
			return nil, fmt.Errorf("failed to build widget rules: %w", err)
		}
		opts = append(opts, processor.WithFields(builder))
	}

	return processor.NewProcessor(engine, logger, opts...), nil
}
