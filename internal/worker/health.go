package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kaoru0429/Prompt-Master/internal/config"
)

// HealthServer provides HTTP health check endpoints
type HealthServer struct {
	port          int
	streamKey     string
	consumerGroup string
	redisClient   *redis.Client
	logger        *zap.Logger
	server        *http.Server
}

// NewHealthServer creates a new health server
func NewHealthServer(cfg *config.Config, redisClient *redis.Client, logger *zap.Logger) *HealthServer {
	return &HealthServer{
		port:          cfg.HealthPort,
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		redisClient:   redisClient,
		logger:        logger,
	}
}

// Handler returns the health endpoints
func (hs *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hs.handleHealth)
	mux.HandleFunc("/ready", hs.handleReady)
	return mux
}

// Start starts the health check server
func (hs *HealthServer) Start() error {
	hs.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", hs.port),
		Handler:           hs.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	hs.logger.Info("starting health server", zap.Int("port", hs.port))

	go func() {
		if err := hs.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			hs.logger.Error("health server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the health check server
func (hs *HealthServer) Stop(ctx context.Context) error {
	if hs.server == nil {
		return nil
	}

	hs.logger.Info("stopping health server")
	return hs.server.Shutdown(ctx)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Pending *int64            `json:"pending,omitempty"`
}

// handleHealth reports Redis connectivity and the number of render requests
// delivered to the consumer group but not yet acknowledged
func (hs *HealthServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string)

	if err := hs.redisClient.Ping(ctx).Err(); err != nil {
		checks["redis"] = fmt.Sprintf("unhealthy: %v", err)
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unhealthy",
			Checks: checks,
		})
		return
	}
	checks["redis"] = "healthy"

	resp := HealthResponse{Status: "healthy", Checks: checks}

	pending, err := hs.redisClient.XPending(ctx, hs.streamKey, hs.consumerGroup).Result()
	switch {
	case err != nil:
		// The group appears once the worker has started
		checks["stream"] = fmt.Sprintf("unavailable: %v", err)
	default:
		checks["stream"] = "healthy"
		resp.Pending = &pending.Count
	}

	hs.respondJSON(w, http.StatusOK, resp)
}

// handleReady handles the /ready endpoint
func (hs *HealthServer) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := hs.redisClient.Ping(ctx).Err(); err != nil {
		hs.respondJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "not ready",
		})
		return
	}

	hs.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ready",
	})
}

// respondJSON writes a JSON response
func (hs *HealthServer) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		hs.logger.Error("failed to encode response", zap.Error(err))
	}
}
