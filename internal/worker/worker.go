package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/kaoru0429/Prompt-Master/internal/config"
	"github.com/kaoru0429/Prompt-Master/internal/processor"
)

// Worker represents the render worker
type Worker struct {
	id            string
	config        *config.Config
	redisClient   *redis.Client
	processor     *processor.Processor
	logger        *zap.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	done          chan struct{}
	stopOnce      sync.Once
	streamKey     string
	consumerGroup string
	resultStream  string
	retryDelay    time.Duration
	handleTimeout time.Duration
}

// NewWorker creates a new worker
func NewWorker(
	cfg *config.Config,
	redisClient *redis.Client,
	proc *processor.Processor,
	logger *zap.Logger,
) *Worker {
	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		id:            cfg.WorkerID,
		config:        cfg,
		redisClient:   redisClient,
		processor:     proc,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
		done:          make(chan struct{}),
		streamKey:     cfg.StreamKey,
		consumerGroup: cfg.ConsumerGroup,
		resultStream:  cfg.ResultStream,
		retryDelay:    100 * time.Millisecond,
		handleTimeout: 5 * time.Second,
	}
}

// Start starts the worker
func (w *Worker) Start() error {
	w.logger.Info("starting render worker",
		zap.String("worker_id", w.id),
		zap.String("stream_key", w.streamKey),
		zap.String("consumer_group", w.consumerGroup),
	)

	// Create consumer group if it doesn't exist
	if err := w.ensureConsumerGroup(); err != nil {
		return fmt.Errorf("failed to ensure consumer group: %w", err)
	}

	go w.processWork()

	w.logger.Info("render worker started", zap.String("worker_id", w.id))
	return nil
}

// Stop stops the worker and waits for the in-flight request to finish. A
// request that was already read is still published and acknowledged.
func (w *Worker) Stop(ctx context.Context) error {
	w.logger.Info("stopping render worker", zap.String("worker_id", w.id))

	w.stopOnce.Do(w.cancel)

	select {
	case <-w.done:
	case <-ctx.Done():
		return fmt.Errorf("worker did not stop: %w", ctx.Err())
	}

	w.logger.Info("render worker stopped", zap.String("worker_id", w.id))
	return nil
}

// ensureConsumerGroup creates the consumer group if it doesn't exist
func (w *Worker) ensureConsumerGroup() error {
	err := w.redisClient.XGroupCreateMkStream(w.ctx, w.streamKey, w.consumerGroup, "0").Err()
	if err != nil {
		// BUSYGROUP means the group already exists
		if strings.HasPrefix(err.Error(), "BUSYGROUP") {
			w.logger.Debug("consumer group already exists",
				zap.String("group", w.consumerGroup),
			)
			return nil
		}
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	w.logger.Info("created consumer group",
		zap.String("group", w.consumerGroup),
		zap.String("stream", w.streamKey),
	)
	return nil
}

// processWork processes work from the Redis stream
func (w *Worker) processWork() {
	defer close(w.done)
	w.logger.Info("starting work processing loop")

	w.recoverPending()

	for {
		select {
		case <-w.ctx.Done():
			w.logger.Info("work processing loop stopped")
			return
		default:
		}

		streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, ">"},
			Count:    1,
			Block:    w.config.BlockTime,
		}).Result()

		if err != nil {
			if errors.Is(err, redis.Nil) || w.ctx.Err() != nil {
				continue
			}
			w.logger.Error("failed to read from stream", zap.Error(err))
			w.sleep(w.ctx, time.Second)
			continue
		}

		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(message)
			}
		}
	}
}

// recoverPending handles the entries this consumer read in an earlier run
// but never acknowledged
func (w *Worker) recoverPending() {
	start := "0"
	for w.ctx.Err() == nil {
		streams, err := w.redisClient.XReadGroup(w.ctx, &redis.XReadGroupArgs{
			Group:    w.consumerGroup,
			Consumer: w.id,
			Streams:  []string{w.streamKey, start},
			Count:    10,
			Block:    -1,
		}).Result()
		if err != nil {
			if !errors.Is(err, redis.Nil) && w.ctx.Err() == nil {
				w.logger.Error("failed to read pending entries", zap.Error(err))
			}
			return
		}

		handled := 0
		for _, stream := range streams {
			for _, message := range stream.Messages {
				w.handleMessage(message)
				start = message.ID
				handled++
			}
		}
		if handled == 0 {
			return
		}

		w.logger.Info("recovered pending render requests", zap.Int("count", handled))
	}
}

// handleMessage handles a single render request message. Once read, a message
// is processed to completion even if the worker is stopping.
func (w *Worker) handleMessage(message redis.XMessage) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(w.ctx), w.handleTimeout)
	defer cancel()

	messageID := message.ID
	w.logger.Info("processing render request", zap.String("message_id", messageID))

	request, err := parseRequest(message.Values)
	if err != nil {
		w.logger.Error("failed to parse render request",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
		w.publishError(ctx, messageID, "", err)
		w.acknowledgeMessage(ctx, messageID)
		return
	}

	result, err := w.processor.Process(ctx, request)
	if err != nil {
		w.logger.Error("failed to process render request",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
		w.publishError(ctx, messageID, request.RequestID, err)
		w.acknowledgeMessage(ctx, messageID)
		return
	}

	if err := w.publishResult(ctx, result); err != nil {
		w.logger.Error("failed to publish render result",
			zap.String("message_id", messageID),
			zap.String("request_id", request.RequestID),
			zap.Error(err),
		)
		w.publishError(ctx, messageID, request.RequestID, err)
	}

	w.acknowledgeMessage(ctx, messageID)
}

// parseRequest parses a render request from a Redis message
func parseRequest(values map[string]interface{}) (*processor.Request, error) {
	dataStr, ok := values["data"].(string)
	if !ok {
		return nil, fmt.Errorf("missing or invalid 'data' field")
	}

	var request processor.Request
	if err := json.Unmarshal([]byte(dataStr), &request); err != nil {
		return nil, fmt.Errorf("failed to unmarshal render request: %w", err)
	}

	return &request, nil
}

// publishResult publishes the render result, retrying up to MaxRetries times
func (w *Worker) publishResult(ctx context.Context, result *processor.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= w.config.MaxRetries; attempt++ {
		if attempt > 0 {
			w.logger.Warn("retrying result publish",
				zap.String("request_id", result.RequestID),
				zap.Int("attempt", attempt),
				zap.Error(lastErr),
			)
			if !w.sleep(ctx, w.retryDelay*time.Duration(attempt)) {
				break
			}
		}

		lastErr = w.redisClient.XAdd(ctx, &redis.XAddArgs{
			Stream: w.resultStream,
			Values: map[string]interface{}{
				"data": string(data),
			},
		}).Err()
		if lastErr == nil {
			w.logger.Info("published render result",
				zap.String("request_id", result.RequestID),
				zap.Int("variables", len(result.Variables)),
			)
			return nil
		}
	}

	return fmt.Errorf("failed to publish to stream: %w", lastErr)
}

// publishError publishes an error event
func (w *Worker) publishError(ctx context.Context, messageID, requestID string, err error) {
	errorEvent := map[string]interface{}{
		"message_id": messageID,
		"request_id": requestID,
		"error":      err.Error(),
		"timestamp":  time.Now().UTC(),
	}

	data, marshalErr := json.Marshal(errorEvent)
	if marshalErr != nil {
		w.logger.Error("failed to marshal error event", zap.Error(marshalErr))
		return
	}

	// Publish error to a separate stream
	_, publishErr := w.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: w.resultStream + ".errors",
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if publishErr != nil {
		w.logger.Error("failed to publish error event", zap.Error(publishErr))
	}
}

// acknowledgeMessage acknowledges a message from the stream
func (w *Worker) acknowledgeMessage(ctx context.Context, messageID string) {
	err := w.redisClient.XAck(ctx, w.streamKey, w.consumerGroup, messageID).Err()
	if err != nil {
		w.logger.Error("failed to acknowledge message",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}

// sleep waits for d or until ctx is done; it reports whether d elapsed
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
