package adoption

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "adoption_notifiers"

	// DefaultBatchSize is the max messages read per round.
	DefaultBatchSize = 50

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultMaxRetries is the max delivery attempts per round.
	DefaultMaxRetries = 3

	// DefaultClaimInterval is how often to scan pending messages.
	DefaultClaimInterval = 30 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = time.Minute
)

// Worker delivers adoption requests read from the stream.
type Worker struct {
	redis         *redis.Client
	notifier      Notifier
	logger        *slog.Logger
	metrics       metrics.Recorder
	consumerID    string
	batchSize     int
	blockTimeout  time.Duration
	maxRetries    int
	retryBackoff  time.Duration
	claimInterval time.Duration
	claimIdle     time.Duration
	claimStartID  string
	lastClaim     time.Time

	started  bool
	draining bool
	cancel   context.CancelFunc
	done     chan struct{}
	mu       sync.Mutex
}

// NewWorker creates a new adoption notification worker.
func NewWorker(client *redis.Client, notifier Notifier, logger *slog.Logger, consumerID string, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:         client,
		notifier:      notifier,
		logger:        logger.With("component", "adoption.worker", "consumer_id", consumerID),
		metrics:       recorder,
		consumerID:    consumerID,
		batchSize:     DefaultBatchSize,
		blockTimeout:  DefaultBlockTimeout,
		maxRetries:    DefaultMaxRetries,
		retryBackoff:  time.Second,
		claimInterval: DefaultClaimInterval,
		claimIdle:     DefaultClaimIdle,
		claimStartID:  "0-0",
	}
}

// SetBlockTimeout overrides the default blocking timeout.
func (w *Worker) SetBlockTimeout(timeout time.Duration) {
	if timeout > 0 {
		w.blockTimeout = timeout
	}
}

// SetRetryBackoff overrides the base delay between delivery attempts.
func (w *Worker) SetRetryBackoff(backoff time.Duration) {
	if backoff > 0 {
		w.retryBackoff = backoff
	}
}

// Run starts the worker loop. Blocks until the context is cancelled or
// Shutdown is called.
func (w *Worker) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return errors.New("worker already started")
	}
	w.started = true
	w.done = make(chan struct{})
	ctx, w.cancel = context.WithCancel(ctx)
	w.mu.Unlock()

	defer close(w.done)

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("adoption worker started")

	for {
		w.mu.Lock()
		draining := w.draining
		w.mu.Unlock()
		if draining {
			return nil
		}

		select {
		case <-ctx.Done():
			w.logger.Info("adoption worker stopping")
			return nil
		default:
			if err := w.processOnce(ctx); err != nil {
				if errors.Is(err, context.Canceled) {
					return nil
				}
				w.logger.Error("process error", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

// Shutdown stops the worker after the in-flight message.
// It matches server.ShutdownFunc.
func (w *Worker) Shutdown(ctx context.Context) error {
	w.mu.Lock()
	if !w.started {
		w.mu.Unlock()
		return nil
	}
	w.draining = true
	cancel := w.cancel
	done := w.done
	w.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	select {
	case <-done:
		w.logger.Info("adoption worker shutdown complete")
		return nil
	case <-ctx.Done():
		w.logger.Warn("adoption worker shutdown timed out")
		return ctx.Err()
	}
}

func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !isConsumerGroupExistsError(err) {
		return err
	}
	return nil
}

func (w *Worker) processOnce(ctx context.Context) error {
	messages, err := w.maybeClaimPending(ctx)
	if err != nil {
		w.logger.Warn("failed to claim pending messages", "error", err)
	}
	if len(messages) == 0 {
		messages, err = w.readBatch(ctx)
		if err != nil {
			return err
		}
	}

	acks := make([]string, 0, len(messages))
	for _, msg := range messages {
		if w.handle(ctx, msg) {
			acks = append(acks, msg.ID)
		}
	}
	return w.ackMessages(ctx, acks)
}

// handle delivers one message and reports whether it can be acknowledged.
// Undelivered messages stay pending and are reclaimed later.
func (w *Worker) handle(ctx context.Context, msg redis.XMessage) bool {
	req, reason, err := decodeMessage(msg)
	if err != nil {
		w.deadLetter(ctx, msg, reason, err.Error())
		return true
	}

	if err := w.notifyWithRetry(ctx, req); err != nil {
		if errors.Is(err, ErrUnknownShelter) {
			w.deadLetter(ctx, msg, "unknown_shelter", err.Error())
			return true
		}
		w.logger.Error("adoption request delivery failed",
			"request_id", req.ID,
			"message_id", msg.ID,
			"error", err,
		)
		w.metrics.IncAdoptionRequest("failed")
		return false
	}

	w.metrics.IncAdoptionRequest("delivered")
	return true
}

// decodeMessage extracts the request from a stream entry. On failure the
// returned reason names the dead-letter category.
func decodeMessage(msg redis.XMessage) (*model.AdoptionRequest, string, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, "invalid_format", errors.New("payload field missing or not a string")
	}

	var payload Payload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, "unmarshal_error", err
	}
	if err := ValidatePayload(payload); err != nil {
		return nil, "validation_error", err
	}

	req, err := payload.Request()
	if err != nil {
		return nil, "validation_error", err
	}
	return req, "", nil
}

func (w *Worker) notifyWithRetry(ctx context.Context, req *model.AdoptionRequest) error {
	var lastErr error
	for attempt := 1; attempt <= w.maxRetries; attempt++ {
		err := w.notifier.Notify(ctx, req)
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrUnknownShelter) {
			return err
		}
		lastErr = err

		if attempt == w.maxRetries {
			break
		}
		backoff := w.retryBackoff * time.Duration(1<<(attempt-1))
		w.logger.Warn("adoption request delivery failed, retrying",
			"request_id", req.ID,
			"attempt", attempt,
			"backoff_seconds", backoff.Seconds(),
			"error", err,
		)
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

func (w *Worker) maybeClaimPending(ctx context.Context) ([]redis.XMessage, error) {
	if w.claimInterval <= 0 || w.claimIdle <= 0 {
		return nil, nil
	}
	if !w.lastClaim.IsZero() && time.Since(w.lastClaim) < w.claimInterval {
		return nil, nil
	}
	w.lastClaim = time.Now()

	messages, start, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    w.claimStartID,
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("xautoclaim: %w", err)
	}
	if start != "" {
		w.claimStartID = start
	}
	return messages, nil
}

func (w *Worker) readBatch(ctx context.Context) ([]redis.XMessage, error) {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) || len(streams) == 0 {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("xreadgroup: %w", err)
	}
	return streams[0].Messages, nil
}

func (w *Worker) deadLetter(ctx context.Context, msg redis.XMessage, reason, detail string) {
	w.logger.Warn("dead-lettering adoption message",
		"message_id", msg.ID,
		"reason", reason,
		"detail", detail,
	)

	_, err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id":      msg.ID,
			"original_stream":  StreamKey,
			"reason":           reason,
			"detail":           detail,
			"payload":          msg.Values["payload"],
			"dead_lettered_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Result()
	if err != nil {
		w.logger.Error("failed to write to dead-letter queue",
			"message_id", msg.ID,
			"error", err,
		)
	}

	w.metrics.IncAdoptionRequest("dead_lettered")
}

func (w *Worker) ackMessages(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ids...).Err(); err != nil {
		return fmt.Errorf("xack: %w", err)
	}
	return nil
}

func isConsumerGroupExistsError(err error) bool {
	return err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP")
}
