//go:build integration

package adoption

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/testutil"
)

type recordingNotifier struct {
	mu   sync.Mutex
	seen []string
	ch   chan struct{}
}

func (r *recordingNotifier) Notify(_ context.Context, req *model.AdoptionRequest) error {
	r.mu.Lock()
	r.seen = append(r.seen, req.ID)
	r.mu.Unlock()
	r.ch <- struct{}{}
	return nil
}

func TestIntegrationWorker_DeliversPublishedRequest(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	if err := testutil.FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	rec := metrics.NewInMemory()
	notifier := &recordingNotifier{ch: make(chan struct{}, 4)}
	worker := NewWorker(client, notifier, discardLogger(), NewConsumerID(), rec)
	worker.SetBlockTimeout(200 * time.Millisecond)

	go func() { _ = worker.Run(ctx) }()
	t.Cleanup(func() {
		shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
		defer stop()
		_ = worker.Shutdown(shutdownCtx)
	})

	req := testRequest()
	if _, err := NewPublisher(client, discardLogger(), rec).Publish(ctx, req); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	select {
	case <-notifier.ch:
	case <-ctx.Done():
		t.Fatal("timed out waiting for delivery")
	}

	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	if len(notifier.seen) != 1 || notifier.seen[0] != req.ID {
		t.Errorf("unexpected deliveries: %v", notifier.seen)
	}
	if rec.Snapshot().AdoptionRequests["published"] != 1 {
		t.Errorf("expected one published event, got %v", rec.Snapshot().AdoptionRequests)
	}
}

func TestIntegrationWorker_DeadLettersPoisonMessage(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}
	client := redis.NewClient(opt)
	t.Cleanup(func() { _ = client.Close() })
	if err := testutil.FlushRedis(ctx, client); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	rec := metrics.NewInMemory()
	worker := NewWorker(client, &recordingNotifier{ch: make(chan struct{}, 1)}, discardLogger(), NewConsumerID(), rec)
	if err := worker.ensureConsumerGroup(ctx); err != nil {
		t.Fatalf("ensure group: %v", err)
	}

	if err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		Values: map[string]interface{}{"payload": "not json"},
	}).Err(); err != nil {
		t.Fatalf("xadd: %v", err)
	}

	worker.SetBlockTimeout(200 * time.Millisecond)
	if err := worker.processOnce(ctx); err != nil {
		t.Fatalf("processOnce failed: %v", err)
	}

	n, err := client.XLen(ctx, DeadLetterStreamKey).Result()
	if err != nil {
		t.Fatalf("xlen: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 dead-lettered message, got %d", n)
	}
	if rec.Snapshot().AdoptionRequests["dead_lettered"] != 1 {
		t.Errorf("expected dead_lettered metric, got %v", rec.Snapshot().AdoptionRequests)
	}
}
