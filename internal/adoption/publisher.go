// Package adoption carries adoption requests from the API to the shelter
// notification worker over a Redis stream.
package adoption

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
)

const (
	// StreamKey is the Redis stream for adoption requests.
	StreamKey = "stream:adoption_requests"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:adoption_requests:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 10000

	// PublishTimeout bounds a single XADD.
	PublishTimeout = 500 * time.Millisecond
)

// Payload is the stream encoding of an adoption request.
type Payload struct {
	ID          string `json:"id"`
	PetName     string `json:"pn"`
	ShelterID   string `json:"sid"`
	UserName    string `json:"un"`
	UserEmail   string `json:"ue"`
	UserPhone   string `json:"up"`
	Message     string `json:"m"`
	SubmittedAt int64  `json:"t"` // Unix milliseconds
}

// PayloadFromRequest encodes req for the stream.
func PayloadFromRequest(req *model.AdoptionRequest) Payload {
	return Payload{
		ID:          req.ID,
		PetName:     req.PetName,
		ShelterID:   req.ShelterID.String(),
		UserName:    req.UserName,
		UserEmail:   req.UserEmail,
		UserPhone:   req.UserPhone,
		Message:     req.Message,
		SubmittedAt: req.SubmittedAt.UnixMilli(),
	}
}

// Request decodes the payload back into a model.
func (p Payload) Request() (*model.AdoptionRequest, error) {
	shelterID, err := uuid.Parse(p.ShelterID)
	if err != nil {
		return nil, fmt.Errorf("parse shelter id: %w", err)
	}
	return &model.AdoptionRequest{
		ID:          p.ID,
		PetName:     p.PetName,
		ShelterID:   shelterID,
		UserName:    p.UserName,
		UserEmail:   p.UserEmail,
		UserPhone:   p.UserPhone,
		Message:     p.Message,
		SubmittedAt: time.UnixMilli(p.SubmittedAt).UTC(),
	}, nil
}

// Publisher enqueues adoption requests to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new adoption request publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "adoption.publisher"),
		metrics: recorder,
	}
}

// Publish adds req to the stream and returns the stream entry id.
func (p *Publisher) Publish(ctx context.Context, req *model.AdoptionRequest) (string, error) {
	data, err := json.Marshal(PayloadFromRequest(req))
	if err != nil {
		return "", fmt.Errorf("marshal adoption request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	streamID, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		p.logger.Warn("failed to publish adoption request",
			"request_id", req.ID,
			"error", err,
		)
		p.metrics.IncAdoptionRequest("dropped")
		return "", fmt.Errorf("xadd: %w", err)
	}

	p.logger.Debug("adoption request published",
		"request_id", req.ID,
		"stream_id", streamID,
	)
	p.metrics.IncAdoptionRequest("published")
	return streamID, nil
}
