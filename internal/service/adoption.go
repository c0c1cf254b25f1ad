package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/validate"
)

// ShelterLookup resolves shelter profiles.
type ShelterLookup interface {
	GetShelter(ctx context.Context, id uuid.UUID) (*model.Shelter, error)
}

// AdoptionPublisher hands adoption requests to the delivery pipeline.
type AdoptionPublisher interface {
	Publish(ctx context.Context, req *model.AdoptionRequest) (string, error)
}

// AdoptionService accepts adoption requests from the public.
type AdoptionService struct {
	shelters  ShelterLookup
	publisher AdoptionPublisher
	region    string
	logger    *slog.Logger
}

// NewAdoptionService creates an AdoptionService.
func NewAdoptionService(shelters ShelterLookup, publisher AdoptionPublisher, region string, logger *slog.Logger) *AdoptionService {
	return &AdoptionService{
		shelters:  shelters,
		publisher: publisher,
		region:    region,
		logger:    logger.With("component", "service.adoption"),
	}
}

// SubmitRequest validates in and publishes it for delivery to the shelter.
func (s *AdoptionService) SubmitRequest(ctx context.Context, in AdoptionInput) (*model.AdoptionRequest, error) {
	if err := in.validate(s.region); err != nil {
		return nil, err
	}

	shelterID := uuid.MustParse(in.ShelterUUID)
	if _, err := s.shelters.GetShelter(ctx, shelterID); err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			errs := validate.Errors{}
			errs.AddCode("shelter_uuid", validate.CodeInvalid, labelShelterID)
			return nil, errs
		}
		return nil, fmt.Errorf("get shelter: %w", err)
	}

	req := &model.AdoptionRequest{
		ID:          ulid.Make().String(),
		PetName:     in.PetName,
		ShelterID:   shelterID,
		UserName:    in.UserName,
		UserEmail:   model.NormalizeEmail(in.UserEmail),
		UserPhone:   validate.NormalizePhone(in.UserPhone, s.region),
		Message:     in.Message,
		SubmittedAt: utcNow(),
	}

	streamID, err := s.publisher.Publish(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("publish adoption request: %w", err)
	}

	s.logger.Info("adoption request accepted",
		"request_id", req.ID,
		"shelter_uuid", shelterID,
		"stream_id", streamID,
	)
	return req, nil
}
