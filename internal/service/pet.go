package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/validate"
)

// PetStore persists pets and their reference tables.
type PetStore interface {
	ListPets(ctx context.Context, filter model.PetFilter, limit, offset int) ([]*model.Pet, int, error)
	GetPet(ctx context.Context, id uuid.UUID) (*model.Pet, error)
	CreatePet(ctx context.Context, pet *model.Pet) error
	GetPetTypeByName(ctx context.Context, name string) (*model.PetType, error)
	GetPetSexByName(ctx context.Context, name string) (*model.PetSex, error)
	ListPetTypes(ctx context.Context) ([]model.PetType, error)
	ListPetSexes(ctx context.Context) ([]model.PetSex, error)
}

// PetQuery selects one page of the pet listing.
type PetQuery struct {
	Page   int
	Filter model.PetFilter
}

// PetService lists and publishes pets.
type PetService struct {
	store    PetStore
	pageSize int
	logger   *slog.Logger
}

// NewPetService creates a PetService.
func NewPetService(store PetStore, pageSize int, logger *slog.Logger) *PetService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &PetService{
		store:    store,
		pageSize: pageSize,
		logger:   logger.With("component", "service.pet"),
	}
}

// List returns one page of pets. Next and previous links are built from
// self, the URL of the current request. A page past the end is
// ErrInvalidPage, except page 1 of an empty listing.
func (s *PetService) List(ctx context.Context, q PetQuery, self *url.URL) (*model.Page[*model.Pet], error) {
	page := q.Page
	if page == 0 {
		page = 1
	}
	if page < 0 || page > math.MaxInt/s.pageSize+1 {
		return nil, ErrInvalidPage
	}

	pets, total, err := s.store.ListPets(ctx, q.Filter, s.pageSize, (page-1)*s.pageSize)
	if err != nil {
		return nil, fmt.Errorf("list pets: %w", err)
	}

	last := (total + s.pageSize - 1) / s.pageSize
	if last == 0 {
		last = 1
	}
	if page > last {
		return nil, ErrInvalidPage
	}

	if pets == nil {
		pets = []*model.Pet{}
	}
	out := &model.Page[*model.Pet]{Count: total, Results: pets}
	if page < last {
		out.Next = pageLink(self, page+1)
	}
	if page > 1 {
		out.Previous = pageLink(self, page-1)
	}
	return out, nil
}

// pageLink rewrites the page parameter of self. The first page drops the
// parameter entirely.
func pageLink(self *url.URL, page int) *string {
	if self == nil {
		return nil
	}
	u := *self
	q := u.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u.RawQuery = q.Encode()
	link := u.String()
	return &link
}

// Get returns a pet by ID.
func (s *PetService) Get(ctx context.Context, id uuid.UUID) (*model.Pet, error) {
	pet, err := s.store.GetPet(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPetNotFound) {
			return nil, ErrPetNotFound
		}
		return nil, fmt.Errorf("get pet: %w", err)
	}
	return pet, nil
}

// Create publishes a pet owned by the shelter identity shelterID.
func (s *PetService) Create(ctx context.Context, shelterID uuid.UUID, in PetInput) (*model.Pet, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	errs := validate.Errors{}
	petType, err := s.store.GetPetTypeByName(ctx, in.PetType)
	if err != nil {
		if !errors.Is(err, repository.ErrPetTypeNotFound) {
			return nil, fmt.Errorf("get pet type: %w", err)
		}
		errs.AddCode("pet_type", validate.CodeInvalid, labelPetType)
	}
	petSex, err := s.store.GetPetSexByName(ctx, in.PetSex)
	if err != nil {
		if !errors.Is(err, repository.ErrPetSexNotFound) {
			return nil, fmt.Errorf("get pet sex: %w", err)
		}
		errs.AddCode("pet_sex", validate.CodeInvalid, labelPetSex)
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	pet := &model.Pet{
		ID:           uuid.New(),
		ShelterID:    shelterID,
		Type:         petType,
		Sex:          petSex,
		Name:         in.PetName,
		Race:         in.PetRace,
		Age:          *in.PetAge,
		Observations: in.PetObservations,
		Description:  in.PetDescription,
		Image:        in.PetImage,
		CreatedAt:    utcNow(),
	}
	pet.ApplyDefaults()

	if err := s.store.CreatePet(ctx, pet); err != nil {
		return nil, fmt.Errorf("create pet: %w", err)
	}

	s.logger.Info("pet published", "pet_uuid", pet.ID, "shelter_uuid", shelterID)
	return pet, nil
}

// Types lists the pet type reference table.
func (s *PetService) Types(ctx context.Context) ([]model.PetType, error) {
	types, err := s.store.ListPetTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pet types: %w", err)
	}
	return types, nil
}

// Sexes lists the pet sex reference table.
func (s *PetService) Sexes(ctx context.Context) ([]model.PetSex, error) {
	sexes, err := s.store.ListPetSexes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list pet sexes: %w", err)
	}
	return sexes, nil
}
