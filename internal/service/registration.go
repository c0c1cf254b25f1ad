package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/metrics"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
	"github.com/pawhome/pawhome/internal/validate"
)

// RegistrationStore persists identities with their role profile.
type RegistrationStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	ShelterNameExists(ctx context.Context, name string) (bool, error)
	AdminNameExists(ctx context.Context, name string) (bool, error)
	CreateUserWithProfile(ctx context.Context, user *model.User, profile model.Profile) error
}

// PasswordHasher derives stored password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// RegistrationService creates identities for every role kind.
type RegistrationService struct {
	store   RegistrationStore
	hasher  PasswordHasher
	region  string
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewRegistrationService creates a RegistrationService. region is the
// default phone number region; empty requires international format.
func NewRegistrationService(store RegistrationStore, hasher PasswordHasher, region string, logger *slog.Logger, recorder metrics.Recorder) *RegistrationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RegistrationService{
		store:   store,
		hasher:  hasher,
		region:  region,
		logger:  logger.With("component", "service.registration"),
		metrics: recorder,
	}
}

// RegisterShelter validates in and creates a shelter identity.
func (s *RegistrationService) RegisterShelter(ctx context.Context, in ShelterRegistration) (*model.User, error) {
	if err := in.validate(s.region); err != nil {
		return nil, s.reject(model.RoleShelter, err)
	}

	profile := &model.Shelter{
		Name:        in.ShelterName,
		Address:     in.ShelterAddress,
		PhoneNumber: validate.NormalizePhone(in.ShelterPhoneNumber, s.region),
		Responsible: in.ShelterResponsible,
		Logo:        in.ShelterLogo,
	}
	return s.register(ctx, in.Email, in.Password, profile, false, false)
}

// RegisterAdmin validates in and creates an administrator identity. The
// identity gets staff access.
func (s *RegistrationService) RegisterAdmin(ctx context.Context, in AdminRegistration) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, s.reject(model.RoleAdmin, err)
	}
	return s.register(ctx, in.Email, in.Password, &model.Admin{Name: in.AdminName}, true, false)
}

// CreateSuperuser creates an active staff and superuser identity backed by
// an admin profile.
func (s *RegistrationService) CreateSuperuser(ctx context.Context, in AdminRegistration) (*model.User, error) {
	if err := in.validate(); err != nil {
		return nil, s.reject(model.RoleAdmin, err)
	}
	return s.register(ctx, in.Email, in.Password, &model.Admin{Name: in.AdminName}, true, true)
}

func (s *RegistrationService) register(ctx context.Context, email, password string, profile model.Profile, staff, superuser bool) (*model.User, error) {
	role := profile.Kind()
	email = model.NormalizeEmail(email)

	if errs, err := s.precheck(ctx, email, profile); err != nil {
		s.metrics.IncRegistration(string(role), outcomeError)
		return nil, err
	} else if errs != nil {
		return nil, s.reject(role, errs)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		s.metrics.IncRegistration(string(role), outcomeError)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: hash,
		IsActive:     true,
		IsStaff:      staff,
		IsSuperuser:  superuser,
		DateJoined:   utcNow(),
	}

	if err := s.store.CreateUserWithProfile(ctx, user, profile); err != nil {
		if errs := conflictErrors(err); errs != nil {
			s.metrics.IncRegistration(string(role), outcomeConflict)
			return nil, errs
		}
		s.metrics.IncRegistration(string(role), outcomeError)
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered",
		"user_uuid", user.ID,
		"role", role,
	)
	s.metrics.IncRegistration(string(role), outcomeCreated)
	return user, nil
}

// precheck reports taken unique fields. The store constraints remain the
// authority for concurrent registrations.
func (s *RegistrationService) precheck(ctx context.Context, email string, profile model.Profile) (validate.Errors, error) {
	errs := validate.Errors{}

	taken, err := s.store.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if taken {
		errs.AddCode("email", validate.CodeEmailInUse, labelEmail)
	}

	switch p := profile.(type) {
	case *model.Shelter:
		taken, err = s.store.ShelterNameExists(ctx, p.Name)
		if err != nil {
			return nil, fmt.Errorf("check shelter name: %w", err)
		}
		if taken {
			errs.AddCode("shelter_name", validate.CodeShelterNameInUse, labelName)
		}
	case *model.Admin:
		taken, err = s.store.AdminNameExists(ctx, p.Name)
		if err != nil {
			return nil, fmt.Errorf("check admin name: %w", err)
		}
		if taken {
			errs.AddCode("admin_name", validate.CodeAdminNameInUse, labelName)
		}
	}

	if len(errs) == 0 {
		return nil, nil
	}
	return errs, nil
}

func (s *RegistrationService) reject(role model.RoleKind, err error) error {
	if _, ok := validate.FromError(err); ok {
		s.metrics.IncRegistration(string(role), outcomeInvalid)
	} else {
		s.metrics.IncRegistration(string(role), outcomeError)
	}
	return err
}

// conflictErrors translates store uniqueness violations into field errors.
func conflictErrors(err error) validate.Errors {
	errs := validate.Errors{}
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		errs.AddCode("email", validate.CodeEmailInUse, labelEmail)
	case errors.Is(err, repository.ErrShelterNameExists):
		errs.AddCode("shelter_name", validate.CodeShelterNameInUse, labelName)
	case errors.Is(err, repository.ErrAdminNameExists):
		errs.AddCode("admin_name", validate.CodeAdminNameInUse, labelName)
	default:
		return nil
	}
	return errs
}
