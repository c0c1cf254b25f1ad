package handler

import (
	"context"
	"net/url"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/service"
)

type fakeRegistrar struct {
	shelter *service.ShelterRegistration
	admin   *service.AdminRegistration
	err     error
}

func (f *fakeRegistrar) RegisterShelter(_ context.Context, in service.ShelterRegistration) (*model.User, error) {
	f.shelter = &in
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: uuid.New(), Email: in.Email, Role: model.RoleShelter}, nil
}

func (f *fakeRegistrar) RegisterAdmin(_ context.Context, in service.AdminRegistration) (*model.User, error) {
	f.admin = &in
	if f.err != nil {
		return nil, f.err
	}
	return &model.User{ID: uuid.New(), Email: in.Email, Role: model.RoleAdmin}, nil
}

type fakeTokenService struct {
	pair        *model.TokenPair
	err         error
	credentials *service.Credentials
	refresh     *service.RefreshRequest
	verify      *service.VerifyRequest
	blacklisted *service.RefreshRequest
	logout      *auth.Principal
	logoutIn    *service.LogoutRequest
	changedFor  *model.User
	change      *service.PasswordChange
}

func (f *fakeTokenService) ObtainPair(_ context.Context, in service.Credentials) (*model.TokenPair, error) {
	f.credentials = &in
	return f.pair, f.err
}

func (f *fakeTokenService) Refresh(_ context.Context, in service.RefreshRequest) (*model.TokenPair, error) {
	f.refresh = &in
	return f.pair, f.err
}

func (f *fakeTokenService) Verify(_ context.Context, in service.VerifyRequest) error {
	f.verify = &in
	return f.err
}

func (f *fakeTokenService) Blacklist(_ context.Context, in service.RefreshRequest) error {
	f.blacklisted = &in
	return f.err
}

func (f *fakeTokenService) Logout(_ context.Context, p *auth.Principal, in service.LogoutRequest) error {
	f.logout = p
	f.logoutIn = &in
	return f.err
}

func (f *fakeTokenService) ChangePassword(_ context.Context, user *model.User, in service.PasswordChange) (*model.TokenPair, error) {
	f.changedFor = user
	f.change = &in
	return f.pair, f.err
}

func (f *fakeTokenService) Me(_ context.Context, user *model.User) (*service.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &service.Profile{User: user}, nil
}

type fakePetCatalog struct {
	pets      map[uuid.UUID]*model.Pet
	page      *model.Page[*model.Pet]
	err       error
	query     *service.PetQuery
	self      *url.URL
	createdBy uuid.UUID
	created   *service.PetInput
}

func (f *fakePetCatalog) List(_ context.Context, q service.PetQuery, self *url.URL) (*model.Page[*model.Pet], error) {
	f.query = &q
	f.self = self
	if f.err != nil {
		return nil, f.err
	}
	if f.page != nil {
		return f.page, nil
	}
	return &model.Page[*model.Pet]{Results: []*model.Pet{}}, nil
}

func (f *fakePetCatalog) Get(_ context.Context, id uuid.UUID) (*model.Pet, error) {
	if f.err != nil {
		return nil, f.err
	}
	pet, ok := f.pets[id]
	if !ok {
		return nil, service.ErrPetNotFound
	}
	return pet, nil
}

func (f *fakePetCatalog) Create(_ context.Context, shelterID uuid.UUID, in service.PetInput) (*model.Pet, error) {
	f.createdBy = shelterID
	f.created = &in
	if f.err != nil {
		return nil, f.err
	}
	return &model.Pet{ID: uuid.New(), ShelterID: shelterID, Name: in.PetName}, nil
}

func (f *fakePetCatalog) Types(context.Context) ([]model.PetType, error) {
	return []model.PetType{{ID: 1, Name: "perro"}, {ID: 2, Name: "gato"}}, f.err
}

func (f *fakePetCatalog) Sexes(context.Context) ([]model.PetSex, error) {
	return []model.PetSex{{ID: 1, Name: "macho"}, {ID: 2, Name: "hembra"}}, f.err
}

type fakeAdoptionIntake struct {
	in  *service.AdoptionInput
	err error
}

func (f *fakeAdoptionIntake) SubmitRequest(_ context.Context, in service.AdoptionInput) (*model.AdoptionRequest, error) {
	f.in = &in
	if f.err != nil {
		return nil, f.err
	}
	return &model.AdoptionRequest{ID: "01JAB3ZQ5K7W1Y0T2X4V6N8M9P", PetName: in.PetName}, nil
}

// fakeTokens maps raw bearer tokens to users.
type fakeTokens map[string]*model.User

func (f fakeTokens) Validate(_ context.Context, raw string) (*auth.Token, error) {
	if _, ok := f[raw]; !ok {
		return nil, &auth.InvalidTokenError{
			Code:     auth.CodeAuthenticationFailed,
			Detail:   "Given token not valid for any token type",
			Failures: []auth.TokenFailure{{TokenType: "access", Code: auth.FailureInvalid, Message: "Token is invalid"}},
		}
	}
	return &auth.Token{Raw: raw, Type: "access"}, nil
}

func (f fakeTokens) ResolveUser(_ context.Context, tok *auth.Token) (*model.User, error) {
	return f[tok.Raw], nil
}
