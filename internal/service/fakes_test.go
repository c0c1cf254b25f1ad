package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pawhome/pawhome/internal/auth"
	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/repository"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSettings() auth.Settings {
	return auth.Settings{
		SigningKey:       []byte("service-test-key-service-test-key"),
		UserIDClaim:      "user_uuid",
		TokenTypeClaim:   "token_type",
		JTIClaim:         "jti",
		RevokeTokenClaim: "hash_password",
		CheckRevokeToken: true,
		Lifetimes: map[string]time.Duration{
			"access":  5 * time.Minute,
			"refresh": time.Hour,
		},
	}
}

// fakeHasher avoids argon2 cost in unit tests.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password + ":" + uuid.NewString(), nil
}

func (fakeHasher) Verify(password, encoded string) (bool, error) {
	return strings.HasPrefix(encoded, "hashed:"+password+":"), nil
}

type fakeStore struct {
	mu sync.Mutex

	users     map[uuid.UUID]*model.User
	shelters  map[uuid.UUID]*model.Shelter
	admins    map[uuid.UUID]*model.Admin
	tokens    map[string]*model.Token
	revoked   map[string]bool
	pets      []*model.Pet
	petTypes  []model.PetType
	petSexes  []model.PetSex
	lastLogin map[uuid.UUID]time.Time

	// createErr is returned by CreateUserWithProfile when set.
	createErr error
	// existsErr is returned by the uniqueness pre-checks when set.
	existsErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[uuid.UUID]*model.User{},
		shelters:  map[uuid.UUID]*model.Shelter{},
		admins:    map[uuid.UUID]*model.Admin{},
		tokens:    map[string]*model.Token{},
		revoked:   map[string]bool{},
		petTypes:  []model.PetType{{ID: 1, Name: "perro"}, {ID: 2, Name: "gato"}},
		petSexes:  []model.PetSex{{ID: 1, Name: "macho"}, {ID: 2, Name: "hembra"}},
		lastLogin: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ShelterNameExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, s := range f.shelters {
		if s.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) AdminNameExists(_ context.Context, name string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateUserWithProfile(_ context.Context, user *model.User, profile model.Profile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	switch p := profile.(type) {
	case *model.Shelter:
		p.UserID = user.ID
		f.shelters[user.ID] = p
	case *model.Admin:
		p.UserID = user.ID
		f.admins[user.ID] = p
	default:
		return repository.ErrUnsupportedProfile
	}
	user.Role = profile.Kind()
	cp := *user
	f.users[user.ID] = &cp
	return nil
}

func (f *fakeStore) addUser(u *model.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
}

func (f *fakeStore) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLogin[id] = at
	return nil
}

func (f *fakeStore) SetPassword(_ context.Context, id uuid.UUID, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (f *fakeStore) GetProfile(_ context.Context, owner model.Owner) (model.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	switch owner.Kind {
	case model.RoleShelter:
		if s, ok := f.shelters[owner.UserID]; ok {
			return s, nil
		}
	case model.RoleAdmin:
		if a, ok := f.admins[owner.UserID]; ok {
			return a, nil
		}
	}
	return nil, repository.ErrProfileNotFound
}

func (f *fakeStore) GetShelter(_ context.Context, id uuid.UUID) (*model.Shelter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.shelters[id]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	return s, nil
}

func (f *fakeStore) CreateToken(_ context.Context, token *model.Token) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.JTI]; ok {
		return repository.ErrJTIExists
	}
	cp := *token
	f.tokens[token.JTI] = &cp
	return nil
}

func (f *fakeStore) BlacklistToken(_ context.Context, token *model.Token) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.tokens[token.JTI]; !ok {
		if _, ok := f.users[token.Owner.UserID]; !ok {
			return false, repository.ErrUserNotFound
		}
		cp := *token
		f.tokens[token.JTI] = &cp
	}
	if f.revoked[token.JTI] {
		return false, nil
	}
	f.revoked[token.JTI] = true
	return true, nil
}

func (f *fakeStore) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revoked[jti], nil
}

func (f *fakeStore) tokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tokens)
}

func (f *fakeStore) ListPets(_ context.Context, filter model.PetFilter, limit, offset int) ([]*model.Pet, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matched []*model.Pet
	for _, p := range f.pets {
		if len(filter.Types) > 0 && (p.Type == nil || !contains(filter.Types, p.Type.Name)) {
			continue
		}
		if filter.ShelterID != nil && p.ShelterID != *filter.ShelterID {
			continue
		}
		matched = append(matched, p)
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func (f *fakeStore) GetPet(_ context.Context, id uuid.UUID) (*model.Pet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pets {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repository.ErrPetNotFound
}

func (f *fakeStore) CreatePet(_ context.Context, pet *model.Pet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pets = append(f.pets, pet)
	return nil
}

func (f *fakeStore) GetPetTypeByName(_ context.Context, name string) (*model.PetType, error) {
	for _, t := range f.petTypes {
		if t.Name == name {
			t := t
			return &t, nil
		}
	}
	return nil, repository.ErrPetTypeNotFound
}

func (f *fakeStore) GetPetSexByName(_ context.Context, name string) (*model.PetSex, error) {
	for _, s := range f.petSexes {
		if s.Name == name {
			s := s
			return &s, nil
		}
	}
	return nil, repository.ErrPetSexNotFound
}

func (f *fakeStore) ListPetTypes(context.Context) ([]model.PetType, error) {
	return f.petTypes, nil
}

func (f *fakeStore) ListPetSexes(context.Context) ([]model.PetSex, error) {
	return f.petSexes, nil
}

type fakeCache struct {
	mu      sync.Mutex
	markers map[string]time.Duration
	err     error
}

func newFakeCache() *fakeCache {
	return &fakeCache{markers: map[string]time.Duration{}}
}

func (c *fakeCache) MarkBlacklisted(_ context.Context, jti string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.markers[jti] = ttl
	return nil
}

func (c *fakeCache) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return false, c.err
	}
	_, ok := c.markers[jti]
	return ok, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []*model.AdoptionRequest
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, req *model.AdoptionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return "", p.err
	}
	p.published = append(p.published, req)
	return "1-0", nil
}

var errStoreDown = errors.New("store down")
