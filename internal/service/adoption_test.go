package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/pawhome/pawhome/internal/model"
)

func validAdoption(shelter uuid.UUID) AdoptionInput {
	return AdoptionInput{
		PetName:     "Toby",
		ShelterUUID: shelter.String(),
		UserName:    "Luis",
		UserEmail:   "Luis@Example.com",
		UserPhone:   "+34 612 34 56 78",
		Message:     "Me gustaria conocer a Toby.",
	}
}

func TestSubmitRequest(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	shelter := uuid.New()
	store.shelters[shelter] = &model.Shelter{UserID: shelter, Name: "Refugio"}
	pub := &fakePublisher{}

	req, err := NewAdoptionService(store, pub, "", discardLogger()).SubmitRequest(context.Background(), validAdoption(shelter))
	if err != nil {
		t.Fatalf("SubmitRequest failed: %v", err)
	}
	if _, err := ulid.ParseStrict(req.ID); err != nil {
		t.Errorf("expected ulid id, got %q", req.ID)
	}
	if req.UserEmail != "luis@example.com" {
		t.Errorf("expected normalized email, got %s", req.UserEmail)
	}
	if req.UserPhone != "+34612345678" {
		t.Errorf("expected E.164 phone, got %s", req.UserPhone)
	}
	if len(pub.published) != 1 || pub.published[0].ID != req.ID {
		t.Error("expected request to be published")
	}
}

func TestSubmitRequest_Rejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*AdoptionInput)
		field  string
	}{
		{"unknown shelter", func(a *AdoptionInput) { a.ShelterUUID = uuid.NewString() }, "shelter_uuid"},
		{"malformed shelter", func(a *AdoptionInput) { a.ShelterUUID = "nope" }, "shelter_uuid"},
		{"bad email", func(a *AdoptionInput) { a.UserEmail = "luis" }, "user_email"},
		{"bad phone", func(a *AdoptionInput) { a.UserPhone = "123" }, "user_phone"},
		{"empty message", func(a *AdoptionInput) { a.Message = "" }, "message"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			shelter := uuid.New()
			store.shelters[shelter] = &model.Shelter{UserID: shelter}
			pub := &fakePublisher{}

			in := validAdoption(shelter)
			tt.mutate(&in)
			_, err := NewAdoptionService(store, pub, "", discardLogger()).SubmitRequest(context.Background(), in)
			if errs := fieldErrors(t, err); len(errs[tt.field]) == 0 {
				t.Errorf("expected %s error, got %v", tt.field, errs)
			}
			if len(pub.published) != 0 {
				t.Error("rejected request must not be published")
			}
		})
	}
}

func TestSubmitRequest_PublishError(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	shelter := uuid.New()
	store.shelters[shelter] = &model.Shelter{UserID: shelter}
	pub := &fakePublisher{err: errStoreDown}

	_, err := NewAdoptionService(store, pub, "", discardLogger()).SubmitRequest(context.Background(), validAdoption(shelter))
	if !errors.Is(err, errStoreDown) {
		t.Errorf("expected publish error, got %v", err)
	}
}
