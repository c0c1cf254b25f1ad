package adoption

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"

	"github.com/pawhome/pawhome/internal/model"
)

// ValidatePayload checks a decoded stream payload before delivery. The API
// validated the request already; this guards against foreign writers.
func ValidatePayload(p Payload) error {
	if _, err := ulid.ParseStrict(p.ID); err != nil {
		return fmt.Errorf("id must be a ulid: %w", err)
	}
	if p.PetName == "" || utf8.RuneCountInString(p.PetName) > model.MaxPetNameLength {
		return errors.New("pet_name length out of bounds")
	}
	if _, err := uuid.Parse(p.ShelterID); err != nil {
		return errors.New("shelter id must be a uuid")
	}
	if p.UserName == "" || utf8.RuneCountInString(p.UserName) > model.MaxAdopterNameLength {
		return errors.New("user_name length out of bounds")
	}
	if p.UserEmail == "" {
		return errors.New("user_email is required")
	}
	if p.UserPhone == "" {
		return errors.New("user_phone is required")
	}
	if p.Message == "" || utf8.RuneCountInString(p.Message) > model.MaxAdoptionMessageLength {
		return errors.New("message length out of bounds")
	}
	if p.SubmittedAt <= 0 {
		return errors.New("submitted_at must be set")
	}
	return nil
}
