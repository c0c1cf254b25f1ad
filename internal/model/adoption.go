package model

import (
	"time"

	"github.com/google/uuid"
)

// Adoption request limits.
const (
	MaxAdopterNameLength     = 50
	MaxAdoptionMessageLength = 300
)

// AdoptionRequest is an adopter's contact request for a pet, handed to the
// mailer through the adoption stream.
type AdoptionRequest struct {
	ID          string    `json:"id"`
	PetName     string    `json:"pet_name"`
	ShelterID   uuid.UUID `json:"shelter_uuid"`
	UserName    string    `json:"user_name"`
	UserEmail   string    `json:"user_email"`
	UserPhone   string    `json:"user_phone"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submitted_at"`
}
