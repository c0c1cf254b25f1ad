package model

import (
	"time"

	"github.com/google/uuid"
)

// Pet column limits and defaults.
const (
	MaxPetNameLength         = 50
	MaxPetRaceLength         = 50
	MaxPetObservationsLength = 200
	MaxPetDescriptionLength  = 200
	MaxReferenceNameLength   = 50

	DefaultPetObservations = "sin observaciones"
	DefaultPetDescription  = "sin descripciones"
	DefaultPetImage        = "https://imagedefault.com"
)

// PetType is a reference entry such as "perro" or "gato".
type PetType struct {
	ID   int64  `json:"id"`
	Name string `json:"type"`
}

// PetSex is a reference entry such as "macho" or "hembra".
type PetSex struct {
	ID   int64  `json:"id"`
	Name string `json:"sex"`
}

// Pet is an animal offered for adoption by a shelter.
type Pet struct {
	ID           uuid.UUID `json:"pet_uuid"`
	ShelterID    uuid.UUID `json:"shelter"`
	ShelterName  string    `json:"shelter_name,omitempty"`
	Type         *PetType  `json:"pet_type"`
	Sex          *PetSex   `json:"pet_sex"`
	Name         string    `json:"pet_name"`
	Race         string    `json:"pet_race"`
	Age          int       `json:"pet_age"`
	Observations string    `json:"pet_observations"`
	Description  string    `json:"pet_description"`
	Image        string    `json:"pet_image"`
	CreatedAt    time.Time `json:"date_joined"`
}

// ApplyDefaults fills empty free-text fields with their stored defaults.
func (p *Pet) ApplyDefaults() {
	if p.Observations == "" {
		p.Observations = DefaultPetObservations
	}
	if p.Description == "" {
		p.Description = DefaultPetDescription
	}
	if p.Image == "" {
		p.Image = DefaultPetImage
	}
}

// PetFilter narrows a pet listing. Empty fields match everything.
type PetFilter struct {
	Types     []string
	Sexes     []string
	ShelterID *uuid.UUID
}

// Page is one page of a paginated listing.
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}
