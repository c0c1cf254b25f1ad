// Package model defines domain entities for the application.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Column limits shared by the schema and request validation.
const (
	MaxEmailLength              = 90
	MaxPasswordHashLength       = 128
	MaxShelterNameLength        = 50
	MaxShelterAddressLength     = 100
	MaxShelterPhoneNumberLength = 25
	MaxShelterResponsibleLength = 50
	MaxURLLength                = 200
	MaxAdminNameLength          = 50
)

// ErrUserNotFound is returned by user lookups when no identity matches.
var ErrUserNotFound = errors.New("user not found")

// RoleKind identifies which role profile backs a user identity.
type RoleKind string

const (
	RoleShelter RoleKind = "shelter"
	RoleAdmin   RoleKind = "admin"
)

// RoleKinds lists every role kind in declaration order.
var RoleKinds = []RoleKind{RoleShelter, RoleAdmin}

// IsValid reports whether the kind is one of the known roles.
func (k RoleKind) IsValid() bool {
	switch k {
	case RoleShelter, RoleAdmin:
		return true
	}
	return false
}

// ParseRoleKind converts a stored value into a RoleKind.
func ParseRoleKind(s string) (RoleKind, error) {
	k := RoleKind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("unknown role kind %q", s)
	}
	return k, nil
}

// Owner is a reference to a user identity tagged with its role kind.
// It replaces a runtime type lookup for directory entries and token ownership.
type Owner struct {
	Kind   RoleKind  `json:"kind"`
	UserID uuid.UUID `json:"user_uuid"`
}

// DirectoryEntry maps a user identity to its role profile type.
type DirectoryEntry struct {
	ID        uuid.UUID `json:"uuid"`
	Owner     Owner     `json:"owner"`
	CreatedAt time.Time `json:"date_joined"`
}

// User is the base identity shared by every role.
type User struct {
	ID           uuid.UUID  `json:"uuid"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	DateJoined   time.Time  `json:"date_joined"`

	// Role is empty for identities without a directory entry.
	Role RoleKind `json:"role,omitempty"`
}

// Owner returns the tagged reference for this identity.
func (u *User) Owner() Owner {
	return Owner{Kind: u.Role, UserID: u.ID}
}

// IsAdmin reports whether the identity may act as an administrator.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin || u.IsStaff || u.IsSuperuser
}

// NormalizeEmail lower-cases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Profile is a role-specific record backed by a user identity.
// The interface is sealed: only types in this package implement it.
type Profile interface {
	Kind() RoleKind
	sealedProfile()
}

// Shelter is the role profile of an animal shelter.
type Shelter struct {
	UserID      uuid.UUID `json:"uuid"`
	Name        string    `json:"shelter_name"`
	Address     string    `json:"shelter_address"`
	PhoneNumber string    `json:"shelter_phone_number"`
	Responsible string    `json:"shelter_responsible"`
	Logo        string    `json:"shelter_logo"`
}

// Kind implements Profile.
func (*Shelter) Kind() RoleKind { return RoleShelter }

func (*Shelter) sealedProfile() {}

// Admin is the role profile of a platform administrator.
type Admin struct {
	UserID uuid.UUID `json:"uuid"`
	Name   string    `json:"admin_name"`
}

// Kind implements Profile.
func (*Admin) Kind() RoleKind { return RoleAdmin }

func (*Admin) sealedProfile() {}
