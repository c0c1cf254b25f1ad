package service

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/pawhome/pawhome/internal/model"
	"github.com/pawhome/pawhome/internal/validate"
)

// Field labels used in validation messages.
const (
	labelEmail           = "El correo electrónico"
	labelPassword        = "La contraseña"
	labelCurrentPassword = "La contraseña actual"
	labelName            = "El nombre"
	labelAddress         = "La dirección"
	labelPhone           = "El número de teléfono"
	labelResponsible     = "El responsable"
	labelLogo            = "El logo"
	labelShelterID       = "El id del refugio"
	labelValue           = "El valor ingresado"
	labelToken           = "El token"
	labelPetType         = "El tipo de mascota"
	labelPetSex          = "El sexo de la mascota"
	labelAge             = "La edad"
	labelImage           = "La imagen"
)

// MaxPetAge bounds the submitted pet age in years.
const MaxPetAge = 40

// ShelterRegistration is the request body for shelter sign-up.
type ShelterRegistration struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	ShelterName        string `json:"shelter_name"`
	ShelterAddress     string `json:"shelter_address"`
	ShelterPhoneNumber string `json:"shelter_phone_number"`
	ShelterResponsible string `json:"shelter_responsible"`
	ShelterLogo        string `json:"shelter_logo"`
}

func (r *ShelterRegistration) validate(region string) error {
	return validate.Check(validation.ValidateStruct(r,
		validation.Field(&r.Email, validate.Email(labelEmail)...),
		validation.Field(&r.Password, validate.Password(labelPassword)...),
		validation.Field(&r.ShelterName,
			validate.Required(labelName),
			validate.MaxLength(labelName, model.MaxShelterNameLength)),
		validation.Field(&r.ShelterAddress,
			validate.Required(labelAddress),
			validate.MaxLength(labelAddress, model.MaxShelterAddressLength)),
		validation.Field(&r.ShelterPhoneNumber,
			validate.Required(labelPhone),
			validate.MaxLength(labelPhone, model.MaxShelterPhoneNumberLength),
			validate.Phone(labelPhone, region)),
		validation.Field(&r.ShelterResponsible,
			validate.Required(labelResponsible),
			validate.MaxLength(labelResponsible, model.MaxShelterResponsibleLength)),
		validation.Field(&r.ShelterLogo, validate.URL(labelLogo, model.MaxURLLength)...),
	))
}

// AdminRegistration is the request body for creating an administrator.
type AdminRegistration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	AdminName string `json:"admin_name"`
}

func (r *AdminRegistration) validate() error {
	return validate.Check(validation.ValidateStruct(r,
		validation.Field(&r.Email, validate.Email(labelEmail)...),
		validation.Field(&r.Password, validate.Password(labelPassword)...),
		validation.Field(&r.AdminName,
			validate.Required(labelName),
			validate.MaxLength(labelName, model.MaxAdminNameLength)),
	))
}

// Credentials is the request body of the token-obtain endpoint.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Credentials) validate() error {
	return validate.Check(validation.ValidateStruct(c,
		validation.Field(&c.Email, validate.Email(labelEmail)...),
		validation.Field(&c.Password, validate.LoginPassword(labelPassword)...),
	))
}

// RefreshRequest carries a refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh"`
}

func (r *RefreshRequest) validate() error {
	return validate.Check(validation.ValidateStruct(r,
		validation.Field(&r.Refresh, validate.Required(labelToken)),
	))
}

// VerifyRequest carries a token of any type.
type VerifyRequest struct {
	Token string `json:"token"`
}

func (r *VerifyRequest) validate() error {
	return validate.Check(validation.ValidateStruct(r,
		validation.Field(&r.Token, validate.Required(labelToken)),
	))
}

// LogoutRequest optionally names the refresh token to revoke with the
// current access token.
type LogoutRequest struct {
	Refresh string `json:"refresh"`
}

// PasswordChange is the request body of the password change endpoint.
type PasswordChange struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (p *PasswordChange) validate() error {
	err := validate.Check(validation.ValidateStruct(p,
		validation.Field(&p.CurrentPassword, validate.Required(labelCurrentPassword)),
		validation.Field(&p.NewPassword, validate.Password(labelPassword)...),
		validation.Field(&p.ConfirmPassword, validate.Required(labelPassword)),
	))
	errs, ok := validate.FromError(err)
	if err != nil && !ok {
		return err
	}
	if errs == nil {
		errs = validate.Errors{}
	}
	if p.ConfirmPassword != "" && p.NewPassword != p.ConfirmPassword {
		errs.AddCode("confirm_password", validate.CodePasswordMismatch, labelPassword)
	}
	return errs.Err()
}

// PetInput is the request body for publishing a pet.
type PetInput struct {
	PetName         string `json:"pet_name"`
	PetType         string `json:"pet_type"`
	PetSex          string `json:"pet_sex"`
	PetRace         string `json:"pet_race"`
	PetAge          *int   `json:"pet_age"`
	PetObservations string `json:"pet_observations"`
	PetDescription  string `json:"pet_description"`
	PetImage        string `json:"pet_image"`
}

func (p *PetInput) validate() error {
	return validate.Check(validation.ValidateStruct(p,
		validation.Field(&p.PetName,
			validate.Required(labelName),
			validate.MaxLength(labelName, model.MaxPetNameLength)),
		validation.Field(&p.PetType,
			validate.Required(labelPetType),
			validate.MaxLength(labelPetType, model.MaxReferenceNameLength)),
		validation.Field(&p.PetSex,
			validate.Required(labelPetSex),
			validate.MaxLength(labelPetSex, model.MaxReferenceNameLength)),
		validation.Field(&p.PetRace,
			validate.Required(labelValue),
			validate.MaxLength(labelValue, model.MaxPetRaceLength)),
		validation.Field(&p.PetAge,
			validation.NotNil.ErrorObject(validate.NewError(validate.CodeRequired, labelAge, 0)),
			validation.Min(0).ErrorObject(validate.NewError(validate.CodeInvalid, labelAge, 0)),
			validation.Max(MaxPetAge).ErrorObject(validate.NewError(validate.CodeInvalid, labelAge, 0))),
		validation.Field(&p.PetObservations, validate.MaxLength(labelValue, model.MaxPetObservationsLength)),
		validation.Field(&p.PetDescription, validate.MaxLength(labelValue, model.MaxPetDescriptionLength)),
		validation.Field(&p.PetImage, validate.URL(labelImage, model.MaxURLLength)...),
	))
}

// AdoptionInput is the request body of an adoption request.
type AdoptionInput struct {
	PetName     string `json:"pet_name"`
	ShelterUUID string `json:"shelter_uuid"`
	UserName    string `json:"user_name"`
	UserEmail   string `json:"user_email"`
	UserPhone   string `json:"user_phone"`
	Message     string `json:"message"`
}

func (a *AdoptionInput) validate(region string) error {
	return validate.Check(validation.ValidateStruct(a,
		validation.Field(&a.PetName,
			validate.Required(labelValue),
			validate.MaxLength(labelValue, model.MaxPetNameLength)),
		validation.Field(&a.ShelterUUID,
			validate.Required(labelShelterID),
			is.UUID.ErrorObject(validate.NewError(validate.CodeInvalid, labelShelterID, 0))),
		validation.Field(&a.UserName,
			validate.Required(labelName),
			validate.MaxLength(labelName, model.MaxAdopterNameLength)),
		validation.Field(&a.UserEmail, validate.Email(labelEmail)...),
		validation.Field(&a.UserPhone,
			validate.Required(labelPhone),
			validate.MaxLength(labelPhone, model.MaxShelterPhoneNumberLength),
			validate.Phone(labelPhone, region)),
		validation.Field(&a.Message,
			validate.Required(labelValue),
			validate.MaxLength(labelValue, model.MaxAdoptionMessageLength)),
	))
}
