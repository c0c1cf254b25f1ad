// Package validate declares request schemas as ozzo-validation rule sets.
// Every rule carries an enumerated error code and a localized message, and
// failures are reported as field-scoped message lists.
package validate

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/nyaruka/phonenumbers"
)

// Code enumerates validation failure kinds.
type Code string

const (
	CodeRequired             Code = "required"
	CodeMaxLength            Code = "max_length"
	CodeMinLength            Code = "min_length"
	CodeInvalid              Code = "invalid"
	CodePasswordMismatch     Code = "password_mismatch"
	CodePasswordNoUpperLower Code = "password_no_upper_lower"
	CodeEmailInUse           Code = "email_in_use"
	CodeShelterNameInUse     Code = "shelter_name_in_use"
	CodeAdminNameInUse       Code = "admin_name_in_use"
)

// Input limits that are tighter than the column limits.
const (
	MaxEmailInputLength = 40
	MinPasswordLength   = 8
	MaxPasswordLength   = 20
)

// EmailPattern is the accepted shape of an email address.
var EmailPattern = regexp.MustCompile(`^([A-Za-z0-9]+[-_.])*[A-Za-z0-9]+@[A-Za-z]+(\.[A-Z|a-z]{2,4}){1,2}$`)

// Message builds the localized text for a code. label is the human field
// name and n the length bound, when the code has one.
func Message(code Code, label string, n int) string {
	switch code {
	case CodeRequired:
		return fmt.Sprintf("%s es obligatorio.", label)
	case CodeMaxLength:
		return fmt.Sprintf("%s no puede tener más de %d caracteres.", label, n)
	case CodeMinLength:
		return fmt.Sprintf("%s debe tener al menos %d caracteres.", label, n)
	case CodeInvalid:
		return fmt.Sprintf("%s es inválido.", label)
	case CodePasswordMismatch:
		return "Las contraseñas no coinciden."
	case CodePasswordNoUpperLower:
		return "La contraseña debe contener al menos una mayuscula y una minuscula."
	case CodeEmailInUse:
		return "Este correo electrónico ya está en uso."
	case CodeShelterNameInUse:
		return "Este nombre de refugio ya está en uso."
	case CodeAdminNameInUse:
		return "Este nombre de administrador ya está en uso."
	default:
		return fmt.Sprintf("%s es inválido.", label)
	}
}

// NewError returns an ozzo error object for code.
func NewError(code Code, label string, n int) validation.Error {
	return validation.NewError(string(code), Message(code, label, n))
}

// Required rejects empty values.
func Required(label string) validation.Rule {
	return validation.Required.ErrorObject(NewError(CodeRequired, label, 0))
}

// MaxLength bounds the rune length of a string.
func MaxLength(label string, n int) validation.Rule {
	return validation.RuneLength(0, n).ErrorObject(NewError(CodeMaxLength, label, n))
}

// MinLength requires at least n runes.
func MinLength(label string, n int) validation.Rule {
	return validation.RuneLength(n, 0).ErrorObject(NewError(CodeMinLength, label, n))
}

// Email is the rule set for an email address field.
func Email(label string) []validation.Rule {
	return []validation.Rule{
		Required(label),
		MaxLength(label, MaxEmailInputLength),
		validation.Match(EmailPattern).ErrorObject(NewError(CodeInvalid, label, 0)),
	}
}

// Password is the rule set for a new password.
func Password(label string) []validation.Rule {
	return []validation.Rule{
		Required(label),
		MinLength(label, MinPasswordLength),
		MaxLength(label, MaxPasswordLength),
		validation.By(upperAndLower),
	}
}

// LoginPassword checks only the shape of a submitted password.
func LoginPassword(label string) []validation.Rule {
	return []validation.Rule{
		Required(label),
		MinLength(label, MinPasswordLength),
		MaxLength(label, MaxPasswordLength),
	}
}

// URL is the rule set for an optional absolute URL.
func URL(label string, max int) []validation.Rule {
	return []validation.Rule{
		MaxLength(label, max),
		is.URL.ErrorObject(NewError(CodeInvalid, label, 0)),
	}
}

// Phone validates a phone number. An empty region requires international
// format with a leading +.
func Phone(label, region string) validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		if s == "" {
			return nil
		}
		num, err := phonenumbers.Parse(s, region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			return NewError(CodeInvalid, label, 0)
		}
		return nil
	})
}

// NormalizePhone formats a valid number as E.164.
func NormalizePhone(s, region string) string {
	num, err := phonenumbers.Parse(s, region)
	if err != nil {
		return s
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func upperAndLower(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	var upper, lower bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		}
	}
	if !upper || !lower {
		return NewError(CodePasswordNoUpperLower, "", 0)
	}
	return nil
}

// Errors maps a field name to its failure messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// AddCode appends the message for code under field.
func (e Errors) AddCode(field string, code Code, label string) {
	e.Add(field, Message(code, label, 0))
}

// Err returns nil when there are no failures.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func (e Errors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+": "+strings.Join(e[f], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Struct runs a schema and converts failures to Errors.
// Internal rule errors are returned unchanged.
func Struct(v validation.Validatable) error {
	return Check(v.Validate())
}

// Check converts the result of validation.ValidateStruct to Errors.
func Check(err error) error {
	if err == nil {
		return nil
	}
	return convert(err)
}

// FromError extracts field errors from err.
func FromError(err error) (Errors, bool) {
	var fe Errors
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

func convert(err error) error {
	var internal validation.InternalError
	if errors.As(err, &internal) {
		return err
	}

	var verrs validation.Errors
	if !errors.As(err, &verrs) {
		return err
	}

	out := Errors{}
	flatten(out, "", verrs)
	return out
}

func flatten(out Errors, prefix string, verrs validation.Errors) {
	for field, err := range verrs {
		name := field
		if prefix != "" {
			name = prefix + "." + field
		}

		var nested validation.Errors
		var obj validation.Error
		switch {
		case errors.As(err, &nested):
			flatten(out, name, nested)
		case errors.As(err, &obj):
			out.Add(name, obj.Message())
		default:
			out.Add(name, err.Error())
		}
	}
}
