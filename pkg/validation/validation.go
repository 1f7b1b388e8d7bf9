// Package validation holds the request shape checks that run before any database access.
package validation

import (
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLength = 6

// 错误提示
const (
	MsgRegisterFieldsRequired = "Please provide email, password, and full name"
	MsgInvalidEmail           = "Please provide a valid email address"
	MsgPasswordTooShort       = "Password must be at least 6 characters long"
	MsgLoginFieldsRequired    = "Please provide email and password"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// validator's builtin "email" follows RFC 5322; registration only wants local@domain.tld
	_ = v.RegisterValidation("loose_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	return v
}

// Error carries the client-facing message of a failed check.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

func IsEmail(email string) bool {
	return emailRegex.MatchString(email)
}

// IsPassword counts characters (runes), as the validator's min tag does.
func IsPassword(password string) bool {
	return utf8.RuneCountInString(password) >= minPasswordLength
}

// RegisterInput is the subset of the register body that is validated.
type RegisterInput struct {
	Email    string `validate:"required,loose_email"`
	Password string `validate:"required,min=6"`
	FullName string `validate:"required"`
}

type loginInput struct {
	Email    string `validate:"required"`
	Password string `validate:"required"`
}

// ValidateRegister reports missing fields first, then the email shape, then the password length.
func ValidateRegister(in RegisterInput) error {
	in.FullName = strings.TrimSpace(in.FullName)

	fieldErrs, err := check(in)
	if err != nil || len(fieldErrs) == 0 {
		return err
	}

	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			return &Error{Message: MsgRegisterFieldsRequired}
		}
	}
	for _, fe := range fieldErrs {
		if fe.Field() == "Email" {
			return &Error{Message: MsgInvalidEmail}
		}
	}
	return &Error{Message: MsgPasswordTooShort}
}

// ValidateLogin only checks presence; credentials are checked against the store.
func ValidateLogin(email, password string) error {
	fieldErrs, err := check(loginInput{Email: email, Password: password})
	if err != nil {
		return err
	}
	if len(fieldErrs) > 0 {
		return &Error{Message: MsgLoginFieldsRequired}
	}
	return nil
}

func check(s any) (validator.ValidationErrors, error) {
	err := validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs, nil
	}
	return nil, err
}
