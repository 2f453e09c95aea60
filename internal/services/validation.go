package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	"github.com/franciscosanchezn/store-ratings-api/internal/models"
	"github.com/go-playground/validator/v10"
)

const (
	passwordMinLen    = 8
	passwordMaxLen    = 16
	passwordSpecials  = "!@#$%^&*"
	passwordUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Messages shown to clients, shared with the SPA's client side checks
const (
	msgName           = "Name must be 2-60 characters"
	msgEmail          = "Valid email required"
	msgPassword       = "Password must be 8-16 chars with uppercase and special char"
	msgAddress        = "Address must be max 400 characters"
	msgRole           = "Role must be one of user, store_owner, admin"
	msgStoreName      = "Store name is required and must be max 100 characters"
	msgStoreAddress   = "Store address is required and must be max 400 characters"
	msgStoreOwner     = "owner_id is required"
	msgRating         = "Rating must be between 1 and 5"
	msgStoreID        = "store_id is required"
	msgCurrentPwd     = "Current password is required"
	msgInvalidRequest = "Invalid request"
)

// NewUserInput is used both for self registration and admin user creation
type NewUserInput struct {
	Name     string      `json:"name" validate:"min=2,max=60"`
	Email    string      `json:"email" validate:"required,email,max=255"`
	Password string      `json:"password" validate:"password_policy"`
	Address  string      `json:"address" validate:"max=400"`
	Role     models.Role `json:"role" validate:"omitempty,role"`
}

type NewStoreInput struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Address string `json:"address" validate:"required,max=400"`
	OwnerID uint   `json:"owner_id" validate:"required"`
}

type RatingInput struct {
	StoreID uint `json:"store_id" validate:"required"`
	Rating  int  `json:"rating" validate:"min=1,max=5"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"password_policy"`
}

// fieldMessages maps a struct field name to the message reported when any rule on it fails
var fieldMessages = map[string]string{
	"NewUserInput.Name":                   msgName,
	"NewUserInput.Email":                  msgEmail,
	"NewUserInput.Password":               msgPassword,
	"NewUserInput.Address":                msgAddress,
	"NewUserInput.Role":                   msgRole,
	"NewStoreInput.Name":                  msgStoreName,
	"NewStoreInput.Email":                 msgEmail,
	"NewStoreInput.Address":               msgStoreAddress,
	"NewStoreInput.OwnerID":               msgStoreOwner,
	"RatingInput.StoreID":                 msgStoreID,
	"RatingInput.Rating":                  msgRating,
	"ChangePasswordInput.CurrentPassword": msgCurrentPwd,
	"ChangePasswordInput.NewPassword":     msgPassword,
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// registration only fails on programmer error, so panicking at init is fine
	if err := v.RegisterValidation("password_policy", func(fl validator.FieldLevel) bool {
		return ValidPassword(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	}); err != nil {
		panic(err)
	}
	return v
}

// ValidPassword reports whether password is 8-16 characters long and
// contains at least one uppercase letter and one of !@#$%^&*
func ValidPassword(password string) bool {
	n := utf8.RuneCountInString(password)
	if n < passwordMinLen || n > passwordMaxLen {
		return false
	}
	return strings.ContainsAny(password, passwordUppercase) && strings.ContainsAny(password, passwordSpecials)
}

// validateInput runs the struct rules on input and turns the first failure
// into a ValidationError carrying a client friendly message
func validateInput(input any) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &models.AppError{Kind: models.KindValidation, Message: msgInvalidRequest, Err: err}
	}

	first := fieldErrs[0]
	key := fmt.Sprintf("%s.%s", reflect.Indirect(reflect.ValueOf(input)).Type().Name(), first.StructField())
	if msg, ok := fieldMessages[key]; ok {
		return models.NewValidationError(msg)
	}
	return models.NewValidationError(fmt.Sprintf("%s is invalid", first.Field()))
}
