package backoffice_integration_utils

import (
	"context"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func InitValidator() *validator.Validate {
	validate = validator.New()
	validate.RegisterValidation(string(IranMobile), ValidateIranMobile)
	validate.RegisterValidation(string(SortDirection), ValidateSortDirection)

	return validate
}

func GetValidator() *validator.Validate {
	if validate == nil {
		return InitValidator()
	} else {
		return validate
	}
}

func ValidateStruct(ctx context.Context, s interface{}) error {
	return GetValidator().Struct(s)
}

// Register custom validation rule

// Custom validation tag name to be used in struct tag
type CustomValidatorName string

const (
	IranMobile    CustomValidatorName = "iranMobile"
	SortDirection CustomValidatorName = "sortDir"
)

// ValidateIranMobile accepts the local 09xxxxxxxxx form used across the
// panels. Normalizing +98 prefixes is the caller's job.
func ValidateIranMobile(fl validator.FieldLevel) bool {
	mobile := fl.Field().String()

	if len(mobile) != 11 || mobile[0] != '0' || mobile[1] != '9' {
		return false
	}
	for _, c := range mobile[2:] {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

func ValidateSortDirection(fl validator.FieldLevel) bool {
	dir := fl.Field().String()
	return dir == "asc" || dir == "desc"
}
