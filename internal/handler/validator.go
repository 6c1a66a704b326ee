package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/geoclaim/geoclaim/internal/domain"
)

// Validator wraps the validator instance
type Validator struct {
	validate *validator.Validate
}

// Global validator instance
var validate *Validator

// InitValidator initializes the global validator
func InitValidator() {
	v := validator.New()

	_ = v.RegisterValidation("spottype", validateSpotType)

	validate = &Validator{validate: v}
}

// GetValidator returns the global validator instance
func GetValidator() *Validator {
	if validate == nil {
		InitValidator()
	}
	return validate
}

// ValidateStruct validates a struct using tags
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.validate.Struct(s)
}

// FormatValidationError formats validation errors into a field map
// without leaking internal struct names.
func FormatValidationError(err error) map[string]string {
	if err == nil {
		return nil
	}

	errs := make(map[string]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errs["error"] = "Invalid request format"
		return errs
	}

	for _, e := range validationErrors {
		field := strings.ToLower(e.Field())
		switch e.Tag() {
		case "required":
			errs[field] = "This field is required"
		case "latitude":
			errs[field] = "Must be a latitude between -90 and 90"
		case "longitude":
			errs[field] = "Must be a longitude between -180 and 180"
		case "spottype":
			errs[field] = "Unknown spot type"
		case "max":
			errs[field] = fmt.Sprintf("Must be at most %s", e.Param())
		case "min":
			errs[field] = fmt.Sprintf("Must be at least %s", e.Param())
		case "gt":
			errs[field] = fmt.Sprintf("Must be greater than %s", e.Param())
		default:
			errs[field] = "Invalid value"
		}
	}

	return errs
}

// validSpotTypes mirrors the multiplier table in the domain package
var validSpotTypes = map[domain.SpotType]bool{
	domain.SpotTypeStandard:   true,
	domain.SpotTypeChurch:     true,
	domain.SpotTypeSight:      true,
	domain.SpotTypeSports:     true,
	domain.SpotTypePlayground: true,
	domain.SpotTypeMonument:   true,
	domain.SpotTypeMuseum:     true,
	domain.SpotTypeCastle:     true,
	domain.SpotTypePark:       true,
	domain.SpotTypeViewpoint:  true,
	domain.SpotTypeHistoric:   true,
	domain.SpotTypeCultural:   true,
}

func validateSpotType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	// Empty defaults to standard downstream.
	if value == "" {
		return true
	}
	return validSpotTypes[domain.SpotType(strings.ToLower(value))]
}
