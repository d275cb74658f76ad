package utils

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/ttacon/libphonenumber"
)

// NewId returns a fresh client-side entity id. Ids are generated before the
// first remote write; the store never assigns them.
func NewId(prefix string) string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	if prefix == "" {
		return token
	}
	return prefix + "-" + token
}

// NewSaleId mirrors the invoice number format the shop already prints:
// "INV-" followed by nine uppercase characters.
func NewSaleId() string {
	token := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "INV-" + token[:9]
}

func ValidatePhoneNumber(phoneNumber, countryCode string) error {
	p, err := libphonenumber.Parse(phoneNumber, countryCode)
	if err != nil {
		return err // Phone number is invalid
	}

	if !libphonenumber.IsValidNumber(p) {
		return fmt.Errorf("phone number is not valid")
	}

	return nil // Phone number is valid for the specified country code
}

func ProcessValidationErrors(err error) map[string]string {
	errorResponse := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errorResponse["error"] = err.Error()
		return errorResponse
	}

	for _, fieldErr := range validationErrors {
		field := strings.ToLower(fieldErr.Field())
		switch fieldErr.Tag() {
		case "required":
			errorResponse[field] = fmt.Sprintf("%s is required", field)
		default:
			errorResponse[field] = fmt.Sprintf("%s is not valid", field)
		}
	}
	return errorResponse
}
