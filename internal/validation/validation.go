package validation

import (
	"strconv"

	apperrors "edu-info-bot/internal/errors"
)

// Genders is the fixed set of accepted gender labels, presented as keyboard
// buttons during registration.
var Genders = []string{"Male", "Female"}

// ValidateAge parses an age entered as text. The text must consist entirely
// of decimal digits.
func ValidateAge(text string) (int, error) {
	if !isAllDigits(text) {
		return 0, &apperrors.ValidationError{Field: "age", Message: "must be a number"}
	}

	age, err := strconv.Atoi(text)
	if err != nil {
		return 0, &apperrors.ValidationError{Field: "age", Message: "must be a number"}
	}

	return age, nil
}

// ValidateGender checks that the text is one of the accepted gender labels.
func ValidateGender(text string) error {
	for _, g := range Genders {
		if text == g {
			return nil
		}
	}
	return &apperrors.ValidationError{Field: "gender", Message: "unknown gender"}
}

// ValidateDepartment parses a department number entered as text.
func ValidateDepartment(text string) (int, error) {
	department, err := strconv.Atoi(text)
	if err != nil {
		return 0, &apperrors.ValidationError{Field: "department", Message: "must be a number"}
	}
	return department, nil
}

// isAllDigits checks that the string is non-empty and all decimal digits
func isAllDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
