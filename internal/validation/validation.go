package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Physiological bounds for growth measurements. Values outside these are
// rejected, never clamped.
const (
	MaxWeightKg = 40.0
	MinHeightCm = 20.0
	MaxHeightCm = 200.0
)

// ValidationError represents a validation error on a named field
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(field, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: field, Message: field + " is required"}
	}
	return nil
}

// ValidateDOB checks that a date of birth is set and not in the future
func ValidateDOB(dob time.Time) error {
	if dob.IsZero() {
		return ValidationError{Field: "dob", Message: "date of birth is required"}
	}
	if dob.After(time.Now()) {
		return ValidationError{Field: "dob", Message: "date of birth cannot be in the future"}
	}
	return nil
}

// ValidateGrowthMeasurements checks weight and height against physiological bounds
func ValidateGrowthMeasurements(weightKg, heightCm float64) error {
	if weightKg <= 0 || weightKg > MaxWeightKg {
		return ValidationError{
			Field:   "weight_kg",
			Message: fmt.Sprintf("weight must be greater than 0 and at most %.0f kg", MaxWeightKg),
		}
	}
	if heightCm < MinHeightCm || heightCm > MaxHeightCm {
		return ValidationError{
			Field:   "height_cm",
			Message: fmt.Sprintf("height must be between %.0f and %.0f cm", MinHeightCm, MaxHeightCm),
		}
	}
	return nil
}

// NormalizeEmail lowercases and trims an email for case-insensitive matching
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
