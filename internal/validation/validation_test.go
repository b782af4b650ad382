package validation

import (
	"errors"
	"testing"
	"time"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{"valid email", "parent@example.com", false},
		{"valid with plus", "parent+nestling@example.com", false},
		{"empty", "", true},
		{"missing domain", "parent@", true},
		{"missing at", "parent.example.com", true},
		{"whitespace only", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateGrowthMeasurements(t *testing.T) {
	tests := []struct {
		name     string
		weightKg float64
		heightCm float64
		wantErr  string // offending field, "" for valid
	}{
		{"newborn measurements", 3.2, 50.0, ""},
		{"toddler measurements", 12.5, 90.0, ""},
		{"negative weight", -1, 50.0, "weight_kg"},
		{"zero weight", 0, 50.0, "weight_kg"},
		{"implausible weight", 80, 50.0, "weight_kg"},
		{"height too small", 3.2, 10.0, "height_cm"},
		{"height too large", 3.2, 250.0, "height_cm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateGrowthMeasurements(tt.weightKg, tt.heightCm)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateGrowthMeasurements(%v, %v) error = %v, want nil", tt.weightKg, tt.heightCm, err)
				}
				return
			}

			var vErr ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidateGrowthMeasurements(%v, %v) error = %v, want ValidationError", tt.weightKg, tt.heightCm, err)
			}
			if vErr.Field != tt.wantErr {
				t.Errorf("ValidationError.Field = %q, want %q", vErr.Field, tt.wantErr)
			}
		})
	}
}

func TestValidateDOB(t *testing.T) {
	if err := ValidateDOB(time.Now().AddDate(0, -3, 0)); err != nil {
		t.Errorf("ValidateDOB(past) error = %v, want nil", err)
	}
	if err := ValidateDOB(time.Now().AddDate(0, 0, 2)); err == nil {
		t.Error("ValidateDOB(future) error = nil, want error")
	}
	if err := ValidateDOB(time.Time{}); err == nil {
		t.Error("ValidateDOB(zero) error = nil, want error")
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Parent@Example.COM "); got != "parent@example.com" {
		t.Errorf("NormalizeEmail() = %q, want %q", got, "parent@example.com")
	}
}
