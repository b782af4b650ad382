package models

import "time"

// Gender is the enumerated gender stored on a child profile.
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// IsValid reports whether the value is one of the known genders.
func (g Gender) IsValid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Child represents a child profile registered by a user
type Child struct {
	ID        string
	ParentID  string // user who registered the child
	Name      string
	DOB       time.Time
	Gender    Gender
	BloodType string
	CreatedAt time.Time
	UpdatedAt time.Time
}
