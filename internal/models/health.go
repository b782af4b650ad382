package models

import "time"

// VaccineStatus is the enumerated status of a vaccine record.
type VaccineStatus string

const (
	VaccinePending   VaccineStatus = "PENDING"
	VaccineCompleted VaccineStatus = "COMPLETED"
)

// IsValid reports whether the value is one of the known statuses.
func (s VaccineStatus) IsValid() bool {
	return s == VaccinePending || s == VaccineCompleted
}

// GrowthLog is a dated weight/height measurement for a child.
type GrowthLog struct {
	ID         string
	ChildID    string
	RecordDate time.Time
	WeightKg   float64
	HeightCm   float64
}

// MedicationLog records a single administered dose.
type MedicationLog struct {
	ID             string
	ChildID        string
	MedicineName   string
	Dosage         string
	AdministeredAt time.Time
}

// VaccineRecord is a scheduled or completed vaccine dose. Recommended doses
// are pre-seeded from the WHO schedule and flagged IsRecommended.
type VaccineRecord struct {
	ID               string
	ChildID          string
	VaccineName      string
	ScheduledDate    time.Time
	Status           VaccineStatus
	AdministeredDate *time.Time
	IsRecommended    bool
}
