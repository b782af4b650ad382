package service

import (
	"bytes"
	"testing"
	"time"

	"nestling/internal/models"
)

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name      string
		prefix    string
		childName string
		expected  string
	}{
		{
			name:      "simple name",
			prefix:    "medications",
			childName: "Mia",
			expected:  "medications_mia.pdf",
		},
		{
			name:      "name with spaces",
			prefix:    "vaccines",
			childName: "Mia Rose",
			expected:  "vaccines_mia_rose.pdf",
		},
		{
			name:      "special characters stripped",
			prefix:    "medications",
			childName: "Zoë O'Brien!",
			expected:  "medications_zo_obrien.pdf",
		},
		{
			name:      "empty name falls back",
			prefix:    "vaccines",
			childName: "   ",
			expected:  "vaccines_child.pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ExportFilename(tt.prefix, tt.childName)
			if result != tt.expected {
				t.Errorf("ExportFilename() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMedicationSummaryRendersPDF(t *testing.T) {
	pdfService := NewPDFService()
	child := &models.Child{
		Name:      "Mia",
		DOB:       time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		BloodType: "O+",
	}
	logs := []models.MedicationLog{
		{MedicineName: "Paracetamol", Dosage: "2.5ml", AdministeredAt: time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC)},
		{MedicineName: "Amoxicillin", Dosage: "5ml", AdministeredAt: time.Date(2025, 1, 2, 18, 0, 0, 0, time.UTC)},
	}

	data, err := pdfService.MedicationSummary(child, logs)
	if err != nil {
		t.Fatalf("MedicationSummary failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Output does not start with a PDF header")
	}
}

func TestVaccineScheduleRendersPDF(t *testing.T) {
	pdfService := NewPDFService()
	administered := time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)
	child := &models.Child{
		Name: "Theo",
		DOB:  time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}
	records := []models.VaccineRecord{
		{VaccineName: "BCG", ScheduledDate: child.DOB, Status: models.VaccineCompleted, AdministeredDate: &administered},
		{VaccineName: "OPV 1", ScheduledDate: child.DOB.AddDate(0, 0, 42), Status: models.VaccinePending},
	}

	data, err := pdfService.VaccineSchedule(child, records)
	if err != nil {
		t.Fatalf("VaccineSchedule failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Output does not start with a PDF header")
	}

	// An empty schedule still renders
	empty, err := pdfService.VaccineSchedule(child, nil)
	if err != nil {
		t.Fatalf("VaccineSchedule with no records failed: %v", err)
	}
	if len(empty) == 0 {
		t.Error("Empty schedule produced no output")
	}
}
