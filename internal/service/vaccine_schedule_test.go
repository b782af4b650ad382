package service

import (
	"testing"
	"time"

	"nestling/internal/models"
)

func TestRecommendedScheduleSeededOnCreate(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	child := env.child(t, parent.ID)

	records, err := env.health.ListVaccineRecords(child.ID, parent.ID)
	if err != nil {
		t.Fatalf("ListVaccineRecords failed: %v", err)
	}
	if len(records) != len(recommendedSchedule) {
		t.Fatalf("Record count = %d, want %d", len(records), len(recommendedSchedule))
	}

	for _, record := range records {
		if record.Status != models.VaccinePending {
			t.Errorf("%s status = %s, want PENDING", record.VaccineName, record.Status)
		}
		if !record.IsRecommended {
			t.Errorf("%s not flagged as recommended", record.VaccineName)
		}
		if record.AdministeredDate != nil {
			t.Errorf("%s has administered date %v", record.VaccineName, record.AdministeredDate)
		}
	}

	// Soonest scheduled first
	for i := 1; i < len(records); i++ {
		if records[i].ScheduledDate.Before(records[i-1].ScheduledDate) {
			t.Errorf("Records out of order at %d: %v before %v", i, records[i].ScheduledDate, records[i-1].ScheduledDate)
		}
	}
}

func TestRecommendedScheduleDatesFollowBirth(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")

	dob := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	child, err := env.childs.Create(parent.ID, "Theo", dob, models.GenderMale, "")
	if err != nil {
		t.Fatalf("Create child failed: %v", err)
	}

	records, err := env.health.ListVaccineRecords(child.ID, parent.ID)
	if err != nil {
		t.Fatalf("ListVaccineRecords failed: %v", err)
	}

	byName := make(map[string]time.Time)
	for _, record := range records {
		byName[record.VaccineName] = record.ScheduledDate
	}

	if got := byName["BCG"]; !got.Equal(dob) {
		t.Errorf("BCG scheduled %v, want %v", got, dob)
	}
	sixWeeks := dob.AddDate(0, 0, 42)
	if got := byName["Pentavalent 1 (DTP-HepB-Hib)"]; !got.Equal(sixWeeks) {
		t.Errorf("Pentavalent 1 scheduled %v, want %v", got, sixWeeks)
	}
}

func TestEnsureRecommendedVaccinesIsIdempotent(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	child := env.child(t, parent.ID)

	// Listing repeatedly must not duplicate doses
	for i := 0; i < 3; i++ {
		if _, err := env.health.ListVaccineRecords(child.ID, parent.ID); err != nil {
			t.Fatalf("ListVaccineRecords failed: %v", err)
		}
	}

	var count int
	err := env.db.QueryRow("SELECT COUNT(*) FROM vaccine_records WHERE child_id = ?", child.ID).Scan(&count)
	if err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != len(recommendedSchedule) {
		t.Errorf("Record count after repeated listing = %d, want %d", count, len(recommendedSchedule))
	}
}

func TestRecommendedScheduleHasNoDuplicateDoses(t *testing.T) {
	seen := make(map[string]map[int]bool)
	for _, dose := range recommendedSchedule {
		if seen[dose.Name] == nil {
			seen[dose.Name] = make(map[int]bool)
		}
		if seen[dose.Name][dose.WeekOffset] {
			t.Errorf("Duplicate dose in schedule: %s at week %d", dose.Name, dose.WeekOffset)
		}
		seen[dose.Name][dose.WeekOffset] = true
	}
}
