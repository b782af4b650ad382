package service

import (
	"fmt"

	"nestling/internal/models"
	"nestling/internal/repository"
)

// recommendedDose is one entry of the WHO routine immunization schedule,
// offset in weeks from the date of birth
type recommendedDose struct {
	Name       string
	WeekOffset int
}

var recommendedSchedule = []recommendedDose{
	{"BCG", 0},
	{"Hepatitis B (Birth Dose)", 0},
	{"OPV 0", 0},
	{"Pentavalent 1 (DTP-HepB-Hib)", 6},
	{"OPV 1", 6},
	{"PCV 1", 6},
	{"Rotavirus 1", 6},
	{"Pentavalent 2 (DTP-HepB-Hib)", 10},
	{"OPV 2", 10},
	{"PCV 2", 10},
	{"Rotavirus 2", 10},
	{"Pentavalent 3 (DTP-HepB-Hib)", 14},
	{"OPV 3", 14},
	{"PCV 3", 14},
	{"IPV", 14},
	{"Measles-Rubella 1", 39},
	{"Yellow Fever", 39},
	{"Measles-Rubella 2", 65},
	{"DTP Booster", 78},
	{"Typhoid", 104},
}

// EnsureRecommendedVaccines lays out the recommended immunization schedule
// for a child as PENDING records. Doses that already exist for the same
// vaccine and date are left alone, so the call is safe to repeat.
func EnsureRecommendedVaccines(vaccineRepo *repository.VaccineRepository, child *models.Child) error {
	existing, err := vaccineRepo.ListScheduledDoses(child.ID)
	if err != nil {
		return fmt.Errorf("failed to list existing doses: %w", err)
	}

	for _, dose := range recommendedSchedule {
		scheduled := child.DOB.AddDate(0, 0, dose.WeekOffset*7)

		already := false
		for _, date := range existing[dose.Name] {
			if date.Equal(scheduled) {
				already = true
				break
			}
		}
		if already {
			continue
		}

		record := &models.VaccineRecord{
			ChildID:       child.ID,
			VaccineName:   dose.Name,
			ScheduledDate: scheduled,
			Status:        models.VaccinePending,
			IsRecommended: true,
		}
		if _, err := vaccineRepo.CreateVaccineRecord(record); err != nil {
			return fmt.Errorf("failed to create recommended dose: %w", err)
		}
	}
	return nil
}
