package service

import (
	"errors"
	"fmt"
	"time"

	"nestling/internal/models"
	"nestling/internal/repository"
	"nestling/internal/validation"
)

var ErrRecordNotFound = errors.New("record not found")

// HealthService manages growth, medication and vaccine records. Any care
// team member may read and write them; access is gated per child through
// the member service.
type HealthService struct {
	members        *MemberService
	childRepo      *repository.ChildRepository
	growthRepo     *repository.GrowthRepository
	medicationRepo *repository.MedicationRepository
	vaccineRepo    *repository.VaccineRepository
}

// NewHealthService creates a new health service
func NewHealthService(members *MemberService, childRepo *repository.ChildRepository, growthRepo *repository.GrowthRepository, medicationRepo *repository.MedicationRepository, vaccineRepo *repository.VaccineRepository) *HealthService {
	return &HealthService{
		members:        members,
		childRepo:      childRepo,
		growthRepo:     growthRepo,
		medicationRepo: medicationRepo,
		vaccineRepo:    vaccineRepo,
	}
}

// GetChild returns a child the caller has access to. Used by the PDF
// exports, which need the child's details for the document header.
func (s *HealthService) GetChild(childID, callerID string) (*models.Child, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// Growth logs

// CreateGrowthLog records a weight/height measurement
func (s *HealthService) CreateGrowthLog(childID, callerID string, recordDate time.Time, weightKg, heightCm float64) (*models.GrowthLog, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	if err := validation.ValidateGrowthMeasurements(weightKg, heightCm); err != nil {
		return nil, err
	}
	created, err := s.growthRepo.CreateGrowthLog(childID, recordDate, weightKg, heightCm)
	if err != nil {
		return nil, fmt.Errorf("failed to create growth log: %w", err)
	}
	return created, nil
}

// ListGrowthLogs returns a child's measurements, newest first
func (s *HealthService) ListGrowthLogs(childID, callerID string) ([]models.GrowthLog, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	logs, err := s.growthRepo.ListGrowthLogsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list growth logs: %w", err)
	}
	return logs, nil
}

// ListUserGrowthLogs returns measurements across every child the caller
// has access to
func (s *HealthService) ListUserGrowthLogs(callerID string) ([]models.GrowthLog, error) {
	logs, err := s.growthRepo.ListGrowthLogsByUser(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list growth logs: %w", err)
	}
	return logs, nil
}

// GrowthUpdate holds the optional fields of a growth log update
type GrowthUpdate struct {
	RecordDate *time.Time
	WeightKg   *float64
	HeightCm   *float64
}

// UpdateGrowthLog applies a partial update to a measurement. Omitted fields
// keep their current values.
func (s *HealthService) UpdateGrowthLog(logID, callerID string, update GrowthUpdate) (*models.GrowthLog, error) {
	log, err := s.growthRepo.GetGrowthLogByID(logID)
	if err != nil {
		return nil, fmt.Errorf("failed to get growth log: %w", err)
	}
	if log == nil {
		return nil, ErrRecordNotFound
	}
	if _, err := s.members.Authorize(log.ChildID, callerID); err != nil {
		return nil, ErrRecordNotFound
	}

	if update.RecordDate != nil {
		log.RecordDate = *update.RecordDate
	}
	if update.WeightKg != nil {
		log.WeightKg = *update.WeightKg
	}
	if update.HeightCm != nil {
		log.HeightCm = *update.HeightCm
	}
	if err := validation.ValidateGrowthMeasurements(log.WeightKg, log.HeightCm); err != nil {
		return nil, err
	}

	if err := s.growthRepo.UpdateGrowthLog(log); err != nil {
		return nil, fmt.Errorf("failed to update growth log: %w", err)
	}
	return log, nil
}

// DeleteGrowthLog deletes a measurement
func (s *HealthService) DeleteGrowthLog(logID, callerID string) error {
	log, err := s.growthRepo.GetGrowthLogByID(logID)
	if err != nil {
		return fmt.Errorf("failed to get growth log: %w", err)
	}
	if log == nil {
		return ErrRecordNotFound
	}
	if _, err := s.members.Authorize(log.ChildID, callerID); err != nil {
		return ErrRecordNotFound
	}
	if err := s.growthRepo.DeleteGrowthLog(logID); err != nil {
		return fmt.Errorf("failed to delete growth log: %w", err)
	}
	return nil
}

// Medication logs

// CreateMedicationLog records an administered dose
func (s *HealthService) CreateMedicationLog(childID, callerID, medicineName, dosage string, administeredAt time.Time) (*models.MedicationLog, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("medicine_name", medicineName); err != nil {
		return nil, err
	}
	created, err := s.medicationRepo.CreateMedicationLog(childID, medicineName, dosage, administeredAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create medication log: %w", err)
	}
	return created, nil
}

// ListMedicationLogs returns a child's medication history, newest first
func (s *HealthService) ListMedicationLogs(childID, callerID string) ([]models.MedicationLog, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	logs, err := s.medicationRepo.ListMedicationLogsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}

// ListUserMedicationLogs returns medication history across every child the
// caller has access to
func (s *HealthService) ListUserMedicationLogs(callerID string) ([]models.MedicationLog, error) {
	logs, err := s.medicationRepo.ListMedicationLogsByUser(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list medication logs: %w", err)
	}
	return logs, nil
}

// MedicationUpdate holds the optional fields of a dose record update
type MedicationUpdate struct {
	MedicineName   *string
	Dosage         *string
	AdministeredAt *time.Time
}

// UpdateMedicationLog applies a partial update to a dose record. Omitted
// fields keep their current values.
func (s *HealthService) UpdateMedicationLog(logID, callerID string, update MedicationUpdate) (*models.MedicationLog, error) {
	log, err := s.medicationRepo.GetMedicationLogByID(logID)
	if err != nil {
		return nil, fmt.Errorf("failed to get medication log: %w", err)
	}
	if log == nil {
		return nil, ErrRecordNotFound
	}
	if _, err := s.members.Authorize(log.ChildID, callerID); err != nil {
		return nil, ErrRecordNotFound
	}

	if update.MedicineName != nil {
		if err := validation.ValidateName("medicine_name", *update.MedicineName); err != nil {
			return nil, err
		}
		log.MedicineName = *update.MedicineName
	}
	if update.Dosage != nil {
		log.Dosage = *update.Dosage
	}
	if update.AdministeredAt != nil {
		log.AdministeredAt = *update.AdministeredAt
	}

	if err := s.medicationRepo.UpdateMedicationLog(log); err != nil {
		return nil, fmt.Errorf("failed to update medication log: %w", err)
	}
	return log, nil
}

// DeleteMedicationLog deletes a dose record
func (s *HealthService) DeleteMedicationLog(logID, callerID string) error {
	log, err := s.medicationRepo.GetMedicationLogByID(logID)
	if err != nil {
		return fmt.Errorf("failed to get medication log: %w", err)
	}
	if log == nil {
		return ErrRecordNotFound
	}
	if _, err := s.members.Authorize(log.ChildID, callerID); err != nil {
		return ErrRecordNotFound
	}
	if err := s.medicationRepo.DeleteMedicationLog(logID); err != nil {
		return fmt.Errorf("failed to delete medication log: %w", err)
	}
	return nil
}

// Vaccine records

// CreateVaccineRecord adds a manually scheduled or completed dose
func (s *HealthService) CreateVaccineRecord(childID, callerID, vaccineName string, scheduledDate time.Time, status models.VaccineStatus, administeredDate *time.Time) (*models.VaccineRecord, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	if err := validation.ValidateName("vaccine_name", vaccineName); err != nil {
		return nil, err
	}
	if !status.IsValid() {
		return nil, &validation.ValidationError{Field: "status", Message: "status must be PENDING or COMPLETED"}
	}
	record := &models.VaccineRecord{
		ChildID:          childID,
		VaccineName:      vaccineName,
		ScheduledDate:    scheduledDate,
		Status:           status,
		AdministeredDate: sanitizeAdministeredDate(status, administeredDate, scheduledDate),
	}
	created, err := s.vaccineRepo.CreateVaccineRecord(record)
	if err != nil {
		return nil, fmt.Errorf("failed to create vaccine record: %w", err)
	}
	return created, nil
}

// ListVaccineRecords returns a child's vaccine schedule, soonest first.
// The recommended schedule is filled in before listing, so children created
// before a schedule revision still get the new doses.
func (s *HealthService) ListVaccineRecords(childID, callerID string) ([]models.VaccineRecord, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	if err := EnsureRecommendedVaccines(s.vaccineRepo, child); err != nil {
		return nil, err
	}
	records, err := s.vaccineRepo.ListVaccineRecordsByChild(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccine records: %w", err)
	}
	return records, nil
}

// ListUserVaccineRecords returns vaccine records across every child the
// caller has access to
func (s *HealthService) ListUserVaccineRecords(callerID string) ([]models.VaccineRecord, error) {
	records, err := s.vaccineRepo.ListVaccineRecordsByUser(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vaccine records: %w", err)
	}
	return records, nil
}

// VaccineUpdate holds the optional fields of a vaccine record update
type VaccineUpdate struct {
	VaccineName      *string
	ScheduledDate    *time.Time
	Status           *models.VaccineStatus
	AdministeredDate *time.Time
}

// UpdateVaccineRecord applies a partial update to a dose, keeping the
// administered date consistent with the status. Omitted fields keep their
// current values.
func (s *HealthService) UpdateVaccineRecord(recordID, callerID string, update VaccineUpdate) (*models.VaccineRecord, error) {
	record, err := s.vaccineRepo.GetVaccineRecordByID(recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccine record: %w", err)
	}
	if record == nil {
		return nil, ErrRecordNotFound
	}
	if _, err := s.members.Authorize(record.ChildID, callerID); err != nil {
		return nil, ErrRecordNotFound
	}

	if update.VaccineName != nil {
		if err := validation.ValidateName("vaccine_name", *update.VaccineName); err != nil {
			return nil, err
		}
		record.VaccineName = *update.VaccineName
	}
	if update.ScheduledDate != nil {
		record.ScheduledDate = *update.ScheduledDate
	}
	if update.Status != nil {
		if !update.Status.IsValid() {
			return nil, &validation.ValidationError{Field: "status", Message: "status must be PENDING or COMPLETED"}
		}
		record.Status = *update.Status
	}
	if update.AdministeredDate != nil {
		record.AdministeredDate = update.AdministeredDate
	}
	record.AdministeredDate = sanitizeAdministeredDate(record.Status, record.AdministeredDate, record.ScheduledDate)

	if err := s.vaccineRepo.UpdateVaccineRecord(record); err != nil {
		return nil, fmt.Errorf("failed to update vaccine record: %w", err)
	}
	return record, nil
}

// DeleteVaccineRecord deletes a dose
func (s *HealthService) DeleteVaccineRecord(recordID, callerID string) error {
	record, err := s.vaccineRepo.GetVaccineRecordByID(recordID)
	if err != nil {
		return fmt.Errorf("failed to get vaccine record: %w", err)
	}
	if record == nil {
		return ErrRecordNotFound
	}
	if _, err := s.members.Authorize(record.ChildID, callerID); err != nil {
		return ErrRecordNotFound
	}
	if err := s.vaccineRepo.DeleteVaccineRecord(recordID); err != nil {
		return fmt.Errorf("failed to delete vaccine record: %w", err)
	}
	return nil
}

// sanitizeAdministeredDate keeps the administered date consistent with the
// status: a COMPLETED dose always has one, a PENDING dose never does.
func sanitizeAdministeredDate(status models.VaccineStatus, administered *time.Time, scheduled time.Time) *time.Time {
	if status != models.VaccineCompleted {
		return nil
	}
	if administered != nil {
		return administered
	}
	if !scheduled.IsZero() {
		return &scheduled
	}
	now := time.Now().UTC().Truncate(24 * time.Hour)
	return &now
}
