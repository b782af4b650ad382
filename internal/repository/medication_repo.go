package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// MedicationRepository handles database operations for medication logs
type MedicationRepository struct {
	db *database.DB
}

// NewMedicationRepository creates a new medication repository
func NewMedicationRepository(db *database.DB) *MedicationRepository {
	return &MedicationRepository{db: db}
}

// CreateMedicationLog inserts a new medication log
func (r *MedicationRepository) CreateMedicationLog(childID, medicineName, dosage string, administeredAt time.Time) (*models.MedicationLog, error) {
	log := &models.MedicationLog{
		ID:             uuid.New().String(),
		ChildID:        childID,
		MedicineName:   medicineName,
		Dosage:         dosage,
		AdministeredAt: administeredAt,
	}
	query := `
		INSERT INTO medication_logs (id, child_id, medicine_name, dosage, administered_at)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, log.ID, log.ChildID, log.MedicineName, log.Dosage, log.AdministeredAt); err != nil {
		return nil, fmt.Errorf("failed to create medication log: %w", err)
	}
	return log, nil
}

const medicationColumns = `id, child_id, medicine_name, COALESCE(dosage, ''), administered_at`

// GetMedicationLogByID retrieves a medication log by ID
func (r *MedicationRepository) GetMedicationLogByID(logID string) (*models.MedicationLog, error) {
	query := "SELECT " + medicationColumns + " FROM medication_logs WHERE id = ?"
	log := &models.MedicationLog{}
	err := r.db.QueryRow(query, logID).Scan(&log.ID, &log.ChildID, &log.MedicineName, &log.Dosage, &log.AdministeredAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication log: %w", err)
	}
	return log, nil
}

// ListMedicationLogsByChild retrieves a child's medication logs, most recent first
func (r *MedicationRepository) ListMedicationLogsByChild(childID string) ([]models.MedicationLog, error) {
	query := "SELECT " + medicationColumns + ` FROM medication_logs
		WHERE child_id = ?
		ORDER BY administered_at DESC
	`
	return r.queryMedicationLogs(query, childID)
}

// ListMedicationLogsByUser retrieves medication logs across every child the
// user has a membership on, most recent first
func (r *MedicationRepository) ListMedicationLogsByUser(userID string) ([]models.MedicationLog, error) {
	query := `
		SELECT ml.id, ml.child_id, ml.medicine_name, COALESCE(ml.dosage, ''), ml.administered_at
		FROM medication_logs ml
		INNER JOIN child_members cm ON cm.child_id = ml.child_id
		WHERE cm.user_id = ?
		ORDER BY ml.administered_at DESC
	`
	return r.queryMedicationLogs(query, userID)
}

func (r *MedicationRepository) queryMedicationLogs(query string, arg string) ([]models.MedicationLog, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query medication logs: %w", err)
	}
	defer rows.Close()

	var logs []models.MedicationLog
	for rows.Next() {
		var log models.MedicationLog
		if err := rows.Scan(&log.ID, &log.ChildID, &log.MedicineName, &log.Dosage, &log.AdministeredAt); err != nil {
			return nil, fmt.Errorf("failed to scan medication log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// UpdateMedicationLog updates a medication log's fields
func (r *MedicationRepository) UpdateMedicationLog(log *models.MedicationLog) error {
	query := `
		UPDATE medication_logs
		SET medicine_name = ?, dosage = ?, administered_at = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, log.MedicineName, log.Dosage, log.AdministeredAt, log.ID); err != nil {
		return fmt.Errorf("failed to update medication log: %w", err)
	}
	return nil
}

// DeleteMedicationLog deletes a medication log
func (r *MedicationRepository) DeleteMedicationLog(logID string) error {
	if _, err := r.db.Exec("DELETE FROM medication_logs WHERE id = ?", logID); err != nil {
		return fmt.Errorf("failed to delete medication log: %w", err)
	}
	return nil
}
