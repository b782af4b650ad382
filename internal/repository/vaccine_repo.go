package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// VaccineRepository handles database operations for vaccine records
type VaccineRepository struct {
	db *database.DB
}

// NewVaccineRepository creates a new vaccine repository
func NewVaccineRepository(db *database.DB) *VaccineRepository {
	return &VaccineRepository{db: db}
}

// CreateVaccineRecord inserts a new vaccine record
func (r *VaccineRepository) CreateVaccineRecord(record *models.VaccineRecord) (*models.VaccineRecord, error) {
	record.ID = uuid.New().String()
	query := `
		INSERT INTO vaccine_records (id, child_id, vaccine_name, scheduled_date, status, administered_date, is_recommended)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		record.ID, record.ChildID, record.VaccineName, record.ScheduledDate,
		string(record.Status), nullableDate(record.AdministeredDate), record.IsRecommended,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create vaccine record: %w", err)
	}
	return record, nil
}

const vaccineColumns = `id, child_id, vaccine_name, scheduled_date, status, administered_date, is_recommended`

func scanVaccineRecord(scan func(dest ...interface{}) error) (*models.VaccineRecord, error) {
	record := &models.VaccineRecord{}
	var status string
	var administered sql.NullTime
	err := scan(
		&record.ID, &record.ChildID, &record.VaccineName, &record.ScheduledDate,
		&status, &administered, &record.IsRecommended,
	)
	if err != nil {
		return nil, err
	}
	record.Status = models.VaccineStatus(status)
	if administered.Valid {
		record.AdministeredDate = &administered.Time
	}
	return record, nil
}

// GetVaccineRecordByID retrieves a vaccine record by ID
func (r *VaccineRepository) GetVaccineRecordByID(recordID string) (*models.VaccineRecord, error) {
	query := "SELECT " + vaccineColumns + " FROM vaccine_records WHERE id = ?"
	record, err := scanVaccineRecord(r.db.QueryRow(query, recordID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vaccine record: %w", err)
	}
	return record, nil
}

// ListVaccineRecordsByChild retrieves a child's vaccine records, soonest scheduled first
func (r *VaccineRepository) ListVaccineRecordsByChild(childID string) ([]models.VaccineRecord, error) {
	query := "SELECT " + vaccineColumns + ` FROM vaccine_records
		WHERE child_id = ?
		ORDER BY scheduled_date ASC
	`
	return r.queryVaccineRecords(query, childID)
}

// ListVaccineRecordsByUser retrieves vaccine records across every child the
// user has a membership on, soonest scheduled first
func (r *VaccineRepository) ListVaccineRecordsByUser(userID string) ([]models.VaccineRecord, error) {
	query := `
		SELECT vr.id, vr.child_id, vr.vaccine_name, vr.scheduled_date, vr.status, vr.administered_date, vr.is_recommended
		FROM vaccine_records vr
		INNER JOIN child_members cm ON cm.child_id = vr.child_id
		WHERE cm.user_id = ?
		ORDER BY vr.scheduled_date ASC
	`
	return r.queryVaccineRecords(query, userID)
}

func (r *VaccineRepository) queryVaccineRecords(query string, arg string) ([]models.VaccineRecord, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query vaccine records: %w", err)
	}
	defer rows.Close()

	var records []models.VaccineRecord
	for rows.Next() {
		record, err := scanVaccineRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vaccine record: %w", err)
		}
		records = append(records, *record)
	}
	return records, rows.Err()
}

// ListScheduledDoses returns the (vaccine name, scheduled date) pairs already
// present for a child. Used to avoid duplicating recommended doses.
func (r *VaccineRepository) ListScheduledDoses(childID string) (map[string][]time.Time, error) {
	query := "SELECT vaccine_name, scheduled_date FROM vaccine_records WHERE child_id = ?"
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scheduled doses: %w", err)
	}
	defer rows.Close()

	doses := make(map[string][]time.Time)
	for rows.Next() {
		var name string
		var scheduled time.Time
		if err := rows.Scan(&name, &scheduled); err != nil {
			return nil, fmt.Errorf("failed to scan scheduled dose: %w", err)
		}
		doses[name] = append(doses[name], scheduled)
	}
	return doses, rows.Err()
}

// UpdateVaccineRecord updates a vaccine record's fields
func (r *VaccineRepository) UpdateVaccineRecord(record *models.VaccineRecord) error {
	query := `
		UPDATE vaccine_records
		SET vaccine_name = ?, scheduled_date = ?, status = ?, administered_date = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		record.VaccineName, record.ScheduledDate, string(record.Status),
		nullableDate(record.AdministeredDate), record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vaccine record: %w", err)
	}
	return nil
}

// DeleteVaccineRecord deletes a vaccine record
func (r *VaccineRepository) DeleteVaccineRecord(recordID string) error {
	if _, err := r.db.Exec("DELETE FROM vaccine_records WHERE id = ?", recordID); err != nil {
		return fmt.Errorf("failed to delete vaccine record: %w", err)
	}
	return nil
}

// nullableDate converts an optional date to a driver-friendly value
func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
