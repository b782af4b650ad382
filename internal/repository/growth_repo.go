package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// GrowthRepository handles database operations for growth logs
type GrowthRepository struct {
	db *database.DB
}

// NewGrowthRepository creates a new growth repository
func NewGrowthRepository(db *database.DB) *GrowthRepository {
	return &GrowthRepository{db: db}
}

// CreateGrowthLog inserts a new growth log
func (r *GrowthRepository) CreateGrowthLog(childID string, recordDate time.Time, weightKg, heightCm float64) (*models.GrowthLog, error) {
	log := &models.GrowthLog{
		ID:         uuid.New().String(),
		ChildID:    childID,
		RecordDate: recordDate,
		WeightKg:   weightKg,
		HeightCm:   heightCm,
	}
	query := `
		INSERT INTO growth_logs (id, child_id, record_date, weight_kg, height_cm)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, log.ID, log.ChildID, log.RecordDate, log.WeightKg, log.HeightCm); err != nil {
		return nil, fmt.Errorf("failed to create growth log: %w", err)
	}
	return log, nil
}

// GetGrowthLogByID retrieves a growth log by ID
func (r *GrowthRepository) GetGrowthLogByID(logID string) (*models.GrowthLog, error) {
	query := "SELECT id, child_id, record_date, weight_kg, height_cm FROM growth_logs WHERE id = ?"
	log := &models.GrowthLog{}
	err := r.db.QueryRow(query, logID).Scan(&log.ID, &log.ChildID, &log.RecordDate, &log.WeightKg, &log.HeightCm)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get growth log: %w", err)
	}
	return log, nil
}

// ListGrowthLogsByChild retrieves a child's growth logs, most recent first
func (r *GrowthRepository) ListGrowthLogsByChild(childID string) ([]models.GrowthLog, error) {
	query := `
		SELECT id, child_id, record_date, weight_kg, height_cm
		FROM growth_logs
		WHERE child_id = ?
		ORDER BY record_date DESC
	`
	return r.queryGrowthLogs(query, childID)
}

// ListGrowthLogsByUser retrieves growth logs across every child the user has
// a membership on, most recent first
func (r *GrowthRepository) ListGrowthLogsByUser(userID string) ([]models.GrowthLog, error) {
	query := `
		SELECT gl.id, gl.child_id, gl.record_date, gl.weight_kg, gl.height_cm
		FROM growth_logs gl
		INNER JOIN child_members cm ON cm.child_id = gl.child_id
		WHERE cm.user_id = ?
		ORDER BY gl.record_date DESC
	`
	return r.queryGrowthLogs(query, userID)
}

func (r *GrowthRepository) queryGrowthLogs(query string, arg string) ([]models.GrowthLog, error) {
	rows, err := r.db.Query(query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to query growth logs: %w", err)
	}
	defer rows.Close()

	var logs []models.GrowthLog
	for rows.Next() {
		var log models.GrowthLog
		if err := rows.Scan(&log.ID, &log.ChildID, &log.RecordDate, &log.WeightKg, &log.HeightCm); err != nil {
			return nil, fmt.Errorf("failed to scan growth log: %w", err)
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

// UpdateGrowthLog updates a growth log's fields
func (r *GrowthRepository) UpdateGrowthLog(log *models.GrowthLog) error {
	query := `
		UPDATE growth_logs
		SET record_date = ?, weight_kg = ?, height_cm = ?
		WHERE id = ?
	`
	if _, err := r.db.Exec(query, log.RecordDate, log.WeightKg, log.HeightCm, log.ID); err != nil {
		return fmt.Errorf("failed to update growth log: %w", err)
	}
	return nil
}

// DeleteGrowthLog deletes a growth log
func (r *GrowthRepository) DeleteGrowthLog(logID string) error {
	if _, err := r.db.Exec("DELETE FROM growth_logs WHERE id = ?", logID); err != nil {
		return fmt.Errorf("failed to delete growth log: %w", err)
	}
	return nil
}
