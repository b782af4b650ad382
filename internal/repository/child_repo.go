package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// CreateChild creates a child profile and, in the same transaction, the
// creator's PRIMARY_GUARDIAN membership. A child never exists without one.
func (r *ChildRepository) CreateChild(creatorUserID, name string, dob time.Time, gender models.Gender, bloodType string) (*models.Child, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	childID := uuid.New().String()
	query := `
		INSERT INTO children (id, parent_id, name, dob, gender, blood_type)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, childID, creatorUserID, name, dob, string(gender), bloodType); err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	memberID := uuid.New().String()
	query = `
		INSERT INTO child_members (id, child_id, user_id, role)
		VALUES (?, ?, ?, ?)
	`
	if _, err := tx.Exec(query, memberID, childID, creatorUserID, string(models.RolePrimaryGuardian)); err != nil {
		return nil, fmt.Errorf("failed to create guardian membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Child{
		ID:        childID,
		ParentID:  creatorUserID,
		Name:      name,
		DOB:       dob,
		Gender:    gender,
		BloodType: bloodType,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

const childColumns = `id, parent_id, name, dob, gender, COALESCE(blood_type, ''), created_at, updated_at`

func scanChildRow(scan func(dest ...interface{}) error) (*models.Child, error) {
	child := &models.Child{}
	var gender string
	err := scan(
		&child.ID,
		&child.ParentID,
		&child.Name,
		&child.DOB,
		&gender,
		&child.BloodType,
		&child.CreatedAt,
		&child.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	child.Gender = models.Gender(gender)
	return child, nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(childID string) (*models.Child, error) {
	query := "SELECT " + childColumns + " FROM children WHERE id = ?"
	child, err := scanChildRow(r.db.QueryRow(query, childID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	return child, nil
}

// GetUserChildren retrieves all children the user holds a membership on,
// newest first
func (r *ChildRepository) GetUserChildren(userID string) ([]models.Child, error) {
	query := `
		SELECT c.id, c.parent_id, c.name, c.dob, c.gender, COALESCE(c.blood_type, ''), c.created_at, c.updated_at
		FROM children c
		INNER JOIN child_members cm ON c.id = cm.child_id
		WHERE cm.user_id = ?
		ORDER BY c.created_at DESC
	`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		child, err := scanChildRow(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, *child)
	}

	return children, rows.Err()
}

// UpdateChild updates a child's profile fields
func (r *ChildRepository) UpdateChild(child *models.Child) error {
	query := `
		UPDATE children
		SET name = ?, dob = ?, gender = ?, blood_type = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	_, err := r.db.Exec(query, child.Name, child.DOB, string(child.Gender), child.BloodType, child.ID)
	if err != nil {
		return fmt.Errorf("failed to update child: %w", err)
	}
	return nil
}

// DeleteChild deletes a child and all associated data via cascading foreign keys
func (r *ChildRepository) DeleteChild(childID string) error {
	query := "DELETE FROM children WHERE id = ?"
	if _, err := r.db.Exec(query, childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
