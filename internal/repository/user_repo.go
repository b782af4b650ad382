package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user with a password credential
func (r *UserRepository) CreateUser(email, passwordHash, fullName string) (*models.User, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO users (id, email, full_name, password_hash)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, id, email, fullName, passwordHash); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:           id,
		Email:        email,
		FullName:     fullName,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}, nil
}

// CreateGoogleUser inserts a new user provisioned from a Google identity
func (r *UserRepository) CreateGoogleUser(email, fullName, googleSub string) (*models.User, error) {
	id := uuid.New().String()
	query := `
		INSERT INTO users (id, email, full_name, google_sub)
		VALUES (?, ?, ?, ?)
	`
	if _, err := r.db.Exec(query, id, email, fullName, googleSub); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		FullName:  fullName,
		GoogleSub: googleSub,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

const userColumns = `id, email, COALESCE(full_name, ''), COALESCE(google_sub, ''), COALESCE(password_hash, ''), created_at, updated_at`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FullName,
		&user.GoogleSub,
		&user.PasswordHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(query, email))
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(query, id))
}

// GetUserByGoogleSub retrieves a user by Google subject
func (r *UserRepository) GetUserByGoogleSub(googleSub string) (*models.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE google_sub = ?"
	return scanUser(r.db.QueryRow(query, googleSub))
}

// LinkGoogleSub attaches a Google subject to an existing account
func (r *UserRepository) LinkGoogleSub(userID, googleSub string) error {
	query := "UPDATE users SET google_sub = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, googleSub, userID); err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	return nil
}

// UpdateFullName updates a user's display name
func (r *UserRepository) UpdateFullName(userID, fullName string) error {
	query := "UPDATE users SET full_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := r.db.Exec(query, fullName, userID); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
