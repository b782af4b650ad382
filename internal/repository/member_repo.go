package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"nestling/internal/database"
	"nestling/internal/models"
)

// ErrLastPrimaryGuardian is returned when a mutation would leave a child
// with no PRIMARY_GUARDIAN membership.
var ErrLastPrimaryGuardian = errors.New("cannot remove the last primary guardian")

// MemberRepository handles database operations for care-team memberships
type MemberRepository struct {
	db *database.DB
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(db *database.DB) *MemberRepository {
	return &MemberRepository{db: db}
}

const memberColumns = `id, child_id, user_id, role, created_at, updated_at`

func scanMembership(scan func(dest ...interface{}) error) (*models.Membership, error) {
	m := &models.Membership{}
	var role string
	err := scan(&m.ID, &m.ChildID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Role = models.Role(role)
	return m, nil
}

// GetMembership retrieves the membership for a (child, user) pair
func (r *MemberRepository) GetMembership(childID, userID string) (*models.Membership, error) {
	query := "SELECT " + memberColumns + " FROM child_members WHERE child_id = ? AND user_id = ?"
	m, err := scanMembership(r.db.QueryRow(query, childID, userID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// GetMembershipByID retrieves a membership by its row id
func (r *MemberRepository) GetMembershipByID(memberID string) (*models.Membership, error) {
	query := "SELECT " + memberColumns + " FROM child_members WHERE id = ?"
	m, err := scanMembership(r.db.QueryRow(query, memberID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	return m, nil
}

// ListChildMembers retrieves all memberships for a child with member details,
// oldest first
func (r *MemberRepository) ListChildMembers(childID string) ([]models.MembershipWithUser, error) {
	query := `
		SELECT cm.id, cm.child_id, cm.user_id, cm.role, cm.created_at, cm.updated_at,
		       u.id, u.email, COALESCE(u.full_name, ''), u.created_at
		FROM child_members cm
		INNER JOIN users u ON cm.user_id = u.id
		WHERE cm.child_id = ?
		ORDER BY cm.created_at ASC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []models.MembershipWithUser
	for rows.Next() {
		var m models.MembershipWithUser
		var role string
		if err := rows.Scan(
			&m.ID, &m.ChildID, &m.UserID, &role, &m.CreatedAt, &m.UpdatedAt,
			&m.User.ID, &m.User.Email, &m.User.FullName, &m.User.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		m.Role = models.Role(role)
		members = append(members, m)
	}

	return members, rows.Err()
}

// CountPrimaryGuardians counts PRIMARY_GUARDIAN memberships for a child
func (r *MemberRepository) CountPrimaryGuardians(childID string) (int, error) {
	var count int
	query := "SELECT COUNT(*) FROM child_members WHERE child_id = ? AND role = ?"
	err := r.db.QueryRow(query, childID, string(models.RolePrimaryGuardian)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count guardians: %w", err)
	}
	return count, nil
}

// UpsertMember creates a membership for (child, user) or, if one already
// exists, updates its role in place. The last-guardian guard is re-checked
// inside the transaction so concurrent demotions cannot race past it.
func (r *MemberRepository) UpsertMember(childID, userID string, role models.Role) (*models.Membership, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := tx.GetDialect().LockClause()
	query := "SELECT " + memberColumns + " FROM child_members WHERE child_id = ? AND user_id = ?" + lock
	existing, err := scanMembership(tx.QueryRow(query, childID, userID).Scan)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if existing != nil {
		if existing.Role == role {
			return existing, tx.Commit()
		}
		if existing.Role == models.RolePrimaryGuardian && role != models.RolePrimaryGuardian {
			if err := guardLastGuardian(tx, childID); err != nil {
				return nil, err
			}
		}
		update := "UPDATE child_members SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
		if _, err := tx.Exec(update, string(role), existing.ID); err != nil {
			return nil, fmt.Errorf("failed to update membership: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return nil, fmt.Errorf("failed to commit transaction: %w", err)
		}
		existing.Role = role
		existing.UpdatedAt = time.Now()
		return existing, nil
	}

	m := &models.Membership{
		ID:        uuid.New().String(),
		ChildID:   childID,
		UserID:    userID,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	insert := "INSERT INTO child_members (id, child_id, user_id, role) VALUES (?, ?, ?, ?)"
	if _, err := tx.Exec(insert, m.ID, m.ChildID, m.UserID, string(m.Role)); err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return m, nil
}

// UpdateMemberRole changes a membership's role, enforcing the last-guardian
// guard transactionally
func (r *MemberRepository) UpdateMemberRole(memberID string, role models.Role) (*models.Membership, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := tx.GetDialect().LockClause()
	query := "SELECT " + memberColumns + " FROM child_members WHERE id = ?" + lock
	m, err := scanMembership(tx.QueryRow(query, memberID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	if m.Role == models.RolePrimaryGuardian && role != models.RolePrimaryGuardian {
		if err := guardLastGuardian(tx, m.ChildID); err != nil {
			return nil, err
		}
	}

	update := "UPDATE child_members SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?"
	if _, err := tx.Exec(update, string(role), memberID); err != nil {
		return nil, fmt.Errorf("failed to update membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	m.Role = role
	m.UpdatedAt = time.Now()
	return m, nil
}

// RemoveMember deletes a membership, enforcing the last-guardian guard
// transactionally. Returns false if the membership no longer exists.
func (r *MemberRepository) RemoveMember(memberID string) (bool, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	lock := tx.GetDialect().LockClause()
	query := "SELECT " + memberColumns + " FROM child_members WHERE id = ?" + lock
	m, err := scanMembership(tx.QueryRow(query, memberID).Scan)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get membership: %w", err)
	}

	if m.Role == models.RolePrimaryGuardian {
		if err := guardLastGuardian(tx, m.ChildID); err != nil {
			return false, err
		}
	}

	if _, err := tx.Exec("DELETE FROM child_members WHERE id = ?", memberID); err != nil {
		return false, fmt.Errorf("failed to remove membership: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

// guardLastGuardian fails with ErrLastPrimaryGuardian unless the child has
// more than one PRIMARY_GUARDIAN. Runs inside the caller's transaction; the
// lock clause holds the counted rows until commit where the dialect supports
// row locks.
func guardLastGuardian(tx *database.Tx, childID string) error {
	lock := tx.GetDialect().LockClause()
	query := "SELECT COUNT(*) FROM (SELECT id FROM child_members WHERE child_id = ? AND role = ?" + lock + ") guardians"
	var count int
	if err := tx.QueryRow(query, childID, string(models.RolePrimaryGuardian)).Scan(&count); err != nil {
		return fmt.Errorf("failed to count guardians: %w", err)
	}
	if count <= 1 {
		return ErrLastPrimaryGuardian
	}
	return nil
}
