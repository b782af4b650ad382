package models

import "time"

// Role is the role a user holds on a child's care team.
type Role string

const (
	RolePrimaryGuardian Role = "PRIMARY_GUARDIAN"
	RoleCaregiver       Role = "CAREGIVER"
	RolePediatrician    Role = "PEDIATRICIAN"
)

// IsValid reports whether the value is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RolePrimaryGuardian, RoleCaregiver, RolePediatrician:
		return true
	}
	return false
}

// CanManageMembers reports whether the role may invite, re-role or remove
// other care-team members.
func (r Role) CanManageMembers() bool {
	return r == RolePrimaryGuardian
}

// CanDeleteChild reports whether the role may delete the child profile.
func (r Role) CanDeleteChild() bool {
	return r == RolePrimaryGuardian
}

// Membership is the row granting a user a role on a specific child.
// A (child, user) pair has at most one membership.
type Membership struct {
	ID        string
	ChildID   string
	UserID    string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MembershipWithUser combines a membership with the member's user details,
// populated via JOIN for care-team listings.
type MembershipWithUser struct {
	Membership
	User User
}
