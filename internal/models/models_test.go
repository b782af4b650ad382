package models

import "testing"

func TestRoleIsValid(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{"primary guardian", RolePrimaryGuardian, true},
		{"caregiver", RoleCaregiver, true},
		{"pediatrician", RolePediatrician, true},
		{"empty", Role(""), false},
		{"lowercase", Role("caregiver"), false},
		{"unknown", Role("ADMIN"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.IsValid(); got != tt.want {
				t.Errorf("Role(%q).IsValid() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		name          string
		role          Role
		canManage     bool
		canDelete     bool
	}{
		{"primary guardian manages and deletes", RolePrimaryGuardian, true, true},
		{"caregiver has no management rights", RoleCaregiver, false, false},
		{"pediatrician has no management rights", RolePediatrician, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.role.CanManageMembers(); got != tt.canManage {
				t.Errorf("CanManageMembers() = %v, want %v", got, tt.canManage)
			}
			if got := tt.role.CanDeleteChild(); got != tt.canDelete {
				t.Errorf("CanDeleteChild() = %v, want %v", got, tt.canDelete)
			}
		})
	}
}

func TestGenderIsValid(t *testing.T) {
	for _, g := range []Gender{GenderMale, GenderFemale, GenderOther} {
		if !g.IsValid() {
			t.Errorf("Gender(%q).IsValid() = false, want true", g)
		}
	}
	if Gender("UNKNOWN").IsValid() {
		t.Error("Gender(\"UNKNOWN\").IsValid() = true, want false")
	}
}

func TestUserDisplayName(t *testing.T) {
	u := User{Email: "a@example.com", FullName: "Alice"}
	if got := u.DisplayName(); got != "Alice" {
		t.Errorf("DisplayName() = %q, want %q", got, "Alice")
	}
	u.FullName = ""
	if got := u.DisplayName(); got != "a@example.com" {
		t.Errorf("DisplayName() = %q, want %q", got, "a@example.com")
	}
}
