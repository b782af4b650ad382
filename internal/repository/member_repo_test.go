package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nestling/internal/database"
	"nestling/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, users *UserRepository, email string) *models.User {
	t.Helper()
	user, err := users.CreateUser(email, "hashedpass", "Test User")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func createTestChild(t *testing.T, children *ChildRepository, creatorID string) *models.Child {
	t.Helper()
	dob := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	child, err := children.CreateChild(creatorID, "Mia", dob, models.GenderFemale, "O+")
	if err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}
	return child
}

func TestChildCreationGrantsGuardianship(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	child := createTestChild(t, children, creator.ID)

	membership, err := members.GetMembership(child.ID, creator.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if membership == nil {
		t.Fatal("Expected creator to have a membership")
	}
	if membership.Role != models.RolePrimaryGuardian {
		t.Errorf("Creator role = %s, want %s", membership.Role, models.RolePrimaryGuardian)
	}

	count, err := members.CountPrimaryGuardians(child.ID)
	if err != nil {
		t.Fatalf("CountPrimaryGuardians failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Primary guardian count = %d, want 1", count)
	}
}

func TestGetMembershipNonMember(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	outsider := createTestUser(t, users, "outsider@example.com")
	child := createTestChild(t, children, creator.ID)

	membership, err := members.GetMembership(child.ID, outsider.ID)
	if err != nil {
		t.Fatalf("GetMembership failed: %v", err)
	}
	if membership != nil {
		t.Errorf("Expected nil membership for non-member, got %+v", membership)
	}
}

func TestLastGuardianCannotBeDemoted(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	child := createTestChild(t, children, creator.ID)

	membership, err := members.GetMembership(child.ID, creator.ID)
	if err != nil || membership == nil {
		t.Fatalf("Failed to get creator membership: %v", err)
	}

	_, err = members.UpdateMemberRole(membership.ID, models.RoleCaregiver)
	if !errors.Is(err, ErrLastPrimaryGuardian) {
		t.Errorf("UpdateMemberRole error = %v, want ErrLastPrimaryGuardian", err)
	}

	// Role must be unchanged after the rejected demotion
	after, err := members.GetMembership(child.ID, creator.ID)
	if err != nil || after == nil {
		t.Fatalf("Failed to re-read membership: %v", err)
	}
	if after.Role != models.RolePrimaryGuardian {
		t.Errorf("Role after rejected demotion = %s, want %s", after.Role, models.RolePrimaryGuardian)
	}
}

func TestLastGuardianCannotBeRemoved(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	child := createTestChild(t, children, creator.ID)

	membership, _ := members.GetMembership(child.ID, creator.ID)

	_, err := members.RemoveMember(membership.ID)
	if !errors.Is(err, ErrLastPrimaryGuardian) {
		t.Errorf("RemoveMember error = %v, want ErrLastPrimaryGuardian", err)
	}

	count, _ := members.CountPrimaryGuardians(child.ID)
	if count != 1 {
		t.Errorf("Primary guardian count after rejected removal = %d, want 1", count)
	}
}

func TestSecondGuardianAllowsHandover(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	partner := createTestUser(t, users, "partner@example.com")
	child := createTestChild(t, children, creator.ID)

	// Promote the partner to primary guardian
	if _, err := members.UpsertMember(child.ID, partner.ID, models.RolePrimaryGuardian); err != nil {
		t.Fatalf("UpsertMember failed: %v", err)
	}

	// Now the original guardian can step down
	original, _ := members.GetMembership(child.ID, creator.ID)
	updated, err := members.UpdateMemberRole(original.ID, models.RoleCaregiver)
	if err != nil {
		t.Fatalf("UpdateMemberRole failed: %v", err)
	}
	if updated.Role != models.RoleCaregiver {
		t.Errorf("Updated role = %s, want %s", updated.Role, models.RoleCaregiver)
	}

	// The partner is the last guardian and is now locked in
	partnerMembership, _ := members.GetMembership(child.ID, partner.ID)
	if _, err := members.RemoveMember(partnerMembership.ID); !errors.Is(err, ErrLastPrimaryGuardian) {
		t.Errorf("RemoveMember error = %v, want ErrLastPrimaryGuardian", err)
	}
}

func TestUpsertMemberIdempotent(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	sitter := createTestUser(t, users, "sitter@example.com")
	child := createTestChild(t, children, creator.ID)

	first, err := members.UpsertMember(child.ID, sitter.ID, models.RoleCaregiver)
	if err != nil {
		t.Fatalf("First UpsertMember failed: %v", err)
	}
	second, err := members.UpsertMember(child.ID, sitter.ID, models.RoleCaregiver)
	if err != nil {
		t.Fatalf("Second UpsertMember failed: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("Repeated upsert created new row: %s vs %s", first.ID, second.ID)
	}

	var count int
	err = db.QueryRow("SELECT COUNT(*) FROM child_members WHERE child_id = ? AND user_id = ?", child.ID, sitter.ID).Scan(&count)
	if err != nil {
		t.Fatalf("Count query failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Membership row count = %d, want 1", count)
	}
}

func TestUpsertMemberUpdatesRole(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	doctor := createTestUser(t, users, "doctor@example.com")
	child := createTestChild(t, children, creator.ID)

	if _, err := members.UpsertMember(child.ID, doctor.ID, models.RoleCaregiver); err != nil {
		t.Fatalf("UpsertMember failed: %v", err)
	}
	updated, err := members.UpsertMember(child.ID, doctor.ID, models.RolePediatrician)
	if err != nil {
		t.Fatalf("Role-changing upsert failed: %v", err)
	}
	if updated.Role != models.RolePediatrician {
		t.Errorf("Role = %s, want %s", updated.Role, models.RolePediatrician)
	}
}

func TestListChildMembersOrdering(t *testing.T) {
	db := setupTestDB(t)
	users := NewUserRepository(db)
	children := NewChildRepository(db)
	members := NewMemberRepository(db)

	creator := createTestUser(t, users, "parent@example.com")
	sitter := createTestUser(t, users, "sitter@example.com")
	child := createTestChild(t, children, creator.ID)

	if _, err := members.UpsertMember(child.ID, sitter.ID, models.RoleCaregiver); err != nil {
		t.Fatalf("UpsertMember failed: %v", err)
	}

	list, err := members.ListChildMembers(child.ID)
	if err != nil {
		t.Fatalf("ListChildMembers failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("Member count = %d, want 2", len(list))
	}
	if list[0].UserID != creator.ID {
		t.Errorf("First member = %s, want the creator %s", list[0].UserID, creator.ID)
	}
	if list[1].User.Email != "sitter@example.com" {
		t.Errorf("Second member email = %s, want sitter@example.com", list[1].User.Email)
	}
}
