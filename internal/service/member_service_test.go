package service

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"nestling/internal/database"
	"nestling/internal/models"
	"nestling/internal/repository"
)

type testEnv struct {
	db      *database.DB
	users   *repository.UserRepository
	members *MemberService
	childs  *ChildService
	health  *HealthService
}

func setupEnv(t *testing.T) *testEnv {
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

	userRepo := repository.NewUserRepository(db)
	childRepo := repository.NewChildRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	growthRepo := repository.NewGrowthRepository(db)
	medicationRepo := repository.NewMedicationRepository(db)
	vaccineRepo := repository.NewVaccineRepository(db)

	email, err := NewEmailService("us-east-1", "", "", "http://localhost:8080")
	if err != nil {
		t.Fatalf("Failed to create email service: %v", err)
	}

	members := NewMemberService(memberRepo, userRepo, email)
	return &testEnv{
		db:      db,
		users:   userRepo,
		members: members,
		childs:  NewChildService(childRepo, members, vaccineRepo),
		health:  NewHealthService(members, childRepo, growthRepo, medicationRepo, vaccineRepo),
	}
}

func (env *testEnv) user(t *testing.T, email string) *models.User {
	t.Helper()
	user, err := env.users.CreateUser(email, "hashedpass", "")
	if err != nil {
		t.Fatalf("Failed to create user %s: %v", email, err)
	}
	return user
}

func (env *testEnv) child(t *testing.T, creatorID string) *models.Child {
	t.Helper()
	dob := time.Now().UTC().AddDate(0, -6, 0).Truncate(24 * time.Hour)
	child, err := env.childs.Create(creatorID, "Mia", dob, models.GenderFemale, "O+")
	if err != nil {
		t.Fatalf("Failed to create child: %v", err)
	}
	return child
}

func TestInviteUnknownEmail(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	child := env.child(t, parent.ID)

	_, err := env.members.Invite(context.Background(), child.ID, parent.ID, "nobody@example.com", models.RoleCaregiver)
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("Invite error = %v, want ErrUserNotFound", err)
	}

	// Nothing was written
	list, err := env.members.ListMembers(child.ID, parent.ID)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("Member count = %d, want 1", len(list))
	}
}

func TestInviteRequiresGuardianRole(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	sitter := env.user(t, "sitter@example.com")
	doctor := env.user(t, "doctor@example.com")
	child := env.child(t, parent.ID)

	if _, err := env.members.Invite(context.Background(), child.ID, parent.ID, "sitter@example.com", models.RoleCaregiver); err != nil {
		t.Fatalf("Guardian invite failed: %v", err)
	}

	_, err := env.members.Invite(context.Background(), child.ID, sitter.ID, "doctor@example.com", models.RolePediatrician)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Caregiver invite error = %v, want ErrForbidden", err)
	}

	// An outsider probing the child gets a not-found, never a forbidden
	_, err = env.members.Invite(context.Background(), child.ID, doctor.ID, "sitter@example.com", models.RoleCaregiver)
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("Outsider invite error = %v, want ErrChildNotFound", err)
	}
}

func TestInviteNormalizesEmail(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	env.user(t, "sitter@example.com")
	child := env.child(t, parent.ID)

	membership, err := env.members.Invite(context.Background(), child.ID, parent.ID, "  Sitter@Example.COM ", models.RoleCaregiver)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	if membership.Role != models.RoleCaregiver {
		t.Errorf("Role = %s, want %s", membership.Role, models.RoleCaregiver)
	}
}

func TestSelfRemovalAllowed(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	sitter := env.user(t, "sitter@example.com")
	child := env.child(t, parent.ID)

	membership, err := env.members.Invite(context.Background(), child.ID, parent.ID, "sitter@example.com", models.RoleCaregiver)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	// A caregiver can take themselves off the care team
	if err := env.members.Remove(child.ID, sitter.ID, membership.ID); err != nil {
		t.Fatalf("Self-removal failed: %v", err)
	}

	_, err = env.members.Authorize(child.ID, sitter.ID)
	if !errors.Is(err, ErrChildNotFound) {
		t.Errorf("Authorize after removal = %v, want ErrChildNotFound", err)
	}
}

func TestCaregiverCannotRemoveOthers(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	sitter := env.user(t, "sitter@example.com")
	env.user(t, "doctor@example.com")
	child := env.child(t, parent.ID)

	if _, err := env.members.Invite(context.Background(), child.ID, parent.ID, "sitter@example.com", models.RoleCaregiver); err != nil {
		t.Fatalf("Invite failed: %v", err)
	}
	doctorMembership, err := env.members.Invite(context.Background(), child.ID, parent.ID, "doctor@example.com", models.RolePediatrician)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	err = env.members.Remove(child.ID, sitter.ID, doctorMembership.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Remove error = %v, want ErrForbidden", err)
	}
}

func TestLastGuardianGuardSurfacesConflict(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	child := env.child(t, parent.ID)

	membership, err := env.members.Authorize(child.ID, parent.ID)
	if err != nil {
		t.Fatalf("Authorize failed: %v", err)
	}

	_, err = env.members.UpdateRole(child.ID, parent.ID, membership.ID, models.RoleCaregiver)
	if !errors.Is(err, ErrLastGuardian) {
		t.Errorf("UpdateRole error = %v, want ErrLastGuardian", err)
	}

	err = env.members.Remove(child.ID, parent.ID, membership.ID)
	if !errors.Is(err, ErrLastGuardian) {
		t.Errorf("Remove error = %v, want ErrLastGuardian", err)
	}
}

func TestGuardianHandoverFlow(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	env.user(t, "partner@example.com")
	child := env.child(t, parent.ID)

	// Promote the partner, then the original guardian can step down
	partnerMembership, err := env.members.Invite(context.Background(), child.ID, parent.ID, "partner@example.com", models.RolePrimaryGuardian)
	if err != nil {
		t.Fatalf("Invite failed: %v", err)
	}

	parentMembership, _ := env.members.Authorize(child.ID, parent.ID)
	if _, err := env.members.UpdateRole(child.ID, parent.ID, parentMembership.ID, models.RoleCaregiver); err != nil {
		t.Fatalf("Step-down failed: %v", err)
	}

	// The partner is now the sole guardian and cannot be demoted. Only a
	// guardian can change roles, so the attempt comes from the partner.
	partner, err := env.users.GetUserByEmail("partner@example.com")
	if err != nil || partner == nil {
		t.Fatalf("Failed to load partner: %v", err)
	}
	_, err = env.members.UpdateRole(child.ID, partner.ID, partnerMembership.ID, models.RoleCaregiver)
	if !errors.Is(err, ErrLastGuardian) {
		t.Errorf("Demoting sole guardian = %v, want ErrLastGuardian", err)
	}
}

func TestInvalidRoleRejected(t *testing.T) {
	env := setupEnv(t)
	parent := env.user(t, "parent@example.com")
	env.user(t, "sitter@example.com")
	child := env.child(t, parent.ID)

	_, err := env.members.Invite(context.Background(), child.ID, parent.ID, "sitter@example.com", models.Role("OWNER"))
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("Invite error = %v, want ErrInvalidRole", err)
	}
}
