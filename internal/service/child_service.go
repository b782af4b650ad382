package service

import (
	"fmt"
	"time"

	"nestling/internal/models"
	"nestling/internal/repository"
	"nestling/internal/validation"
)

// ChildService manages child profiles
type ChildService struct {
	childRepo   *repository.ChildRepository
	members     *MemberService
	vaccineRepo *repository.VaccineRepository
}

// NewChildService creates a new child service
func NewChildService(childRepo *repository.ChildRepository, members *MemberService, vaccineRepo *repository.VaccineRepository) *ChildService {
	return &ChildService{
		childRepo:   childRepo,
		members:     members,
		vaccineRepo: vaccineRepo,
	}
}

// ChildUpdate holds the optional fields of a child profile update
type ChildUpdate struct {
	Name      *string
	DOB       *time.Time
	Gender    *models.Gender
	BloodType *string
}

// Create registers a new child. The creator becomes its first primary
// guardian, and the recommended vaccine schedule is laid out from the
// date of birth.
func (s *ChildService) Create(creatorID, name string, dob time.Time, gender models.Gender, bloodType string) (*models.Child, error) {
	if err := validation.ValidateName("name", name); err != nil {
		return nil, err
	}
	if err := validation.ValidateDOB(dob); err != nil {
		return nil, err
	}
	if !gender.IsValid() {
		return nil, &validation.ValidationError{Field: "gender", Message: "gender must be MALE, FEMALE or OTHER"}
	}

	child, err := s.childRepo.CreateChild(creatorID, name, dob, gender, bloodType)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	if err := EnsureRecommendedVaccines(s.vaccineRepo, child); err != nil {
		return nil, fmt.Errorf("failed to seed vaccine schedule: %w", err)
	}

	return child, nil
}

// List returns every child the user is a care team member of
func (s *ChildService) List(userID string) ([]models.Child, error) {
	children, err := s.childRepo.GetUserChildren(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list children: %w", err)
	}
	return children, nil
}

// Get returns a child profile the caller has access to
func (s *ChildService) Get(childID, callerID string) (*models.Child, error) {
	if _, err := s.members.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	child, err := s.childRepo.GetChildByID(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}
	if child == nil {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// Update applies a partial update to a child profile
func (s *ChildService) Update(childID, callerID string, update ChildUpdate) (*models.Child, error) {
	child, err := s.Get(childID, callerID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		if err := validation.ValidateName("name", *update.Name); err != nil {
			return nil, err
		}
		child.Name = *update.Name
	}
	if update.DOB != nil {
		if err := validation.ValidateDOB(*update.DOB); err != nil {
			return nil, err
		}
		child.DOB = *update.DOB
	}
	if update.Gender != nil {
		if !update.Gender.IsValid() {
			return nil, &validation.ValidationError{Field: "gender", Message: "gender must be MALE, FEMALE or OTHER"}
		}
		child.Gender = *update.Gender
	}
	if update.BloodType != nil {
		child.BloodType = *update.BloodType
	}

	if err := s.childRepo.UpdateChild(child); err != nil {
		return nil, fmt.Errorf("failed to update child: %w", err)
	}
	return child, nil
}

// Delete removes a child and all of their records. Only a primary guardian
// may do this.
func (s *ChildService) Delete(childID, callerID string) error {
	membership, err := s.members.Authorize(childID, callerID)
	if err != nil {
		return err
	}
	if !membership.Role.CanDeleteChild() {
		return ErrForbidden
	}
	if err := s.childRepo.DeleteChild(childID); err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
