package service

import (
	"context"
	"errors"
	"fmt"

	"nestling/internal/models"
	"nestling/internal/repository"
	"nestling/internal/validation"
)

var (
	ErrChildNotFound    = errors.New("child not found")
	ErrMemberNotFound   = errors.New("member not found")
	ErrUserNotFound     = errors.New("no account exists for this email")
	ErrForbidden        = errors.New("you do not have permission to perform this action")
	ErrLastGuardian     = errors.New("a child must keep at least one primary guardian")
	ErrInvalidRole      = errors.New("invalid role")
)

// MemberService manages care-team membership for children. It is also the
// access gate: every child-scoped operation resolves the caller's membership
// here first.
type MemberService struct {
	memberRepo *repository.MemberRepository
	userRepo   *repository.UserRepository
	email      *EmailService
}

// NewMemberService creates a new member service
func NewMemberService(memberRepo *repository.MemberRepository, userRepo *repository.UserRepository, email *EmailService) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		userRepo:   userRepo,
		email:      email,
	}
}

// Authorize resolves the caller's membership on a child. A caller with no
// membership gets ErrChildNotFound rather than ErrForbidden, so outsiders
// cannot probe which child IDs exist.
func (s *MemberService) Authorize(childID, userID string) (*models.Membership, error) {
	membership, err := s.memberRepo.GetMembership(childID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}
	if membership == nil {
		return nil, ErrChildNotFound
	}
	return membership, nil
}

// AuthorizeManager resolves the caller's membership and requires the
// primary guardian role
func (s *MemberService) AuthorizeManager(childID, userID string) (*models.Membership, error) {
	membership, err := s.Authorize(childID, userID)
	if err != nil {
		return nil, err
	}
	if !membership.Role.CanManageMembers() {
		return nil, ErrForbidden
	}
	return membership, nil
}

// ListMembers returns a child's care team, oldest membership first
func (s *MemberService) ListMembers(childID, callerID string) ([]models.MembershipWithUser, error) {
	if _, err := s.Authorize(childID, callerID); err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListChildMembers(childID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

// Invite adds the user registered under an email to a child's care team, or
// updates their role if they are already a member. The invitee must already
// have an account.
func (s *MemberService) Invite(ctx context.Context, childID, callerID, email string, role models.Role) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	caller, err := s.AuthorizeManager(childID, callerID)
	if err != nil {
		return nil, err
	}

	email = validation.NormalizeEmail(email)
	invitee, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get invitee: %w", err)
	}
	if invitee == nil {
		return nil, ErrUserNotFound
	}

	existing, err := s.memberRepo.GetMembership(childID, invitee.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get existing membership: %w", err)
	}

	membership, err := s.memberRepo.UpsertMember(childID, invitee.ID, role)
	if err != nil {
		if errors.Is(err, repository.ErrLastPrimaryGuardian) {
			return nil, ErrLastGuardian
		}
		return nil, fmt.Errorf("failed to upsert member: %w", err)
	}

	if existing == nil {
		inviter, err := s.userRepo.GetUserByID(caller.UserID)
		if err == nil && inviter != nil {
			s.email.SendInvite(ctx, invitee, inviter, role)
		}
	}

	return membership, nil
}

// UpdateRole changes an existing member's role
func (s *MemberService) UpdateRole(childID, callerID, memberID string, role models.Role) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, ErrInvalidRole
	}
	if _, err := s.AuthorizeManager(childID, callerID); err != nil {
		return nil, err
	}

	member, err := s.memberRepo.GetMembershipByID(memberID)
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil || member.ChildID != childID {
		return nil, ErrMemberNotFound
	}

	updated, err := s.memberRepo.UpdateMemberRole(memberID, role)
	if err != nil {
		if errors.Is(err, repository.ErrLastPrimaryGuardian) {
			return nil, ErrLastGuardian
		}
		return nil, fmt.Errorf("failed to update member role: %w", err)
	}
	if updated == nil {
		return nil, ErrMemberNotFound
	}
	return updated, nil
}

// Remove takes a member off a child's care team. Members may remove
// themselves; removing anyone else requires the primary guardian role.
func (s *MemberService) Remove(childID, callerID, memberID string) error {
	caller, err := s.Authorize(childID, callerID)
	if err != nil {
		return err
	}

	member, err := s.memberRepo.GetMembershipByID(memberID)
	if err != nil {
		return fmt.Errorf("failed to get member: %w", err)
	}
	if member == nil || member.ChildID != childID {
		return ErrMemberNotFound
	}

	if member.UserID != callerID && !caller.Role.CanManageMembers() {
		return ErrForbidden
	}

	removed, err := s.memberRepo.RemoveMember(memberID)
	if err != nil {
		if errors.Is(err, repository.ErrLastPrimaryGuardian) {
			return ErrLastGuardian
		}
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if !removed {
		return ErrMemberNotFound
	}
	return nil
}
