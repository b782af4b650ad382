package service

import (
	"context"
	"errors"
	"fmt"

	"nestling/internal/models"
	"nestling/internal/repository"
	"nestling/internal/security"
	"nestling/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("an account with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidGoogleToken = errors.New("invalid google token")
)

// AuthService handles registration, login and Google sign-in
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	googleAudiences []string
	email           *EmailService
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, googleAudiences []string, email *EmailService) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		googleAudiences: googleAudiences,
		email:           email,
	}
}

// TokenPair is the result of a successful authentication
type TokenPair struct {
	AccessToken string
	TokenType   string
	User        *models.User
}

// Register creates a new account with an email and password
func (s *AuthService) Register(ctx context.Context, email, password, fullName string) (*TokenPair, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if fullName != "" {
		if err := validation.ValidateName("full_name", fullName); err != nil {
			return nil, err
		}
	}

	existing, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(email, hash, fullName)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.email.SendWelcome(ctx, user)

	return s.issueTokens(user)
}

// Login authenticates an email/password pair
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = validation.NormalizeEmail(email)

	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.HasPassword() {
		return nil, ErrInvalidCredentials
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.issueTokens(user)
}

// LoginWithGoogle verifies a Google ID token and signs the user in,
// creating or linking an account as needed
func (s *AuthService) LoginWithGoogle(ctx context.Context, idToken string) (*TokenPair, error) {
	claims, err := security.VerifyGoogleIDToken(ctx, idToken, s.googleAudiences)
	if err != nil {
		return nil, ErrInvalidGoogleToken
	}

	user, err := s.userRepo.GetUserByGoogleSub(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by google sub: %w", err)
	}

	if user == nil {
		email := validation.NormalizeEmail(claims.Email)
		user, err = s.userRepo.GetUserByEmail(email)
		if err != nil {
			return nil, fmt.Errorf("failed to get user by email: %w", err)
		}
		if user != nil {
			// Existing password account with the same email: link it
			if err := s.userRepo.LinkGoogleSub(user.ID, claims.Subject); err != nil {
				return nil, fmt.Errorf("failed to link google account: %w", err)
			}
			user.GoogleSub = claims.Subject
			if user.FullName == "" && claims.Name != "" {
				if err := s.userRepo.UpdateFullName(user.ID, claims.Name); err == nil {
					user.FullName = claims.Name
				}
			}
		} else {
			user, err = s.userRepo.CreateGoogleUser(email, claims.Name, claims.Subject)
			if err != nil {
				return nil, fmt.Errorf("failed to create google user: %w", err)
			}
			s.email.SendWelcome(ctx, user)
		}
	}

	return s.issueTokens(user)
}

// GetUser returns the user for an ID, or nil when no such user exists
func (s *AuthService) GetUser(userID string) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *AuthService) issueTokens(user *models.User) (*TokenPair, error) {
	token, err := s.tokens.CreateAccessToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create access token: %w", err)
	}
	return &TokenPair{
		AccessToken: token,
		TokenType:   "bearer",
		User:        user,
	}, nil
}
