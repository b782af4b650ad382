package models

import "time"

// User represents an account in the system. Accounts are created by
// registration (password) or on first Google sign-in (google_sub), and a
// single account may carry both credentials.
type User struct {
	ID           string
	Email        string
	FullName     string
	GoogleSub    string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the account can authenticate with a password.
func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}

// DisplayName returns the best available name for the user.
func (u *User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}
