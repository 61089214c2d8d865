// Package auth provides users, password checks and JWT handling.
package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/entity"
)

// Role is a coarse permission level.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleOperator Role = "operator"
	RoleViewer   Role = "viewer"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleOperator, RoleViewer:
		return true
	}
	return false
}

// User is an account that creates and transitions documents.
type User struct {
	entity.BaseCatalog

	Email       string `db:"email" json:"email"`
	DisplayName string `db:"display_name" json:"displayName"`
	Role        Role   `db:"role" json:"role"`

	// PasswordHash is a bcrypt hash, never serialized
	PasswordHash string `db:"password_hash" json:"-"`
}

// NewUser creates a user with a hashed password.
func NewUser(email, displayName, password string, role Role) (*User, error) {
	u := &User{
		BaseCatalog: entity.NewBaseCatalog(),
		Email:       email,
		DisplayName: displayName,
		Role:        role,
	}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword hashes and stores a new password.
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return apperror.NewValidation("password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(err)
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a candidate password.
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// Validate implements entity.Validatable.
func (u *User) Validate(_ context.Context) error {
	if u.Email == "" {
		return apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if u.DisplayName == "" {
		return apperror.NewValidation("display name is required").WithDetail("field", "displayName")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("invalid role").WithDetail("role", string(u.Role))
	}
	if u.PasswordHash == "" {
		return apperror.NewValidation("password is required").WithDetail("field", "password")
	}
	return nil
}
