package auth

import (
	"context"

	"stockhouse/internal/core/id"
)

// Repository is the persistence contract for users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, u *User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
