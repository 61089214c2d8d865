package auth

import (
	"context"
	"time"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/core/tx"
	"stockhouse/pkg/logger"
)

// Service handles login and user management.
type Service struct {
	repo      Repository
	jwt       *JWTService
	txManager tx.Manager
}

// NewService creates the auth service.
func NewService(repo Repository, jwtSvc *JWTService, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		jwt:       jwtSvc,
		txManager: txManager,
	}
}

// LoginResult carries a freshly issued token.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      *User     `json:"user"`
}

// Login checks credentials and issues an access token. Unknown email and
// wrong password return the same error to avoid account probing.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperror.NewValidation("email and password are required")
	}

	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}
	if u.DeletionMark || !u.CheckPassword(password) {
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(u)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	logger.Info(ctx, "user logged in", "user_id", u.ID, "email", u.Email)
	return &LoginResult{Token: token, ExpiresAt: expiresAt, User: u}, nil
}

// Register creates a new user account.
func (s *Service) Register(ctx context.Context, email, displayName, password string, role Role) (*User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperror.NewConflict("user with this email already exists").
			WithDetail("email", email)
	}

	u, err := NewUser(email, displayName, password, role)
	if err != nil {
		return nil, err
	}
	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByID loads one user.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}
