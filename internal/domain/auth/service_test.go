package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/domain/auth"
	"stockhouse/internal/storage/memory"
)

func newService(t *testing.T) *auth.Service {
	t.Helper()

	store := memory.NewStore()
	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret-test-secret-test-sec"))
	return auth.NewService(memory.NewUserRepo(store), jwtSvc, memory.NewTxManager(store))
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "op@stockhouse.io", "Warehouse Operator", "Secret123!", auth.RoleOperator)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleOperator, u.Role)
	assert.NotEqual(t, "Secret123!", u.PasswordHash)

	result, err := svc.Login(ctx, "op@stockhouse.io", "Secret123!")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, u.ID, result.User.ID)
	assert.False(t, result.ExpiresAt.IsZero())
}

func TestLogin_WrongPassword(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "op@stockhouse.io", "Operator", "Secret123!", auth.RoleOperator)
	require.NoError(t, err)

	_, err = svc.Login(ctx, "op@stockhouse.io", "wrong-password")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	svc := newService(t)

	_, err := svc.Login(context.Background(), "nobody@stockhouse.io", "whatever1")
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "op@stockhouse.io", "Operator", "Secret123!", auth.RoleOperator)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "op@stockhouse.io", "Another", "Secret123!", auth.RoleViewer)
	require.Error(t, err)

	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestRegister_ShortPassword(t *testing.T) {
	svc := newService(t)

	_, err := svc.Register(context.Background(), "op@stockhouse.io", "Operator", "short", auth.RoleOperator)
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "admin@stockhouse.io", "Admin", "Secret123!", auth.RoleAdmin)
	require.NoError(t, err)

	result, err := svc.Login(ctx, "admin@stockhouse.io", "Secret123!")
	require.NoError(t, err)

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret-test-secret-test-sec"))
	claims, err := jwtSvc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.Equal(t, string(auth.RoleAdmin), claims.Role)

	_, err = jwtSvc.ValidateToken(result.Token + "tampered")
	assert.Error(t, err)

	other := auth.NewJWTService(auth.DefaultJWTConfig("a-different-secret-a-different-se"))
	_, err = other.ValidateToken(result.Token)
	assert.Error(t, err)
}
