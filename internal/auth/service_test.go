package auth_test

import (
	"testing"

	"github.com/eventra/eventra/internal/auth"
	"github.com/eventra/eventra/internal/database/models"
	"github.com/eventra/eventra/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_Register(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := auth.NewService(db, testutil.CreateTestJWTService())
	ctx := testutil.TestContext(t)

	t.Run("registering creates an account manager", func(t *testing.T) {
		resp, err := svc.Register(ctx, auth.RegisterInput{
			Email:        "founder@example.com",
			Password:     "longenoughpass",
			Name:         "Founder",
			Organization: "Acme Events",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleAccountManager, resp.User.Role)
		assert.Equal(t, "Acme Events", resp.User.Organization)
		assert.True(t, resp.User.IsActive)
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		_, err := svc.Register(ctx, auth.RegisterInput{
			Email:        "founder@example.com",
			Password:     "longenoughpass",
			Name:         "Imposter",
			Organization: "Other Org",
		})
		assert.ErrorIs(t, err, auth.ErrUserExists)
	})
}

func TestService_Login(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	svc := auth.NewService(db, testutil.CreateTestJWTService())
	ctx := testutil.TestContext(t)

	_, err := svc.Register(ctx, auth.RegisterInput{
		Email:        "founder@example.com",
		Password:     "longenoughpass",
		Name:         "Founder",
		Organization: "Acme Events",
	})
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		resp, err := svc.Login(ctx, auth.LoginInput{
			Email:    "founder@example.com",
			Password: "longenoughpass",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "founder@example.com",
			Password: "wrong",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "nobody@example.com",
			Password: "longenoughpass",
		})
		assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).
			Where("email = ?", "founder@example.com").
			Update("is_active", false).Error)

		_, err := svc.Login(ctx, auth.LoginInput{
			Email:    "founder@example.com",
			Password: "longenoughpass",
		})
		assert.ErrorIs(t, err, auth.ErrInactiveUser)
	})
}
