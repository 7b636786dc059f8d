package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/eventra/eventra/internal/database/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/idtoken"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventra/eventra/pkg/config"
)

func googleTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return db
}

func fakeVerifier(subject, email, name string) idTokenVerifier {
	return func(ctx context.Context, token, audience string) (*idtoken.Payload, error) {
		if token != "good-token" {
			return nil, errors.New("invalid signature")
		}
		return &idtoken.Payload{
			Subject: subject,
			Claims: map[string]interface{}{
				"email": email,
				"name":  name,
			},
		}, nil
	}
}

func googleTestService(t *testing.T, db *gorm.DB, verify idTokenVerifier) *GoogleService {
	t.Helper()
	jwt := NewJWTService("test-secret", time.Hour)
	svc := NewGoogleService(db, jwt, config.GoogleOAuthConfig{ClientID: "client-id"})
	svc.verify = verify
	return svc
}

func TestGoogleService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("new identity becomes an account manager", func(t *testing.T) {
		db := googleTestDB(t)
		svc := googleTestService(t, db, fakeVerifier("sub-1", "new@example.com", "New User"))

		resp, err := svc.Login(ctx, "good-token")
		require.NoError(t, err)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, models.RoleAccountManager, resp.User.Role)
		assert.Equal(t, "New User's Team", resp.User.Organization)
		assert.Equal(t, "sub-1", resp.User.GoogleSubject)
	})

	t.Run("returning identity matches by subject", func(t *testing.T) {
		db := googleTestDB(t)
		svc := googleTestService(t, db, fakeVerifier("sub-2", "back@example.com", "Returning"))

		first, err := svc.Login(ctx, "good-token")
		require.NoError(t, err)
		second, err := svc.Login(ctx, "good-token")
		require.NoError(t, err)
		assert.Equal(t, first.User.ID, second.User.ID)
	})

	t.Run("existing local account is linked by email", func(t *testing.T) {
		db := googleTestDB(t)
		local := models.User{
			Email:        "local@example.com",
			PasswordHash: "x",
			Name:         "Local",
			Organization: "Local Org",
			Role:         models.RoleAccountManager,
			IsActive:     true,
		}
		require.NoError(t, db.Create(&local).Error)

		svc := googleTestService(t, db, fakeVerifier("sub-3", "local@example.com", "Local"))

		resp, err := svc.Login(ctx, "good-token")
		require.NoError(t, err)
		assert.Equal(t, local.ID, resp.User.ID)
		assert.Equal(t, "sub-3", resp.User.GoogleSubject)
		assert.Equal(t, "Local Org", resp.User.Organization)
	})

	t.Run("invalid token is rejected", func(t *testing.T) {
		db := googleTestDB(t)
		svc := googleTestService(t, db, fakeVerifier("sub-4", "bad@example.com", "Bad"))

		_, err := svc.Login(ctx, "bad-token")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive account is rejected", func(t *testing.T) {
		db := googleTestDB(t)
		svc := googleTestService(t, db, fakeVerifier("sub-5", "off@example.com", "Off"))

		resp, err := svc.Login(ctx, "good-token")
		require.NoError(t, err)
		require.NoError(t, db.Model(resp.User).Update("is_active", false).Error)

		_, err = svc.Login(ctx, "good-token")
		assert.ErrorIs(t, err, ErrInactiveUser)
	})

	t.Run("unconfigured service reports it", func(t *testing.T) {
		db := googleTestDB(t)
		jwt := NewJWTService("test-secret", time.Hour)
		svc := NewGoogleService(db, jwt, config.GoogleOAuthConfig{})

		_, err := svc.Login(ctx, "good-token")
		assert.ErrorIs(t, err, ErrGoogleNotConfigured)
	})
}
