package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carta-backend/internal/auth"
	"carta-backend/internal/config"
	"carta-backend/internal/database"
	"carta-backend/internal/models"
)

const secret = "0123456789abcdef0123456789abcdef"

var clock = time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

func now() time.Time { return clock }

func seed(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	r := models.Restaurant{Name: "Pizza Feliz", Slug: "pizza-feliz"}
	require.NoError(t, db.Create(&r).Error)

	dangling := "11111111-1111-1111-1111-111111111111"
	users := []models.User{
		{Email: "a@x.com", PasswordHash: string(hash), Role: models.RoleRestaurantAdmin, RestaurantID: &r.ID, Verified: true},
		{Email: "pending@x.com", PasswordHash: string(hash), Role: models.RoleRestaurantAdmin, RestaurantID: &r.ID},
		{Email: "orphan@x.com", PasswordHash: string(hash), Role: models.RoleRestaurantAdmin, RestaurantID: &dangling, Verified: true},
		{Email: "root@x.com", PasswordHash: string(hash), Role: models.RoleSuperAdmin, Verified: true},
	}
	for i := range users {
		require.NoError(t, db.Create(&users[i]).Error)
	}
	return db
}

func newService(db *gorm.DB, mode config.OnboardingMode, session config.SessionMode) *auth.Service {
	cfg := config.Config{
		OnboardingMode: mode,
		SessionMode:    session,
		JWTSecret:      secret,
		SessionTTL:     time.Hour,
	}
	return auth.NewService(db, cfg, zap.NewNop(), now)
}

func TestLoginReturnsDescriptor(t *testing.T) {
	svc := newService(seed(t), config.OnboardingVerify, config.SessionDescriptor)

	desc, err := svc.Login(context.Background(), " A@X.COM ", "hunter22")
	require.NoError(t, err)
	require.Equal(t, "a@x.com", desc.Email)
	require.Equal(t, models.RoleRestaurantAdmin, desc.Role)
	require.NotNil(t, desc.RestaurantID)
	require.NotNil(t, desc.RestaurantName)
	require.Equal(t, "Pizza Feliz", *desc.RestaurantName)
	require.Empty(t, desc.Token)
	require.Nil(t, desc.ExpiresAt)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := newService(seed(t), config.OnboardingVerify, config.SessionDescriptor)
	ctx := context.Background()

	_, wrongPassword := svc.Login(ctx, "a@x.com", "nope")
	_, unknownEmail := svc.Login(ctx, "ghost@x.com", "hunter22")

	require.ErrorIs(t, wrongPassword, auth.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, auth.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginVerificationGate(t *testing.T) {
	db := seed(t)
	ctx := context.Background()

	_, err := newService(db, config.OnboardingVerify, config.SessionDescriptor).Login(ctx, "pending@x.com", "hunter22")
	require.ErrorIs(t, err, auth.ErrNotVerified)

	_, err = newService(db, config.OnboardingVerify, config.SessionDescriptor).Login(ctx, "pending@x.com", "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = newService(db, config.OnboardingDirect, config.SessionDescriptor).Login(ctx, "pending@x.com", "hunter22")
	require.NoError(t, err)
}

func TestLoginToleratesDanglingRestaurant(t *testing.T) {
	svc := newService(seed(t), config.OnboardingVerify, config.SessionDescriptor)

	desc, err := svc.Login(context.Background(), "orphan@x.com", "hunter22")
	require.NoError(t, err)
	require.NotNil(t, desc.RestaurantID)
	require.Nil(t, desc.RestaurantName)
}

func TestLoginSuperAdminHasNoRestaurant(t *testing.T) {
	svc := newService(seed(t), config.OnboardingVerify, config.SessionDescriptor)

	desc, err := svc.Login(context.Background(), "root@x.com", "hunter22")
	require.NoError(t, err)
	require.Nil(t, desc.RestaurantID)
	require.Nil(t, desc.RestaurantName)
}

func TestLoginIssuesTokenInJWTMode(t *testing.T) {
	svc := newService(seed(t), config.OnboardingVerify, config.SessionJWT)

	desc, err := svc.Login(context.Background(), "a@x.com", "hunter22")
	require.NoError(t, err)
	require.NotEmpty(t, desc.Token)
	require.NotNil(t, desc.ExpiresAt)
	require.Equal(t, clock.Add(time.Hour), *desc.ExpiresAt)

	claims, err := auth.ParseToken(secret, desc.Token, now)
	require.NoError(t, err)
	require.Equal(t, desc.UserID, claims.UserID)
	require.Equal(t, *desc.RestaurantID, *claims.RestaurantID)

	later := func() time.Time { return clock.Add(2 * time.Hour) }
	_, err = auth.ParseToken(secret, desc.Token, later)
	require.Error(t, err)

	_, err = auth.ParseToken("another-secret-another-secret-xx", desc.Token, now)
	require.Error(t, err)
}

func TestMe(t *testing.T) {
	db := seed(t)
	svc := newService(db, config.OnboardingVerify, config.SessionJWT)
	ctx := context.Background()

	desc, err := svc.Login(ctx, "a@x.com", "hunter22")
	require.NoError(t, err)

	p, err := svc.Me(ctx, desc.UserID)
	require.NoError(t, err)
	require.Equal(t, "a@x.com", p.User.Email)
	require.NotNil(t, p.Restaurant)
	require.Equal(t, "pizza-feliz", p.Restaurant.Slug)
}
