package auth

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/config"
	"carta-backend/internal/models"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrNotVerified        = apperr.Unauthorized("account not verified")
)

// Compared against when the email is unknown so the response time does not
// reveal whether an account exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("carta-login-timing"), bcrypt.DefaultCost)

// SessionDescriptor is what a successful login returns. Token and ExpiresAt
// are only set in jwt session mode.
type SessionDescriptor struct {
	UserID         string          `json:"userId"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	RestaurantID   *string         `json:"restaurantId"`
	RestaurantName *string         `json:"restaurantName"`
	Token          string          `json:"token,omitempty"`
	ExpiresAt      *time.Time      `json:"expiresAt,omitempty"`
}

type Service struct {
	db  *gorm.DB
	cfg config.Config
	log *zap.Logger
	now func() time.Time
}

func NewService(db *gorm.DB, cfg config.Config, log *zap.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, cfg: cfg, log: log, now: now}
}

// Login checks the credentials and, in verify onboarding mode, that the
// account has been verified. The password is checked first, so the
// not-verified answer is only given to someone who knows it.
func (s *Service) Login(ctx context.Context, email, password string) (SessionDescriptor, error) {
	email = models.NormalizeEmail(email)

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return SessionDescriptor{}, apperr.Internal("database error", err)
		}
		_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return SessionDescriptor{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return SessionDescriptor{}, ErrInvalidCredentials
	}

	if s.cfg.RequiresVerification() && !user.Verified {
		return SessionDescriptor{}, ErrNotVerified
	}

	desc := SessionDescriptor{
		UserID:       user.ID,
		Email:        user.Email,
		Role:         user.Role,
		RestaurantID: user.RestaurantID,
	}

	if user.RestaurantID != nil {
		name, err := s.restaurantName(ctx, *user.RestaurantID)
		if err != nil {
			return SessionDescriptor{}, err
		}
		desc.RestaurantName = name
	}

	if s.cfg.SessionMode == config.SessionJWT {
		token, exp, err := GenerateToken(s.cfg.JWTSecret, &user, s.now(), s.cfg.SessionTTL)
		if err != nil {
			return SessionDescriptor{}, apperr.Internal("could not create session", err)
		}
		desc.Token = token
		desc.ExpiresAt = &exp
	}

	s.log.Info("login", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return desc, nil
}

// restaurantName returns nil for a dangling reference.
func (s *Service) restaurantName(ctx context.Context, id string) (*string, error) {
	var restaurants []models.Restaurant
	if err := s.db.WithContext(ctx).Select("id", "name").
		Where("id = ?", id).Limit(1).Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	if len(restaurants) == 0 {
		return nil, nil
	}
	return &restaurants[0].Name, nil
}

// Profile is the current user together with their restaurant, if any.
type Profile struct {
	User       models.User        `json:"user"`
	Restaurant *models.Restaurant `json:"restaurant"`
}

func (s *Service) Me(ctx context.Context, userID string) (Profile, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		return Profile{}, apperr.FromDB(err, "", "user not found")
	}

	p := Profile{User: user}
	if user.RestaurantID != nil {
		var restaurants []models.Restaurant
		if err := s.db.WithContext(ctx).Where("id = ?", *user.RestaurantID).Limit(1).Find(&restaurants).Error; err != nil {
			return Profile{}, apperr.Internal("database error", err)
		}
		if len(restaurants) > 0 {
			p.Restaurant = &restaurants[0]
		}
	}
	return p, nil
}
