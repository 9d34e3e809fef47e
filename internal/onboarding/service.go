// Package onboarding creates tenants and their administrators and runs the
// email verification flow.
package onboarding

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/config"
	"carta-backend/internal/mail"
	"carta-backend/internal/models"
	"carta-backend/internal/slug"
)

var (
	ErrAlreadyVerified      = apperr.Validation("account already verified")
	ErrInvalidOrExpiredCode = apperr.Validation("invalid or expired verification code")
)

const (
	msgEmailTaken      = "email already registered"
	msgRestaurantTaken = "restaurant name or URL already exists"
)

type RegisterInput struct {
	RestaurantName string `json:"restaurantName" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Password       string `json:"password" validate:"required,min=6"`
}

type RestaurantInput struct {
	Name  string `json:"name" validate:"required"`
	Slug  string `json:"slug"`
	Phone string `json:"phone"`
}

type AccountInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type PublicRegisterInput struct {
	Restaurant RestaurantInput `json:"restaurant"`
	User       AccountInput    `json:"user"`
}

type UserInput struct {
	Email        string          `json:"email" validate:"required,email"`
	Password     string          `json:"password" validate:"required,min=6"`
	Role         models.UserRole `json:"role" validate:"required,oneof=superadmin admin_restaurant"`
	RestaurantID *string         `json:"restaurantId"`
}

// Ack acknowledges a registration. It never carries the password or the code.
type Ack struct {
	Message              string `json:"message"`
	RestaurantID         string `json:"restaurantId"`
	Slug                 string `json:"slug"`
	Email                string `json:"email"`
	VerificationRequired bool   `json:"verificationRequired"`
}

type Service struct {
	db     *gorm.DB
	mailer mail.Sender
	cfg    config.Config
	log    *zap.Logger

	now      func() time.Time
	newCode  func() (string, error)
	hashCost int
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCodeGenerator replaces GenerateCode.
func WithCodeGenerator(gen func() (string, error)) Option {
	return func(s *Service) { s.newCode = gen }
}

// WithHashCost sets the bcrypt cost for new password hashes.
func WithHashCost(cost int) Option {
	return func(s *Service) { s.hashCost = cost }
}

func NewService(db *gorm.DB, mailer mail.Sender, cfg config.Config, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:       db,
		mailer:   mailer,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newCode:  GenerateCode,
		hashCost: bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateCode returns a uniformly random six digit code, 000000 to 999999.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// Register is self-service sign-up with a slug derived from the restaurant name.
func (s *Service) Register(ctx context.Context, in RegisterInput) (Ack, error) {
	email := models.NormalizeEmail(in.Email)
	name := strings.TrimSpace(in.RestaurantName)

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return Ack{}, err
	}
	if taken {
		return Ack{}, apperr.Conflict(msgEmailTaken)
	}

	sl := slug.Derive(name)
	if sl == "" {
		return Ack{}, apperr.Validation("restaurant name must contain letters or digits")
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("slug = ?", sl).Count(&count).Error; err != nil {
		return Ack{}, apperr.Internal("database error", err)
	}
	if count > 0 {
		return Ack{}, apperr.Conflict("restaurant URL already taken")
	}

	return s.provision(ctx, models.Restaurant{Name: name, Slug: sl}, email, in.Password)
}

// RegisterPublic is self-service sign-up with a client supplied slug. An
// empty slug falls back to the derived one.
func (s *Service) RegisterPublic(ctx context.Context, in PublicRegisterInput) (Ack, error) {
	restaurant, err := newRestaurant(in.Restaurant)
	if err != nil {
		return Ack{}, err
	}
	email := models.NormalizeEmail(in.User.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Restaurant{}).
		Where("slug = ? OR name = ?", restaurant.Slug, restaurant.Name).
		Count(&count).Error; err != nil {
		return Ack{}, apperr.Internal("database error", err)
	}
	if count > 0 {
		return Ack{}, apperr.Conflict(msgRestaurantTaken)
	}

	taken, err := s.emailTaken(ctx, email)
	if err != nil {
		return Ack{}, err
	}
	if taken {
		return Ack{}, apperr.Conflict(msgEmailTaken)
	}

	return s.provision(ctx, restaurant, email, in.User.Password)
}

// provision creates the restaurant and its admin in one transaction and, when
// verification is required, mails the code after commit. A mail failure
// leaves both records in place; ResendCode recovers.
func (s *Service) provision(ctx context.Context, restaurant models.Restaurant, email, password string) (Ack, error) {
	hash, err := s.hash(password)
	if err != nil {
		return Ack{}, err
	}

	user := models.User{
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleRestaurantAdmin,
		Verified:     !s.cfg.RequiresVerification(),
	}

	var code string
	if s.cfg.RequiresVerification() {
		code, err = s.newCode()
		if err != nil {
			return Ack{}, apperr.Internal("could not generate verification code", err)
		}
		expires := s.now().UTC().Add(s.cfg.VerificationTTL)
		user.VerificationCode = &code
		user.VerificationExpiresAt = &expires
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return apperr.FromDB(err, msgRestaurantTaken, "")
		}
		user.RestaurantID = &restaurant.ID
		if err := tx.Create(&user).Error; err != nil {
			return apperr.FromDB(err, msgEmailTaken, "")
		}
		return nil
	})
	if err != nil {
		return Ack{}, err
	}

	s.log.Info("restaurant registered",
		zap.String("restaurant_id", restaurant.ID),
		zap.String("slug", restaurant.Slug),
		zap.String("user_id", user.ID),
		zap.Bool("verified", user.Verified),
	)

	ack := Ack{
		RestaurantID:         restaurant.ID,
		Slug:                 restaurant.Slug,
		Email:                email,
		VerificationRequired: code != "",
	}
	if code == "" {
		ack.Message = "restaurant and user created"
		return ack, nil
	}

	if err := s.sendCode(ctx, email, code); err != nil {
		return Ack{}, err
	}
	ack.Message = "restaurant created, check your email for the verification code"
	return ack, nil
}

// Verify marks the account verified if code matches and has not expired. The
// update is conditional on the code still being pending, so a replayed code
// never succeeds twice.
func (s *Service) Verify(ctx context.Context, email, code string) error {
	user, err := s.findUser(ctx, models.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}
	if user.VerificationCode == nil || user.VerificationExpiresAt == nil {
		return ErrInvalidOrExpiredCode
	}
	if subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(code)) != 1 {
		return ErrInvalidOrExpiredCode
	}
	if s.now().After(*user.VerificationExpiresAt) {
		return ErrInvalidOrExpiredCode
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verified = ? AND verification_code = ?", user.ID, false, code).
		Updates(map[string]any{
			"verified":                true,
			"verification_code":       nil,
			"verification_expires_at": nil,
		})
	if res.Error != nil {
		return apperr.Internal("database error", res.Error)
	}
	if res.RowsAffected == 0 {
		// Either a concurrent verify won or a resend rotated the code.
		var verified bool
		if err := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ?", user.ID).Select("verified").Scan(&verified).Error; err != nil {
			return apperr.Internal("database error", err)
		}
		if verified {
			return ErrAlreadyVerified
		}
		return ErrInvalidOrExpiredCode
	}

	s.log.Info("account verified", zap.String("user_id", user.ID))
	return nil
}

// ResendCode replaces a pending code with a fresh one and mails it.
func (s *Service) ResendCode(ctx context.Context, email string) error {
	user, err := s.findUser(ctx, models.NormalizeEmail(email))
	if err != nil {
		return err
	}
	if user.Verified {
		return ErrAlreadyVerified
	}

	code, err := s.newCode()
	if err != nil {
		return apperr.Internal("could not generate verification code", err)
	}
	expires := s.now().UTC().Add(s.cfg.VerificationTTL)

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND verified = ?", user.ID, false).
		Updates(map[string]any{
			"verification_code":       code,
			"verification_expires_at": expires,
		})
	if res.Error != nil {
		return apperr.Internal("database error", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrAlreadyVerified
	}

	return s.sendCode(ctx, user.Email, code)
}

// CreateRestaurant is the super-admin path. The slug is derived when empty.
func (s *Service) CreateRestaurant(ctx context.Context, in RestaurantInput) (models.Restaurant, error) {
	restaurant, err := newRestaurant(in)
	if err != nil {
		return models.Restaurant{}, err
	}
	if err := s.db.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return models.Restaurant{}, apperr.FromDB(err, msgRestaurantTaken, "")
	}
	s.log.Info("restaurant created", zap.String("restaurant_id", restaurant.ID), zap.String("slug", restaurant.Slug))
	return restaurant, nil
}

// CreateUser is the super-admin path. Users created here are verified.
func (s *Service) CreateUser(ctx context.Context, in UserInput) (models.User, error) {
	if !in.Role.Valid() {
		return models.User{}, apperr.Validation("role must be superadmin or admin_restaurant")
	}

	var restaurantID *string
	if in.RestaurantID != nil && strings.TrimSpace(*in.RestaurantID) != "" {
		id := strings.TrimSpace(*in.RestaurantID)
		restaurantID = &id
	}

	switch in.Role {
	case models.RoleSuperAdmin:
		if restaurantID != nil {
			return models.User{}, apperr.Validation("superadmin users cannot belong to a restaurant")
		}
	case models.RoleRestaurantAdmin:
		if restaurantID == nil {
			return models.User{}, apperr.Validation("restaurantId is required for admin_restaurant users")
		}
		var restaurant models.Restaurant
		if err := s.db.WithContext(ctx).Select("id").First(&restaurant, "id = ?", *restaurantID).Error; err != nil {
			return models.User{}, apperr.FromDB(err, "", "restaurant not found")
		}
	}

	hash, err := s.hash(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:        models.NormalizeEmail(in.Email),
		PasswordHash: hash,
		Role:         in.Role,
		RestaurantID: restaurantID,
		Verified:     true,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return models.User{}, apperr.FromDB(err, msgEmailTaken, "")
	}

	s.log.Info("user created", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	return user, nil
}

// RegisterSuperAdmin bootstraps the first super admin. Once one exists the
// endpoint is closed.
func (s *Service) RegisterSuperAdmin(ctx context.Context, in AccountInput) (models.User, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("role = ?", models.RoleSuperAdmin).
		Count(&count).Error; err != nil {
		return models.User{}, apperr.Internal("database error", err)
	}
	if count > 0 {
		return models.User{}, apperr.Forbidden("a super admin already exists")
	}

	return s.CreateUser(ctx, UserInput{
		Email:    in.Email,
		Password: in.Password,
		Role:     models.RoleSuperAdmin,
	})
}

func newRestaurant(in RestaurantInput) (models.Restaurant, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Restaurant{}, apperr.Validation("restaurant name is required")
	}

	sl := strings.TrimSpace(in.Slug)
	if sl == "" {
		sl = slug.Derive(name)
		if sl == "" {
			return models.Restaurant{}, apperr.Validation("restaurant name must contain letters or digits")
		}
	} else if !slug.Valid(sl) {
		return models.Restaurant{}, apperr.Validation("slug cannot contain spaces, '/', '?' or '#'")
	}

	return models.Restaurant{
		Name:  name,
		Slug:  sl,
		Phone: strings.TrimSpace(in.Phone),
	}, nil
}

func (s *Service) emailTaken(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).Count(&count).Error; err != nil {
		return false, apperr.Internal("database error", err)
	}
	return count > 0, nil
}

func (s *Service) findUser(ctx context.Context, email string) (models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return models.User{}, apperr.FromDB(err, "", "user not found")
	}
	return user, nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Validation("password is too long")
		}
		return "", apperr.Internal("could not hash password", err)
	}
	return string(hash), nil
}

func (s *Service) sendCode(ctx context.Context, email, code string) error {
	if err := s.mailer.Send(ctx, mail.VerificationMessage(email, code, s.cfg.VerificationTTL)); err != nil {
		s.log.Error("verification email failed", zap.String("email", email), zap.Error(err))
		return apperr.Internal("verification email could not be sent", err)
	}
	return nil
}
