// Package content manages a restaurant's dishes, specials, menu categories
// and day menus. Every change is written to the audit log in the same
// transaction.
package content

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) inTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	err := s.db.WithContext(ctx).Transaction(fn)
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal("database error", err)
}

func ensureRestaurant(tx *gorm.DB, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("restaurantId is required")
	}
	var count int64
	if err := tx.Model(&models.Restaurant{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return apperr.Internal("database error", err)
	}
	if count == 0 {
		return apperr.NotFound("restaurant not found")
	}
	return nil
}

// load fetches one row by id and checks the actor may see it.
func load[T any](db *gorm.DB, actor auth.Principal, id, what string, owner func(*T) string) (T, error) {
	var v T
	if err := db.First(&v, "id = ?", id).Error; err != nil {
		return v, apperr.FromDB(err, "", what+" not found")
	}
	if !actor.CanAccess(owner(&v)) {
		return v, apperr.Forbidden("this " + what + " belongs to another restaurant")
	}
	return v, nil
}

func list[T any](ctx context.Context, db *gorm.DB, restaurantID string) ([]T, error) {
	items := []T{}
	if err := db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at").
		Find(&items).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return items, nil
}

func logChange(tx *gorm.DB, actor auth.Principal, entityType, entityID, restaurantID string, action models.AuditAction, before, after any) error {
	return audit.WriteLog(tx, audit.LogOptions{
		RestaurantID: restaurantID,
		UserID:       actor.UserID,
		EntityType:   entityType,
		EntityID:     entityID,
		Action:       action,
		Description:  fmt.Sprintf("%s %s", entityType, action),
		Before:       before,
		After:        after,
	})
}

func requireName(name, what string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation(what + " name is required")
	}
	return name, nil
}

func requirePrice(price float64) error {
	if price < 0 {
		return apperr.Validation("price must be greater than or equal to 0")
	}
	return nil
}

// ParseDay accepts YYYY-MM-DD or RFC 3339 and returns midnight UTC of that
// UTC calendar day.
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return time.Time{}, apperr.Validation("date must be YYYY-MM-DD or RFC 3339")
		}
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
