// Package audit records who changed which menu entity and how.
package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/models"
)

const (
	EntityDish         = "dish"
	EntitySpecial      = "special"
	EntityMenuCategory = "menu_category"
	EntityDayMenu      = "day_menu"
)

const (
	DefaultLimit = 100
	MaxLimit     = 500
)

type LogOptions struct {
	RestaurantID string
	UserID       string
	EntityType   string
	EntityID     string
	Action       models.AuditAction
	Description  string
	Before       any
	After        any
}

// WriteLog stores one entry. Pass the transaction of the change being logged
// so both commit or neither does.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	before, err := toJSON(opts.Before)
	if err != nil {
		return err
	}
	after, err := toJSON(opts.After)
	if err != nil {
		return err
	}

	log := models.AuditLog{
		RestaurantID: opts.RestaurantID,
		UserID:       opts.UserID,
		EntityType:   opts.EntityType,
		EntityID:     opts.EntityID,
		Action:       opts.Action,
		Description:  opts.Description,
		BeforeData:   before,
		AfterData:    after,
	}
	if err := db.Create(&log).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

func toJSON(v any) (datatypes.JSON, error) {
	if v == nil {
		return datatypes.JSON("null"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode audit data: %w", err)
	}
	return datatypes.JSON(b), nil
}

type Filter struct {
	RestaurantID string
	UserID       string
	EntityType   string
	EntityID     string
	Limit        int
}

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// List returns the newest entries first.
func (s *Service) List(ctx context.Context, f Filter) ([]models.AuditLog, error) {
	limit := f.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.RestaurantID != "" {
		q = q.Where("restaurant_id = ?", f.RestaurantID)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.EntityType != "" {
		q = q.Where("entity_type = ?", f.EntityType)
	}
	if f.EntityID != "" {
		q = q.Where("entity_id = ?", f.EntityID)
	}

	logs := []models.AuditLog{}
	if err := q.Order("created_at DESC").Order("id DESC").Limit(limit).Find(&logs).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return logs, nil
}
