// Package menu serves a restaurant's public menu by slug.
package menu

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/models"
)

// View is the public menu. DayMenu is nil when nothing is active today.
type View struct {
	Restaurant models.Restaurant `json:"restaurant"`
	DayMenu    *models.DayMenu   `json:"dayMenu"`
	Dishes     []models.Dish     `json:"dishes"`
	Specials   []models.Special  `json:"specials"`
}

type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{db: db, now: now}
}

// DayWindow returns 00:00:00.000 and 23:59:59.999 UTC of t's UTC day.
func DayWindow(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	end := start.Add(24*time.Hour - time.Millisecond)
	return start, end
}

// PublicMenu composes four independent reads. Concurrent edits between them
// may be observed partially.
func (s *Service) PublicMenu(ctx context.Context, slug string) (View, error) {
	db := s.db.WithContext(ctx)

	var restaurant models.Restaurant
	if err := db.Where("slug = ?", slug).First(&restaurant).Error; err != nil {
		return View{}, apperr.FromDB(err, "", "restaurant not found")
	}

	view := View{
		Restaurant: restaurant,
		Dishes:     []models.Dish{},
		Specials:   []models.Special{},
	}

	start, end := DayWindow(s.now())
	var dayMenu models.DayMenu
	err := db.Where("restaurant_id = ? AND active = ? AND date BETWEEN ? AND ?", restaurant.ID, true, start, end).
		Order("created_at").
		First(&dayMenu).Error
	switch {
	case err == nil:
		view.DayMenu = &dayMenu
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return View{}, apperr.Internal("database error", err)
	}

	if err := db.Where("restaurant_id = ? AND available = ?", restaurant.ID, true).
		Order("created_at").Find(&view.Dishes).Error; err != nil {
		return View{}, apperr.Internal("database error", err)
	}

	if err := db.Where("restaurant_id = ? AND available = ?", restaurant.ID, true).
		Order("created_at").Find(&view.Specials).Error; err != nil {
		return View{}, apperr.Internal("database error", err)
	}

	return view, nil
}
