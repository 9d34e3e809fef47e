// Package admin is the super-admin back office: tenants and their users.
package admin

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/models"
	"carta-backend/internal/slug"
)

type UpdateRestaurantRequest struct {
	Name  *string `json:"name"`
	Slug  *string `json:"slug"`
	Phone *string `json:"phone"`
}

// UserResponse is a user as listed in the back office.
type UserResponse struct {
	ID             string          `json:"id"`
	Email          string          `json:"email"`
	Role           models.UserRole `json:"role"`
	RestaurantID   *string         `json:"restaurantId"`
	RestaurantName *string         `json:"restaurantName"`
	Verified       bool            `json:"verified"`
	CreatedAt      string          `json:"createdAt"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

func (s *Service) ListRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	restaurants := []models.Restaurant{}
	if err := s.db.WithContext(ctx).Order("name").Find(&restaurants).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}
	return restaurants, nil
}

func (s *Service) GetRestaurant(ctx context.Context, id string) (models.Restaurant, error) {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, "id = ?", id).Error; err != nil {
		return models.Restaurant{}, apperr.FromDB(err, "", "restaurant not found")
	}
	return restaurant, nil
}

// UpdateRestaurant edits the profile. A new slug must fit in one path segment; clashes on
// name or slug come back as Conflict from the unique indexes.
func (s *Service) UpdateRestaurant(ctx context.Context, id string, in UpdateRestaurantRequest) (models.Restaurant, error) {
	restaurant, err := s.GetRestaurant(ctx, id)
	if err != nil {
		return models.Restaurant{}, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return models.Restaurant{}, apperr.Validation("restaurant name is required")
		}
		restaurant.Name = name
	}
	if in.Slug != nil {
		sl := strings.TrimSpace(*in.Slug)
		if !slug.Valid(sl) {
			return models.Restaurant{}, apperr.Validation("slug cannot contain spaces, '/', '?' or '#'")
		}
		restaurant.Slug = sl
	}
	if in.Phone != nil {
		restaurant.Phone = strings.TrimSpace(*in.Phone)
	}

	if err := s.db.WithContext(ctx).Save(&restaurant).Error; err != nil {
		return models.Restaurant{}, apperr.FromDB(err, "restaurant name or URL already exists", "restaurant not found")
	}

	s.log.Info("restaurant updated", zap.String("restaurant_id", restaurant.ID), zap.String("slug", restaurant.Slug))
	return restaurant, nil
}

// ListUsers returns every user with the name of their restaurant. A user whose
// restaurant no longer exists gets a null name.
func (s *Service) ListUsers(ctx context.Context, restaurantID string) ([]UserResponse, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if restaurantID != "" {
		q = q.Where("restaurant_id = ?", restaurantID)
	}

	var users []models.User
	if err := q.Find(&users).Error; err != nil {
		return nil, apperr.Internal("database error", err)
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.RestaurantID != nil {
			ids = append(ids, *u.RestaurantID)
		}
	}

	names := map[string]string{}
	if len(ids) > 0 {
		var restaurants []models.Restaurant
		if err := s.db.WithContext(ctx).Select("id", "name").Where("id IN ?", ids).Find(&restaurants).Error; err != nil {
			return nil, apperr.Internal("database error", err)
		}
		for _, r := range restaurants {
			names[r.ID] = r.Name
		}
	}

	res := make([]UserResponse, 0, len(users))
	for _, u := range users {
		item := UserResponse{
			ID:           u.ID,
			Email:        u.Email,
			Role:         u.Role,
			RestaurantID: u.RestaurantID,
			Verified:     u.Verified,
			CreatedAt:    u.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
		}
		if u.RestaurantID != nil {
			if name, ok := names[*u.RestaurantID]; ok {
				item.RestaurantName = &name
			}
		}
		res = append(res, item)
	}
	return res, nil
}
