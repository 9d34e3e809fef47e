package content

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

type DishInput struct {
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Category     string   `json:"category"`
	Available    *bool    `json:"available"`
}

type DishUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Category    *string  `json:"category"`
	Available   *bool    `json:"available"`
}

func dishOwner(d *models.Dish) string { return d.RestaurantID }

// CreateDish adds a dish. Dishes are available unless stated otherwise.
func (s *Service) CreateDish(ctx context.Context, actor auth.Principal, in DishInput) (models.Dish, error) {
	name, err := requireName(in.Name, "dish")
	if err != nil {
		return models.Dish{}, err
	}
	if in.Price == nil {
		return models.Dish{}, apperr.Validation("price is required")
	}
	if err := requirePrice(*in.Price); err != nil {
		return models.Dish{}, err
	}

	dish := models.Dish{
		RestaurantID: in.RestaurantID,
		Name:         name,
		Description:  in.Description,
		Price:        *in.Price,
		Category:     in.Category,
		Available:    in.Available == nil || *in.Available,
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureRestaurant(tx, dish.RestaurantID); err != nil {
			return err
		}
		if err := tx.Create(&dish).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDish, dish.ID, dish.RestaurantID, models.AuditActionCreate, nil, dish)
	})
	if err != nil {
		return models.Dish{}, err
	}
	return dish, nil
}

func (s *Service) ListDishes(ctx context.Context, restaurantID string) ([]models.Dish, error) {
	return list[models.Dish](ctx, s.db, restaurantID)
}

func (s *Service) GetDish(ctx context.Context, actor auth.Principal, id string) (models.Dish, error) {
	return load(s.db.WithContext(ctx), actor, id, "dish", dishOwner)
}

func (s *Service) UpdateDish(ctx context.Context, actor auth.Principal, id string, in DishUpdate) (models.Dish, error) {
	var dish models.Dish
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		dish, err = load(tx, actor, id, "dish", dishOwner)
		if err != nil {
			return err
		}
		before := dish

		if in.Name != nil {
			if dish.Name, err = requireName(*in.Name, "dish"); err != nil {
				return err
			}
		}
		if in.Description != nil {
			dish.Description = *in.Description
		}
		if in.Price != nil {
			if err := requirePrice(*in.Price); err != nil {
				return err
			}
			dish.Price = *in.Price
		}
		if in.Category != nil {
			dish.Category = *in.Category
		}
		if in.Available != nil {
			dish.Available = *in.Available
		}

		if err := tx.Save(&dish).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDish, dish.ID, dish.RestaurantID, models.AuditActionUpdate, before, dish)
	})
	if err != nil {
		return models.Dish{}, err
	}
	return dish, nil
}

func (s *Service) DeleteDish(ctx context.Context, actor auth.Principal, id string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		dish, err := load(tx, actor, id, "dish", dishOwner)
		if err != nil {
			return err
		}
		if err := tx.Delete(&dish).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDish, dish.ID, dish.RestaurantID, models.AuditActionDelete, dish, nil)
	})
}

// ToggleDish flips availability in a single UPDATE so concurrent toggles
// never lose a flip.
func (s *Service) ToggleDish(ctx context.Context, actor auth.Principal, id string) (models.Dish, error) {
	var dish models.Dish
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		before, err := load(tx, actor, id, "dish", dishOwner)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Dish{}).Where("id = ?", id).
			Update("available", gorm.Expr("NOT available")).Error; err != nil {
			return err
		}
		if err := tx.First(&dish, "id = ?", id).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDish, dish.ID, dish.RestaurantID, models.AuditActionToggle, before, dish)
	})
	if err != nil {
		return models.Dish{}, err
	}
	s.log.Debug("dish toggled", zap.String("dish_id", dish.ID), zap.Bool("available", dish.Available))
	return dish, nil
}
