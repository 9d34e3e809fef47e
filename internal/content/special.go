package content

import (
	"context"

	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

type SpecialInput struct {
	RestaurantID string   `json:"restaurantId"`
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Price        *float64 `json:"price" validate:"required,gte=0"`
	Available    *bool    `json:"available"`
}

type SpecialUpdate struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Available   *bool    `json:"available"`
}

func specialOwner(sp *models.Special) string { return sp.RestaurantID }

func (s *Service) CreateSpecial(ctx context.Context, actor auth.Principal, in SpecialInput) (models.Special, error) {
	name, err := requireName(in.Name, "special")
	if err != nil {
		return models.Special{}, err
	}
	if in.Price == nil {
		return models.Special{}, apperr.Validation("price is required")
	}
	if err := requirePrice(*in.Price); err != nil {
		return models.Special{}, err
	}

	special := models.Special{
		RestaurantID: in.RestaurantID,
		Name:         name,
		Description:  in.Description,
		Price:        *in.Price,
		Available:    in.Available == nil || *in.Available,
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureRestaurant(tx, special.RestaurantID); err != nil {
			return err
		}
		if err := tx.Create(&special).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntitySpecial, special.ID, special.RestaurantID, models.AuditActionCreate, nil, special)
	})
	if err != nil {
		return models.Special{}, err
	}
	return special, nil
}

func (s *Service) ListSpecials(ctx context.Context, restaurantID string) ([]models.Special, error) {
	return list[models.Special](ctx, s.db, restaurantID)
}

func (s *Service) GetSpecial(ctx context.Context, actor auth.Principal, id string) (models.Special, error) {
	return load(s.db.WithContext(ctx), actor, id, "special", specialOwner)
}

func (s *Service) UpdateSpecial(ctx context.Context, actor auth.Principal, id string, in SpecialUpdate) (models.Special, error) {
	var special models.Special
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		special, err = load(tx, actor, id, "special", specialOwner)
		if err != nil {
			return err
		}
		before := special

		if in.Name != nil {
			if special.Name, err = requireName(*in.Name, "special"); err != nil {
				return err
			}
		}
		if in.Description != nil {
			special.Description = *in.Description
		}
		if in.Price != nil {
			if err := requirePrice(*in.Price); err != nil {
				return err
			}
			special.Price = *in.Price
		}
		if in.Available != nil {
			special.Available = *in.Available
		}

		if err := tx.Save(&special).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntitySpecial, special.ID, special.RestaurantID, models.AuditActionUpdate, before, special)
	})
	if err != nil {
		return models.Special{}, err
	}
	return special, nil
}

func (s *Service) DeleteSpecial(ctx context.Context, actor auth.Principal, id string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		special, err := load(tx, actor, id, "special", specialOwner)
		if err != nil {
			return err
		}
		if err := tx.Delete(&special).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntitySpecial, special.ID, special.RestaurantID, models.AuditActionDelete, special, nil)
	})
}

func (s *Service) ToggleSpecial(ctx context.Context, actor auth.Principal, id string) (models.Special, error) {
	var special models.Special
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		before, err := load(tx, actor, id, "special", specialOwner)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.Special{}).Where("id = ?", id).
			Update("available", gorm.Expr("NOT available")).Error; err != nil {
			return err
		}
		if err := tx.First(&special, "id = ?", id).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntitySpecial, special.ID, special.RestaurantID, models.AuditActionToggle, before, special)
	})
	if err != nil {
		return models.Special{}, err
	}
	return special, nil
}
