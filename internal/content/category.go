package content

import (
	"context"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"carta-backend/internal/apperr"
	"carta-backend/internal/audit"
	"carta-backend/internal/auth"
	"carta-backend/internal/models"
)

type MenuCategoryInput struct {
	RestaurantID string          `json:"restaurantId"`
	Name         string          `json:"name" validate:"required"`
	Options      []models.Option `json:"options"`
}

type MenuCategoryUpdate struct {
	Name    *string          `json:"name"`
	Options *[]models.Option `json:"options"`
}

func categoryOwner(mc *models.MenuCategory) string { return mc.RestaurantID }

func cleanOptions(in []models.Option) ([]models.Option, error) {
	out := make([]models.Option, 0, len(in))
	for _, o := range in {
		o.Name = strings.TrimSpace(o.Name)
		if o.Name == "" {
			return nil, apperr.Validation("option names are required")
		}
		o.Description = strings.TrimSpace(o.Description)
		out = append(out, o)
	}
	return out, nil
}

func (s *Service) CreateMenuCategory(ctx context.Context, actor auth.Principal, in MenuCategoryInput) (models.MenuCategory, error) {
	name, err := requireName(in.Name, "category")
	if err != nil {
		return models.MenuCategory{}, err
	}
	options, err := cleanOptions(in.Options)
	if err != nil {
		return models.MenuCategory{}, err
	}

	category := models.MenuCategory{
		RestaurantID: in.RestaurantID,
		Name:         name,
		Options:      datatypes.JSONSlice[models.Option](options),
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureRestaurant(tx, category.RestaurantID); err != nil {
			return err
		}
		if err := tx.Create(&category).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityMenuCategory, category.ID, category.RestaurantID, models.AuditActionCreate, nil, category)
	})
	if err != nil {
		return models.MenuCategory{}, err
	}
	return category, nil
}

func (s *Service) ListMenuCategories(ctx context.Context, restaurantID string) ([]models.MenuCategory, error) {
	return list[models.MenuCategory](ctx, s.db, restaurantID)
}

func (s *Service) GetMenuCategory(ctx context.Context, actor auth.Principal, id string) (models.MenuCategory, error) {
	return load(s.db.WithContext(ctx), actor, id, "menu category", categoryOwner)
}

// UpdateMenuCategory never touches day menus built from the category; they
// hold their own copies of the options.
func (s *Service) UpdateMenuCategory(ctx context.Context, actor auth.Principal, id string, in MenuCategoryUpdate) (models.MenuCategory, error) {
	var category models.MenuCategory
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		category, err = load(tx, actor, id, "menu category", categoryOwner)
		if err != nil {
			return err
		}
		before := category

		if in.Name != nil {
			if category.Name, err = requireName(*in.Name, "category"); err != nil {
				return err
			}
		}
		if in.Options != nil {
			options, err := cleanOptions(*in.Options)
			if err != nil {
				return err
			}
			category.Options = datatypes.JSONSlice[models.Option](options)
		}

		if err := tx.Save(&category).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityMenuCategory, category.ID, category.RestaurantID, models.AuditActionUpdate, before, category)
	})
	if err != nil {
		return models.MenuCategory{}, err
	}
	return category, nil
}

func (s *Service) DeleteMenuCategory(ctx context.Context, actor auth.Principal, id string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		category, err := load(tx, actor, id, "menu category", categoryOwner)
		if err != nil {
			return err
		}
		if err := tx.Delete(&category).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityMenuCategory, category.ID, category.RestaurantID, models.AuditActionDelete, category, nil)
	})
}
