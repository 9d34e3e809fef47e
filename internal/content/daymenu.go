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

type DayMenuInput struct {
	RestaurantID string                  `json:"restaurantId"`
	Date         string                  `json:"date" validate:"required"`
	Name         string                  `json:"name" validate:"required"`
	Price        *float64                `json:"price" validate:"omitempty,gte=0"`
	Active       *bool                   `json:"active"`
	Sections     []models.DayMenuSection `json:"sections"`
}

type DayMenuUpdate struct {
	Date     *string                  `json:"date"`
	Name     *string                  `json:"name"`
	Price    *float64                 `json:"price" validate:"omitempty,gte=0"`
	Active   *bool                    `json:"active"`
	Sections *[]models.DayMenuSection `json:"sections"`
}

func dayMenuOwner(dm *models.DayMenu) string { return dm.RestaurantID }

// cleanSections copies the submitted options so the stored day menu keeps
// its own snapshot.
func cleanSections(in []models.DayMenuSection) ([]models.DayMenuSection, error) {
	out := make([]models.DayMenuSection, 0, len(in))
	for _, sec := range in {
		name := strings.TrimSpace(sec.CategoryName)
		if name == "" {
			return nil, apperr.Validation("section categoryName is required")
		}
		items, err := cleanOptions(sec.Items)
		if err != nil {
			return nil, err
		}
		out = append(out, models.DayMenuSection{CategoryName: name, Items: items})
	}
	return out, nil
}

// CreateDayMenu stores a menu for one UTC day. Day menus are active unless
// stated otherwise; several may share a day.
func (s *Service) CreateDayMenu(ctx context.Context, actor auth.Principal, in DayMenuInput) (models.DayMenu, error) {
	name, err := requireName(in.Name, "day menu")
	if err != nil {
		return models.DayMenu{}, err
	}
	day, err := ParseDay(in.Date)
	if err != nil {
		return models.DayMenu{}, err
	}
	if in.Price != nil {
		if err := requirePrice(*in.Price); err != nil {
			return models.DayMenu{}, err
		}
	}
	sections, err := cleanSections(in.Sections)
	if err != nil {
		return models.DayMenu{}, err
	}

	dayMenu := models.DayMenu{
		RestaurantID: in.RestaurantID,
		Date:         day,
		Name:         name,
		Price:        in.Price,
		Active:       in.Active == nil || *in.Active,
		Sections:     datatypes.JSONSlice[models.DayMenuSection](sections),
	}

	err = s.inTx(ctx, func(tx *gorm.DB) error {
		if err := ensureRestaurant(tx, dayMenu.RestaurantID); err != nil {
			return err
		}
		if err := tx.Create(&dayMenu).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDayMenu, dayMenu.ID, dayMenu.RestaurantID, models.AuditActionCreate, nil, dayMenu)
	})
	if err != nil {
		return models.DayMenu{}, err
	}
	return dayMenu, nil
}

func (s *Service) ListDayMenus(ctx context.Context, restaurantID string) ([]models.DayMenu, error) {
	return list[models.DayMenu](ctx, s.db, restaurantID)
}

func (s *Service) GetDayMenu(ctx context.Context, actor auth.Principal, id string) (models.DayMenu, error) {
	return load(s.db.WithContext(ctx), actor, id, "day menu", dayMenuOwner)
}

func (s *Service) UpdateDayMenu(ctx context.Context, actor auth.Principal, id string, in DayMenuUpdate) (models.DayMenu, error) {
	var dayMenu models.DayMenu
	err := s.inTx(ctx, func(tx *gorm.DB) error {
		var err error
		dayMenu, err = load(tx, actor, id, "day menu", dayMenuOwner)
		if err != nil {
			return err
		}
		before := dayMenu

		if in.Name != nil {
			if dayMenu.Name, err = requireName(*in.Name, "day menu"); err != nil {
				return err
			}
		}
		if in.Date != nil {
			if dayMenu.Date, err = ParseDay(*in.Date); err != nil {
				return err
			}
		}
		if in.Price != nil {
			if err := requirePrice(*in.Price); err != nil {
				return err
			}
			price := *in.Price
			dayMenu.Price = &price
		}
		if in.Active != nil {
			dayMenu.Active = *in.Active
		}
		if in.Sections != nil {
			sections, err := cleanSections(*in.Sections)
			if err != nil {
				return err
			}
			dayMenu.Sections = datatypes.JSONSlice[models.DayMenuSection](sections)
		}

		if err := tx.Save(&dayMenu).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDayMenu, dayMenu.ID, dayMenu.RestaurantID, models.AuditActionUpdate, before, dayMenu)
	})
	if err != nil {
		return models.DayMenu{}, err
	}
	return dayMenu, nil
}

func (s *Service) DeleteDayMenu(ctx context.Context, actor auth.Principal, id string) error {
	return s.inTx(ctx, func(tx *gorm.DB) error {
		dayMenu, err := load(tx, actor, id, "day menu", dayMenuOwner)
		if err != nil {
			return err
		}
		if err := tx.Delete(&dayMenu).Error; err != nil {
			return err
		}
		return logChange(tx, actor, audit.EntityDayMenu, dayMenu.ID, dayMenu.RestaurantID, models.AuditActionDelete, dayMenu, nil)
	})
}
