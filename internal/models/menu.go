package models

import (
	"time"

	"gorm.io/datatypes"
)

// Option is a selectable item inside a menu category.
type Option struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// MenuCategory is a template that day menus pick options from.
type MenuCategory struct {
	Model
	RestaurantID string                      `gorm:"size:36;not null;index" json:"restaurantId"`
	Name         string                      `gorm:"size:120;not null" json:"name"`
	Options      datatypes.JSONSlice[Option] `json:"options"`
}

// DayMenuSection holds copies of the chosen options, not references, so later
// edits to a category leave past day menus untouched.
type DayMenuSection struct {
	CategoryName string   `json:"categoryName"`
	Items        []Option `json:"items"`
}

// DayMenu is the curated menu for one UTC calendar day. Several may exist for
// the same day; only active ones are served.
type DayMenu struct {
	Model
	RestaurantID string                              `gorm:"size:36;not null;index:idx_day_menus_lookup,priority:1" json:"restaurantId"`
	Date         time.Time                           `gorm:"not null;index:idx_day_menus_lookup,priority:2" json:"date"`
	Name         string                              `gorm:"size:120;not null" json:"name"`
	Price        *float64                            `json:"price"`
	Active       bool                                `gorm:"not null" json:"active"`
	Sections     datatypes.JSONSlice[DayMenuSection] `json:"sections"`
}
