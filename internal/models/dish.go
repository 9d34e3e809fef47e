package models

// Dish is an à la carte item.
type Dish struct {
	Model
	RestaurantID string  `gorm:"size:36;not null;index" json:"restaurantId"`
	Name         string  `gorm:"size:120;not null" json:"name"`
	Description  string  `gorm:"size:500" json:"description"`
	Price        float64 `gorm:"not null" json:"price"`
	Category     string  `gorm:"size:80" json:"category"`
	Available    bool    `gorm:"not null;index" json:"available"`
}

// Special is a daily special, toggled independently of dishes.
type Special struct {
	Model
	RestaurantID string  `gorm:"size:36;not null;index" json:"restaurantId"`
	Name         string  `gorm:"size:120;not null" json:"name"`
	Description  string  `gorm:"size:500" json:"description"`
	Price        float64 `gorm:"not null" json:"price"`
	Available    bool    `gorm:"not null;index" json:"available"`
}
