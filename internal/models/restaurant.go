package models

// Restaurant is a tenant. Name and slug are unique across all tenants.
type Restaurant struct {
	Model
	Name  string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Slug  string `gorm:"size:140;not null;uniqueIndex" json:"slug"`
	Phone string `gorm:"size:50" json:"phone"`
}
