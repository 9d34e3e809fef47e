package models

import (
	"time"

	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionToggle AuditAction = "toggle"
	AuditActionImport AuditAction = "import"
)

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	RestaurantID string `gorm:"size:36;index" json:"restaurantId"`

	// Empty when the session carries no identity (descriptor mode).
	UserID string `gorm:"size:36" json:"userId"`

	// "dish", "special", "menu_category", "day_menu"
	EntityType string `gorm:"size:50;index" json:"entityType"`
	EntityID   string `gorm:"size:36;index" json:"entityId"`

	Action      AuditAction `gorm:"size:20" json:"action"`
	Description string      `gorm:"size:255" json:"description"`

	BeforeData datatypes.JSON `json:"before"`
	AfterData  datatypes.JSON `json:"after"`
}
