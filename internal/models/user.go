package models

import (
	"strings"
	"time"
)

type UserRole string

const (
	RoleSuperAdmin      UserRole = "superadmin"
	RoleRestaurantAdmin UserRole = "admin_restaurant"
)

func (r UserRole) Valid() bool {
	return r == RoleSuperAdmin || r == RoleRestaurantAdmin
}

// User is an administrator account. RestaurantID is set iff Role is
// RoleRestaurantAdmin. The verification fields exist only while a code is
// pending.
type User struct {
	Model
	Email        string   `gorm:"size:160;not null;uniqueIndex" json:"email"`
	PasswordHash string   `gorm:"size:255;not null" json:"-"`
	Role         UserRole `gorm:"size:20;not null" json:"role"`
	RestaurantID *string  `gorm:"size:36;index" json:"restaurantId"`
	Verified     bool     `gorm:"not null" json:"verified"`

	VerificationCode      *string    `gorm:"size:6" json:"-"`
	VerificationExpiresAt *time.Time `json:"-"`
}

// NormalizeEmail is applied to every email before it is stored or looked up.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
