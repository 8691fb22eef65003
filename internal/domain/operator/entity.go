// internal/domain/operator/entity.go
package operator

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the operator's privilege level at the register
type Role string

const (
	RoleCashier    Role = "cashier"
	RoleSupervisor Role = "supervisor"
	RoleAdmin      Role = "admin"
)

// level orders roles for privilege comparisons
func (r Role) level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleSupervisor:
		return 2
	case RoleCashier:
		return 1
	}
	return 0
}

// AtLeast reports whether the role meets a minimum privilege level
func (r Role) AtLeast(min Role) bool {
	return r.level() >= min.level()
}

// Operator represents a register operator
type Operator struct {
	ID                   uint           `gorm:"primaryKey" json:"id"`
	Username             string         `gorm:"uniqueIndex;not null;size:100" json:"username"`
	Name                 string         `gorm:"not null;size:255" json:"name"`
	Email                string         `gorm:"size:255" json:"email"`
	Password             string         `gorm:"not null;size:255" json:"-"` // Don't return in JSON
	Role                 Role           `gorm:"not null;default:'cashier'" json:"role"`
	DiscountLimitPercent float64        `gorm:"default:0" json:"discount_limit_percent"`
	IsActive             bool           `gorm:"default:true" json:"is_active"`
	LastLoginAt          *time.Time     `json:"last_login_at"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName overrides the table name for Operator
func (Operator) TableName() string {
	return "operators"
}

// IsPrivileged reports whether discounts bypass authorization entirely
func (o *Operator) IsPrivileged() bool {
	return o.Role == RoleAdmin
}
