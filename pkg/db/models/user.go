package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/enums"
)

// User mirrors the principal record owned by the external identity service.
// Only the fields the cart/checkout core reads are kept here.
type User struct {
	ID        uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	FirstName string         `gorm:"column:first_name"`
	LastName  string         `gorm:"column:last_name"`
	Role      enums.UserRole `gorm:"column:role;not null;default:'user'"`
	IsActive  bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
