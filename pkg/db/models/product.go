package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is the canonical catalog listing. Stock is decremented only through
// the reservation path; catalog edits never touch it concurrently with checkout.
type Product struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Title       string          `gorm:"column:title;not null"`
	Description string          `gorm:"column:description;not null"`
	Code        string          `gorm:"column:code;not null;uniqueIndex"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Stock       int             `gorm:"column:stock;not null;default:0"`
	IsActive    bool            `gorm:"column:is_active;not null;default:true"`
	Category    string          `gorm:"column:category;not null"`
	Thumbnails  pq.StringArray  `gorm:"column:thumbnails;type:text[]"`
	OwnerID     *uuid.UUID      `gorm:"column:owner_id;type:uuid"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the id client-side so the model works on every dialect.
func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// IsAvailable reports whether the requested quantity could be served right now.
// Advisory only: the authoritative check is the conditional decrement at checkout.
func (p *Product) IsAvailable(quantity int) bool {
	return p.IsActive && quantity > 0 && p.Stock >= quantity
}

// InStock reports whether any unit remains.
func (p *Product) InStock() bool {
	return p.Stock > 0
}

// FormattedPrice renders the price for display.
func (p *Product) FormattedPrice() string {
	return fmt.Sprintf("$%s", p.Price.StringFixed(2))
}
