package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one line of a cart: a product reference, a positive quantity and
// the unit price snapshotted when the line was first added. The product
// reference may arrive populated (joined Product row) or as a bare id; callers
// must compare through ProductKey, never through struct identity.
type CartItem struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	CartID    uuid.UUID       `gorm:"column:cart_id;type:uuid;not null;index"`
	ProductID uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	Product   *Product        `gorm:"foreignKey:ProductID"`
	Quantity  int             `gorm:"column:quantity;not null"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	AddedAt   time.Time       `gorm:"column:added_at;not null"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (i *CartItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ProductKey normalizes the product reference to a canonical id string,
// whether the line stores a populated Product or only the bare id.
func (i *CartItem) ProductKey() string {
	if i.ProductID != uuid.Nil {
		return i.ProductID.String()
	}
	if i.Product != nil {
		return i.Product.ID.String()
	}
	return ""
}

// LineTotal returns snapshot price times quantity.
func (i *CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
