package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Ticket is the immutable record of a completed (possibly partial) purchase.
type Ticket struct {
	ID               uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Code             string          `gorm:"column:code;not null;uniqueIndex"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(14,2);not null"`
	PurchaseDatetime time.Time       `gorm:"column:purchase_datetime;not null"`
	PurchaserID      uuid.UUID       `gorm:"column:purchaser_id;type:uuid;not null;index"`
	CreatedAt        time.Time       `gorm:"column:created_at;autoCreateTime"`
}

func (t *Ticket) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
