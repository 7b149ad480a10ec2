package checkout

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avillegas/storefront-backend/pkg/db/models"
)

// TicketDTO is the purchase receipt returned to clients.
type TicketDTO struct {
	ID               uuid.UUID       `json:"id"`
	Code             string          `json:"code"`
	Amount           decimal.Decimal `json:"amount"`
	PurchaseDatetime time.Time       `json:"purchase_datetime"`
	PurchaserID      uuid.UUID       `json:"purchaser_id"`
}

// Result captures the outcome of a checkout execution.
type Result struct {
	Ticket       *TicketDTO  `json:"ticket"`
	NotProcessed []uuid.UUID `json:"products_not_processed"`
}

func toTicketDTO(m *models.Ticket) *TicketDTO {
	if m == nil {
		return nil
	}
	return &TicketDTO{
		ID:               m.ID,
		Code:             m.Code,
		Amount:           m.Amount,
		PurchaseDatetime: m.PurchaseDatetime,
		PurchaserID:      m.PurchaserID,
	}
}
