package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avillegas/storefront-backend/pkg/db/models"
	"github.com/avillegas/storefront-backend/pkg/enums"
)

// CartDTO is the cart shape returned to clients.
type CartDTO struct {
	ID           uuid.UUID        `json:"id"`
	UserID       uuid.UUID        `json:"user_id"`
	Status       enums.CartStatus `json:"status"`
	Items        []CartItemDTO    `json:"items"`
	TotalItems   int              `json:"total_items"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	LastModified time.Time        `json:"last_modified"`
}

// CartItemDTO is a single cart line.
type CartItemDTO struct {
	ProductID uuid.UUID       `json:"product_id"`
	Title     string          `json:"title,omitempty"`
	Code      string          `json:"code,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
	AddedAt   time.Time       `json:"added_at"`
}

func toDTO(record *models.Cart) *CartDTO {
	if record == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(record.Items))
	for i := range record.Items {
		item := &record.Items[i]
		dto := CartItemDTO{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal(),
			AddedAt:   item.AddedAt,
		}
		if item.Product != nil {
			dto.Title = item.Product.Title
			dto.Code = item.Product.Code
		}
		items = append(items, dto)
	}
	return &CartDTO{
		ID:           record.ID,
		UserID:       record.UserID,
		Status:       record.Status,
		Items:        items,
		TotalItems:   record.TotalItems,
		TotalAmount:  record.TotalAmount,
		LastModified: record.LastModified,
	}
}
