package product

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avillegas/storefront-backend/pkg/db/models"
)

// ProductDTO is the catalog product shape returned to clients.
type ProductDTO struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Code        string          `json:"code"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	IsActive    bool            `json:"is_active"`
	Category    string          `json:"category"`
	Thumbnails  []string        `json:"thumbnails"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResult bundles a catalog page with its total count.
type ProductListResult struct {
	Products []ProductDTO `json:"products"`
	Total    int64        `json:"total"`
}

func toDTO(m *models.Product) *ProductDTO {
	if m == nil {
		return nil
	}
	thumbnails := make([]string, len(m.Thumbnails))
	copy(thumbnails, m.Thumbnails)
	return &ProductDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Code:        m.Code,
		Price:       m.Price,
		Stock:       m.Stock,
		IsActive:    m.IsActive,
		Category:    m.Category,
		Thumbnails:  thumbnails,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
