package product

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db/models"
)

func mustCreateTestProduct(t *testing.T, tx *gorm.DB, stock int) *models.Product {
	t.Helper()
	record := &models.Product{
		Title:       "Test Product",
		Description: "catalog fixture",
		Code:        strings.ToUpper(fmt.Sprintf("SKU-%s", uuid.NewString())),
		Price:       decimal.NewFromFloat(19.99),
		Stock:       stock,
		IsActive:    true,
		Category:    "fixtures",
		Thumbnails:  pq.StringArray{"https://cdn.example.com/thumb.png"},
	}
	if err := tx.Create(record).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return record
}
