package product

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db"
	"github.com/avillegas/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

var codePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9_-]*$`)

// Service exposes catalog management operations.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeactivateProduct(ctx context.Context, productID uuid.UUID) error
	GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error)
	GetProductByCode(ctx context.Context, code string) (*ProductDTO, error)
	ListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error)
}

// CreateProductInput holds the validated payload to create a product.
type CreateProductInput struct {
	Title       string
	Description string
	Code        string
	Price       decimal.Decimal
	Stock       int
	Category    string
	Thumbnails  []string
	OwnerID     *uuid.UUID
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Title       *string
	Description *string
	Price       *decimal.Decimal
	Stock       *int
	IsActive    *bool
	Category    *string
	Thumbnails  *[]string
}

type service struct {
	repo ProductRepository
}

// NewService constructs a catalog service instance.
func NewService(repo ProductRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

// CreateProduct validates and inserts a catalog product.
func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}

	code, err := normalizeCode(input.Code)
	if err != nil {
		return nil, err
	}
	if err := validatePrice(input.Price); err != nil {
		return nil, err
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
	}

	record := &models.Product{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Code:        code,
		Price:       input.Price,
		Stock:       input.Stock,
		IsActive:    true,
		Category:    strings.TrimSpace(input.Category),
		Thumbnails:  input.Thumbnails,
		OwnerID:     input.OwnerID,
	}

	created, err := s.repo.Create(ctx, record)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_products_code") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "product code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating product")
	}
	return toDTO(created), nil
}

// UpdateProduct applies the provided partial update.
func (s *service) UpdateProduct(ctx context.Context, productID uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	record, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		record.Title = title
	}
	if input.Description != nil {
		record.Description = strings.TrimSpace(*input.Description)
	}
	if input.Price != nil {
		if err := validatePrice(*input.Price); err != nil {
			return nil, err
		}
		record.Price = *input.Price
	}
	if input.Stock != nil {
		if *input.Stock < 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock cannot be negative")
		}
		record.Stock = *input.Stock
	}
	if input.IsActive != nil {
		record.IsActive = *input.IsActive
	}
	if input.Category != nil {
		record.Category = strings.TrimSpace(*input.Category)
	}
	if input.Thumbnails != nil {
		record.Thumbnails = *input.Thumbnails
	}

	updated, err := s.repo.Update(ctx, record)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating product")
	}
	return toDTO(updated), nil
}

// DeactivateProduct hides the product from the catalog without deleting rows.
func (s *service) DeactivateProduct(ctx context.Context, productID uuid.UUID) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.repo.Deactivate(ctx, productID)
}

// GetProduct returns a single catalog product.
func (s *service) GetProduct(ctx context.Context, productID uuid.UUID) (*ProductDTO, error) {
	record, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toDTO(record), nil
}

// GetProductByCode resolves a product by its catalog code.
func (s *service) GetProductByCode(ctx context.Context, code string) (*ProductDTO, error) {
	normalized, err := normalizeCode(code)
	if err != nil {
		return nil, err
	}
	record, err := s.repo.FindByCode(ctx, normalized)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product by code")
	}
	return toDTO(record), nil
}

// ListProducts returns a filtered catalog page.
func (s *service) ListProducts(ctx context.Context, filters ListFilters) (*ProductListResult, error) {
	rows, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing products")
	}
	items := make([]ProductDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *toDTO(&rows[i]))
	}
	return &ProductListResult{Products: items, Total: total}, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	record, err := s.repo.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
	}
	return record, nil
}

func normalizeCode(code string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "code is required")
	}
	if !codePattern.MatchString(normalized) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "code may only contain letters, digits, '-' and '_'")
	}
	return normalized, nil
}

func validatePrice(price decimal.Decimal) error {
	if price.LessThanOrEqual(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "price must be greater than zero")
	}
	return nil
}
