package product

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

// ProductRepository defines CRUD and stock operations for catalog products.
type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindByCode(ctx context.Context, code string) (*models.Product, error)
	List(ctx context.Context, filters ListFilters) ([]models.Product, int64, error)
	Create(ctx context.Context, product *models.Product) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) (*models.Product, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	Reserve(ctx context.Context, productID uuid.UUID, qty int) error
}

// ListFilters narrows the catalog listing.
type ListFilters struct {
	Category   string
	ActiveOnly bool
	Limit      int
	Offset     int
}

// Repository wires product persistence to a GORM DB.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads the product without associations.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByCode loads the product by its normalized catalog code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Product, error) {
	var product models.Product
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if err := r.db.WithContext(ctx).First(&product, "code = ?", normalized).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns catalog products matching the filters plus the unpaginated count.
func (r *Repository) List(ctx context.Context, filters ListFilters) ([]models.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Product{})
	if filters.Category != "" {
		query = query.Where("category = ?", filters.Category)
	}
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.Limit > 0 {
		query = query.Limit(filters.Limit)
	}
	if filters.Offset > 0 {
		query = query.Offset(filters.Offset)
	}

	var rows []models.Product
	if err := query.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// Create inserts a new product row.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update updates an existing product row.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Deactivate soft-deletes a product so it stays referenceable from past carts.
func (r *Repository) Deactivate(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return nil
}

// Reserve atomically decrements stock when enough units are available. The
// guarded UPDATE is the only stock mutation path, so concurrent checkouts
// cannot oversell.
func (r *Repository) Reserve(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "reservation qty must be at least 1")
	}

	result := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND is_active = ? AND stock >= ?", productID, true, qty).
		UpdateColumn("stock", gorm.Expr("stock - ?", qty))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	// Zero rows means either a missing/inactive product or not enough stock.
	var product models.Product
	err := r.db.WithContext(ctx).First(&product, "id = ?", productID).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	case err != nil:
		return err
	case !product.IsActive:
		return pkgerrors.New(pkgerrors.CodeNotFound, "product is no longer available")
	default:
		return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
			WithDetails(map[string]any{
				"product_id": productID.String(),
				"requested":  qty,
				"available":  product.Stock,
			})
	}
}
