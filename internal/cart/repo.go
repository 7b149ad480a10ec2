package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avillegas/storefront-backend/pkg/db/models"
	"github.com/avillegas/storefront-backend/pkg/enums"
)

// Repository exposes cart persistence bound to a GORM DB.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindActiveByUser loads the latest active cart for the user with its lines.
func (r *Repository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("user_id = ? AND status = ?", userID, enums.CartStatusActive).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByIDAndUser returns a cart restricted to the provided owner.
func (r *Repository) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// FindByID loads a cart by primary key with its lines.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ?", id).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart.
func (r *Repository) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if record.Status == "" {
		record.Status = enums.CartStatusActive
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// Update saves cart scalar fields. Lines are persisted via ReplaceItems so the
// two writes stay explicit.
func (r *Repository) Update(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ReplaceItems atomically replaces cart lines for the provided cart.
func (r *Repository) ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.CartItem, len(items))
	copy(rows, items)
	for i := range rows {
		rows[i].CartID = cartID
		rows[i].Product = nil
	}
	return tx.Create(&rows).Error
}

// Delete removes the cart and its lines.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("cart_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Cart{}).Error
}
