package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindActiveByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*models.Cart, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Cart, error)
	Create(ctx context.Context, record *models.Cart) (*models.Cart, error)
	Update(ctx context.Context, record *models.Cart) (*models.Cart, error)
	ReplaceItems(ctx context.Context, cartID uuid.UUID, items []models.CartItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}
