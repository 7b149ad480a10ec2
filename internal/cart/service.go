package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db/models"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

// Service exposes cart mutation and read operations. Every mutation reloads
// the owner's cart, applies the change through the aggregate, and persists the
// result in one transaction.
type Service interface {
	GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	GetCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error)
	AddProduct(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartDTO, error)
	UpdateProductQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartDTO, error)
	RemoveProduct(ctx context.Context, userID, cartID, productID uuid.UUID) (*CartDTO, error)
	ClearCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error)
	DeleteCart(ctx context.Context, userID, cartID uuid.UUID) error
}

type service struct {
	tx       txRunner
	repo     CartRepository
	products productLoader
}

// NewService constructs the cart service.
func NewService(tx txRunner, repo CartRepository, products productLoader) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{tx: tx, repo: repo, products: products}, nil
}

// GetOrCreateCart returns the user's active cart, creating one when none exists.
func (s *service) GetOrCreateCart(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}

	record, err := s.repo.FindActiveByUser(ctx, userID)
	if err == nil {
		return toDTO(record), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading active cart")
	}

	created, err := s.repo.Create(ctx, &models.Cart{UserID: userID})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating cart")
	}
	created.Recalculate()
	return toDTO(created), nil
}

// GetCart returns a cart owned by the user.
func (s *service) GetCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error) {
	record, err := s.loadOwnedCart(ctx, s.repo, userID, cartID)
	if err != nil {
		return nil, err
	}
	return toDTO(record), nil
}

// AddProduct merges qty units of the product into the cart, snapshotting the
// current catalog price on the first add.
func (s *service) AddProduct(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if qty < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	return s.mutate(ctx, userID, cartID, func(record *models.Cart, repo CartRepository) error {
		product, err := s.products.FindByID(ctx, productID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product is no longer available")
		}

		// Advisory check only. Checkout re-validates stock atomically, but
		// rejecting obviously unfillable adds gives earlier feedback.
		requested := qty
		if line := record.Line(productID); line != nil {
			requested += line.Quantity
		}
		if product.Stock < requested {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
				WithDetails(map[string]any{
					"product_id": productID.String(),
					"requested":  requested,
					"available":  product.Stock,
				})
		}

		return record.AddLine(productID, qty, product.Price)
	})
}

// UpdateProductQuantity sets the absolute quantity of a line. Zero or negative
// quantities remove the line.
func (s *service) UpdateProductQuantity(ctx context.Context, userID, cartID, productID uuid.UUID, qty int) (*CartDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.mutate(ctx, userID, cartID, func(record *models.Cart, repo CartRepository) error {
		return record.SetLineQuantity(productID, qty)
	})
}

// RemoveProduct drops the product's line. Removing an absent product succeeds.
func (s *service) RemoveProduct(ctx context.Context, userID, cartID, productID uuid.UUID) (*CartDTO, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	return s.mutate(ctx, userID, cartID, func(record *models.Cart, repo CartRepository) error {
		return record.RemoveLine(productID)
	})
}

// ClearCart removes every line, leaving the cart active.
func (s *service) ClearCart(ctx context.Context, userID, cartID uuid.UUID) (*CartDTO, error) {
	return s.mutate(ctx, userID, cartID, func(record *models.Cart, repo CartRepository) error {
		return record.Clear()
	})
}

// DeleteCart removes the cart entirely.
func (s *service) DeleteCart(ctx context.Context, userID, cartID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.loadOwnedCart(ctx, repo, userID, cartID)
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, record.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting cart")
		}
		return nil
	})
}

// mutate runs fn against the freshly loaded cart and persists lines plus the
// recomputed totals in one transaction.
func (s *service) mutate(ctx context.Context, userID, cartID uuid.UUID, fn func(record *models.Cart, repo CartRepository) error) (*CartDTO, error) {
	var result *models.Cart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		record, err := s.loadOwnedCart(ctx, repo, userID, cartID)
		if err != nil {
			return err
		}
		if err := fn(record, repo); err != nil {
			return err
		}
		if err := repo.ReplaceItems(ctx, record.ID, record.Items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart lines")
		}
		if _, err := repo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
		}
		result = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toDTO(result), nil
}

func (s *service) loadOwnedCart(ctx context.Context, repo CartRepository, userID, cartID uuid.UUID) (*models.Cart, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}
	record, err := repo.FindByIDAndUser(ctx, cartID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}
	return record, nil
}
