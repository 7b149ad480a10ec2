package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/internal/cart"
	product "github.com/avillegas/storefront-backend/internal/products"
	"github.com/avillegas/storefront-backend/internal/tickets"
	"github.com/avillegas/storefront-backend/pkg/config"
	"github.com/avillegas/storefront-backend/pkg/db/models"
	"github.com/avillegas/storefront-backend/pkg/enums"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
	"github.com/avillegas/storefront-backend/pkg/metrics"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service executes the purchase flow for a cart.
type Service interface {
	Execute(ctx context.Context, userID, cartID uuid.UUID) (*Result, error)
}

type service struct {
	tx       txRunner
	carts    cart.CartRepository
	products product.ProductRepository
	tickets  tickets.Repository
	cfg      config.CheckoutConfig
	metrics  *metrics.CheckoutMetrics
}

// NewService builds the checkout service. Metrics may be nil.
func NewService(
	tx txRunner,
	carts cart.CartRepository,
	products product.ProductRepository,
	ticketRepo tickets.Repository,
	cfg config.CheckoutConfig,
	checkoutMetrics *metrics.CheckoutMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if ticketRepo == nil {
		return nil, fmt.Errorf("ticket repository required")
	}
	return &service{
		tx:       tx,
		carts:    carts,
		products: products,
		tickets:  ticketRepo,
		cfg:      cfg,
		metrics:  checkoutMetrics,
	}, nil
}

// Execute reserves stock line by line, issues a ticket for the fulfilled lines
// and completes the cart. Lines that cannot be reserved are reported back and,
// unless configured otherwise, kept as the completed cart's only lines so a
// later purchase does not re-attempt the fulfilled ones. When no line can be
// fulfilled the whole transaction rolls back and the cart and stock are left
// untouched.
func (s *service) Execute(ctx context.Context, userID, cartID uuid.UUID) (*Result, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if cartID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart id required")
	}

	start := time.Now()
	var (
		result         *Result
		fulfilledCount int
	)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)
		ticketRepo := s.tickets.WithTx(tx)

		record, err := cartRepo.FindByIDAndUser(ctx, cartID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
		}
		if record.Status != enums.CartStatusActive {
			return pkgerrors.New(pkgerrors.CodeCartState, fmt.Sprintf("cart is already %s", record.Status))
		}
		if record.IsEmpty() {
			return pkgerrors.New(pkgerrors.CodeCartState, "cart contains no items")
		}

		fulfilled := make([]models.CartItem, 0, len(record.Items))
		retained := make([]models.CartItem, 0)
		notProcessed := make([]uuid.UUID, 0)

		for _, item := range record.Items {
			err := productRepo.Reserve(ctx, item.ProductID, item.Quantity)
			if err == nil {
				fulfilled = append(fulfilled, item)
				continue
			}
			typed := pkgerrors.As(err)
			if typed == nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reserving stock")
			}
			switch typed.Code() {
			case pkgerrors.CodeInsufficientStock, pkgerrors.CodeNotFound:
				notProcessed = append(notProcessed, item.ProductID)
				retained = append(retained, item)
			default:
				return err
			}
		}

		if len(fulfilled) == 0 {
			// Rolling back releases every reservation made above.
			return pkgerrors.New(pkgerrors.CodeCheckoutFailed, "no cart item could be fulfilled").
				WithDetails(map[string]any{"products_not_processed": notProcessed})
		}

		amount := decimal.Zero
		for i := range fulfilled {
			amount = amount.Add(fulfilled[i].LineTotal())
		}

		ticket, err := ticketRepo.Create(ctx, &models.Ticket{
			Code:             uuid.NewString(),
			Amount:           amount,
			PurchaseDatetime: time.Now().UTC(),
			PurchaserID:      userID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating ticket")
		}

		if len(retained) > 0 && !s.cfg.ClearCart {
			// A retried checkout must not re-attempt the fulfilled lines, so
			// only the unfulfilled subset survives on the completed cart.
			record.ReplaceItems(retained)
		} else {
			record.ReplaceItems(nil)
		}
		if err := record.MarkCompleted(); err != nil {
			return err
		}

		if err := cartRepo.ReplaceItems(ctx, record.ID, record.Items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart lines")
		}
		if _, err := cartRepo.Update(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
		}

		result = &Result{
			Ticket:       toTicketDTO(ticket),
			NotProcessed: notProcessed,
		}
		fulfilledCount = len(fulfilled)
		return nil
	})
	if err != nil {
		s.metrics.IncFailure(failureReason(err))
		s.metrics.ObserveDuration("failed", time.Since(start))
		return nil, err
	}

	outcome := "full"
	if len(result.NotProcessed) > 0 {
		outcome = "partial"
	}
	s.metrics.AddFulfilled(outcome, fulfilledCount)
	s.metrics.AddDropped(outcome, len(result.NotProcessed))
	s.metrics.ObserveDuration(outcome, time.Since(start))

	return result, nil
}

func failureReason(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return string(typed.Code())
	}
	return "internal"
}
