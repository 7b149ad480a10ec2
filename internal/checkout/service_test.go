package checkout

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/internal/cart"
	product "github.com/avillegas/storefront-backend/internal/products"
	"github.com/avillegas/storefront-backend/internal/tickets"
	"github.com/avillegas/storefront-backend/pkg/config"
	"github.com/avillegas/storefront-backend/pkg/db/models"
	"github.com/avillegas/storefront-backend/pkg/enums"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	conn *gorm.DB
	svc  Service
}

func newFixture(t *testing.T, cfg config.CheckoutConfig) *fixture {
	t.Helper()
	dsn := "file:checkout_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(&models.User{}, &models.Product{}, &models.Cart{}, &models.CartItem{}, &models.Ticket{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	svc, err := NewService(
		gormTxRunner{db: conn},
		cart.NewRepository(conn),
		product.NewRepository(conn),
		tickets.NewRepository(conn),
		cfg,
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{conn: conn, svc: svc}
}

func (f *fixture) seedProduct(t *testing.T, stock int, price decimal.Decimal) *models.Product {
	t.Helper()
	record := &models.Product{
		Title:    "Fixture",
		Code:     "CHK-" + uuid.NewString()[:8],
		Price:    price,
		Stock:    stock,
		IsActive: true,
	}
	if err := f.conn.Create(record).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return record
}

func (f *fixture) seedCart(t *testing.T, userID uuid.UUID, lines map[*models.Product]int) *models.Cart {
	t.Helper()
	record := &models.Cart{UserID: userID, Status: enums.CartStatusActive}
	if err := f.conn.Create(record).Error; err != nil {
		t.Fatalf("seed cart: %v", err)
	}
	for p, qty := range lines {
		item := &models.CartItem{
			CartID:    record.ID,
			ProductID: p.ID,
			Quantity:  qty,
			UnitPrice: p.Price,
		}
		if err := f.conn.Create(item).Error; err != nil {
			t.Fatalf("seed cart item: %v", err)
		}
	}
	return record
}

func (f *fixture) reloadProduct(t *testing.T, id uuid.UUID) *models.Product {
	t.Helper()
	var p models.Product
	if err := f.conn.First(&p, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product: %v", err)
	}
	return &p
}

func (f *fixture) reloadCart(t *testing.T, id uuid.UUID) *models.Cart {
	t.Helper()
	var c models.Cart
	if err := f.conn.Preload("Items").First(&c, "id = ?", id).Error; err != nil {
		t.Fatalf("reload cart: %v", err)
	}
	return &c
}

func TestExecuteFullFulfillment(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := uuid.New()

	pa := f.seedProduct(t, 5, decimal.NewFromInt(10))
	pb := f.seedProduct(t, 2, decimal.NewFromFloat(3.50))
	record := f.seedCart(t, userID, map[*models.Product]int{pa: 2, pb: 1})

	result, err := f.svc.Execute(ctx, userID, record.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if result.Ticket == nil || result.Ticket.Code == "" {
		t.Fatal("expected ticket with code")
	}
	if want := decimal.NewFromFloat(23.50); !result.Ticket.Amount.Equal(want) {
		t.Fatalf("expected amount %s, got %s", want, result.Ticket.Amount)
	}
	if len(result.NotProcessed) != 0 {
		t.Fatalf("expected everything fulfilled, got %v", result.NotProcessed)
	}

	if got := f.reloadProduct(t, pa.ID).Stock; got != 3 {
		t.Fatalf("expected stock 3, got %d", got)
	}
	if got := f.reloadProduct(t, pb.ID).Stock; got != 1 {
		t.Fatalf("expected stock 1, got %d", got)
	}

	reloaded := f.reloadCart(t, record.ID)
	if reloaded.Status != enums.CartStatusCompleted {
		t.Fatalf("expected completed cart, got %s", reloaded.Status)
	}
	if len(reloaded.Items) != 0 || reloaded.TotalItems != 0 {
		t.Fatalf("expected emptied cart, got %+v", reloaded)
	}

	var ticket models.Ticket
	if err := f.conn.First(&ticket, "code = ?", result.Ticket.Code).Error; err != nil {
		t.Fatalf("ticket not persisted: %v", err)
	}
	if ticket.PurchaserID != userID {
		t.Fatalf("expected purchaser %s, got %s", userID, ticket.PurchaserID)
	}
}

func TestExecutePartialFulfillmentRetainsLines(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := uuid.New()

	ok := f.seedProduct(t, 5, decimal.NewFromInt(4))
	short := f.seedProduct(t, 1, decimal.NewFromInt(6))
	record := f.seedCart(t, userID, map[*models.Product]int{ok: 2, short: 3})

	result, err := f.svc.Execute(ctx, userID, record.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if want := decimal.NewFromInt(8); !result.Ticket.Amount.Equal(want) {
		t.Fatalf("expected amount %s, got %s", want, result.Ticket.Amount)
	}
	if len(result.NotProcessed) != 1 || result.NotProcessed[0] != short.ID {
		t.Fatalf("expected short product reported, got %v", result.NotProcessed)
	}

	if got := f.reloadProduct(t, ok.ID).Stock; got != 3 {
		t.Fatalf("expected fulfilled stock decremented, got %d", got)
	}
	if got := f.reloadProduct(t, short.ID).Stock; got != 1 {
		t.Fatalf("expected short stock untouched, got %d", got)
	}

	reloaded := f.reloadCart(t, record.ID)
	if reloaded.Status != enums.CartStatusCompleted {
		t.Fatalf("expected completed cart, got %s", reloaded.Status)
	}
	if len(reloaded.Items) != 1 || reloaded.Items[0].ProductID != short.ID {
		t.Fatalf("expected only the unfulfilled line retained, got %+v", reloaded.Items)
	}
	if reloaded.TotalItems != 3 {
		t.Fatalf("expected totals recomputed for retained line, got %d", reloaded.TotalItems)
	}
}

func TestExecutePartialFulfillmentClearCart(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.CheckoutConfig{ClearCart: true})
	ctx := context.Background()
	userID := uuid.New()

	ok := f.seedProduct(t, 5, decimal.NewFromInt(4))
	short := f.seedProduct(t, 0, decimal.NewFromInt(6))
	record := f.seedCart(t, userID, map[*models.Product]int{ok: 1, short: 1})

	result, err := f.svc.Execute(ctx, userID, record.ID)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(result.NotProcessed) != 1 {
		t.Fatalf("expected one dropped line, got %v", result.NotProcessed)
	}

	reloaded := f.reloadCart(t, record.ID)
	if reloaded.Status != enums.CartStatusCompleted {
		t.Fatalf("expected completed cart, got %s", reloaded.Status)
	}
	if len(reloaded.Items) != 0 {
		t.Fatalf("expected cleared cart, got %+v", reloaded.Items)
	}
}

func TestExecuteNothingFulfillable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := uuid.New()

	short := f.seedProduct(t, 1, decimal.NewFromInt(6))
	record := f.seedCart(t, userID, map[*models.Product]int{short: 5})

	_, err := f.svc.Execute(ctx, userID, record.ID)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeCheckoutFailed {
		t.Fatalf("expected checkout failed, got %v", err)
	}

	// The rollback leaves stock and cart exactly as they were.
	if got := f.reloadProduct(t, short.ID).Stock; got != 1 {
		t.Fatalf("expected stock untouched, got %d", got)
	}
	reloaded := f.reloadCart(t, record.ID)
	if reloaded.Status != enums.CartStatusActive || len(reloaded.Items) != 1 {
		t.Fatalf("expected cart untouched, got %+v", reloaded)
	}

	var count int64
	if err := f.conn.Model(&models.Ticket{}).Count(&count).Error; err != nil {
		t.Fatalf("count tickets: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no ticket issued, found %d", count)
	}
}

func TestExecuteGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t, config.CheckoutConfig{})
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Execute(ctx, userID, uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing cart, got %v", err)
	}

	empty := f.seedCart(t, userID, nil)
	_, err = f.svc.Execute(ctx, userID, empty.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCartState {
		t.Fatalf("expected cart state error for empty cart, got %v", err)
	}

	p := f.seedProduct(t, 5, decimal.NewFromInt(2))
	record := f.seedCart(t, userID, map[*models.Product]int{p: 1})
	if err := f.conn.Model(record).Update("status", enums.CartStatusCompleted).Error; err != nil {
		t.Fatalf("complete cart: %v", err)
	}
	_, err = f.svc.Execute(ctx, userID, record.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeCartState {
		t.Fatalf("expected cart state error, got %v", err)
	}

	other := f.seedCart(t, uuid.New(), map[*models.Product]int{p: 1})
	_, err = f.svc.Execute(ctx, userID, other.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign cart, got %v", err)
	}
}
