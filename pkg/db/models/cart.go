package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/enums"
	pkgerrors "github.com/avillegas/storefront-backend/pkg/errors"
)

// Cart is the mutable shopping-cart aggregate: one active cart per user, an
// ordered item collection and totals derived from it. TotalItems and
// TotalAmount are never edited directly; every mutation goes through the
// methods below, which recompute them before the document is saved.
type Cart struct {
	ID           uuid.UUID        `gorm:"column:id;type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	Status       enums.CartStatus `gorm:"column:status;not null;default:'active'"`
	Items        []CartItem       `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	TotalItems   int              `gorm:"column:total_items;not null;default:0"`
	TotalAmount  decimal.Decimal  `gorm:"column:total_amount;type:numeric(14,2);not null;default:0"`
	LastModified time.Time        `gorm:"column:last_modified"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (c *Cart) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// AddLine merges quantity into an existing line for the product or appends a
// new line with the provided price snapshot. Quantity must be at least 1.
func (c *Cart) AddLine(productID uuid.UUID, quantity int, unitPrice decimal.Decimal) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	if quantity < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	now := time.Now().UTC()
	if line := c.Line(productID); line != nil {
		line.Quantity += quantity
		line.AddedAt = now
	} else {
		c.Items = append(c.Items, CartItem{
			CartID:    c.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: unitPrice,
			AddedAt:   now,
		})
	}

	c.Recalculate()
	return nil
}

// RemoveLine deletes the line for the product. Removing an absent line is a
// no-op, which keeps the operation idempotent for retried deletes.
func (c *Cart) RemoveLine(productID uuid.UUID) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}

	key := productID.String()
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductKey() != key {
			kept = append(kept, item)
		}
	}
	c.Items = kept

	c.Recalculate()
	return nil
}

// SetLineQuantity overwrites the quantity for an existing line. A quantity of
// zero or less removes the line instead of persisting a non-positive value.
func (c *Cart) SetLineQuantity(productID uuid.UUID, quantity int) error {
	if err := c.ensureMutable(); err != nil {
		return err
	}

	line := c.Line(productID)
	if line == nil {
		return pkgerrors.New(pkgerrors.CodeLineNotFound, "product is not in the cart")
	}
	if quantity <= 0 {
		return c.RemoveLine(productID)
	}

	line.Quantity = quantity
	line.AddedAt = time.Now().UTC()

	c.Recalculate()
	return nil
}

// Clear empties the item collection and resets totals to zero.
func (c *Cart) Clear() error {
	if err := c.ensureMutable(); err != nil {
		return err
	}
	c.Items = nil
	c.Recalculate()
	return nil
}

// ReplaceItems swaps the whole item collection, used by checkout to retain
// only the lines it could not fulfill.
func (c *Cart) ReplaceItems(items []CartItem) {
	c.Items = items
	c.Recalculate()
}

// MarkCompleted transitions the cart to its terminal completed state.
func (c *Cart) MarkCompleted() error {
	if c.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeCartState, fmt.Sprintf("cart is already %s", c.Status))
	}
	c.Status = enums.CartStatusCompleted
	c.LastModified = time.Now().UTC()
	return nil
}

// Abandon transitions the cart to its terminal abandoned state. The TTL policy
// that decides when to abandon lives outside this core.
func (c *Cart) Abandon() error {
	if c.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeCartState, fmt.Sprintf("cart is already %s", c.Status))
	}
	c.Status = enums.CartStatusAbandoned
	c.LastModified = time.Now().UTC()
	return nil
}

// Recalculate rederives TotalItems and TotalAmount from the item collection
// and refreshes the modification timestamp. Called by every mutation so the
// totals invariant holds regardless of the storage engine underneath.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	count := 0
	for i := range c.Items {
		count += c.Items[i].Quantity
		total = total.Add(c.Items[i].LineTotal())
	}
	c.TotalItems = count
	c.TotalAmount = total
	c.LastModified = time.Now().UTC()
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// FormattedTotal renders the aggregate amount for display.
func (c *Cart) FormattedTotal() string {
	return fmt.Sprintf("$%s", c.TotalAmount.StringFixed(2))
}

// Line returns the cart line for the product, or nil when absent.
func (c *Cart) Line(productID uuid.UUID) *CartItem {
	key := productID.String()
	for i := range c.Items {
		if c.Items[i].ProductKey() == key {
			return &c.Items[i]
		}
	}
	return nil
}

func (c *Cart) ensureMutable() error {
	if c.Status != enums.CartStatusActive {
		return pkgerrors.New(pkgerrors.CodeCartState, fmt.Sprintf("cart is %s and no longer accepts changes", c.Status))
	}
	return nil
}
