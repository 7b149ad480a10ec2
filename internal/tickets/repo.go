package tickets

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avillegas/storefront-backend/pkg/db/models"
)

// Repository defines persistence operations for purchase tickets.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error)
	FindByCode(ctx context.Context, code string) (*models.Ticket, error)
	ListByPurchaser(ctx context.Context, purchaserID uuid.UUID) ([]models.Ticket, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a ticket repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ticket *models.Ticket) (*models.Ticket, error) {
	if err := r.db.WithContext(ctx).Create(ticket).Error; err != nil {
		return nil, err
	}
	return ticket, nil
}

func (r *repository) FindByCode(ctx context.Context, code string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Where("code = ?", strings.TrimSpace(code)).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *repository) ListByPurchaser(ctx context.Context, purchaserID uuid.UUID) ([]models.Ticket, error) {
	var rows []models.Ticket
	err := r.db.WithContext(ctx).
		Where("purchaser_id = ?", purchaserID).
		Order("purchase_datetime DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
