package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository persists orders and their sparepart lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreateLines(ctx context.Context, lines []models.OrderLine) error
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindDetailed(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Lines(ctx context.Context, orderID uuid.UUID) ([]models.OrderLine, error)
	DeleteLines(ctx context.Context, orderID uuid.UUID) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Order, error)
}

// Service builds and edits orders while keeping sparepart stock consistent.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*OrderDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
