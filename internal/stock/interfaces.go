package stock

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
)

// Repository is the persistence surface of the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockSparepart(ctx context.Context, id uuid.UUID) (*models.Sparepart, error)
	DecrementStock(ctx context.Context, id uuid.UUID, qty int) (bool, error)
	IncrementStock(ctx context.Context, id uuid.UUID, qty int) error
	CreateMovement(ctx context.Context, movement *models.StockMovement) error
	ListMovements(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error)
}

// MovementFilter narrows ledger history queries.
type MovementFilter struct {
	SparepartID *uuid.UUID
	OrderID     *uuid.UUID
	Limit       int
}
