package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Repository persists services and spareparts. Sparepart stock is never
// written here; it moves through the stock ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateService(ctx context.Context, svc *models.Service) error
	FindService(ctx context.Context, id uuid.UUID) (*models.Service, error)
	ListServices(ctx context.Context, params pagination.Params) ([]models.Service, error)
	UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteService(ctx context.Context, id uuid.UUID) error
	CountOrdersForService(ctx context.Context, id uuid.UUID) (int64, error)

	CreateSparepart(ctx context.Context, part *models.Sparepart) error
	FindSparepart(ctx context.Context, id uuid.UUID) (*models.Sparepart, error)
	ListSpareparts(ctx context.Context, params pagination.Params) ([]models.Sparepart, error)
	UpdateSparepart(ctx context.Context, id uuid.UUID, updates map[string]any) error
	DeleteSparepart(ctx context.Context, id uuid.UUID) error
	CountLinesForSparepart(ctx context.Context, id uuid.UUID) (int64, error)
}

// Service manages the workshop catalog.
type Service interface {
	CreateService(ctx context.Context, input CreateServiceInput) (*ServiceDTO, error)
	GetService(ctx context.Context, id uuid.UUID) (*ServiceDTO, error)
	ListServices(ctx context.Context, params pagination.Params) (*ServiceList, error)
	UpdateService(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*ServiceDTO, error)
	DeleteService(ctx context.Context, id uuid.UUID) error

	CreateSparepart(ctx context.Context, input CreateSparepartInput) (*SparepartDTO, error)
	GetSparepart(ctx context.Context, id uuid.UUID) (*SparepartDTO, error)
	ListSpareparts(ctx context.Context, params pagination.Params) (*SparepartList, error)
	UpdateSparepart(ctx context.Context, id uuid.UUID, input UpdateSparepartInput) (*SparepartDTO, error)
	DeleteSparepart(ctx context.Context, id uuid.UUID) error
	AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*SparepartDTO, error)
	ListMovements(ctx context.Context, id uuid.UUID, limit int) ([]MovementDTO, error)
}
