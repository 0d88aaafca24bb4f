package bookings

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

// Repository persists bookings. Orders use it inside their own transaction
// to confirm the booking they were created from.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	Find(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	MaxQueueNumber(ctx context.Context, day string) (int, error)
	ExistsActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, day string) (bool, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error
}

// Service assigns queue numbers and tracks booking status.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*BookingDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error)
	List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookingList, error)
	Exists(ctx context.Context, vehicleID uuid.UUID, day string) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) (*BookingDTO, error)
}
