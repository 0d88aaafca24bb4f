package bookings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) FindForUpdate(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// MaxQueueNumber returns the highest queue number handed out for day, or 0.
func (r *repository) MaxQueueNumber(ctx context.Context, day string) (int, error) {
	var last int
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(MAX(queue_number), 0)").
		Where("booking_day = ?", day).
		Scan(&last).Error
	return last, err
}

func (r *repository) ExistsActiveForVehicle(ctx context.Context, vehicleID uuid.UUID, day string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("vehicle_id = ? AND booking_day = ? AND status <> ?", vehicleID, day, enums.BookingStatusCancelled).
		Count(&count).Error
	return count > 0, err
}

// List returns bookings oldest first, which within a day is queue order.
func (r *repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Booking, error) {
	scope, err := pagination.Scope("bookings", params, true)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&models.Booking{})
	if filters.Day != "" {
		query = query.Where("bookings.booking_day = ?", filters.Day)
	}
	if filters.Status != nil {
		query = query.Where("bookings.status = ?", *filters.Status)
	}
	if filters.UserID != nil {
		query = query.Where("bookings.user_id = ?", *filters.UserID)
	}
	var rows []models.Booking
	if err := query.Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
