package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

// Booking is a queued service request for a given workshop day.
type Booking struct {
	ID          uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	VehicleID   *uuid.UUID          `gorm:"column:vehicle_id;type:uuid;uniqueIndex:ux_bookings_vehicle_day,priority:1,where:vehicle_id IS NOT NULL AND status <> 'CANCELLED'"`
	BookingDay  string              `gorm:"column:booking_day;type:varchar(10);not null;uniqueIndex:ux_bookings_day_queue,priority:1;uniqueIndex:ux_bookings_vehicle_day,priority:2"`
	QueueNumber int                 `gorm:"column:queue_number;not null;uniqueIndex:ux_bookings_day_queue,priority:2"`
	RequestedAt time.Time           `gorm:"column:requested_at;not null"`
	Message     string              `gorm:"column:message;type:text;not null"`
	Status      enums.BookingStatus `gorm:"column:status;type:booking_status;not null;default:'PENDING'"`
	CreatedAt   time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`

	User    *User    `gorm:"foreignKey:UserID"`
	Vehicle *Vehicle `gorm:"foreignKey:VehicleID"`
}

func (b *Booking) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
