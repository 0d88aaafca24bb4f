package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

// Order (riwayat) is the service record for one vehicle visit.
// TotalPrice and Quantity are derived from BaseFee, the service and the lines.
type Order struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	UserID     uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	EmployeeID uuid.UUID         `gorm:"column:employee_id;type:uuid;not null;index"`
	VehicleID  uuid.UUID         `gorm:"column:vehicle_id;type:uuid;not null;index"`
	ServiceID  *uuid.UUID        `gorm:"column:service_id;type:uuid"`
	BookingID  *uuid.UUID        `gorm:"column:booking_id;type:uuid;uniqueIndex:ux_orders_booking"`
	BaseFee    decimal.Decimal   `gorm:"column:base_fee;type:numeric(14,2);not null;default:0"`
	TotalPrice decimal.Decimal   `gorm:"column:total_price;type:numeric(14,2);not null;default:0"`
	Quantity   int               `gorm:"column:quantity;not null;default:0"`
	Status     enums.OrderStatus `gorm:"column:status;type:order_status;not null;default:'PENDING';index"`
	Notes      *string           `gorm:"column:notes;type:text"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime"`

	User     *User       `gorm:"foreignKey:UserID"`
	Employee *Employee   `gorm:"foreignKey:EmployeeID"`
	Vehicle  *Vehicle    `gorm:"foreignKey:VehicleID"`
	Service  *Service    `gorm:"foreignKey:ServiceID"`
	Lines    []OrderLine `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	ensureID(&o.ID)
	return nil
}
