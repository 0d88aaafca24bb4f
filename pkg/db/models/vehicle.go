package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Vehicle (kendaraan) belongs to a user and is identified by its plate.
type Vehicle struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID      uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	PlateNumber string    `gorm:"column:plate_number;not null;uniqueIndex:ux_vehicles_plate"`
	Brand       string    `gorm:"column:brand;not null;default:''"`
	Model       string    `gorm:"column:model;not null;default:''"`
	Year        *int      `gorm:"column:year"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`

	User *User `gorm:"foreignKey:UserID"`
}

func (v *Vehicle) BeforeCreate(*gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
