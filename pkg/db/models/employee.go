package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Employee (karyawan) is the mechanic or cashier handling an order.
type Employee struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Name      string    `gorm:"column:name;not null"`
	Position  string    `gorm:"column:position;not null;default:''"`
	Phone     *string   `gorm:"column:phone"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (e *Employee) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}
