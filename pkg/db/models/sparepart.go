package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sparepart is a stocked part. Stock only moves through the stock ledger.
type Sparepart struct {
	ID        uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name      string          `gorm:"column:name;not null"`
	Price     decimal.Decimal `gorm:"column:price;type:numeric(14,2);not null;check:ck_spareparts_price_nonneg,price >= 0"`
	Stock     int             `gorm:"column:stock;not null;default:0;check:ck_spareparts_stock_nonneg,stock >= 0"`
	CreatedAt time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *Sparepart) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
