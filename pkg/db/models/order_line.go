package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderLine (riwayat sparepart) holds a sparepart quantity and the unit price
// captured when the line was written.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	SparepartID uuid.UUID       `gorm:"column:sparepart_id;type:uuid;not null;index"`
	Quantity    int             `gorm:"column:quantity;not null;check:ck_order_lines_qty_positive,quantity > 0"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(14,2);not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`

	Sparepart *Sparepart `gorm:"foreignKey:SparepartID"`
}

func (l *OrderLine) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// Subtotal is quantity times the captured unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
