package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

// StockMovement is an append-only ledger entry for a sparepart stock change.
type StockMovement struct {
	ID          uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	SparepartID uuid.UUID               `gorm:"column:sparepart_id;type:uuid;not null;index"`
	OrderID     *uuid.UUID              `gorm:"column:order_id;type:uuid;index"`
	Kind        enums.StockMovementKind `gorm:"column:kind;type:stock_movement_kind;not null"`
	QtyDelta    int                     `gorm:"column:qty_delta;not null"`
	StockAfter  int                     `gorm:"column:stock_after;not null"`
	Note        *string                 `gorm:"column:note"`
	CreatedAt   time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}
