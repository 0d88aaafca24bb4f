package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

type CreateServiceInput struct {
	Name        string
	Description *string
	Price       decimal.Decimal
}

// UpdateServiceInput carries a partial update; nil fields are left alone.
type UpdateServiceInput struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
}

type CreateSparepartInput struct {
	Name  string
	Price decimal.Decimal
	Stock int
}

// UpdateSparepartInput edits name and price only. Stock changes go through
// AdjustStock so they land in the ledger.
type UpdateSparepartInput struct {
	Name  *string
	Price *decimal.Decimal
}

type AdjustStockInput struct {
	Delta int
	Note  *string
}

type ServiceDTO struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	Price       decimal.Decimal `json:"harga"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type SparepartDTO struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"harga"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type MovementDTO struct {
	ID          uuid.UUID               `json:"id"`
	SparepartID uuid.UUID               `json:"sparepartId"`
	OrderID     *uuid.UUID              `json:"orderId,omitempty"`
	Kind        enums.StockMovementKind `json:"kind"`
	QtyDelta    int                     `json:"qtyDelta"`
	StockAfter  int                     `json:"stockAfter"`
	Note        *string                 `json:"note,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
}

type ServiceList struct {
	Items      []ServiceDTO `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

type SparepartList struct {
	Items      []SparepartDTO `json:"items"`
	NextCursor string         `json:"nextCursor,omitempty"`
}

func ServiceFromModel(m *models.Service) *ServiceDTO {
	if m == nil {
		return nil
	}
	return &ServiceDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Price:       m.Price,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func SparepartFromModel(m *models.Sparepart) *SparepartDTO {
	if m == nil {
		return nil
	}
	return &SparepartDTO{
		ID:        m.ID,
		Name:      m.Name,
		Price:     m.Price,
		Stock:     m.Stock,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func movementFromModel(m models.StockMovement) MovementDTO {
	return MovementDTO{
		ID:          m.ID,
		SparepartID: m.SparepartID,
		OrderID:     m.OrderID,
		Kind:        m.Kind,
		QtyDelta:    m.QtyDelta,
		StockAfter:  m.StockAfter,
		Note:        m.Note,
		CreatedAt:   m.CreatedAt,
	}
}
