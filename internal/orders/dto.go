package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bengkelku/bengkel-backend/internal/catalog"
	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

// LineInput requests a sparepart quantity. Prices are always taken from the catalog.
type LineInput struct {
	SparepartID uuid.UUID
	Quantity    int
}

type CreateInput struct {
	UserID     *uuid.UUID
	EmployeeID uuid.UUID
	VehicleID  uuid.UUID
	ServiceID  *uuid.UUID
	BookingID  *uuid.UUID
	BaseFee    decimal.Decimal
	Notes      *string
	Lines      []LineInput
}

// UpdateInput edits an open order. Nil fields are left untouched; a nil
// Lines keeps the current lines while an empty slice removes them all.
type UpdateInput struct {
	Status       *enums.OrderStatus
	ServiceID    *uuid.UUID
	ClearService bool
	Notes        *string
	BaseFee      *decimal.Decimal
	Lines        *[]LineInput
}

type ListFilters struct {
	Status     *enums.OrderStatus
	UserID     *uuid.UUID
	EmployeeID *uuid.UUID
	VehicleID  *uuid.UUID
}

type LineDTO struct {
	ID          uuid.UUID       `json:"id"`
	SparepartID uuid.UUID       `json:"sparepartId"`
	Name        string          `json:"name,omitempty"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"harga"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type OrderDTO struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"userId"`
	EmployeeID uuid.UUID         `json:"karyawanId"`
	VehicleID  uuid.UUID         `json:"kendaraanId"`
	ServiceID  *uuid.UUID        `json:"serviceId"`
	BookingID  *uuid.UUID        `json:"bookingId,omitempty"`
	BaseFee    decimal.Decimal   `json:"harga"`
	TotalPrice decimal.Decimal   `json:"totalHarga"`
	Quantity   int               `json:"quantity"`
	Status     enums.OrderStatus `json:"status"`
	Notes      *string           `json:"notes,omitempty"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`

	User       *directory.UserDTO     `json:"user,omitempty"`
	Employee   *directory.EmployeeDTO `json:"karyawan,omitempty"`
	Vehicle    *directory.VehicleDTO  `json:"kendaraan,omitempty"`
	Service    *catalog.ServiceDTO    `json:"service,omitempty"`
	SpareParts []LineDTO              `json:"spareParts"`
}

type OrderList struct {
	Items      []OrderDTO `json:"items"`
	NextCursor string     `json:"nextCursor,omitempty"`
}

func FromModel(m *models.Order) *OrderDTO {
	if m == nil {
		return nil
	}
	out := &OrderDTO{
		ID:         m.ID,
		UserID:     m.UserID,
		EmployeeID: m.EmployeeID,
		VehicleID:  m.VehicleID,
		ServiceID:  m.ServiceID,
		BookingID:  m.BookingID,
		BaseFee:    m.BaseFee,
		TotalPrice: m.TotalPrice,
		Quantity:   m.Quantity,
		Status:     m.Status,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
		User:       directory.UserFromModel(m.User),
		Employee:   directory.EmployeeFromModel(m.Employee),
		Vehicle:    directory.VehicleFromModel(m.Vehicle),
		Service:    catalog.ServiceFromModel(m.Service),
		SpareParts: make([]LineDTO, 0, len(m.Lines)),
	}
	for _, line := range m.Lines {
		dto := LineDTO{
			ID:          line.ID,
			SparepartID: line.SparepartID,
			Quantity:    line.Quantity,
			UnitPrice:   line.UnitPrice,
			Subtotal:    line.Subtotal(),
		}
		if line.Sparepart != nil {
			dto.Name = line.Sparepart.Name
		}
		out.SpareParts = append(out.SpareParts, dto)
	}
	return out
}
