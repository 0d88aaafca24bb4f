package orders

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bengkelku/bengkel-backend/api/validators"
	ordersvc "github.com/bengkelku/bengkel-backend/internal/orders"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

const maxNotesLen = 2000

type createLineRequest struct {
	SparepartID uuid.UUID `json:"id" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
}

type createOrderRequest struct {
	UserID     *uuid.UUID          `json:"userId,omitempty"`
	EmployeeID uuid.UUID           `json:"karyawanId" validate:"required"`
	VehicleID  uuid.UUID           `json:"kendaraanId" validate:"required"`
	ServiceID  *uuid.UUID          `json:"serviceId,omitempty"`
	BookingID  *uuid.UUID          `json:"bookingId,omitempty"`
	BaseFee    *decimal.Decimal    `json:"harga" validate:"required"`
	Notes      *string             `json:"notes,omitempty" validate:"omitempty,max=2000"`
	SpareParts []createLineRequest `json:"spareParts" validate:"omitempty,dive"`

	// Ignored; totals are always recomputed from catalog prices.
	Quantity   *int             `json:"quantity,omitempty"`
	TotalPrice *decimal.Decimal `json:"totalHarga,omitempty"`
}

func (r createOrderRequest) toInput() ordersvc.CreateInput {
	input := ordersvc.CreateInput{
		UserID:     r.UserID,
		EmployeeID: r.EmployeeID,
		VehicleID:  r.VehicleID,
		ServiceID:  r.ServiceID,
		BookingID:  r.BookingID,
		Notes:      validators.SanitizeOptional(r.Notes, maxNotesLen),
		Lines:      make([]ordersvc.LineInput, 0, len(r.SpareParts)),
	}
	if r.BaseFee != nil {
		input.BaseFee = *r.BaseFee
	}
	for _, line := range r.SpareParts {
		input.Lines = append(input.Lines, ordersvc.LineInput{SparepartID: line.SparepartID, Quantity: line.Quantity})
	}
	return input
}

type updateLineRequest struct {
	SparepartID uuid.UUID `json:"sparepartId" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gt=0"`
	// Ignored; the catalog price wins.
	UnitPrice *decimal.Decimal `json:"harga,omitempty"`
}

type updateOrderRequest struct {
	Status     *string              `json:"status,omitempty"`
	ServiceID  optionalUUID         `json:"serviceId"`
	Notes      *string              `json:"notes,omitempty" validate:"omitempty,max=2000"`
	BaseFee    *decimal.Decimal     `json:"harga,omitempty"`
	SpareParts *[]updateLineRequest `json:"spareParts,omitempty" validate:"omitempty,dive"`

	// Ignored like on create.
	TotalPrice *decimal.Decimal `json:"totalHarga,omitempty"`
}

func (r updateOrderRequest) toInput() (ordersvc.UpdateInput, error) {
	input := ordersvc.UpdateInput{BaseFee: r.BaseFee}
	if r.Notes != nil {
		cleaned := validators.SanitizeString(*r.Notes, maxNotesLen)
		input.Notes = &cleaned
	}
	if r.Status != nil {
		status, err := enums.ParseOrderStatus(*r.Status)
		if err != nil {
			return ordersvc.UpdateInput{}, err
		}
		input.Status = &status
	}
	if r.ServiceID.Set {
		if r.ServiceID.Value == nil {
			input.ClearService = true
		} else {
			input.ServiceID = r.ServiceID.Value
		}
	}
	if r.SpareParts != nil {
		lines := make([]ordersvc.LineInput, 0, len(*r.SpareParts))
		for _, line := range *r.SpareParts {
			lines = append(lines, ordersvc.LineInput{SparepartID: line.SparepartID, Quantity: line.Quantity})
		}
		input.Lines = &lines
	}
	return input, nil
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// optionalUUID tells an absent field apart from an explicit null.
type optionalUUID struct {
	Set   bool
	Value *uuid.UUID
}

func (o *optionalUUID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.Value = &id
	return nil
}
