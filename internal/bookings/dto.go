package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
)

// DayLayout is the booking_day format.
const DayLayout = "2006-01-02"

type CreateInput struct {
	UserID    uuid.UUID
	VehicleID *uuid.UUID
	Message   string
}

type ListFilters struct {
	Day    string
	Status *enums.BookingStatus
	UserID *uuid.UUID
}

type BookingDTO struct {
	ID          uuid.UUID           `json:"id"`
	UserID      uuid.UUID           `json:"userId"`
	VehicleID   *uuid.UUID          `json:"kendaraanId,omitempty"`
	BookingDay  string              `json:"bookingDay"`
	QueueNumber int                 `json:"queueNumber"`
	RequestedAt time.Time           `json:"requestedAt"`
	Message     string              `json:"message"`
	Status      enums.BookingStatus `json:"status"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

type BookingList struct {
	Items      []BookingDTO `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

func FromModel(m *models.Booking) *BookingDTO {
	if m == nil {
		return nil
	}
	return &BookingDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		VehicleID:   m.VehicleID,
		BookingDay:  m.BookingDay,
		QueueNumber: m.QueueNumber,
		RequestedAt: m.RequestedAt,
		Message:     m.Message,
		Status:      m.Status,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
