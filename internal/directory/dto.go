package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
)

type CreateUserInput struct {
	Name  string
	Email string
	Phone *string
}

type CreateEmployeeInput struct {
	Name     string
	Position string
	Phone    *string
}

type CreateVehicleInput struct {
	UserID      uuid.UUID
	PlateNumber string
	Brand       string
	Model       string
	Year        *int
}

type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type EmployeeDTO struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Position  string    `json:"position"`
	Phone     *string   `json:"phone,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type VehicleDTO struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	PlateNumber string    `json:"plateNumber"`
	Brand       string    `json:"brand"`
	Model       string    `json:"model"`
	Year        *int      `json:"year,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UserList struct {
	Items      []UserDTO `json:"items"`
	NextCursor string    `json:"nextCursor,omitempty"`
}

type EmployeeList struct {
	Items      []EmployeeDTO `json:"items"`
	NextCursor string        `json:"nextCursor,omitempty"`
}

type VehicleList struct {
	Items      []VehicleDTO `json:"items"`
	NextCursor string       `json:"nextCursor,omitempty"`
}

func UserFromModel(m *models.User) *UserDTO {
	if m == nil {
		return nil
	}
	return &UserDTO{ID: m.ID, Name: m.Name, Email: m.Email, Phone: m.Phone, CreatedAt: m.CreatedAt}
}

func EmployeeFromModel(m *models.Employee) *EmployeeDTO {
	if m == nil {
		return nil
	}
	return &EmployeeDTO{ID: m.ID, Name: m.Name, Position: m.Position, Phone: m.Phone, CreatedAt: m.CreatedAt}
}

func VehicleFromModel(m *models.Vehicle) *VehicleDTO {
	if m == nil {
		return nil
	}
	return &VehicleDTO{
		ID:          m.ID,
		UserID:      m.UserID,
		PlateNumber: m.PlateNumber,
		Brand:       m.Brand,
		Model:       m.Model,
		Year:        m.Year,
		CreatedAt:   m.CreatedAt,
	}
}
