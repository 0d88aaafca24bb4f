package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

// Repository persists users, employees and vehicles.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateUser(ctx context.Context, user *models.User) error
	FindUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListUsers(ctx context.Context, params pagination.Params) ([]models.User, error)
	CreateEmployee(ctx context.Context, employee *models.Employee) error
	FindEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error)
	ListEmployees(ctx context.Context, params pagination.Params) ([]models.Employee, error)
	CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error
	FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error)
	ListVehicles(ctx context.Context, userID *uuid.UUID, params pagination.Params) ([]models.Vehicle, error)
}

// Service exposes the reference directory used by bookings and orders.
type Service interface {
	CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error)
	GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	ListUsers(ctx context.Context, params pagination.Params) (*UserList, error)
	CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*EmployeeDTO, error)
	GetEmployee(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error)
	ListEmployees(ctx context.Context, params pagination.Params) (*EmployeeList, error)
	CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error)
	GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error)
	ListVehicles(ctx context.Context, userID *uuid.UUID, params pagination.Params) (*VehicleList, error)
}
