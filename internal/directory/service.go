package directory

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateUser(ctx context.Context, input CreateUserInput) (*UserDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email is invalid")
	}

	user := &models.User{Name: name, Email: email, Phone: trimPtr(input.Phone)}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return UserFromModel(user), nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindUser(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "user")
	}
	return UserFromModel(user), nil
}

func (s *service) ListUsers(ctx context.Context, params pagination.Params) (*UserList, error) {
	rows, err := s.repo.ListUsers(ctx, params)
	if err != nil {
		return nil, listError(err, "users")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(u models.User) pagination.Cursor {
		return pagination.Cursor{CreatedAt: u.CreatedAt, ID: u.ID}
	})
	out := &UserList{Items: make([]UserDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *UserFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateEmployee(ctx context.Context, input CreateEmployeeInput) (*EmployeeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	employee := &models.Employee{
		Name:     name,
		Position: strings.TrimSpace(input.Position),
		Phone:    trimPtr(input.Phone),
	}
	if err := s.repo.CreateEmployee(ctx, employee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create employee")
	}
	return EmployeeFromModel(employee), nil
}

func (s *service) GetEmployee(ctx context.Context, id uuid.UUID) (*EmployeeDTO, error) {
	employee, err := s.repo.FindEmployee(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "employee")
	}
	return EmployeeFromModel(employee), nil
}

func (s *service) ListEmployees(ctx context.Context, params pagination.Params) (*EmployeeList, error) {
	rows, err := s.repo.ListEmployees(ctx, params)
	if err != nil {
		return nil, listError(err, "employees")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(e models.Employee) pagination.Cursor {
		return pagination.Cursor{CreatedAt: e.CreatedAt, ID: e.ID}
	})
	out := &EmployeeList{Items: make([]EmployeeDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *EmployeeFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) CreateVehicle(ctx context.Context, input CreateVehicleInput) (*VehicleDTO, error) {
	plate := NormalizePlate(input.PlateNumber)
	if plate == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "plateNumber is required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if _, err := s.repo.FindUser(ctx, input.UserID); err != nil {
		return nil, notFoundOr(err, "user")
	}

	vehicle := &models.Vehicle{
		UserID:      input.UserID,
		PlateNumber: plate,
		Brand:       strings.TrimSpace(input.Brand),
		Model:       strings.TrimSpace(input.Model),
		Year:        input.Year,
	}
	if err := s.repo.CreateVehicle(ctx, vehicle); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "plate number already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vehicle")
	}
	return VehicleFromModel(vehicle), nil
}

func (s *service) GetVehicle(ctx context.Context, id uuid.UUID) (*VehicleDTO, error) {
	vehicle, err := s.repo.FindVehicle(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "vehicle")
	}
	return VehicleFromModel(vehicle), nil
}

func (s *service) ListVehicles(ctx context.Context, userID *uuid.UUID, params pagination.Params) (*VehicleList, error) {
	rows, err := s.repo.ListVehicles(ctx, userID, params)
	if err != nil {
		return nil, listError(err, "vehicles")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(v models.Vehicle) pagination.Cursor {
		return pagination.Cursor{CreatedAt: v.CreatedAt, ID: v.ID}
	})
	out := &VehicleList{Items: make([]VehicleDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *VehicleFromModel(&rows[i]))
	}
	return out, nil
}

// NormalizePlate upper-cases a plate and collapses inner whitespace,
// so "b  1234 xyz" and "B 1234 XYZ" collide on the unique index.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.Join(strings.Fields(plate), " "))
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func notFoundOr(err error, entity string) error {
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}

func listError(err error, entity string) error {
	if errors.Is(err, pagination.ErrInvalidCursor) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list "+entity)
}
