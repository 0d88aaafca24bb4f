package directory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a directory repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) ListUsers(ctx context.Context, params pagination.Params) ([]models.User, error) {
	scope, err := pagination.Scope("users", params, false)
	if err != nil {
		return nil, err
	}
	var rows []models.User
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateEmployee(ctx context.Context, employee *models.Employee) error {
	return r.db.WithContext(ctx).Create(employee).Error
}

func (r *repository) FindEmployee(ctx context.Context, id uuid.UUID) (*models.Employee, error) {
	var employee models.Employee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&employee).Error; err != nil {
		return nil, err
	}
	return &employee, nil
}

func (r *repository) ListEmployees(ctx context.Context, params pagination.Params) ([]models.Employee, error) {
	scope, err := pagination.Scope("employees", params, false)
	if err != nil {
		return nil, err
	}
	var rows []models.Employee
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) CreateVehicle(ctx context.Context, vehicle *models.Vehicle) error {
	return r.db.WithContext(ctx).Create(vehicle).Error
}

func (r *repository) FindVehicle(ctx context.Context, id uuid.UUID) (*models.Vehicle, error) {
	var vehicle models.Vehicle
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&vehicle).Error; err != nil {
		return nil, err
	}
	return &vehicle, nil
}

func (r *repository) ListVehicles(ctx context.Context, userID *uuid.UUID, params pagination.Params) ([]models.Vehicle, error) {
	scope, err := pagination.Scope("vehicles", params, false)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&models.Vehicle{})
	if userID != nil {
		query = query.Where("vehicles.user_id = ?", *userID)
	}
	var rows []models.Vehicle
	if err := query.Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
