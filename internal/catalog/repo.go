package catalog

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

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateService(ctx context.Context, svc *models.Service) error {
	return r.db.WithContext(ctx).Create(svc).Error
}

func (r *repository) FindService(ctx context.Context, id uuid.UUID) (*models.Service, error) {
	var svc models.Service
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

func (r *repository) ListServices(ctx context.Context, params pagination.Params) ([]models.Service, error) {
	scope, err := pagination.Scope("services", params, false)
	if err != nil {
		return nil, err
	}
	var rows []models.Service
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateService(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return updateByID(ctx, r.db, &models.Service{}, id, updates)
}

func (r *repository) DeleteService(ctx context.Context, id uuid.UUID) error {
	return deleteByID(ctx, r.db, &models.Service{}, id)
}

func (r *repository) CountOrdersForService(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Order{}).Where("service_id = ?", id).Count(&count).Error
	return count, err
}

func (r *repository) CreateSparepart(ctx context.Context, part *models.Sparepart) error {
	return r.db.WithContext(ctx).Create(part).Error
}

func (r *repository) FindSparepart(ctx context.Context, id uuid.UUID) (*models.Sparepart, error) {
	var part models.Sparepart
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&part).Error; err != nil {
		return nil, err
	}
	return &part, nil
}

func (r *repository) ListSpareparts(ctx context.Context, params pagination.Params) ([]models.Sparepart, error) {
	scope, err := pagination.Scope("spareparts", params, false)
	if err != nil {
		return nil, err
	}
	var rows []models.Sparepart
	if err := r.db.WithContext(ctx).Scopes(scope).Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) UpdateSparepart(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	return updateByID(ctx, r.db, &models.Sparepart{}, id, updates)
}

// DeleteSparepart removes the part together with its ledger history.
func (r *repository) DeleteSparepart(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("sparepart_id = ?", id).Delete(&models.StockMovement{}).Error; err != nil {
		return err
	}
	return deleteByID(ctx, r.db, &models.Sparepart{}, id)
}

func (r *repository) CountLinesForSparepart(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.OrderLine{}).Where("sparepart_id = ?", id).Count(&count).Error
	return count, err
}

func updateByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID, updates map[string]any) error {
	res := db.WithContext(ctx).Model(model).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func deleteByID(ctx context.Context, db *gorm.DB, model any, id uuid.UUID) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
