package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/internal/stock"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type service struct {
	repo   Repository
	tx     txRunner
	ledger *stock.Ledger
}

func NewService(repo Repository, tx txRunner, ledger *stock.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	return &service{repo: repo, tx: tx, ledger: ledger}, nil
}

func (s *service) CreateService(ctx context.Context, input CreateServiceInput) (*ServiceDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
	}
	svc := &models.Service{Name: name, Description: input.Description, Price: input.Price}
	if err := s.repo.CreateService(ctx, svc); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create service")
	}
	return ServiceFromModel(svc), nil
}

func (s *service) GetService(ctx context.Context, id uuid.UUID) (*ServiceDTO, error) {
	svc, err := s.repo.FindService(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "service")
	}
	return ServiceFromModel(svc), nil
}

func (s *service) ListServices(ctx context.Context, params pagination.Params) (*ServiceList, error) {
	rows, err := s.repo.ListServices(ctx, params)
	if err != nil {
		return nil, listError(err, "services")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(m models.Service) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	out := &ServiceList{Items: make([]ServiceDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *ServiceFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateService(ctx context.Context, id uuid.UUID, input UpdateServiceInput) (*ServiceDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
		}
		updates["price"] = *input.Price
	}
	if len(updates) == 0 {
		return s.GetService(ctx, id)
	}

	var out *models.Service
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateService(ctx, id, updates); err != nil {
			return notFoundOr(err, "service")
		}
		svc, err := repo.FindService(ctx, id)
		if err != nil {
			return notFoundOr(err, "service")
		}
		out = svc
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ServiceFromModel(out), nil
}

// DeleteService refuses while any order still points at the service; orders
// keep it for their price history.
func (s *service) DeleteService(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		refs, err := repo.CountOrdersForService(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count service orders")
		}
		if refs > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "service is referenced by orders").
				WithDetails(map[string]any{"serviceId": id, "orders": refs})
		}
		if err := repo.DeleteService(ctx, id); err != nil {
			return notFoundOr(err, "service")
		}
		return nil
	})
}

func (s *service) CreateSparepart(ctx context.Context, input CreateSparepartInput) (*SparepartDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
	}
	if input.Stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must not be negative")
	}

	part := &models.Sparepart{Name: name, Price: input.Price, Stock: input.Stock}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).CreateSparepart(ctx, part); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create sparepart")
		}
		return s.ledger.RecordInitial(ctx, tx, part)
	})
	if err != nil {
		return nil, err
	}
	return SparepartFromModel(part), nil
}

func (s *service) GetSparepart(ctx context.Context, id uuid.UUID) (*SparepartDTO, error) {
	part, err := s.repo.FindSparepart(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "sparepart")
	}
	return SparepartFromModel(part), nil
}

func (s *service) ListSpareparts(ctx context.Context, params pagination.Params) (*SparepartList, error) {
	rows, err := s.repo.ListSpareparts(ctx, params)
	if err != nil {
		return nil, listError(err, "spareparts")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(m models.Sparepart) pagination.Cursor {
		return pagination.Cursor{CreatedAt: m.CreatedAt, ID: m.ID}
	})
	out := &SparepartList{Items: make([]SparepartDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *SparepartFromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) UpdateSparepart(ctx context.Context, id uuid.UUID, input UpdateSparepartInput) (*SparepartDTO, error) {
	updates := map[string]any{}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name must not be empty")
		}
		updates["name"] = name
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
		}
		updates["price"] = *input.Price
	}
	if len(updates) == 0 {
		return s.GetSparepart(ctx, id)
	}

	var out *models.Sparepart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.UpdateSparepart(ctx, id, updates); err != nil {
			return notFoundOr(err, "sparepart")
		}
		part, err := repo.FindSparepart(ctx, id)
		if err != nil {
			return notFoundOr(err, "sparepart")
		}
		out = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return SparepartFromModel(out), nil
}

// DeleteSparepart refuses while order lines reference the part.
func (s *service) DeleteSparepart(ctx context.Context, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		refs, err := repo.CountLinesForSparepart(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count sparepart lines")
		}
		if refs > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "sparepart is referenced by order lines").
				WithDetails(map[string]any{"sparepartId": id, "lines": refs})
		}
		if err := repo.DeleteSparepart(ctx, id); err != nil {
			return notFoundOr(err, "sparepart")
		}
		return nil
	})
}

func (s *service) AdjustStock(ctx context.Context, id uuid.UUID, input AdjustStockInput) (*SparepartDTO, error) {
	var out *models.Sparepart
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		part, err := s.ledger.Adjust(ctx, tx, id, input.Delta, input.Note)
		if err != nil {
			return err
		}
		out = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	return SparepartFromModel(out), nil
}

func (s *service) ListMovements(ctx context.Context, id uuid.UUID, limit int) ([]MovementDTO, error) {
	if _, err := s.repo.FindSparepart(ctx, id); err != nil {
		return nil, notFoundOr(err, "sparepart")
	}
	rows, err := s.ledger.Movements(ctx, stock.MovementFilter{SparepartID: &id, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]MovementDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, movementFromModel(row))
	}
	return out, nil
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
