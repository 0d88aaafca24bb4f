package stock

import (
	"bytes"
	"context"
	"fmt"
	"slices"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
)

// Line is a requested sparepart quantity.
type Line struct {
	SparepartID uuid.UUID
	Quantity    int
}

// Reserved is a line whose stock was taken, together with the sparepart as
// it was read under lock. Its Price is the unit price to capture.
type Reserved struct {
	Sparepart models.Sparepart
	Quantity  int
}

// ShortageDetails is attached to INSUFFICIENT_STOCK errors.
type ShortageDetails struct {
	SparepartID uuid.UUID `json:"sparepartId"`
	Name        string    `json:"name"`
	Available   int       `json:"available"`
	Requested   int       `json:"requested"`
}

// Ledger moves sparepart stock inside a caller-owned transaction and records
// one movement row per change. It never opens or commits a transaction.
type Ledger struct {
	repo Repository
}

func NewLedger(repo Repository) (*Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock repository required")
	}
	return &Ledger{repo: repo}, nil
}

// MergeLines folds duplicate sparepart ids into one line, keeping first-seen
// order, and rejects non-positive quantities.
func MergeLines(lines []Line) ([]Line, error) {
	merged := make([]Line, 0, len(lines))
	index := make(map[uuid.UUID]int, len(lines))
	for i, line := range lines {
		if line.SparepartID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("spareParts[%d].id is required", i))
		}
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("spareParts[%d].quantity must be greater than zero", i)).
				WithDetails(map[string]any{"sparepartId": line.SparepartID, "quantity": line.Quantity})
		}
		if pos, ok := index[line.SparepartID]; ok {
			merged[pos].Quantity += line.Quantity
			continue
		}
		index[line.SparepartID] = len(merged)
		merged = append(merged, line)
	}
	return merged, nil
}

// Reserve takes stock for every line or fails on the first one that cannot
// be served. On failure the caller must roll back tx, which undoes any
// decrement already applied for earlier lines.
//
// Rows are locked in sparepart id order; the result follows the order of lines.
func (l *Ledger) Reserve(ctx context.Context, tx *gorm.DB, orderID *uuid.UUID, lines []Line) ([]Reserved, error) {
	repo := l.repo.WithTx(tx)
	reserved := make([]Reserved, len(lines))

	for _, i := range lockOrder(lines) {
		line := lines[i]
		part, err := repo.LockSparepart(ctx, line.SparepartID)
		if err != nil {
			if db.IsNotFound(err) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sparepart not found").
					WithDetails(map[string]any{"sparepartId": line.SparepartID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock sparepart")
		}
		if part.Stock < line.Quantity {
			return nil, l.shortage(part, line.Quantity)
		}

		ok, err := repo.DecrementStock(ctx, part.ID, line.Quantity)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			return nil, l.shortage(part, line.Quantity)
		}

		part.Stock -= line.Quantity
		if err := l.record(ctx, repo, part, orderID, enums.StockMovementReserve, -line.Quantity, nil); err != nil {
			return nil, err
		}
		reserved[i] = Reserved{Sparepart: *part, Quantity: line.Quantity}
	}
	return reserved, nil
}

// Release returns the stock of lines to the pool, touching rows in the same
// order as Reserve.
func (l *Ledger) Release(ctx context.Context, tx *gorm.DB, orderID *uuid.UUID, lines []Line) error {
	repo := l.repo.WithTx(tx)
	for _, i := range lockOrder(lines) {
		line := lines[i]
		if line.Quantity <= 0 {
			continue
		}
		if err := repo.IncrementStock(ctx, line.SparepartID, line.Quantity); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sparepart not found").
					WithDetails(map[string]any{"sparepartId": line.SparepartID})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
		}
		part, err := repo.LockSparepart(ctx, line.SparepartID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload sparepart")
		}
		if err := l.record(ctx, repo, part, orderID, enums.StockMovementRelease, line.Quantity, nil); err != nil {
			return err
		}
	}
	return nil
}

// Adjust applies an administrative signed delta. The resulting stock must
// stay non-negative.
func (l *Ledger) Adjust(ctx context.Context, tx *gorm.DB, sparepartID uuid.UUID, delta int, note *string) (*models.Sparepart, error) {
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must not be zero")
	}
	repo := l.repo.WithTx(tx)
	part, err := repo.LockSparepart(ctx, sparepartID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sparepart not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lock sparepart")
	}

	if delta < 0 {
		ok, err := repo.DecrementStock(ctx, part.ID, -delta)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement stock")
		}
		if !ok {
			return nil, l.shortage(part, -delta)
		}
	} else if err := repo.IncrementStock(ctx, part.ID, delta); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment stock")
	}

	part.Stock += delta
	if err := l.record(ctx, repo, part, nil, enums.StockMovementAdjust, delta, note); err != nil {
		return nil, err
	}
	return part, nil
}

// RecordInitial writes the opening adjust movement of a freshly created sparepart.
func (l *Ledger) RecordInitial(ctx context.Context, tx *gorm.DB, part *models.Sparepart) error {
	if part.Stock == 0 {
		return nil
	}
	note := "initial stock"
	return l.record(ctx, l.repo.WithTx(tx), part, nil, enums.StockMovementAdjust, part.Stock, &note)
}

// Movements lists ledger history, oldest first.
func (l *Ledger) Movements(ctx context.Context, filter MovementFilter) ([]models.StockMovement, error) {
	rows, err := l.repo.ListMovements(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list stock movements")
	}
	return rows, nil
}

func (l *Ledger) record(ctx context.Context, repo Repository, part *models.Sparepart, orderID *uuid.UUID, kind enums.StockMovementKind, delta int, note *string) error {
	movement := &models.StockMovement{
		SparepartID: part.ID,
		OrderID:     orderID,
		Kind:        kind,
		QtyDelta:    delta,
		StockAfter:  part.Stock,
		Note:        note,
	}
	if err := repo.CreateMovement(ctx, movement); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record stock movement")
	}
	return nil
}

func (l *Ledger) shortage(part *models.Sparepart, requested int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, fmt.Sprintf("insufficient stock for %s", part.Name)).
		WithDetails(ShortageDetails{
			SparepartID: part.ID,
			Name:        part.Name,
			Available:   part.Stock,
			Requested:   requested,
		})
}

// lockOrder returns the indexes of lines sorted by sparepart id so that
// concurrent transactions acquire row locks in one global order.
func lockOrder(lines []Line) []int {
	idx := make([]int, len(lines))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return bytes.Compare(lines[a].SparepartID[:], lines[b].SparepartID[:])
	})
	return idx
}

// LinesOf converts persisted order lines into ledger lines.
func LinesOf(rows []models.OrderLine) []Line {
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, Line{SparepartID: row.SparepartID, Quantity: row.Quantity})
	}
	return lines
}
