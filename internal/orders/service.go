package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/internal/bookings"
	"github.com/bengkelku/bengkel-backend/internal/catalog"
	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/internal/stock"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/metrics"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

const (
	opCreate       = "create"
	opUpdate       = "update"
	opUpdateStatus = "update_status"
	opDelete       = "delete"
)

type service struct {
	repo      Repository
	directory directory.Repository
	catalog   catalog.Repository
	bookings  bookings.Repository
	tx        txRunner
	ledger    *stock.Ledger
	metrics   *metrics.Workflow
}

// Option customises the order service.
type Option func(*service)

// WithMetrics records order and stock activity on w once a write commits.
func WithMetrics(w *metrics.Workflow) Option {
	return func(s *service) {
		s.metrics = w
	}
}

// NewService builds the order service with the required dependencies.
func NewService(
	repo Repository,
	dir directory.Repository,
	cat catalog.Repository,
	book bookings.Repository,
	tx txRunner,
	ledger *stock.Ledger,
	opts ...Option,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	if cat == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if book == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("stock ledger required")
	}
	s := &service{
		repo:      repo,
		directory: dir,
		catalog:   cat,
		bookings:  book,
		tx:        tx,
		ledger:    ledger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// stockFlow counts units moved by a write so metrics fire only after commit.
type stockFlow struct {
	reserved int
	released int
}

func (f *stockFlow) reserve(lines []stock.Line) {
	for _, line := range lines {
		f.reserved += line.Quantity
	}
}

func (f *stockFlow) release(lines []stock.Line) {
	for _, line := range lines {
		f.released += line.Quantity
	}
}

func (s *service) Create(ctx context.Context, input CreateInput) (*OrderDTO, error) {
	lines, err := validateCreate(input)
	if err != nil {
		s.observe(opCreate, err, nil)
		return nil, err
	}

	var (
		orderID uuid.UUID
		flow    stockFlow
	)
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		dir := s.directory.WithTx(tx)
		repo := s.repo.WithTx(tx)

		var booking *models.Booking
		if input.BookingID != nil {
			b, err := s.bookings.WithTx(tx).FindForUpdate(ctx, *input.BookingID)
			if err != nil {
				return notFoundOr(err, "booking")
			}
			if b.Status != enums.BookingStatusPending {
				return pkgerrors.Transition("booking", b.Status, enums.BookingStatusConfirmed)
			}
			booking = b
		}

		userID, err := resolveUser(input.UserID, booking)
		if err != nil {
			return err
		}
		if booking != nil && booking.VehicleID != nil && *booking.VehicleID != input.VehicleID {
			return pkgerrors.New(pkgerrors.CodeValidation, "kendaraanId does not match the booking").
				WithDetails(map[string]any{"bookingId": booking.ID, "kendaraanId": input.VehicleID})
		}
		if _, err := dir.FindUser(ctx, userID); err != nil {
			return notFoundOr(err, "user")
		}
		if _, err := dir.FindEmployee(ctx, input.EmployeeID); err != nil {
			return notFoundOr(err, "employee")
		}
		vehicle, err := dir.FindVehicle(ctx, input.VehicleID)
		if err != nil {
			return notFoundOr(err, "vehicle")
		}
		if vehicle.UserID != userID {
			return pkgerrors.New(pkgerrors.CodeValidation, "vehicle does not belong to user").
				WithDetails(map[string]any{"kendaraanId": vehicle.ID, "userId": userID})
		}
		svc, err := s.loadService(ctx, tx, input.ServiceID)
		if err != nil {
			return err
		}

		order := &models.Order{
			ID:         uuid.New(),
			UserID:     userID,
			EmployeeID: input.EmployeeID,
			VehicleID:  input.VehicleID,
			ServiceID:  input.ServiceID,
			BookingID:  input.BookingID,
			BaseFee:    input.BaseFee,
			Status:     enums.OrderStatusPending,
			Notes:      input.Notes,
		}

		reserved, err := s.ledger.Reserve(ctx, tx, &order.ID, lines)
		if err != nil {
			return err
		}
		flow.reserve(lines)

		orderLines := buildLines(order.ID, reserved)
		order.TotalPrice, order.Quantity = computeTotals(order.BaseFee, svc, orderLines)

		if err := repo.Create(ctx, order); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "booking already has an order")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreateLines(ctx, orderLines); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
		}
		if booking != nil {
			if err := s.bookings.WithTx(tx).UpdateStatus(ctx, booking.ID, enums.BookingStatusConfirmed); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
			}
		}
		orderID = order.ID
		return nil
	})
	s.observe(opCreate, err, &flow)
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, orderID)
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindDetailed(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "order")
	}
	return FromModel(order), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*OrderList, error) {
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(o models.Order) pagination.Cursor {
		return pagination.Cursor{CreatedAt: o.CreatedAt, ID: o.ID}
	})
	out := &OrderList{Items: make([]OrderDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *FromModel(&rows[i]))
	}
	return out, nil
}

// Update edits an open order. Replacing lines returns the old stock before
// taking the new quantities, so resubmitting identical lines is a no-op for
// stock. Cancelling returns all line stock and keeps the lines as history.
func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*OrderDTO, error) {
	var newLines []stock.Line
	if input.Lines != nil {
		merged, err := stock.MergeLines(toLedgerLines(*input.Lines))
		if err != nil {
			s.observe(opUpdate, err, nil)
			return nil, err
		}
		newLines = merged
	}
	if input.BaseFee != nil && input.BaseFee.IsNegative() {
		err := pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
		s.observe(opUpdate, err, nil)
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		err := pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		s.observe(opUpdate, err, nil)
		return nil, err
	}
	if err := validateCancelEdit(input); err != nil {
		s.observe(opUpdate, err, nil)
		return nil, err
	}

	var (
		flow   stockFlow
		change *statusChange
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("order is %s and can no longer be edited", order.Status)).
				WithDetails(map[string]string{"status": order.Status.String()})
		}

		target := order.Status
		if input.Status != nil && *input.Status != order.Status {
			if !CanTransition(order.Status, *input.Status) {
				return pkgerrors.Transition("order", order.Status, *input.Status)
			}
			target = *input.Status
			change = &statusChange{from: order.Status, to: target}
		}

		current, err := repo.Lines(ctx, order.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
		}

		if target == enums.OrderStatusCancelled {
			released := stock.LinesOf(current)
			if err := s.ledger.Release(ctx, tx, &order.ID, released); err != nil {
				return err
			}
			flow.release(released)
			updates := map[string]any{"status": target}
			if input.Notes != nil {
				updates["notes"] = input.Notes
			}
			return updateOrder(ctx, repo, order.ID, updates)
		}

		lines := current
		if input.Lines != nil {
			released := stock.LinesOf(current)
			if err := s.ledger.Release(ctx, tx, &order.ID, released); err != nil {
				return err
			}
			flow.release(released)
			if err := repo.DeleteLines(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order lines")
			}
			reserved, err := s.ledger.Reserve(ctx, tx, &order.ID, newLines)
			if err != nil {
				return err
			}
			flow.reserve(newLines)
			lines = buildLines(order.ID, reserved)
			if err := repo.CreateLines(ctx, lines); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order lines")
			}
		}

		serviceID := order.ServiceID
		switch {
		case input.ClearService:
			serviceID = nil
		case input.ServiceID != nil:
			serviceID = input.ServiceID
		}
		svc, err := s.loadService(ctx, tx, serviceID)
		if err != nil {
			return err
		}

		baseFee := order.BaseFee
		if input.BaseFee != nil {
			baseFee = *input.BaseFee
		}
		total, quantity := computeTotals(baseFee, svc, lines)

		updates := map[string]any{
			"status":      target,
			"service_id":  serviceID,
			"base_fee":    baseFee,
			"total_price": total,
			"quantity":    quantity,
		}
		if input.Notes != nil {
			updates["notes"] = input.Notes
		}
		return updateOrder(ctx, repo, order.ID, updates)
	})
	s.observe(opUpdate, err, &flow)
	if err != nil {
		return nil, err
	}
	s.observeTransition(change)
	return s.Get(ctx, id)
}

// UpdateStatus moves an order through its lifecycle without touching its
// lines or totals. Cancelling returns the line stock.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		err := pkgerrors.New(pkgerrors.CodeValidation, "invalid order status")
		s.observe(opUpdateStatus, err, nil)
		return nil, err
	}

	var (
		flow   stockFlow
		change *statusChange
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "order")
		}
		if order.Status == status {
			return nil
		}
		if !CanTransition(order.Status, status) {
			return pkgerrors.Transition("order", order.Status, status)
		}
		if status == enums.OrderStatusCancelled {
			current, err := repo.Lines(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
			}
			released := stock.LinesOf(current)
			if err := s.ledger.Release(ctx, tx, &order.ID, released); err != nil {
				return err
			}
			flow.release(released)
		}
		change = &statusChange{from: order.Status, to: status}
		return updateOrder(ctx, repo, order.ID, map[string]any{"status": status})
	})
	s.observe(opUpdateStatus, err, &flow)
	if err != nil {
		return nil, err
	}
	s.observeTransition(change)
	return s.Get(ctx, id)
}

// Delete removes an order and its lines. Open orders hand their stock back
// first; completed orders are kept as history.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	var flow stockFlow
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "order")
		}
		if order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "completed orders cannot be deleted").
				WithDetails(map[string]string{"status": order.Status.String()})
		}
		if order.Status.HoldsStock() {
			current, err := repo.Lines(ctx, order.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order lines")
			}
			released := stock.LinesOf(current)
			if err := s.ledger.Release(ctx, tx, &order.ID, released); err != nil {
				return err
			}
			flow.release(released)
		}
		if err := repo.DeleteLines(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order lines")
		}
		if err := repo.Delete(ctx, order.ID); err != nil {
			return notFoundOr(err, "order")
		}
		return nil
	})
	s.observe(opDelete, err, &flow)
	return err
}

func (s *service) loadService(ctx context.Context, tx *gorm.DB, id *uuid.UUID) (*models.Service, error) {
	if id == nil {
		return nil, nil
	}
	svc, err := s.catalog.WithTx(tx).FindService(ctx, *id)
	if err != nil {
		return nil, notFoundOr(err, "service")
	}
	return svc, nil
}

type statusChange struct {
	from enums.OrderStatus
	to   enums.OrderStatus
}

func (s *service) observe(op string, err error, flow *stockFlow) {
	s.metrics.OrderWritten(op, err)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeInsufficientStock) {
			s.metrics.StockRejected(op)
		}
		return
	}
	if flow != nil {
		s.metrics.StockMoved(enums.StockMovementReserve.String(), flow.reserved)
		s.metrics.StockMoved(enums.StockMovementRelease.String(), flow.released)
	}
}

func (s *service) observeTransition(change *statusChange) {
	if change == nil {
		return
	}
	s.metrics.StatusTransition(change.from.String(), change.to.String())
}

func validateCreate(input CreateInput) ([]stock.Line, error) {
	if input.EmployeeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "karyawanId is required")
	}
	if input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kendaraanId is required")
	}
	if (input.UserID == nil || *input.UserID == uuid.Nil) && input.BookingID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if input.BaseFee.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "harga must not be negative")
	}
	return stock.MergeLines(toLedgerLines(input.Lines))
}

// validateCancelEdit rejects a cancel that also tries to change what the
// order contains; only notes may travel with it.
func validateCancelEdit(input UpdateInput) error {
	if input.Status == nil || *input.Status != enums.OrderStatusCancelled {
		return nil
	}
	fields := []string{}
	if input.Lines != nil {
		fields = append(fields, "spareParts")
	}
	if input.ServiceID != nil || input.ClearService {
		fields = append(fields, "serviceId")
	}
	if input.BaseFee != nil {
		fields = append(fields, "harga")
	}
	if len(fields) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "a cancelled order cannot be edited in the same request").
		WithDetails(map[string]any{"fields": fields})
}

func resolveUser(requested *uuid.UUID, booking *models.Booking) (uuid.UUID, error) {
	if requested != nil && *requested != uuid.Nil {
		if booking != nil && booking.UserID != *requested {
			return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "booking belongs to another user").
				WithDetails(map[string]any{"bookingId": booking.ID, "userId": *requested})
		}
		return *requested, nil
	}
	if booking == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	return booking.UserID, nil
}

func toLedgerLines(lines []LineInput) []stock.Line {
	out := make([]stock.Line, 0, len(lines))
	for _, line := range lines {
		out = append(out, stock.Line{SparepartID: line.SparepartID, Quantity: line.Quantity})
	}
	return out
}

func buildLines(orderID uuid.UUID, reserved []stock.Reserved) []models.OrderLine {
	lines := make([]models.OrderLine, 0, len(reserved))
	for _, r := range reserved {
		lines = append(lines, models.OrderLine{
			OrderID:     orderID,
			SparepartID: r.Sparepart.ID,
			Quantity:    r.Quantity,
			UnitPrice:   r.Sparepart.Price,
		})
	}
	return lines
}

// computeTotals returns base fee + service price + the line subtotals, and
// the number of sparepart units on the order.
func computeTotals(base decimal.Decimal, svc *models.Service, lines []models.OrderLine) (decimal.Decimal, int) {
	total := base
	if svc != nil {
		total = total.Add(svc.Price)
	}
	quantity := 0
	for _, line := range lines {
		total = total.Add(line.Subtotal())
		quantity += line.Quantity
	}
	return total, quantity
}

func updateOrder(ctx context.Context, repo Repository, id uuid.UUID, updates map[string]any) error {
	if err := repo.Update(ctx, id, updates); err != nil {
		return notFoundOr(err, "order")
	}
	return nil
}

func notFoundOr(err error, entity string) error {
	var typed *pkgerrors.Error
	if errors.As(err, &typed) {
		return err
	}
	if db.IsNotFound(err) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load "+entity)
}
