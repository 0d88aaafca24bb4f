package bookings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/pkg/db"
	"github.com/bengkelku/bengkel-backend/pkg/db/models"
	"github.com/bengkelku/bengkel-backend/pkg/enums"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/metrics"
	"github.com/bengkelku/bengkel-backend/pkg/pagination"
)

type service struct {
	repo      Repository
	directory directory.Repository
	tx        txRunner
	metrics   *metrics.Workflow
	loc       *time.Location
	now       func() time.Time
}

// Option customises the booking service.
type Option func(*service)

// WithClock overrides the wall clock used to stamp requests and cut booking days.
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithMetrics records booking outcomes on w.
func WithMetrics(w *metrics.Workflow) Option {
	return func(s *service) {
		s.metrics = w
	}
}

// NewService builds the booking service. Booking days are cut in loc.
func NewService(repo Repository, dir directory.Repository, tx txRunner, loc *time.Location, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if dir == nil {
		return nil, fmt.Errorf("directory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &service{repo: repo, directory: dir, tx: tx, loc: loc, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*BookingDTO, error) {
	booking, err := s.create(ctx, input)
	s.metrics.BookingCreated(err)
	if err != nil {
		return nil, err
	}
	return FromModel(booking), nil
}

func (s *service) create(ctx context.Context, input CreateInput) (*models.Booking, error) {
	message := strings.TrimSpace(input.Message)
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "userId is required")
	}
	if message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message is required")
	}
	if input.VehicleID != nil && *input.VehicleID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "kendaraanId is invalid")
	}

	now := s.now()
	day := now.In(s.loc).Format(DayLayout)

	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		dir := s.directory.WithTx(tx)
		repo := s.repo.WithTx(tx)

		if _, err := dir.FindUser(ctx, input.UserID); err != nil {
			return notFoundOr(err, "user")
		}
		if input.VehicleID != nil {
			vehicle, err := dir.FindVehicle(ctx, *input.VehicleID)
			if err != nil {
				return notFoundOr(err, "vehicle")
			}
			if vehicle.UserID != input.UserID {
				return pkgerrors.New(pkgerrors.CodeValidation, "vehicle does not belong to user").
					WithDetails(map[string]any{"kendaraanId": vehicle.ID, "userId": input.UserID})
			}
			exists, err := repo.ExistsActiveForVehicle(ctx, vehicle.ID, day)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check duplicate booking")
			}
			if exists {
				return duplicateBooking(nil, vehicle.ID, day)
			}
		}

		last, err := repo.MaxQueueNumber(ctx, day)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "compute queue number")
		}

		booking = &models.Booking{
			UserID:      input.UserID,
			VehicleID:   input.VehicleID,
			BookingDay:  day,
			QueueNumber: last + 1,
			RequestedAt: now.UTC(),
			Message:     message,
			Status:      enums.BookingStatusPending,
		}
		if err := repo.Create(ctx, booking); err != nil {
			if db.IsUniqueViolation(err, "") {
				var vehicleID uuid.UUID
				if input.VehicleID != nil {
					vehicleID = *input.VehicleID
				}
				return duplicateBooking(err, vehicleID, day)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*BookingDTO, error) {
	booking, err := s.repo.Find(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "booking")
	}
	return FromModel(booking), nil
}

func (s *service) List(ctx context.Context, filters ListFilters, params pagination.Params) (*BookingList, error) {
	if filters.Day != "" {
		if _, err := time.Parse(DayLayout, filters.Day); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "day must be YYYY-MM-DD")
		}
	}
	rows, err := s.repo.List(ctx, filters, params)
	if err != nil {
		if errors.Is(err, pagination.ErrInvalidCursor) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	rows, next := pagination.Trim(rows, params.Limit, func(b models.Booking) pagination.Cursor {
		return pagination.Cursor{CreatedAt: b.CreatedAt, ID: b.ID}
	})
	out := &BookingList{Items: make([]BookingDTO, 0, len(rows)), NextCursor: next}
	for i := range rows {
		out.Items = append(out.Items, *FromModel(&rows[i]))
	}
	return out, nil
}

// Exists reports whether a non-cancelled booking holds vehicleID on day.
func (s *service) Exists(ctx context.Context, vehicleID uuid.UUID, day string) (bool, error) {
	if vehicleID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "vehicleId is required")
	}
	if _, err := time.Parse(DayLayout, day); err != nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	exists, err := s.repo.ExistsActiveForVehicle(ctx, vehicleID, day)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check booking")
	}
	return exists, nil
}

func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.BookingStatus) (*BookingDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid booking status")
	}
	var booking *models.Booking
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		current, err := repo.FindForUpdate(ctx, id)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		if current.Status == status {
			booking = current
			return nil
		}
		if !CanTransition(current.Status, status) {
			return pkgerrors.Transition("booking", current.Status, status)
		}
		if err := repo.UpdateStatus(ctx, id, status); err != nil {
			return notFoundOr(err, "booking")
		}
		booking, err = repo.Find(ctx, id)
		if err != nil {
			return notFoundOr(err, "booking")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(booking), nil
}

// CanTransition reports whether a booking may move from one status to another.
// Only pending bookings move, either to confirmed or cancelled.
func CanTransition(from, to enums.BookingStatus) bool {
	if from != enums.BookingStatusPending {
		return false
	}
	return to == enums.BookingStatusConfirmed || to == enums.BookingStatusCancelled
}

func duplicateBooking(cause error, vehicleID uuid.UUID, day string) error {
	details := map[string]any{"date": day}
	if vehicleID != uuid.Nil {
		details["kendaraanId"] = vehicleID
	}
	if cause != nil {
		return pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "booking collides with an existing booking").WithDetails(details)
	}
	return pkgerrors.New(pkgerrors.CodeConflict, "vehicle already booked for this day").WithDetails(details)
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
