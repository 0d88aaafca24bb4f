package directory

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/bengkelku/bengkel-backend/api/responses"
	"github.com/bengkelku/bengkel-backend/api/validators"
	directorysvc "github.com/bengkelku/bengkel-backend/internal/directory"
	pkgerrors "github.com/bengkelku/bengkel-backend/pkg/errors"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
)

type createUserRequest struct {
	Name  string  `json:"name" validate:"required,max=120"`
	Email string  `json:"email" validate:"required,email"`
	Phone *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type createEmployeeRequest struct {
	Name     string  `json:"name" validate:"required,max=120"`
	Position string  `json:"position" validate:"required,max=80"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,max=32"`
}

type createVehicleRequest struct {
	UserID      uuid.UUID `json:"userId" validate:"required"`
	PlateNumber string    `json:"plateNumber" validate:"required,max=20"`
	Brand       string    `json:"brand" validate:"max=60"`
	Model       string    `json:"model" validate:"max=60"`
	Year        *int      `json:"year,omitempty" validate:"omitempty,min=1900,max=2100"`
}

func unavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable")
}

func CreateUser(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		var payload createUserRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.CreateUser(r.Context(), directorysvc.CreateUserInput{
			Name:  validators.SanitizeString(payload.Name, 120),
			Email: validators.SanitizeString(payload.Email, 0),
			Phone: validators.SanitizeOptional(payload.Phone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func ListUsers(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListUsers(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetUser(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		id, err := validators.ParseURLUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		user, err := svc.GetUser(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, user)
	}
}

func CreateEmployee(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		var payload createEmployeeRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.CreateEmployee(r.Context(), directorysvc.CreateEmployeeInput{
			Name:     validators.SanitizeString(payload.Name, 120),
			Position: validators.SanitizeString(payload.Position, 80),
			Phone:    validators.SanitizeOptional(payload.Phone, 32),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, employee)
	}
}

func ListEmployees(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListEmployees(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetEmployee(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		id, err := validators.ParseURLUUID(r, "employeeId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		employee, err := svc.GetEmployee(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, employee)
	}
}

func CreateVehicle(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		var payload createVehicleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.CreateVehicle(r.Context(), directorysvc.CreateVehicleInput{
			UserID:      payload.UserID,
			PlateNumber: validators.SanitizeString(payload.PlateNumber, 20),
			Brand:       validators.SanitizeString(payload.Brand, 60),
			Model:       validators.SanitizeString(payload.Model, 60),
			Year:        payload.Year,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, vehicle)
	}
}

// ListVehicles lists vehicles, optionally narrowed to one owner via ?userId=.
func ListVehicles(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		userID, err := validators.ParseQueryUUID(r, "userId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		list, err := svc.ListVehicles(r.Context(), userID, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

func GetVehicle(svc directorysvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, unavailable())
			return
		}
		id, err := validators.ParseURLUUID(r, "vehicleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vehicle, err := svc.GetVehicle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, vehicle)
	}
}
