package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bengkelku/bengkel-backend/api/controllers"
	bookingcontrollers "github.com/bengkelku/bengkel-backend/api/controllers/bookings"
	catalogcontrollers "github.com/bengkelku/bengkel-backend/api/controllers/catalog"
	directorycontrollers "github.com/bengkelku/bengkel-backend/api/controllers/directory"
	ordercontrollers "github.com/bengkelku/bengkel-backend/api/controllers/orders"
	"github.com/bengkelku/bengkel-backend/api/middleware"
	"github.com/bengkelku/bengkel-backend/internal/bookings"
	"github.com/bengkelku/bengkel-backend/internal/catalog"
	"github.com/bengkelku/bengkel-backend/internal/directory"
	"github.com/bengkelku/bengkel-backend/internal/orders"
	"github.com/bengkelku/bengkel-backend/pkg/config"
	"github.com/bengkelku/bengkel-backend/pkg/logger"
	"github.com/bengkelku/bengkel-backend/pkg/metrics"
	"github.com/bengkelku/bengkel-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger controllers.Pinger,
	redisPinger controllers.Pinger,
	idempotencyStore redis.IdempotencyStore,
	gatherer prometheus.Gatherer,
	httpMetrics *metrics.HTTP,
	directoryService directory.Service,
	catalogService catalog.Service,
	bookingService bookings.Service,
	orderService orders.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	idempotent := middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"db":    dbPinger,
			"redis": redisPinger,
		}))
	})
	if gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Get("/", directorycontrollers.ListUsers(directoryService, logg))
			r.Post("/", directorycontrollers.CreateUser(directoryService, logg))
			r.Get("/{userId}", directorycontrollers.GetUser(directoryService, logg))
		})
		r.Route("/employees", func(r chi.Router) {
			r.Get("/", directorycontrollers.ListEmployees(directoryService, logg))
			r.Post("/", directorycontrollers.CreateEmployee(directoryService, logg))
			r.Get("/{employeeId}", directorycontrollers.GetEmployee(directoryService, logg))
		})
		r.Route("/vehicles", func(r chi.Router) {
			r.Get("/", directorycontrollers.ListVehicles(directoryService, logg))
			r.Post("/", directorycontrollers.CreateVehicle(directoryService, logg))
			r.Get("/{vehicleId}", directorycontrollers.GetVehicle(directoryService, logg))
		})

		r.Route("/services", func(r chi.Router) {
			r.Get("/", catalogcontrollers.ListServices(catalogService, logg))
			r.Post("/", catalogcontrollers.CreateService(catalogService, logg))
			r.Get("/{serviceId}", catalogcontrollers.GetService(catalogService, logg))
			r.Patch("/{serviceId}", catalogcontrollers.UpdateService(catalogService, logg))
			r.Delete("/{serviceId}", catalogcontrollers.DeleteService(catalogService, logg))
		})
		r.Route("/spareparts", func(r chi.Router) {
			r.Get("/", catalogcontrollers.ListSpareparts(catalogService, logg))
			r.Post("/", catalogcontrollers.CreateSparepart(catalogService, logg))
			r.Get("/{sparepartId}", catalogcontrollers.GetSparepart(catalogService, logg))
			r.Patch("/{sparepartId}", catalogcontrollers.UpdateSparepart(catalogService, logg))
			r.Delete("/{sparepartId}", catalogcontrollers.DeleteSparepart(catalogService, logg))
			r.Post("/{sparepartId}/stock-adjustments", catalogcontrollers.AdjustStock(catalogService, logg))
			r.Get("/{sparepartId}/movements", catalogcontrollers.ListMovements(catalogService, logg))
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", bookingcontrollers.List(bookingService, logg))
			r.With(idempotent).Post("/", bookingcontrollers.Create(bookingService, logg))
			r.Get("/exists", bookingcontrollers.Exists(bookingService, logg))
			r.Get("/{bookingId}", bookingcontrollers.Detail(bookingService, logg))
			r.Patch("/{bookingId}/status", bookingcontrollers.UpdateStatus(bookingService, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", ordercontrollers.List(orderService, logg))
			r.With(idempotent).Post("/", ordercontrollers.Create(orderService, logg))
			r.Get("/{orderId}", ordercontrollers.Detail(orderService, logg))
			r.Put("/{orderId}", ordercontrollers.Update(orderService, logg))
			r.Patch("/{orderId}/status", ordercontrollers.UpdateStatus(orderService, logg))
			r.Delete("/{orderId}", ordercontrollers.Delete(orderService, logg))
		})
	})

	return r
}
