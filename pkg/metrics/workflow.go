package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Workflow records booking, order and stock ledger activity.
type Workflow struct {
	bookings    *prometheus.CounterVec
	orders      *prometheus.CounterVec
	transitions *prometheus.CounterVec
	stock       *prometheus.CounterVec
	rejections  *prometheus.CounterVec
}

// NewWorkflow registers the workflow metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewWorkflow(reg prometheus.Registerer) *Workflow {
	if reg == nil {
		return &Workflow{}
	}
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bookings_created_total",
		Help: "Booking creation attempts by outcome.",
	}, []string{"outcome"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_written_total",
		Help: "Order writes by operation and outcome.",
	}, []string{"operation", "outcome"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "order_status_transitions_total",
		Help: "Applied order status transitions.",
	}, []string{"from", "to"})
	stock := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_units_moved_total",
		Help: "Sparepart units moved through the stock ledger by kind.",
	}, []string{"kind"})
	rejections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stock_rejections_total",
		Help: "Operations refused because of insufficient sparepart stock.",
	}, []string{"operation"})
	reg.MustRegister(bookings, orders, transitions, stock, rejections)
	return &Workflow{
		bookings:    bookings,
		orders:      orders,
		transitions: transitions,
		stock:       stock,
		rejections:  rejections,
	}
}

func (w *Workflow) BookingCreated(err error) {
	if w == nil || w.bookings == nil {
		return
	}
	w.bookings.WithLabelValues(outcome(err)).Inc()
}

func (w *Workflow) OrderWritten(operation string, err error) {
	if w == nil || w.orders == nil {
		return
	}
	w.orders.WithLabelValues(normalizeLabel(operation), outcome(err)).Inc()
}

func (w *Workflow) StatusTransition(from, to string) {
	if w == nil || w.transitions == nil {
		return
	}
	w.transitions.WithLabelValues(normalizeLabel(from), normalizeLabel(to)).Inc()
}

// StockMoved adds the absolute number of units moved for kind.
func (w *Workflow) StockMoved(kind string, units int) {
	if w == nil || w.stock == nil || units == 0 {
		return
	}
	if units < 0 {
		units = -units
	}
	w.stock.WithLabelValues(normalizeLabel(kind)).Add(float64(units))
}

func (w *Workflow) StockRejected(operation string) {
	if w == nil || w.rejections == nil {
		return
	}
	w.rejections.WithLabelValues(normalizeLabel(operation)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
