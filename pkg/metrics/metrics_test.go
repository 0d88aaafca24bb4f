package metrics

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestWorkflowExportsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	wf := NewWorkflow(reg)

	wf.BookingCreated(nil)
	wf.BookingCreated(errors.New("dup"))
	wf.OrderWritten("create", nil)
	wf.StatusTransition("PENDING", "PROCESS")
	wf.StockMoved("reserve", -3)
	wf.StockMoved("reserve", 2)
	wf.StockRejected("create")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	checks := []struct {
		name, label, value string
		want               float64
	}{
		{"bookings_created_total", "outcome", OutcomeSuccess, 1},
		{"bookings_created_total", "outcome", OutcomeFailure, 1},
		{"orders_written_total", "operation", "create", 1},
		{"order_status_transitions_total", "to", "PROCESS", 1},
		{"stock_units_moved_total", "kind", "reserve", 5},
		{"stock_rejections_total", "operation", "create", 1},
	}
	for _, c := range checks {
		got, err := fetchCounterValue(mfs, c.name, c.label, c.value)
		if err != nil {
			t.Fatalf("fetch %s: %v", c.name, err)
		}
		if got != c.want {
			t.Fatalf("%s{%s=%q} expected %v, got %v", c.name, c.label, c.value, c.want, got)
		}
	}
}

func TestHTTPObservesDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := NewHTTP(reg)
	h.Observe(http.MethodPost, "/api/v1/orders", http.StatusCreated, 120*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	mf := findMetricFamily(mfs, "http_request_duration_seconds")
	if mf == nil || len(mf.GetMetric()) != 1 {
		t.Fatalf("expected one histogram series")
	}
	if !matchesLabel(mf.GetMetric()[0].GetLabel(), "status", "201") {
		t.Fatalf("expected status label 201")
	}
	if sum := mf.GetMetric()[0].GetHistogram().GetSampleSum(); sum <= 0 {
		t.Fatalf("expected positive duration sum, got %f", sum)
	}
}

func TestNilRecordersAreNoops(t *testing.T) {
	var wf *Workflow
	wf.BookingCreated(nil)
	wf.OrderWritten("update", nil)
	wf.StockMoved("release", 1)

	empty := NewWorkflow(nil)
	empty.StockRejected("update")

	var h *HTTP
	h.Observe(http.MethodGet, "/", http.StatusOK, time.Millisecond)
}

func fetchCounterValue(mfs []*dto.MetricFamily, name, label, value string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabel(metric.GetLabel(), label, value) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing label %s=%s", name, label, value)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabel(labels []*dto.LabelPair, name, value string) bool {
	for _, label := range labels {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}
