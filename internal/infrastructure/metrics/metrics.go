// Package metrics registra las métricas Prometheus del servicio en el registro por defecto.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de una asignación.
const (
	OutcomeSuccess             = "success"
	OutcomeInsufficientCredits = "insufficient_credits"
	OutcomeInsufficientSupply  = "insufficient_supply"
	OutcomeError               = "error"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	allocationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_allocations_total",
			Help: "Allocation requests by outcome",
		},
		[]string{"outcome"},
	)

	leadsAllocated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_allocated_total",
			Help: "Leads bound to an account by successful allocations",
		},
	)

	ingestionRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_ingestion_runs_total",
			Help: "Ingestion runs by trigger",
		},
		[]string{"trigger"},
	)

	ingestionRows = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lead_ingestion_rows_total",
			Help: "Spreadsheet rows processed by ingestion, by result",
		},
		[]string{"result"},
	)

	ingestionFileErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "lead_ingestion_file_errors_total",
			Help: "Spreadsheet files skipped because they could not be read",
		},
	)
)

// Handler expone /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTP registra una petición atendida.
func RecordHTTP(method, path string, status int, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}

// RecordAllocation registra el resultado de una asignación y, si tuvo éxito, los leads entregados.
func RecordAllocation(outcome string, leads int) {
	allocationsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess && leads > 0 {
		leadsAllocated.Add(float64(leads))
	}
}

// IngestionCounts filas por resultado de una pasada de ingesta.
type IngestionCounts struct {
	Inserted        int
	Duplicates      int
	RejectedPhone   int
	RejectedCompany int
	FilesFailed     int
}

// RecordIngestion registra una pasada de ingesta.
func RecordIngestion(trigger string, c IngestionCounts) {
	ingestionRuns.WithLabelValues(trigger).Inc()
	ingestionRows.WithLabelValues("inserted").Add(float64(c.Inserted))
	ingestionRows.WithLabelValues("duplicate").Add(float64(c.Duplicates))
	ingestionRows.WithLabelValues("rejected_phone").Add(float64(c.RejectedPhone))
	ingestionRows.WithLabelValues("rejected_company").Add(float64(c.RejectedCompany))
	ingestionFileErrors.Add(float64(c.FilesFailed))
}
