package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Import outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeAborted  = "aborted" // client went away mid-upload
)

// Metrics tracks CEAP import throughput and durations.
type Metrics struct {
	Imports            *prometheus.CounterVec
	RegistrantsCreated prometheus.Counter
	ExpensesInserted   prometheus.Counter
	RowsSkipped        prometheus.Counter
	ImportDuration     prometheus.Histogram
	ImportsInFlight    prometheus.Gauge
}

// New registers the import metrics with reg. A nil reg uses the default
// registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		Imports: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ceap_imports_total",
			Help: "Total number of CEAP imports by outcome",
		}, []string{"outcome"}),
		RegistrantsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "ceap_registrants_created_total",
			Help: "Total number of registrants created by committed imports",
		}),
		ExpensesInserted: factory.NewCounter(prometheus.CounterOpts{
			Name: "ceap_expenses_inserted_total",
			Help: "Total number of expenses inserted by committed imports",
		}),
		RowsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "ceap_rows_skipped_total",
			Help: "Total number of rows skipped as out of scope or without CPF",
		}),
		ImportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ceap_import_duration_seconds",
			Help:    "Duration of CEAP imports, including the commit",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}),
		ImportsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ceap_imports_in_flight",
			Help: "Number of imports currently running",
		}),
	}
}

// ObserveImport records the outcome and duration of one import.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveImport(outcome string, start time.Time) {
	m.Imports.WithLabelValues(outcome).Inc()
	m.ImportDuration.Observe(time.Since(start).Seconds())
}

// AddCommitted records the effect of a committed import.
func (m *Metrics) AddCommitted(registrants, expenses, skipped int) {
	m.RegistrantsCreated.Add(float64(registrants))
	m.ExpensesInserted.Add(float64(expenses))
	m.RowsSkipped.Add(float64(skipped))
}
