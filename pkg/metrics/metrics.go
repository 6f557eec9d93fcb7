package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all application metrics
type Metrics struct {
	// Scheduling metrics
	SchedulingRuns            prometheus.Counter
	SchedulingRunErrors       prometheus.Counter
	AppointmentsAssigned      prometheus.Counter
	AppointmentsWaitlisted    prometheus.Counter
	AssignmentPersistFailures prometheus.Counter
	SchedulingRunDuration     prometheus.Histogram

	// Database metrics
	DatabaseOperations *prometheus.CounterVec
}

// NewMetrics creates and registers all application metrics on the default
// registry. Use New for unregistered metrics (tests).
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		SchedulingRuns: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scheduling_runs_total",
			Help:      "Total number of scheduling runs",
		}),
		SchedulingRunErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scheduling_run_errors_total",
			Help:      "Total number of scheduling runs that aborted with an error",
		}),
		AppointmentsAssigned: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointments_assigned_total",
			Help:      "Total number of appointments assigned a slot",
		}),
		AppointmentsWaitlisted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "appointments_waitlisted_total",
			Help:      "Total number of appointments placed on the waiting list",
		}),
		AssignmentPersistFailures: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "assignment_persist_failures_total",
			Help:      "Total number of assignments that failed to persist",
		}),
		SchedulingRunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "scheduling_run_duration_seconds",
			Help:      "Time spent on one scheduling run",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		DatabaseOperations: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}

// New creates unregistered metrics, safe to construct repeatedly in tests.
func New(namespace string) *Metrics {
	return &Metrics{
		SchedulingRuns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduling_runs_total",
			Help:      "Total number of scheduling runs",
		}),
		SchedulingRunErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scheduling_run_errors_total",
			Help:      "Total number of scheduling runs that aborted with an error",
		}),
		AppointmentsAssigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_assigned_total",
			Help:      "Total number of appointments assigned a slot",
		}),
		AppointmentsWaitlisted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appointments_waitlisted_total",
			Help:      "Total number of appointments placed on the waiting list",
		}),
		AssignmentPersistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignment_persist_failures_total",
			Help:      "Total number of assignments that failed to persist",
		}),
		SchedulingRunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scheduling_run_duration_seconds",
			Help:      "Time spent on one scheduling run",
		}),
		DatabaseOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "database_operations_total",
			Help:      "Total number of database operations",
		}, []string{"operation", "status"}),
	}
}
