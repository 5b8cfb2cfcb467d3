package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// OperationsTotal is the total number of ticketing operations by result category.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_operations_total",
			Help: "Total number of ticketing operations",
		},
		[]string{"operation", "result"},
	)

	// OperationDuration is the duration of ticketing operations, including the guild lock wait and persistence.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ticketing_operation_duration",
			Help: "Duration of ticketing operations",
		},
		[]string{"operation"},
	)

	// TicketsSwept is the total number of ledger entries removed by reconciliation.
	TicketsSwept = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_tickets_swept_total",
			Help: "Total number of tickets removed by reconciliation",
		},
		[]string{"reason"},
	)
)
