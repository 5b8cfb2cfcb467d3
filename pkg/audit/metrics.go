package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsDelivered is the total number of audit events handed to a deliverer.
	EventsDelivered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_delivered_total",
			Help: "Total number of audit events delivered",
		},
		[]string{"kind", "result"},
	)

	// EventsDropped is the total number of audit events dropped before delivery.
	EventsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_events_dropped_total",
			Help: "Total number of audit events dropped",
		},
		[]string{"kind"},
	)
)
