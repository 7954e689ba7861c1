// Package metrics exposes Prometheus counters for the charge engine.
// They are registered with the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChargesTotal counts charge authorization attempts by outcome.
	ChargesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "charges_total",
		Help: "Charge authorization attempts by final status.",
	}, []string{"status"})

	// ChargeReplaysTotal counts idempotent replays (pre-check hit,
	// cache hit, or duplicate-key race recovery).
	ChargeReplaysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_idempotent_replays_total",
		Help: "Charge creations answered with an existing record.",
	})

	// RefundsTotal counts successful refund transitions.
	RefundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "charge_refunds_total",
		Help: "Approved charges transitioned to refunded.",
	})
)
