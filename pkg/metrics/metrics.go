package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the request lifecycle. Exposition is left to the embedding
// process; the core only increments.
var (
	TransitionsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Name:      "transitions_applied_total",
		Help:      "Successful service request transitions by target status.",
	}, []string{"to"})

	TransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Name:      "transitions_rejected_total",
		Help:      "Rejected transition attempts by error code.",
	}, []string{"code"})

	GateAdmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Name:      "gate_admissions_total",
		Help:      "Gate decisions by outcome.",
	}, []string{"outcome"})

	RepairOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "depot",
		Name:      "repair_outcomes_total",
		Help:      "Resolved repair tickets by outcome.",
	}, []string{"outcome"})
)
