// Package metrics declares the Prometheus collectors shared by the backend and client core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CallableRequests counts callable invocations by name and result status.
	CallableRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidr",
			Name:      "callable_requests_total",
			Help:      "Callable invocations handled by the backend.",
		},
		[]string{"callable", "status"},
	)

	// RelayAttempts counts coach relay attempts per tier and outcome.
	RelayAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidr",
			Name:      "relay_attempts_total",
			Help:      "Coach relay attempts by tier (remote, local) and outcome.",
		},
		[]string{"tier", "outcome"},
	)

	// ConversationLogFailures counts dropped conversation log writes.
	ConversationLogFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "guidr",
			Name:      "conversation_log_failures_total",
			Help:      "Fire-and-forget conversation log writes that failed.",
		},
	)

	// EntitlementLookups counts billing lookups by outcome.
	EntitlementLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "guidr",
			Name:      "entitlement_lookups_total",
			Help:      "Billing provider lookups by outcome (pro, free, error).",
		},
		[]string{"outcome"},
	)
)
