// Package metrics defines and registers all custom Prometheus metrics for
// the listing chat service. It is the single source of truth for metric
// names, labels, and help strings.
//
// Metrics are registered with the default registry at init time via
// promauto; the /metrics endpoint exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "chat"

// ── Connection metrics ────────────────────────────────────────────────────────

// ConnectionsTotal counts connection admission attempts.
// Label:
//   - outcome: "admitted" or "rejected"
var ConnectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "connections_total",
		Help:      "Total number of WebSocket connection attempts, by admission outcome.",
	},
	[]string{"outcome"},
)

// ConnectionsActive tracks the number of currently open authenticated connections.
var ConnectionsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "connections_active",
		Help:      "Current number of open authenticated connections.",
	},
)

// RoomsActive tracks the number of rooms with at least one subscriber.
var RoomsActive = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "rooms_active",
		Help:      "Current number of live rooms in the registry.",
	},
)

// ── Message metrics ───────────────────────────────────────────────────────────

// MessagesPersistedTotal counts messages accepted and written to the store.
var MessagesPersistedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_persisted_total",
		Help:      "Total number of chat messages persisted.",
	},
)

// MessagesRejectedTotal counts messages dropped before persistence.
// Label:
//   - reason: "invalid_payload", "bad_credential", "unknown_sender",
//     "unknown_listing", "duplicate", or "store_error"
var MessagesRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "messages_rejected_total",
		Help:      "Total number of inbound messages rejected, by reason.",
	},
	[]string{"reason"},
)

// ── Fan-out metrics ───────────────────────────────────────────────────────────

// DeliveriesTotal counts successful per-subscriber event deliveries.
var DeliveriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "deliveries_total",
		Help:      "Total number of broadcast events delivered to subscribers.",
	},
)

// DeliveryFailuresTotal counts per-subscriber delivery failures. A failure
// removes the subscriber from the room but never aborts the broadcast.
var DeliveryFailuresTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "delivery_failures_total",
		Help:      "Total number of failed per-subscriber deliveries.",
	},
)

// QueueDepth tracks the number of inbound messages waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var QueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "queue_depth",
		Help:      "Current number of messages pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
