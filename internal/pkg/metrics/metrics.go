// Package metrics defines the custom Prometheus metrics of the theatre API.
// It is the single source of truth for metric names, labels and help
// strings. Metrics are registered with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "theatre"

// ── Booking metrics ───────────────────────────────────────────────────────────

// TicketsBookedTotal counts tickets issued.
var TicketsBookedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tickets_booked_total",
		Help:      "Total number of tickets issued.",
	},
)

// SeatConflictsTotal counts rejected seat reservations.
// Label:
//   - reason: "sold_out" or "seat_taken"
var SeatConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seat_conflicts_total",
		Help:      "Total number of seat reservations rejected, by reason.",
	},
	[]string{"reason"},
)

// SeatsReleasedTotal counts seats returned to a showtime's inventory.
var SeatsReleasedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "seats_released_total",
		Help:      "Total number of seats returned to inventory.",
	},
)

// ── Consistency metrics ───────────────────────────────────────────────────────

// RelationSyncFailuresTotal counts inverse-reference writes that failed.
// Label:
//   - relation: e.g. "plays.actors"
var RelationSyncFailuresTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "relation_sync_failures_total",
		Help:      "Total number of failed inverse-reference writes, by relation.",
	},
	[]string{"relation"},
)

// CascadeDeletesTotal counts dependent documents removed by cascades.
// Label:
//   - entity: the collection the removed documents belonged to
var CascadeDeletesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cascade_deletes_total",
		Help:      "Total number of documents removed by delete cascades.",
	},
	[]string{"entity"},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// TicketEventsPublishedTotal counts ticket lifecycle events handed to the broker.
// Labels:
//   - type: the event type (e.g. "ticket.booked")
//   - result: "ok", "error" or "dropped"
var TicketEventsPublishedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "ticket_events_published_total",
		Help:      "Total number of ticket events published, by type and result.",
	},
	[]string{"type", "result"},
)

// EventsQueueDepth tracks events waiting in each dispatcher worker channel.
var EventsQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "events_queue_depth",
		Help:      "Current number of events pending in each dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
