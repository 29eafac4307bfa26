// Package metrics provides Prometheus metrics for the chat service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveConnections tracks the number of open websocket connections.
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "chat_active_connections",
			Help: "Number of currently open websocket connections",
		},
	)

	// MessagesCreated tracks the total number of messages persisted.
	MessagesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_messages_created_total",
			Help: "Total number of chat messages created",
		},
	)

	// IdentitiesProvisioned tracks virtual identities materialized into rows.
	IdentitiesProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_identities_provisioned_total",
			Help: "Total number of chat identities provisioned",
		},
	)

	// FanoutEvents tracks events pushed to connected clients, by kind.
	FanoutEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_fanout_events_total",
			Help: "Total number of real-time events fanned out",
		},
		[]string{"type"},
	)

	// FanoutDropped tracks events dropped because a send buffer was full.
	FanoutDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_fanout_dropped_total",
			Help: "Total number of real-time events dropped on full buffers",
		},
	)

	// HeartbeatTimeouts tracks connections closed for missing a ping answer.
	HeartbeatTimeouts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chat_heartbeat_timeouts_total",
			Help: "Total number of connections closed by heartbeat timeout",
		},
	)
)
