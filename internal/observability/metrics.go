// Package observability provides metrics and tracing.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmatch_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DBQueryDuration records database statement latency by kind.
	DBQueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propmatch_db_query_duration_seconds",
		Help:    "Database statement latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	// CacheLookups counts cache-aside lookups by cache and result (hit, miss, error).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmatch_cache_lookups_total",
		Help: "Cache lookups by cache name and result",
	}, []string{"cache", "result"})

	// InvitationTransitions counts invitation lifecycle events.
	InvitationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmatch_invitation_transitions_total",
		Help: "Group invitation lifecycle events",
	}, []string{"status"})

	// MessagesSent counts stored messages by thread scope.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmatch_messages_sent_total",
		Help: "Messages stored by thread scope",
	}, []string{"scope"})

	// ActiveThreadPollers is the number of running thread refresh loops.
	ActiveThreadPollers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propmatch_active_thread_pollers",
		Help: "Number of running thread refresh loops",
	})

	// ThreadPollDuration records how long one full thread re-fetch takes.
	ThreadPollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "propmatch_thread_poll_duration_seconds",
		Help:    "Duration of one full thread re-fetch",
		Buckets: prometheus.DefBuckets,
	})

	// ActiveWebSockets is the number of open thread streams.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "propmatch_active_websockets",
		Help: "Number of open websocket thread streams",
	})

	// PhotoUploads counts property photo uploads by outcome.
	PhotoUploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "propmatch_photo_uploads_total",
		Help: "Property photo uploads by outcome",
	}, []string{"outcome"})
)
