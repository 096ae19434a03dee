// Package metrics exposes session counters over Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WakeDetections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ziggy_wake_detections_total",
		Help: "Total wake word detections",
	})

	Utterances = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ziggy_utterances_total",
		Help: "Total captured utterances by recording mode",
	}, []string{"mode"})

	EmptyRecordings = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ziggy_empty_recordings_total",
		Help: "Recording sessions that ended without usable speech",
	})

	BargeIns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ziggy_barge_in_events_total",
		Help: "Responses cut short by the wake word",
	})

	RoutedActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ziggy_routed_actions_total",
		Help: "Routed utterances by action kind",
	}, []string{"kind"})

	AIFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ziggy_ai_failures_total",
		Help: "Model requests that failed after retry",
	})

	HistoryExpirations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ziggy_history_expirations_total",
		Help: "Conversation histories dropped after the inactivity window",
	})

	StateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ziggy_state_transitions_total",
		Help: "Dialogue state transitions",
	}, []string{"from", "to"})
)
