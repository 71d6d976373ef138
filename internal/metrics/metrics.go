// Package metrics is the Decider Loop's Prometheus instrumentation
// surface: it registers collectors and exposes Record* helpers, but never
// listens on a socket itself — cmd/seddy serves promhttp.Handler() at the
// boundary, the same split the teacher keeps between its engine packages
// (which only register collectors) and its monitoring handler.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome is one of a decision task's terminal classifications, used as
// the "outcome" label on DecisionTasksTotal.
type Outcome string

const (
	OutcomeScheduled Outcome = "scheduled"
	OutcomeCompleted Outcome = "completed"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
	OutcomeError     Outcome = "error"
)

var (
	// DecisionsTotal counts every decision emitted, by decision type
	// (ScheduleActivityTask, CompleteWorkflowExecution,
	// FailWorkflowExecution, CancelWorkflowExecution).
	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seddy_decisions_total",
			Help: "Total decisions emitted by the decider, by decision type.",
		},
		[]string{"decision_type"},
	)

	// DecisionTasksTotal counts every decision task processed, by its
	// outcome.
	DecisionTasksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seddy_decision_tasks_total",
			Help: "Total decision tasks processed, by outcome.",
		},
		[]string{"outcome"},
	)

	// PollDurationSeconds observes how long each PollForDecisionTask call
	// (across all pages of one decision task) takes.
	PollDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seddy_poll_duration_seconds",
			Help:    "Duration of PollForDecisionTask calls.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// BuilderDurationSeconds observes how long the Decision Builder takes
	// to produce a decision list for one decision task.
	BuilderDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seddy_builder_duration_seconds",
			Help:    "Duration of Decision Builder runs.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

// RecordDecisions increments DecisionsTotal once per decision type in
// decisionTypes (duplicates count once each, matching a decision list
// that schedules several activities in one response).
func RecordDecisions(decisionTypes ...string) {
	for _, t := range decisionTypes {
		DecisionsTotal.WithLabelValues(t).Inc()
	}
}

// RecordDecisionTask increments DecisionTasksTotal for outcome.
func RecordDecisionTask(outcome Outcome) {
	DecisionTasksTotal.WithLabelValues(string(outcome)).Inc()
}

// RecordPollDuration observes d against PollDurationSeconds.
func RecordPollDuration(d time.Duration) {
	PollDurationSeconds.Observe(d.Seconds())
}

// RecordBuilderDuration observes d against BuilderDurationSeconds.
func RecordBuilderDuration(d time.Duration) {
	BuilderDurationSeconds.Observe(d.Seconds())
}
