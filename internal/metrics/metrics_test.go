package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDecisions(t *testing.T) {
	t.Run("Should increment the counter once per decision type given", func(t *testing.T) {
		before := testutil.ToFloat64(DecisionsTotal.WithLabelValues("ScheduleActivityTask"))
		RecordDecisions("ScheduleActivityTask", "ScheduleActivityTask", "CompleteWorkflowExecution")
		after := testutil.ToFloat64(DecisionsTotal.WithLabelValues("ScheduleActivityTask"))
		assert.Equal(t, before+2, after)
	})
}

func TestRecordDecisionTask(t *testing.T) {
	t.Run("Should increment the counter for the given outcome", func(t *testing.T) {
		before := testutil.ToFloat64(DecisionTasksTotal.WithLabelValues(string(OutcomeCompleted)))
		RecordDecisionTask(OutcomeCompleted)
		after := testutil.ToFloat64(DecisionTasksTotal.WithLabelValues(string(OutcomeCompleted)))
		assert.Equal(t, before+1, after)
	})
}

func TestRecordDurations(t *testing.T) {
	t.Run("Should observe poll and builder durations without panicking", func(t *testing.T) {
		RecordPollDuration(50 * time.Millisecond)
		RecordBuilderDuration(5 * time.Millisecond)
	})
}
