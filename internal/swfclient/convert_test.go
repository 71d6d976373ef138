package swfclient

import (
	"context"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/swf"
	"github.com/aws/aws-sdk-go-v2/service/swf/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicWink/seddy/internal/swfmodel"
)

func TestToHistoryEvent(t *testing.T) {
	t.Run("Should convert WorkflowExecutionStarted attributes", func(t *testing.T) {
		e := types.HistoryEvent{
			EventId:        aws.Int64(1),
			EventType:      types.EventTypeWorkflowExecutionStarted,
			EventTimestamp: aws.Time(time.Unix(1000, 0)),
			WorkflowExecutionStartedEventAttributes: &types.WorkflowExecutionStartedEventAttributes{
				Input: aws.String(`{"a":1}`),
			},
		}
		out := ToHistoryEvent(e)
		assert.Equal(t, int64(1), out.EventID)
		assert.Equal(t, swfmodel.EventWorkflowExecutionStarted, out.EventType)
		require.NotNil(t, out.WorkflowExecutionStarted)
		assert.Equal(t, `{"a":1}`, out.WorkflowExecutionStarted.Input)
	})

	t.Run("Should convert ActivityTaskScheduled attributes including task list", func(t *testing.T) {
		e := types.HistoryEvent{
			EventId:   aws.Int64(5),
			EventType: types.EventTypeActivityTaskScheduled,
			ActivityTaskScheduledEventAttributes: &types.ActivityTaskScheduledEventAttributes{
				ActivityId:          aws.String("foo"),
				ActivityType:        &types.ActivityType{Name: aws.String("foo-activity"), Version: aws.String("1.0")},
				HeartbeatTimeout:    aws.String("60"),
				StartToCloseTimeout: aws.String("86400"),
				TaskList:            &types.TaskList{Name: aws.String("eggs")},
				TaskPriority:        aws.String("1"),
			},
		}
		out := ToHistoryEvent(e)
		require.NotNil(t, out.ActivityTaskScheduled)
		assert.Equal(t, "foo", out.ActivityTaskScheduled.ActivityID)
		assert.Equal(t, "foo-activity", out.ActivityTaskScheduled.ActivityType.Name)
		assert.Equal(t, "60", out.ActivityTaskScheduled.HeartbeatTimeout)
		require.NotNil(t, out.ActivityTaskScheduled.TaskList)
		assert.Equal(t, "eggs", out.ActivityTaskScheduled.TaskList.Name)
	})

	t.Run("Should convert a decision-rejection cause", func(t *testing.T) {
		e := types.HistoryEvent{
			EventId:   aws.Int64(9),
			EventType: types.EventTypeScheduleActivityTaskFailed,
			ScheduleActivityTaskFailedEventAttributes: &types.ScheduleActivityTaskFailedEventAttributes{
				Cause:                        types.ScheduleActivityTaskFailedCauseOperationNotPermitted,
				DecisionTaskCompletedEventId: aws.Int64(4),
			},
		}
		out := ToHistoryEvent(e)
		require.NotNil(t, out.DecisionFailed)
		assert.Equal(t, swfmodel.CauseOperationNotPermitted, out.DecisionFailed.Cause)
		assert.Equal(t, int64(4), out.DecisionFailed.DecisionTaskCompletedEventID)
	})
}

func TestToDecisionTask(t *testing.T) {
	t.Run("Should error on an empty poll result", func(t *testing.T) {
		_, err := ToDecisionTask(&swf.PollForDecisionTaskOutput{}, nil)
		require.Error(t, err)
	})

	t.Run("Should assemble a DecisionTask from a poll output and merged events", func(t *testing.T) {
		out := &swf.PollForDecisionTaskOutput{
			TaskToken:              aws.String("tok"),
			StartedEventId:         aws.Int64(3),
			PreviousStartedEventId: aws.Int64(0),
			WorkflowType:           &types.WorkflowType{Name: aws.String("wf"), Version: aws.String("1.0")},
			WorkflowExecution:      &types.WorkflowExecution{WorkflowId: aws.String("wid"), RunId: aws.String("rid")},
		}
		events := []types.HistoryEvent{
			{EventId: aws.Int64(1), EventType: types.EventTypeWorkflowExecutionStarted},
			{EventId: aws.Int64(2), EventType: types.EventTypeDecisionTaskScheduled},
			{EventId: aws.Int64(3), EventType: types.EventTypeDecisionTaskStarted},
		}
		task, err := ToDecisionTask(out, events)
		require.NoError(t, err)
		assert.Equal(t, "tok", task.TaskToken)
		assert.Equal(t, "wf", task.WorkflowType.Name)
		assert.Equal(t, "wid", task.WorkflowExecution.WorkflowID)
		assert.Len(t, task.Events, 3)
	})
}

func TestFromDecisions(t *testing.T) {
	t.Run("Should convert a ScheduleActivityTask decision", func(t *testing.T) {
		decisions := []swfmodel.Decision{
			{
				Type: swfmodel.DecisionScheduleActivityTask,
				ScheduleActivityTask: &swfmodel.ScheduleActivityTaskAttributes{
					ActivityID:   "foo",
					ActivityType: swfmodel.ActivityType{Name: "foo-activity", Version: "1.0"},
					Input:        `{"a":1}`,
					HasInput:     true,
					HasTaskList:  true,
					TaskListName: "eggs",
				},
			},
		}
		out := FromDecisions(decisions)
		require.Len(t, out, 1)
		assert.Equal(t, types.DecisionTypeScheduleActivityTask, out[0].DecisionType)
		attrs := out[0].ScheduleActivityTaskDecisionAttributes
		require.NotNil(t, attrs)
		assert.Equal(t, "foo", *attrs.ActivityId)
		assert.Equal(t, "eggs", *attrs.TaskList.Name)
	})

	t.Run("Should convert a bare CancelWorkflowExecution decision", func(t *testing.T) {
		out := FromDecisions([]swfmodel.Decision{{Type: swfmodel.DecisionCancelWorkflowExecution}})
		require.Len(t, out, 1)
		assert.Equal(t, types.DecisionTypeCancelWorkflowExecution, out[0].DecisionType)
	})
}

func TestFake(t *testing.T) {
	t.Run("Should serve enqueued polls and record responses", func(t *testing.T) {
		f := &Fake{}
		f.EnqueuePoll(&swf.PollForDecisionTaskOutput{TaskToken: aws.String("tok")})

		out, err := f.PollForDecisionTask(context.Background(), &swf.PollForDecisionTaskInput{Domain: aws.String("d")})
		require.NoError(t, err)
		assert.Equal(t, "tok", *out.TaskToken)

		err = f.RespondDecisionTaskCompleted(context.Background(), &swf.RespondDecisionTaskCompletedInput{TaskToken: aws.String("tok")})
		require.NoError(t, err)
		assert.Len(t, f.Responses, 1)
		assert.Len(t, f.Polls(), 1)
	})
}
