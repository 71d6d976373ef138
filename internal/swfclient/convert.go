package swfclient

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/swf/types"

	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/swfmodel"
)

// ToHistoryEvent converts one SDK history event into this core's own view
// of it. Only the attribute sets spec.md §6 names are translated; any
// other event type is kept with a bare EventID/EventType/Timestamp (the
// Builder never looks at its nil attribute fields).
func ToHistoryEvent(e types.HistoryEvent) swfmodel.HistoryEvent {
	out := swfmodel.HistoryEvent{
		EventID:   aws.ToInt64(e.EventId),
		EventType: swfmodel.EventType(e.EventType),
	}
	if e.EventTimestamp != nil {
		out.Timestamp = *e.EventTimestamp
	}

	switch out.EventType {
	case swfmodel.EventWorkflowExecutionStarted:
		if a := e.WorkflowExecutionStartedEventAttributes; a != nil {
			out.WorkflowExecutionStarted = &swfmodel.WorkflowExecutionStartedAttributes{
				Input: aws.ToString(a.Input),
			}
		}
	case swfmodel.EventDecisionTaskStarted:
		if a := e.DecisionTaskStartedEventAttributes; a != nil {
			out.DecisionTaskStarted = &swfmodel.DecisionTaskStartedAttributes{
				Identity:         aws.ToString(a.Identity),
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
			}
		}
	case swfmodel.EventDecisionTaskCompleted:
		if a := e.DecisionTaskCompletedEventAttributes; a != nil {
			out.DecisionTaskCompleted = &swfmodel.DecisionTaskCompletedAttributes{
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
				StartedEventID:   aws.ToInt64(a.StartedEventId),
			}
		}
	case swfmodel.EventActivityTaskScheduled:
		if a := e.ActivityTaskScheduledEventAttributes; a != nil {
			attrs := &swfmodel.ActivityTaskScheduledAttributes{
				ActivityID:                   aws.ToString(a.ActivityId),
				Input:                        aws.ToString(a.Input),
				HeartbeatTimeout:             aws.ToString(a.HeartbeatTimeout),
				StartToCloseTimeout:          aws.ToString(a.StartToCloseTimeout),
				TaskPriority:                 aws.ToString(a.TaskPriority),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
			if a.ActivityType != nil {
				attrs.ActivityType = swfmodel.ActivityType{
					Name:    aws.ToString(a.ActivityType.Name),
					Version: aws.ToString(a.ActivityType.Version),
				}
			}
			if a.TaskList != nil {
				attrs.TaskList = &swfmodel.TaskListRef{Name: aws.ToString(a.TaskList.Name)}
			}
			out.ActivityTaskScheduled = attrs
		}
	case swfmodel.EventActivityTaskStarted:
		if a := e.ActivityTaskStartedEventAttributes; a != nil {
			out.ActivityTaskStarted = &swfmodel.ActivityTaskStartedAttributes{
				Identity:         aws.ToString(a.Identity),
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
			}
		}
	case swfmodel.EventActivityTaskCompleted:
		if a := e.ActivityTaskCompletedEventAttributes; a != nil {
			out.ActivityTaskCompleted = &swfmodel.ActivityTaskCompletedAttributes{
				Result:           aws.ToString(a.Result),
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
				StartedEventID:   aws.ToInt64(a.StartedEventId),
			}
		}
	case swfmodel.EventActivityTaskFailed:
		if a := e.ActivityTaskFailedEventAttributes; a != nil {
			out.ActivityTaskFailed = &swfmodel.ActivityTaskFailedAttributes{
				Reason:           aws.ToString(a.Reason),
				Details:          aws.ToString(a.Details),
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
				StartedEventID:   aws.ToInt64(a.StartedEventId),
			}
		}
	case swfmodel.EventActivityTaskTimedOut:
		if a := e.ActivityTaskTimedOutEventAttributes; a != nil {
			out.ActivityTaskTimedOut = &swfmodel.ActivityTaskTimedOutAttributes{
				TimeoutType:      swfmodel.ActivityTimeoutType(a.TimeoutType),
				ScheduledEventID: aws.ToInt64(a.ScheduledEventId),
				StartedEventID:   aws.ToInt64(a.StartedEventId),
			}
		}
	case swfmodel.EventScheduleActivityTaskFailed:
		if a := e.ScheduleActivityTaskFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventRequestCancelActivityTaskFailed:
		if a := e.RequestCancelActivityTaskFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventStartTimerFailed:
		if a := e.StartTimerFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventCancelTimerFailed:
		if a := e.CancelTimerFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventStartChildWorkflowExecutionFailed:
		if a := e.StartChildWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventSignalExternalWorkflowExecutionFailed:
		if a := e.SignalExternalWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventRequestCancelExternalWorkflowExecutionFailed:
		if a := e.RequestCancelExternalWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventCancelWorkflowExecutionFailed:
		if a := e.CancelWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventCompleteWorkflowExecutionFailed:
		if a := e.CompleteWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventContinueAsNewWorkflowExecutionFailed:
		if a := e.ContinueAsNewWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	case swfmodel.EventFailWorkflowExecutionFailed:
		if a := e.FailWorkflowExecutionFailedEventAttributes; a != nil {
			out.DecisionFailed = &swfmodel.DecisionFailedAttributes{
				Cause:                        swfmodel.DecisionFailedCause(a.Cause),
				DecisionTaskCompletedEventID: aws.ToInt64(a.DecisionTaskCompletedEventId),
			}
		}
	}
	return out
}

// ToDecisionTask builds a swfmodel.DecisionTask from a (possibly merged
// across pages) PollForDecisionTaskOutput; events must already be
// concatenated into a single oldest-first slice (spec.md §9 "Pagination").
func ToDecisionTask(out *swf.PollForDecisionTaskOutput, events []types.HistoryEvent) (*swfmodel.DecisionTask, error) {
	if out == nil || out.TaskToken == nil || *out.TaskToken == "" {
		return nil, errs.New(errs.KindTransportError, "poll returned no task token")
	}
	task := &swfmodel.DecisionTask{
		TaskToken:              aws.ToString(out.TaskToken),
		StartedEventID:         aws.ToInt64(out.StartedEventId),
		PreviousStartedEventID: aws.ToInt64(out.PreviousStartedEventId),
	}
	if out.WorkflowType != nil {
		task.WorkflowType = swfmodel.WorkflowTypeRef{
			Name:    aws.ToString(out.WorkflowType.Name),
			Version: aws.ToString(out.WorkflowType.Version),
		}
	}
	if out.WorkflowExecution != nil {
		task.WorkflowExecution = swfmodel.WorkflowExecution{
			WorkflowID: aws.ToString(out.WorkflowExecution.WorkflowId),
			RunID:      aws.ToString(out.WorkflowExecution.RunId),
		}
	}
	task.Events = make([]swfmodel.HistoryEvent, len(events))
	for i, e := range events {
		task.Events[i] = ToHistoryEvent(e)
	}
	return task, nil
}

// FromDecisions converts this core's decisions back into the SDK's own
// Decision type for RespondDecisionTaskCompleted.
func FromDecisions(decisions []swfmodel.Decision) []types.Decision {
	out := make([]types.Decision, len(decisions))
	for i, d := range decisions {
		out[i] = fromDecision(d)
	}
	return out
}

func fromDecision(d swfmodel.Decision) types.Decision {
	switch d.Type {
	case swfmodel.DecisionScheduleActivityTask:
		a := d.ScheduleActivityTask
		attrs := &types.ScheduleActivityTaskDecisionAttributes{
			ActivityId: aws.String(a.ActivityID),
			ActivityType: &types.ActivityType{
				Name:    aws.String(a.ActivityType.Name),
				Version: aws.String(a.ActivityType.Version),
			},
		}
		if a.HasInput {
			attrs.Input = aws.String(a.Input)
		}
		if a.HeartbeatTimeout != "" {
			attrs.HeartbeatTimeout = aws.String(a.HeartbeatTimeout)
		}
		if a.StartToCloseTimeout != "" {
			attrs.StartToCloseTimeout = aws.String(a.StartToCloseTimeout)
		}
		if a.HasTaskList {
			attrs.TaskList = &types.TaskList{Name: aws.String(a.TaskListName)}
		}
		if a.HasTaskPriority {
			attrs.TaskPriority = aws.String(a.TaskPriority)
		}
		return types.Decision{
			DecisionType:                       types.DecisionTypeScheduleActivityTask,
			ScheduleActivityTaskDecisionAttributes: attrs,
		}
	case swfmodel.DecisionCompleteWorkflowExecution:
		a := d.CompleteWorkflowExecution
		attrs := &types.CompleteWorkflowExecutionDecisionAttributes{}
		if a != nil && a.HasResult {
			attrs.Result = aws.String(a.Result)
		}
		return types.Decision{
			DecisionType: types.DecisionTypeCompleteWorkflowExecution,
			CompleteWorkflowExecutionDecisionAttributes: attrs,
		}
	case swfmodel.DecisionFailWorkflowExecution:
		a := d.FailWorkflowExecution
		return types.Decision{
			DecisionType: types.DecisionTypeFailWorkflowExecution,
			FailWorkflowExecutionDecisionAttributes: &types.FailWorkflowExecutionDecisionAttributes{
				Reason:  aws.String(a.Reason),
				Details: aws.String(a.Details),
			},
		}
	case swfmodel.DecisionCancelWorkflowExecution:
		return types.Decision{
			DecisionType: types.DecisionTypeCancelWorkflowExecution,
			CancelWorkflowExecutionDecisionAttributes: &types.CancelWorkflowExecutionDecisionAttributes{},
		}
	default:
		return types.Decision{}
	}
}
