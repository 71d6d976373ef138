// Package swfmodel is the decider's own view of the SWF decision-task wire
// shapes: history events and decisions. It exists so the pure parts of this
// core (internal/history, internal/decision) never import the AWS SDK
// directly — only internal/swfclient's adapter does, keeping the SDK's own
// struct shapes (and any drift in them) isolated to the client boundary.
package swfmodel

import "time"

// EventType names the event classes this decider reasons about. Values
// match the service's own event-type strings verbatim (spec.md §6).
type EventType string

const (
	EventWorkflowExecutionStarted         EventType = "WorkflowExecutionStarted"
	EventWorkflowExecutionCancelRequested EventType = "WorkflowExecutionCancelRequested"
	EventWorkflowExecutionTimedOut        EventType = "WorkflowExecutionTimedOut"
	EventDecisionTaskScheduled            EventType = "DecisionTaskScheduled"
	EventDecisionTaskStarted              EventType = "DecisionTaskStarted"
	EventDecisionTaskCompleted            EventType = "DecisionTaskCompleted"
	EventDecisionTaskTimedOut             EventType = "DecisionTaskTimedOut"
	EventActivityTaskScheduled            EventType = "ActivityTaskScheduled"
	EventActivityTaskStarted              EventType = "ActivityTaskStarted"
	EventActivityTaskCompleted            EventType = "ActivityTaskCompleted"
	EventActivityTaskFailed               EventType = "ActivityTaskFailed"
	EventActivityTaskTimedOut             EventType = "ActivityTaskTimedOut"
	EventRecordMarkerFailed               EventType = "RecordMarkerFailed"
	EventScheduleActivityTaskFailed       EventType = "ScheduleActivityTaskFailed"
	EventRequestCancelActivityTaskFailed   EventType = "RequestCancelActivityTaskFailed"
	EventStartTimerFailed                  EventType = "StartTimerFailed"
	EventCancelTimerFailed                 EventType = "CancelTimerFailed"
	EventStartChildWorkflowExecutionFailed EventType = "StartChildWorkflowExecutionFailed"
	EventSignalExternalWorkflowExecutionFailed         EventType = "SignalExternalWorkflowExecutionFailed"
	EventRequestCancelExternalWorkflowExecutionFailed  EventType = "RequestCancelExternalWorkflowExecutionFailed"
	EventCancelWorkflowExecutionFailed      EventType = "CancelWorkflowExecutionFailed"
	EventCompleteWorkflowExecutionFailed    EventType = "CompleteWorkflowExecutionFailed"
	EventContinueAsNewWorkflowExecutionFailed EventType = "ContinueAsNewWorkflowExecutionFailed"
	EventFailWorkflowExecutionFailed        EventType = "FailWorkflowExecutionFailed"
)

// ActivityTimeoutType is the timeoutType attribute of an
// ActivityTaskTimedOut event (spec.md §4.6).
type ActivityTimeoutType string

const (
	TimeoutStartToClose    ActivityTimeoutType = "START_TO_CLOSE"
	TimeoutScheduleToStart ActivityTimeoutType = "SCHEDULE_TO_START"
	TimeoutScheduleToClose ActivityTimeoutType = "SCHEDULE_TO_CLOSE"
	TimeoutHeartbeat       ActivityTimeoutType = "HEARTBEAT"
)

// DecisionFailedCause is the cause attribute shared by every "...Failed"
// decision-rejection event (spec.md §4.5 step 2/3).
type DecisionFailedCause string

const (
	CauseOperationNotPermitted DecisionFailedCause = "OPERATION_NOT_PERMITTED"
	CauseUnhandledDecision     DecisionFailedCause = "UNHANDLED_DECISION"
)

// ActivityType identifies an activity's (name, version) pair.
type ActivityType struct {
	Name    string
	Version string
}

// TaskListRef names a decision/activity task list.
type TaskListRef struct {
	Name string
}

// HistoryEvent is one entry in a decision task's event history. Only the
// attribute struct matching EventType is populated; the rest are nil.
type HistoryEvent struct {
	EventID   int64
	EventType EventType
	Timestamp time.Time

	WorkflowExecutionStarted *WorkflowExecutionStartedAttributes
	DecisionTaskStarted      *DecisionTaskStartedAttributes
	DecisionTaskCompleted    *DecisionTaskCompletedAttributes

	ActivityTaskScheduled *ActivityTaskScheduledAttributes
	ActivityTaskStarted   *ActivityTaskStartedAttributes
	ActivityTaskCompleted *ActivityTaskCompletedAttributes
	ActivityTaskFailed    *ActivityTaskFailedAttributes
	ActivityTaskTimedOut  *ActivityTaskTimedOutAttributes

	DecisionFailed *DecisionFailedAttributes // shared by every "...Failed" decision-rejection event
}

// IsActivityEvent reports whether e belongs to the activity-event set
// used to resolve scheduled-event backreferences (spec.md §4.4 step 2).
func (e *HistoryEvent) IsActivityEvent() bool {
	switch e.EventType {
	case EventActivityTaskScheduled, EventActivityTaskStarted,
		EventActivityTaskCompleted, EventActivityTaskFailed, EventActivityTaskTimedOut:
		return true
	default:
		return false
	}
}

// ScheduledEventID returns the scheduledEventId attribute carried by
// non-scheduled activity events, or (0, false) if e has none.
func (e *HistoryEvent) ScheduledEventID() (int64, bool) {
	switch e.EventType {
	case EventActivityTaskStarted:
		return e.ActivityTaskStarted.ScheduledEventID, true
	case EventActivityTaskCompleted:
		return e.ActivityTaskCompleted.ScheduledEventID, true
	case EventActivityTaskFailed:
		return e.ActivityTaskFailed.ScheduledEventID, true
	case EventActivityTaskTimedOut:
		return e.ActivityTaskTimedOut.ScheduledEventID, true
	default:
		return 0, false
	}
}

type WorkflowExecutionStartedAttributes struct {
	Input string // raw JSON, "" when absent
}

type DecisionTaskStartedAttributes struct {
	Identity         string
	ScheduledEventID int64
}

type DecisionTaskCompletedAttributes struct {
	ScheduledEventID int64
	StartedEventID   int64
}

type ActivityTaskScheduledAttributes struct {
	ActivityID             string
	ActivityType           ActivityType
	Input                  string // raw JSON, "" when absent
	HeartbeatTimeout       string
	StartToCloseTimeout    string
	TaskList               *TaskListRef
	TaskPriority           string
	DecisionTaskCompletedEventID int64
}

type ActivityTaskStartedAttributes struct {
	Identity         string
	ScheduledEventID int64
}

type ActivityTaskCompletedAttributes struct {
	Result           string // raw JSON, "" when absent
	ScheduledEventID int64
	StartedEventID   int64
}

type ActivityTaskFailedAttributes struct {
	Reason           string
	Details          string
	ScheduledEventID int64
	StartedEventID   int64
}

type ActivityTaskTimedOutAttributes struct {
	TimeoutType      ActivityTimeoutType
	ScheduledEventID int64
	StartedEventID   int64
}

// DecisionFailedAttributes is shared by ScheduleActivityTaskFailed,
// RequestCancelActivityTaskFailed, StartTimerFailed, CancelTimerFailed,
// StartChildWorkflowExecutionFailed, SignalExternalWorkflowExecutionFailed,
// RequestCancelExternalWorkflowExecutionFailed, CancelWorkflowExecutionFailed,
// CompleteWorkflowExecutionFailed, ContinueAsNewWorkflowExecutionFailed and
// FailWorkflowExecutionFailed events (spec.md §4.6); they differ only in
// EventType, never in attribute shape.
type DecisionFailedAttributes struct {
	Cause                        DecisionFailedCause
	DecisionTaskCompletedEventID int64
}

// WorkflowExecution identifies one run of one workflow.
type WorkflowExecution struct {
	WorkflowID string
	RunID      string
}

// WorkflowTypeRef identifies a workflow's (name, version) pair.
type WorkflowTypeRef struct {
	Name    string
	Version string
}

// DecisionTask is the (possibly already paginated-and-merged) payload a
// long-poll returns: the event history plus the markers needed to slice
// out this pass's new events (spec.md §4.4, §4.7).
type DecisionTask struct {
	TaskToken              string
	WorkflowType           WorkflowTypeRef
	WorkflowExecution      WorkflowExecution
	Events                 []HistoryEvent
	StartedEventID         int64
	PreviousStartedEventID int64
}
