package swfmodel

// DecisionType names the four decision kinds this core ever emits
// (spec.md §6).
type DecisionType string

const (
	DecisionScheduleActivityTask    DecisionType = "ScheduleActivityTask"
	DecisionCompleteWorkflowExecution DecisionType = "CompleteWorkflowExecution"
	DecisionFailWorkflowExecution     DecisionType = "FailWorkflowExecution"
	DecisionCancelWorkflowExecution    DecisionType = "CancelWorkflowExecution"
)

// Decision is one entry of the list a decision task is answered with.
type Decision struct {
	Type DecisionType

	ScheduleActivityTask    *ScheduleActivityTaskAttributes
	CompleteWorkflowExecution *CompleteWorkflowExecutionAttributes
	FailWorkflowExecution     *FailWorkflowExecutionAttributes
}

// ScheduleActivityTaskAttributes carries the fields spec.md §4.5 step 8
// requires: some are only set "iff the spec defines them".
type ScheduleActivityTaskAttributes struct {
	ActivityID          string
	ActivityType         ActivityType
	Input                string // raw JSON; empty means omitted
	HasInput             bool
	HeartbeatTimeout     string // decimal string; empty means omitted
	StartToCloseTimeout  string
	TaskListName         string
	HasTaskList          bool
	TaskPriority         string
	HasTaskPriority      bool
}

// CompleteWorkflowExecutionAttributes carries the optional result map
// (spec.md §4.5 step 7).
type CompleteWorkflowExecutionAttributes struct {
	Result    string // raw JSON object; empty means omitted
	HasResult bool
}

// FailWorkflowExecutionAttributes carries reason/details
// (spec.md §4.5 step 4, §7).
type FailWorkflowExecutionAttributes struct {
	Reason  string
	Details string
}
