// Package decision implements the Decision Builder state machine
// (spec.md §4.5, §4.6): turning one decision task's reduced history into
// the decision list the service is answered with.
//
// Grounded on the priority-ordered branch structure of the original
// decider's DAGBuilder (_process_new_events / _process_*_event in
// original_source/src/seddy/decisions/_dag.py), restated against this
// core's own Task/Condition/Input model.
package decision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/EpicWink/seddy/internal/condition"
	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/history"
	"github.com/EpicWink/seddy/internal/input"
	"github.com/EpicWink/seddy/internal/swfmodel"
)

// Builder builds decisions for one workflow's decision tasks.
type Builder struct {
	Workflow *dag.Workflow

	// Identity is this decider's own identity string, used to tell
	// self-inflicted OPERATION_NOT_PERMITTED rejections (fatal) from
	// ones caused by another decider (recoverable) — spec.md §4.5 step 2.
	Identity string
}

// Build produces the decision list for task, or a *errs.Error: of kind
// KindDeciderError if the task reveals a fatal decider-side problem, or of
// another kind (InvalidPath, MissingKey, MissingDependency, TypeMismatch,
// ...) if a task's input or skip_if cannot be evaluated.
func (b *Builder) Build(task *swfmodel.DecisionTask) ([]swfmodel.Decision, error) {
	r, err := history.Reduce(task)
	if err != nil {
		return nil, err
	}

	if hasCancelRequest(r.NewEvents) {
		return cancelDecision(), nil
	}

	if err := b.checkFatalPermissionDenied(r); err != nil {
		return nil, err
	}

	if decisions, terminal, err := b.rescue(r); err != nil || terminal {
		return decisions, err
	}

	if reason, ok := failureSummary(r.NewEvents); ok {
		return []swfmodel.Decision{failDecision("workflowFailure", reason)}, nil
	}

	workflowInput := parseWorkflowInput(r)
	results := completedResults(b.Workflow, r)

	ready := b.seedReady(r)

	if decisions, complete := b.checkCompletion(r); complete {
		return decisions, nil
	}

	decisions, completedOrSkipped, err := b.processReady(ready, r, workflowInput, results)
	if err != nil {
		return nil, err
	}
	if len(decisions) > 0 {
		return decisions, nil
	}

	// Nothing was scheduled this pass (everything ready turned out to be
	// skip_if-true); recheck completion against the now-expanded
	// completed set before answering with an empty decision list.
	if allComplete(b.Workflow, completedOrSkipped) {
		return completeDecision(b.Workflow, r, completedOrSkipped)
	}
	return nil, nil
}

func hasCancelRequest(events []swfmodel.HistoryEvent) bool {
	for _, e := range events {
		if e.EventType == swfmodel.EventWorkflowExecutionCancelRequested {
			return true
		}
	}
	return false
}

func cancelDecision() []swfmodel.Decision {
	return []swfmodel.Decision{{Type: swfmodel.DecisionCancelWorkflowExecution}}
}

// checkFatalPermissionDenied implements spec.md §4.5 step 2.
func (b *Builder) checkFatalPermissionDenied(r *history.Reduction) error {
	for _, e := range r.NewEvents {
		if !isDecisionRejection(e.EventType) || e.DecisionFailed == nil {
			continue
		}
		if e.DecisionFailed.Cause != swfmodel.CauseOperationNotPermitted {
			continue
		}
		identity, ok := offendingIdentity(r, e.DecisionFailed.DecisionTaskCompletedEventID)
		if ok && identity == b.Identity {
			return errs.New(errs.KindDeciderError, "decision rejected with OPERATION_NOT_PERMITTED, submitted by this decider (%s)", b.Identity)
		}
	}
	return nil
}

// offendingIdentity walks DecisionTaskCompletedEventID -> DecisionTaskCompleted
// -> its StartedEventID -> DecisionTaskStarted.Identity.
func offendingIdentity(r *history.Reduction, completedEventID int64) (string, bool) {
	completed, ok := r.EventsByID[completedEventID]
	if !ok || completed.DecisionTaskCompleted == nil {
		return "", false
	}
	started, ok := r.EventsByID[completed.DecisionTaskCompleted.StartedEventID]
	if !ok || started.DecisionTaskStarted == nil {
		return "", false
	}
	return started.DecisionTaskStarted.Identity, true
}

// rescue implements spec.md §4.5 step 3. The bool return reports whether
// the outcome is terminal for this pass (decisions/err should be returned
// as-is, including a nil/nil "keep processing normally" non-terminal case
// only when no rescue branch fired).
func (b *Builder) rescue(r *history.Reduction) ([]swfmodel.Decision, bool, error) {
	for _, e := range r.NewEvents {
		if e.EventType == swfmodel.EventCancelWorkflowExecutionFailed &&
			e.DecisionFailed != nil && e.DecisionFailed.Cause == swfmodel.CauseUnhandledDecision {
			return cancelDecision(), true, nil
		}
	}
	for _, e := range r.NewEvents {
		if e.EventType == swfmodel.EventCompleteWorkflowExecutionFailed &&
			e.DecisionFailed != nil && e.DecisionFailed.Cause == swfmodel.CauseUnhandledDecision {
			completed := completedSet(b.Workflow, r)
			if decisions, ok := completeDecisionIfComplete(b.Workflow, r, completed); ok {
				return decisions, true, nil
			}
			return nil, true, nil
		}
	}
	for _, e := range r.NewEvents {
		if e.EventType == swfmodel.EventFailWorkflowExecutionFailed &&
			e.DecisionFailed != nil && e.DecisionFailed.Cause != swfmodel.CauseUnhandledDecision {
			return nil, true, errs.New(errs.KindDeciderError, "FailWorkflowExecution rejected with cause %q", e.DecisionFailed.Cause)
		}
	}
	return nil, false, nil
}

func isDecisionRejection(t swfmodel.EventType) bool {
	switch t {
	case swfmodel.EventScheduleActivityTaskFailed, swfmodel.EventRequestCancelActivityTaskFailed,
		swfmodel.EventStartTimerFailed, swfmodel.EventCancelTimerFailed,
		swfmodel.EventStartChildWorkflowExecutionFailed, swfmodel.EventSignalExternalWorkflowExecutionFailed,
		swfmodel.EventRequestCancelExternalWorkflowExecutionFailed, swfmodel.EventCancelWorkflowExecutionFailed,
		swfmodel.EventCompleteWorkflowExecutionFailed, swfmodel.EventContinueAsNewWorkflowExecutionFailed,
		swfmodel.EventFailWorkflowExecutionFailed:
		return true
	default:
		return false
	}
}

type errorCounts struct{ activity, timeout, decision, other int }

// failureSummary implements spec.md §4.5 step 4 / §4.6.
func failureSummary(newEvents []swfmodel.HistoryEvent) (string, bool) {
	var c errorCounts
	for _, e := range newEvents {
		switch e.EventType {
		case swfmodel.EventActivityTaskFailed:
			c.activity++
		case swfmodel.EventActivityTaskTimedOut:
			switch e.ActivityTaskTimedOut.TimeoutType {
			case swfmodel.TimeoutStartToClose, swfmodel.TimeoutHeartbeat:
				c.activity++
			default:
				c.timeout++
			}
		case swfmodel.EventDecisionTaskTimedOut, swfmodel.EventWorkflowExecutionTimedOut:
			c.timeout++
		case swfmodel.EventRecordMarkerFailed:
			c.other++
		case swfmodel.EventCancelWorkflowExecutionFailed, swfmodel.EventCompleteWorkflowExecutionFailed,
			swfmodel.EventFailWorkflowExecutionFailed:
			// UNHANDLED_DECISION causes on these were already handled (rescued
			// or continued) in step 3; anything else still counts here.
			if e.DecisionFailed != nil && e.DecisionFailed.Cause != swfmodel.CauseUnhandledDecision {
				c.decision++
			}
		case swfmodel.EventScheduleActivityTaskFailed, swfmodel.EventRequestCancelActivityTaskFailed,
			swfmodel.EventStartTimerFailed, swfmodel.EventCancelTimerFailed,
			swfmodel.EventStartChildWorkflowExecutionFailed, swfmodel.EventSignalExternalWorkflowExecutionFailed,
			swfmodel.EventRequestCancelExternalWorkflowExecutionFailed, swfmodel.EventContinueAsNewWorkflowExecutionFailed:
			c.decision++
		}
	}
	if c.activity == 0 && c.timeout == 0 && c.decision == 0 && c.other == 0 {
		return "", false
	}
	var parts []string
	if c.activity > 0 {
		parts = append(parts, fmt.Sprintf("%d activities failed", c.activity))
	}
	if c.decision > 0 {
		parts = append(parts, fmt.Sprintf("%d decisions failed", c.decision))
	}
	if c.timeout > 0 {
		parts = append(parts, fmt.Sprintf("%d actions timed-out", c.timeout))
	}
	if c.other > 0 {
		parts = append(parts, fmt.Sprintf("%d other actions failed", c.other))
	}
	return strings.Join(parts, ", "), true
}

func failDecision(reason, details string) swfmodel.Decision {
	return swfmodel.Decision{
		Type: swfmodel.DecisionFailWorkflowExecution,
		FailWorkflowExecution: &swfmodel.FailWorkflowExecutionAttributes{
			Reason:  reason,
			Details: details,
		},
	}
}

// parseWorkflowInput decodes the workflow's own input document, or nil if
// none was provided.
func parseWorkflowInput(r *history.Reduction) any {
	for _, e := range r.EventsByID {
		if e.EventType == swfmodel.EventWorkflowExecutionStarted {
			if e.WorkflowExecutionStarted == nil || e.WorkflowExecutionStarted.Input == "" {
				return nil
			}
			var v any
			if json.Unmarshal([]byte(e.WorkflowExecutionStarted.Input), &v) != nil {
				return nil
			}
			return v
		}
	}
	return nil
}

// completedResults collects the parsed results of every really-completed
// task (used as the Input Builder's/Condition Evaluator's DependencyResult
// source). Skipped tasks never contribute an entry here.
func completedResults(w *dag.Workflow, r *history.Reduction) input.Results {
	results := make(input.Results, len(w.Tasks))
	for _, t := range w.Tasks {
		e, ok := r.LastEvent(t.ID)
		if !ok || e.EventType != swfmodel.EventActivityTaskCompleted {
			continue
		}
		var v any
		if raw := e.ActivityTaskCompleted.Result; raw != "" {
			if json.Unmarshal([]byte(raw), &v) != nil {
				v = nil
			}
		}
		results[t.ID] = v
	}
	return results
}

func completedSet(w *dag.Workflow, r *history.Reduction) map[string]bool {
	completed := make(map[string]bool, len(w.Tasks))
	for _, t := range w.Tasks {
		if r.IsCompleted(t.ID) {
			completed[t.ID] = true
		}
	}
	return completed
}

func allComplete(w *dag.Workflow, completed map[string]bool) bool {
	for _, t := range w.Tasks {
		if !completed[t.ID] {
			return false
		}
	}
	return true
}

// checkCompletion implements spec.md §4.5 step 7, using only real history
// completions (run before any skip_if scheduling for this pass).
func (b *Builder) checkCompletion(r *history.Reduction) ([]swfmodel.Decision, bool) {
	completed := completedSet(b.Workflow, r)
	return completeDecisionIfComplete(b.Workflow, r, completed)
}

func completeDecisionIfComplete(w *dag.Workflow, r *history.Reduction, completed map[string]bool) ([]swfmodel.Decision, bool) {
	if !allComplete(w, completed) {
		return nil, false
	}
	decisions, err := completeDecision(w, r, completed)
	if err != nil {
		return nil, false
	}
	return decisions, true
}

// completeDecision builds the workflow's result object (spec.md §8 S4:
// "order reflects declaration order"), so the entries are emitted in
// w.Tasks order rather than a Go map's randomized/alphabetical encoding
// order.
func completeDecision(w *dag.Workflow, r *history.Reduction, completed map[string]bool) ([]swfmodel.Decision, error) {
	var entries []byte
	for _, t := range w.Tasks {
		if !completed[t.ID] {
			continue // skip_if-completed tasks contribute no result entry
		}
		e, ok := r.LastEvent(t.ID)
		if !ok || e.ActivityTaskCompleted == nil {
			continue
		}
		raw := e.ActivityTaskCompleted.Result
		if raw == "" {
			continue // produced no result: absent from the result map entirely
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errs.Wrap(errs.KindDeciderError, err, "decoding result of task %q", t.ID)
		}
		key, err := json.Marshal(t.ID)
		if err != nil {
			return nil, errs.Wrap(errs.KindDeciderError, err, "encoding result key %q", t.ID)
		}
		value, err := json.Marshal(v)
		if err != nil {
			return nil, errs.Wrap(errs.KindDeciderError, err, "encoding result of task %q", t.ID)
		}
		if entries != nil {
			entries = append(entries, ',')
		}
		entries = append(entries, key...)
		entries = append(entries, ':')
		entries = append(entries, value...)
	}
	attrs := &swfmodel.CompleteWorkflowExecutionAttributes{}
	if entries != nil {
		attrs.Result = "{" + string(entries) + "}"
		attrs.HasResult = true
	}
	return []swfmodel.Decision{{Type: swfmodel.DecisionCompleteWorkflowExecution, CompleteWorkflowExecution: attrs}}, nil
}

// seedReady implements spec.md §4.5 steps 5 and 6.
func (b *Builder) seedReady(r *history.Reduction) []string {
	var ready []string
	seen := make(map[string]bool)
	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ready = append(ready, id)
		}
	}

	for _, e := range r.NewEvents {
		if e.EventType == swfmodel.EventWorkflowExecutionStarted {
			for _, id := range b.Workflow.Roots() {
				add(id)
			}
		}
	}

	for _, e := range r.NewEvents {
		if e.EventType != swfmodel.EventActivityTaskCompleted {
			continue
		}
		scheduled := r.Scheduled[e.EventID]
		if scheduled.ActivityTaskScheduled == nil {
			continue
		}
		for _, depID := range b.Workflow.Dependants(scheduled.ActivityTaskScheduled.ActivityID) {
			if len(r.TaskEvents[depID]) > 0 {
				continue // already scheduled
			}
			if b.dependenciesSatisfied(depID, r, nil) {
				add(depID)
			}
		}
	}
	return ready
}

func (b *Builder) dependenciesSatisfied(taskID string, r *history.Reduction, extra map[string]bool) bool {
	t, ok := b.Workflow.Task(taskID)
	if !ok {
		return false
	}
	for _, dep := range t.Dependencies {
		if r.IsCompleted(dep) || extra[dep] {
			continue
		}
		return false
	}
	return true
}

// processReady implements spec.md §4.5 step 8, recursing skip_if-true
// tasks back through step 6 within this same pass.
func (b *Builder) processReady(ready []string, r *history.Reduction, workflowInput any, results input.Results) ([]swfmodel.Decision, map[string]bool, error) {
	completed := completedSet(b.Workflow, r)
	queue := append([]string(nil), ready...)
	queued := make(map[string]bool, len(ready))
	for _, id := range ready {
		queued[id] = true
	}
	var decisions []swfmodel.Decision

	for i := 0; i < len(queue); i++ {
		id := queue[i]
		task, ok := b.Workflow.Task(id)
		if !ok {
			return nil, nil, errs.New(errs.KindInvalidSpec, "scheduled unknown task %q", id)
		}

		skip := false
		if task.SkipIf != nil {
			var err error
			skip, err = condition.Evaluate(task.SkipIf, workflowInput, results)
			if err != nil {
				return nil, nil, err
			}
		}

		if skip {
			completed[id] = true
			for _, depID := range b.Workflow.Dependants(id) {
				if queued[depID] || len(r.TaskEvents[depID]) > 0 {
					continue
				}
				if b.dependenciesSatisfied(depID, r, completed) {
					queued[depID] = true
					queue = append(queue, depID)
				}
			}
			continue
		}

		ti, err := input.Build(task.Input, workflowInput, results)
		if err != nil {
			return nil, nil, err
		}
		decisions = append(decisions, scheduleDecision(task, ti))
	}

	return decisions, completed, nil
}

func scheduleDecision(task *dag.Task, ti input.Value) swfmodel.Decision {
	attrs := &swfmodel.ScheduleActivityTaskAttributes{
		ActivityID: task.ID,
		ActivityType: swfmodel.ActivityType{
			Name:    task.ActivityType.Name,
			Version: task.ActivityType.Version,
		},
	}
	if ti.Present {
		if raw, err := json.Marshal(ti.Value); err == nil {
			attrs.Input = string(raw)
			attrs.HasInput = true
		}
	}
	if task.Heartbeat.IsSet() {
		attrs.HeartbeatTimeout = task.Heartbeat.String()
	}
	if task.Timeout.IsSet() {
		attrs.StartToCloseTimeout = task.Timeout.String()
	}
	if task.TaskList != "" {
		attrs.TaskListName = task.TaskList
		attrs.HasTaskList = true
	}
	if task.Priority != "" {
		attrs.TaskPriority = task.Priority
		attrs.HasTaskPriority = true
	}
	return swfmodel.Decision{Type: swfmodel.DecisionScheduleActivityTask, ScheduleActivityTask: attrs}
}
