// Package history implements the History Reducer (spec.md §4.4): turning
// a decision task's flat event history into the lookups the Decision
// Builder needs, and slicing out the events new to this pass.
//
// Grounded on the scheduled-event backreference / per-task event bucketing
// done by the original decider's DAGBuilder._get_scheduled_references and
// _get_activity_task_events.
package history

import (
	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/swfmodel"
)

// Reduction is the result of reducing one decision task's history.
type Reduction struct {
	// EventsByID indexes every event in the task's history by EventID.
	EventsByID map[int64]swfmodel.HistoryEvent

	// Scheduled maps an activity event's id to its ActivityTaskScheduled
	// event (itself, if it is the scheduled event).
	Scheduled map[int64]swfmodel.HistoryEvent

	// TaskEvents maps a task id to its activity events, in history order.
	TaskEvents map[string][]swfmodel.HistoryEvent

	// NewEvents is the slice of events new to this decision pass, oldest
	// first, with its DecisionTaskScheduled/Started tail stripped off by
	// the caller as needed — spec.md §4.4 step 4 only requires it end
	// with that pair, the pair itself is still present.
	NewEvents []swfmodel.HistoryEvent
}

// Reduce reduces a decision task's full event history.
func Reduce(task *swfmodel.DecisionTask) (*Reduction, error) {
	r := &Reduction{
		EventsByID: make(map[int64]swfmodel.HistoryEvent, len(task.Events)),
		Scheduled:  make(map[int64]swfmodel.HistoryEvent),
		TaskEvents: make(map[string][]swfmodel.HistoryEvent),
	}
	for _, e := range task.Events {
		r.EventsByID[e.EventID] = e
	}

	for _, e := range task.Events {
		if !e.IsActivityEvent() {
			continue
		}
		if e.EventType == swfmodel.EventActivityTaskScheduled {
			r.Scheduled[e.EventID] = e
			continue
		}
		scheduledID, _ := e.ScheduledEventID()
		scheduled, ok := r.EventsByID[scheduledID]
		if !ok || scheduled.EventType != swfmodel.EventActivityTaskScheduled {
			return nil, errs.New(errs.KindDeciderError, "event %d references unknown scheduled event %d", e.EventID, scheduledID)
		}
		r.Scheduled[e.EventID] = scheduled
	}

	for _, e := range task.Events {
		if !e.IsActivityEvent() {
			continue
		}
		scheduled := r.Scheduled[e.EventID]
		activityID := scheduled.ActivityTaskScheduled.ActivityID
		r.TaskEvents[activityID] = append(r.TaskEvents[activityID], e)
	}

	newEvents, err := sliceNewEvents(task)
	if err != nil {
		return nil, err
	}
	r.NewEvents = newEvents
	return r, nil
}

// sliceNewEvents implements spec.md §4.4 step 4.
func sliceNewEvents(task *swfmodel.DecisionTask) ([]swfmodel.HistoryEvent, error) {
	start := 0
	if task.PreviousStartedEventID != 0 {
		if idx := indexOfEventID(task.Events, task.PreviousStartedEventID); idx >= 0 {
			start = idx + 1
		}
	}
	end := indexOfEventID(task.Events, task.StartedEventID)
	if end < 0 {
		return nil, errs.New(errs.KindDeciderError, "startedEventId %d not found in history", task.StartedEventID)
	}
	end++
	if start > end {
		return nil, errs.New(errs.KindDeciderError, "previousStartedEventId %d is after startedEventId %d", task.PreviousStartedEventID, task.StartedEventID)
	}

	slice := task.Events[start:end]
	if len(slice) < 2 ||
		slice[len(slice)-2].EventType != swfmodel.EventDecisionTaskScheduled ||
		slice[len(slice)-1].EventType != swfmodel.EventDecisionTaskStarted {
		return nil, errs.New(errs.KindDeciderError, "new-events slice does not end with DecisionTaskScheduled, DecisionTaskStarted")
	}
	return slice, nil
}

func indexOfEventID(events []swfmodel.HistoryEvent, id int64) int {
	for i, e := range events {
		if e.EventID == id {
			return i
		}
	}
	return -1
}

// LastEvent returns the most recent event recorded for taskID, and whether
// any exist.
func (r *Reduction) LastEvent(taskID string) (swfmodel.HistoryEvent, bool) {
	events := r.TaskEvents[taskID]
	if len(events) == 0 {
		return swfmodel.HistoryEvent{}, false
	}
	return events[len(events)-1], true
}

// IsCompleted reports whether taskID's most recent event is
// ActivityTaskCompleted.
func (r *Reduction) IsCompleted(taskID string) bool {
	e, ok := r.LastEvent(taskID)
	return ok && e.EventType == swfmodel.EventActivityTaskCompleted
}
