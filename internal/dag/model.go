// Package dag is the DAG Model (spec.md §3): the typed representation of a
// DAG-type workflow and its precomputed dependants/roots index.
package dag

import (
	"strconv"
	"strings"

	"github.com/EpicWink/seddy/internal/errs"
)

// ActivityType identifies an activity's (name, version) pair.
type ActivityType struct {
	Name    string
	Version string
}

// Timeout is an integer-seconds timeout, or the literal "NONE", which is
// sent to the service verbatim (spec.md §3). Only NoTimeout omits the
// attribute.
type Timeout struct {
	set     bool
	none    bool
	seconds int
}

// NoTimeout reports no timeout was configured at all (attribute absent).
func NoTimeout() Timeout { return Timeout{} }

// NewTimeoutSeconds builds a Timeout of N seconds.
func NewTimeoutSeconds(n int) Timeout { return Timeout{set: true, seconds: n} }

// NewTimeoutNone builds the literal "NONE" timeout.
func NewTimeoutNone() Timeout { return Timeout{set: true, none: true} }

// IsSet reports whether this task defines the attribute at all.
func (t Timeout) IsSet() bool { return t.set }

// String renders the decimal-string form the service expects, or "NONE".
func (t Timeout) String() string {
	if t.none {
		return "NONE"
	}
	return strconv.Itoa(t.seconds)
}

// Task is one node of a workflow DAG (spec.md §3).
type Task struct {
	ID           string
	ActivityType ActivityType
	Input        TaskInput // nil means NoInput
	Heartbeat    Timeout
	Timeout      Timeout
	TaskList     string // "" means unset
	Priority     string // "" means unset; kept as the service's decimal-string form
	Dependencies []string
	SkipIf       Condition // nil means no skip_if
}

// Workflow is a DAG-type workflow specification (spec.md §3). Identity is
// (Name, Version); a Workflow is immutable once built.
type Workflow struct {
	Name        string
	Version     string
	Description string
	Tasks       []Task

	byID       map[string]*Task
	dependants map[string][]string // task id | "" (ROOT) -> dependant ids, declaration order
	roots      []string
}

// RootKey is the dependants-index key collecting tasks with no
// dependencies (spec.md §3 "Dependants index").
const RootKey = ""

// validateTaskID rejects an empty id and any id containing a control
// character or one of the forbidden substrings (spec.md §3).
func validateTaskID(id string) error {
	if id == "" {
		return errs.New(errs.KindInvalidSpec, "task id must not be empty")
	}
	for _, r := range id {
		if r < 0x20 || r == 0x7f {
			return errs.New(errs.KindInvalidSpec, "task id %q contains a control character", id)
		}
	}
	for _, bad := range []string{":", "/", "|", "arn"} {
		if strings.Contains(id, bad) {
			return errs.New(errs.KindInvalidSpec, "task id %q must not contain %q", id, bad)
		}
	}
	return nil
}

// Build validates a Workflow's task list (unique ids, valid id characters,
// existing and acyclic dependencies, no self-loops) and precomputes the
// dependants index and roots. It must be called once, after decoding, to
// obtain a usable *Workflow; the zero-value Workflow returned by a decoder
// is not ready for use until this succeeds.
func Build(name, version, description string, tasks []Task) (*Workflow, error) {
	w := &Workflow{
		Name:        name,
		Version:     version,
		Description: description,
		Tasks:       tasks,
		byID:        make(map[string]*Task, len(tasks)),
		dependants:  make(map[string][]string),
	}
	for i := range w.Tasks {
		t := &w.Tasks[i]
		if err := validateTaskID(t.ID); err != nil {
			return nil, err
		}
		if _, dup := w.byID[t.ID]; dup {
			return nil, errs.New(errs.KindInvalidSpec, "duplicate task id %q", t.ID)
		}
		w.byID[t.ID] = t
	}
	for i := range w.Tasks {
		t := &w.Tasks[i]
		for _, dep := range t.Dependencies {
			if dep == t.ID {
				return nil, errs.New(errs.KindInvalidSpec, "task %q depends on itself", t.ID)
			}
			if _, ok := w.byID[dep]; !ok {
				return nil, errs.New(errs.KindInvalidSpec, "task %q depends on unknown task %q", t.ID, dep)
			}
		}
	}
	if err := checkAcyclic(w.Tasks); err != nil {
		return nil, err
	}
	for i := range w.Tasks {
		t := &w.Tasks[i]
		if len(t.Dependencies) == 0 {
			w.roots = append(w.roots, t.ID)
			w.dependants[RootKey] = append(w.dependants[RootKey], t.ID)
			continue
		}
		for _, dep := range t.Dependencies {
			w.dependants[dep] = append(w.dependants[dep], t.ID)
		}
	}
	return w, nil
}

func checkAcyclic(tasks []Task) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	byID := make(map[string]*Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}
	color := make(map[string]int, len(tasks))
	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case gray:
			return errs.New(errs.KindInvalidSpec, "dependency graph has a cycle through task %q", id)
		case black:
			return nil
		}
		color[id] = gray
		for _, dep := range byID[id].Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}
	for i := range tasks {
		if err := visit(tasks[i].ID); err != nil {
			return err
		}
	}
	return nil
}

// Task looks up a task by id.
func (w *Workflow) Task(id string) (*Task, bool) {
	t, ok := w.byID[id]
	return t, ok
}

// Roots returns task ids with no dependencies, in declaration order.
func (w *Workflow) Roots() []string { return w.roots }

// Dependants returns the dependants of task id (or of RootKey for roots),
// in declaration order.
func (w *Workflow) Dependants(id string) []string { return w.dependants[id] }
