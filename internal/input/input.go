// Package input implements the Input Builder (spec.md §4.2): materializing
// a JSON value (or "no value") from a TaskInput tree, the workflow's own
// input document, and a map of upstream task results.
package input

import (
	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/pathexpr"
)

// Value is the result of building one TaskInput: either a JSON value, or
// "no value" (Present == false), per spec.md §9's design note to use an
// explicit option rather than a sentinel object.
type Value struct {
	Present bool
	Value   any
}

// Results maps a task id to its parsed (JSON-decoded) result, for
// DependencyResult resolution. A task with no entry has not completed (or
// was skipped); a task that completed without a result maps to nil.
type Results map[string]any

// Build evaluates a TaskInput tree against workflowInput (the execution's
// own parsed input, or nil) and results (parsed upstream results).
func Build(ti dag.TaskInput, workflowInput any, results Results) (Value, error) {
	switch v := ti.(type) {
	case nil, dag.NoInput:
		return Value{}, nil
	case dag.ConstantInput:
		return Value{Present: true, Value: v.Value}, nil
	case dag.WorkflowInputRef:
		return resolvePath(v.Path, workflowInput, v.HasDefault, v.Default)
	case dag.DependencyResultRef:
		result, ok := results[v.TaskID]
		if !ok {
			return Value{}, errs.New(errs.KindMissingDependency, "no parsed result for dependency %q", v.TaskID)
		}
		return resolvePath(v.Path, result, v.HasDefault, v.Default)
	case dag.ObjectInput:
		obj := make(map[string]any, len(v.Keys))
		for _, key := range v.Keys {
			item, err := Build(v.Items[key], workflowInput, results)
			if err != nil {
				return Value{}, err
			}
			if item.Present {
				obj[key] = item.Value
			}
		}
		return Value{Present: true, Value: obj}, nil
	default:
		return Value{}, errs.New(errs.KindInvalidSpec, "unknown task input type %T", ti)
	}
}

func resolvePath(path string, doc any, hasDefault bool, def any) (Value, error) {
	p, err := pathexpr.Parse(path)
	if err != nil {
		return Value{}, err
	}
	v, err := p.Resolve(doc, hasDefault, def)
	if err != nil {
		return Value{}, err
	}
	return Value{Present: true, Value: v}, nil
}
