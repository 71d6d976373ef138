package dag

import (
	"encoding/json"
	"sort"

	"github.com/EpicWink/seddy/internal/errs"
)

// taskInputWire is the on-the-wire shape shared by every TaskInput tag
// (spec.md §6); unused fields per tag are simply left zero.
type taskInputWire struct {
	Type    string                    `json:"type"`
	Value   json.RawMessage           `json:"value,omitempty"`
	Path    string                    `json:"path,omitempty"`
	Default json.RawMessage           `json:"default,omitempty"`
	ID      string                    `json:"id,omitempty"`
	Items   map[string]json.RawMessage `json:"items,omitempty"`
}

// DecodeTaskInput decodes one TaskInput node from its §6 wire shape.
func DecodeTaskInput(data json.RawMessage) (TaskInput, error) {
	if len(data) == 0 || string(data) == "null" {
		return NoInput{}, nil
	}
	var w taskInputWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding task input")
	}
	switch w.Type {
	case "none":
		return NoInput{}, nil
	case "constant":
		var v any
		if len(w.Value) > 0 {
			if err := json.Unmarshal(w.Value, &v); err != nil {
				return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding constant input value")
			}
		}
		return ConstantInput{Value: v}, nil
	case "workflow-input":
		ref := WorkflowInputRef{Path: w.Path}
		if ref.Path == "" {
			ref.Path = "$"
		}
		if len(w.Default) > 0 {
			if err := json.Unmarshal(w.Default, &ref.Default); err != nil {
				return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding workflow-input default")
			}
			ref.HasDefault = true
		}
		return ref, nil
	case "dependency-result":
		if w.ID == "" {
			return nil, errs.New(errs.KindInvalidSpec, "dependency-result input missing %q", "id")
		}
		ref := DependencyResultRef{TaskID: w.ID, Path: w.Path}
		if ref.Path == "" {
			ref.Path = "$"
		}
		if len(w.Default) > 0 {
			if err := json.Unmarshal(w.Default, &ref.Default); err != nil {
				return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding dependency-result default")
			}
			ref.HasDefault = true
		}
		return ref, nil
	case "object":
		obj := ObjectInput{Items: make(map[string]TaskInput, len(w.Items))}
		keys := make([]string, 0, len(w.Items))
		for k := range w.Items {
			keys = append(keys, k)
		}
		sort.Strings(keys) // encoding/json gives no declaration order for maps; stabilize it
		for _, k := range keys {
			item, err := DecodeTaskInput(w.Items[k])
			if err != nil {
				return nil, err
			}
			obj.Items[k] = item
			obj.Keys = append(obj.Keys, k)
		}
		return obj, nil
	default:
		return nil, errs.New(errs.KindInvalidSpec, "unknown task input type %q", w.Type)
	}
}

// conditionWire is the on-the-wire shape shared by every Condition tag.
type conditionWire struct {
	Type  string          `json:"type"`
	LHS   json.RawMessage `json:"lhs,omitempty"`
	RHS   json.RawMessage `json:"rhs,omitempty"`
	Value json.RawMessage `json:"value,omitempty"`
}

// DecodeCondition decodes one Condition node from its §6 wire shape.
func DecodeCondition(data json.RawMessage) (Condition, error) {
	var w conditionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, errs.Wrap(errs.KindInvalidSpec, err, "decoding condition")
	}
	switch CompareOp(w.Type) {
	case OpEqual, OpNotEqual, OpLessThan, OpLessOrEqual, OpIn:
		lhs, err := DecodeTaskInput(w.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := DecodeTaskInput(w.RHS)
		if err != nil {
			return nil, err
		}
		return CompareCondition{Op: CompareOp(w.Type), LHS: lhs, RHS: rhs}, nil
	}
	switch LogicalOp(w.Type) {
	case OpAnd, OpOr:
		lhs, err := DecodeCondition(w.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := DecodeCondition(w.RHS)
		if err != nil {
			return nil, err
		}
		return LogicalCondition{Op: LogicalOp(w.Type), LHS: lhs, RHS: rhs}, nil
	}
	if w.Type == "not" {
		v, err := DecodeCondition(w.Value)
		if err != nil {
			return nil, err
		}
		return NotCondition{Value: v}, nil
	}
	return nil, errs.New(errs.KindInvalidSpec, "unknown condition type %q", w.Type)
}
