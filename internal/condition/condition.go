// Package condition implements the Condition Evaluator (spec.md §4.3):
// comparison, logical and unary nodes over TaskInput-resolved values.
package condition

import (
	"encoding/json"
	"strings"

	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
	"github.com/EpicWink/seddy/internal/input"
)

// Evaluate evaluates c against workflowInput and results (the same
// arguments the Input Builder takes — both operands of a comparison are
// resolved through it).
func Evaluate(c dag.Condition, workflowInput any, results input.Results) (bool, error) {
	switch v := c.(type) {
	case dag.CompareCondition:
		lhs, err := input.Build(v.LHS, workflowInput, results)
		if err != nil {
			return false, err
		}
		rhs, err := input.Build(v.RHS, workflowInput, results)
		if err != nil {
			return false, err
		}
		return compare(v.Op, lhs.Value, rhs.Value)
	case dag.LogicalCondition:
		lhs, err := Evaluate(v.LHS, workflowInput, results)
		if err != nil {
			return false, err
		}
		rhs, err := Evaluate(v.RHS, workflowInput, results)
		if err != nil {
			return false, err
		}
		switch v.Op {
		case dag.OpAnd:
			return lhs && rhs, nil
		case dag.OpOr:
			return lhs || rhs, nil
		}
		return false, errs.New(errs.KindInvalidSpec, "unknown logical operator %q", v.Op)
	case dag.NotCondition:
		val, err := Evaluate(v.Value, workflowInput, results)
		if err != nil {
			return false, err
		}
		return !val, nil
	default:
		return false, errs.New(errs.KindInvalidSpec, "unknown condition type %T", c)
	}
}

func compare(op dag.CompareOp, lhs, rhs any) (bool, error) {
	switch op {
	case dag.OpEqual:
		return jsonEqual(lhs, rhs), nil
	case dag.OpNotEqual:
		return !jsonEqual(lhs, rhs), nil
	case dag.OpLessThan, dag.OpLessOrEqual:
		return ordered(op, lhs, rhs)
	case dag.OpIn:
		return membership(lhs, rhs)
	default:
		return false, errs.New(errs.KindInvalidSpec, "unknown comparison operator %q", op)
	}
}

// jsonEqual is structural JSON equality (spec.md §4.3).
func jsonEqual(a, b any) bool {
	la, lb := json.RawMessage(nil), json.RawMessage(nil)
	var err error
	if la, err = json.Marshal(a); err != nil {
		return false
	}
	if lb, err = json.Marshal(b); err != nil {
		return false
	}
	var na, nb any
	if json.Unmarshal(la, &na) != nil || json.Unmarshal(lb, &nb) != nil {
		return false
	}
	return deepEqual(na, nb)
}

func deepEqual(a, b any) bool {
	switch av := a.(type) {
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !deepEqual(v, bvv) {
				return false
			}
		}
		return true
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !deepEqual(av[i], bv[i]) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func ordered(op dag.CompareOp, lhs, rhs any) (bool, error) {
	switch l := lhs.(type) {
	case float64:
		r, ok := rhs.(float64)
		if !ok {
			return false, errs.New(errs.KindTypeMismatch, "cannot order %T and %T", lhs, rhs)
		}
		if op == dag.OpLessThan {
			return l < r, nil
		}
		return l <= r, nil
	case string:
		r, ok := rhs.(string)
		if !ok {
			return false, errs.New(errs.KindTypeMismatch, "cannot order %T and %T", lhs, rhs)
		}
		if op == dag.OpLessThan {
			return l < r, nil
		}
		return l <= r, nil
	default:
		return false, errs.New(errs.KindTypeMismatch, "type %T does not support ordering", lhs)
	}
}

// membership implements `in`: LHS is an element of an array RHS, a key of
// an object RHS, or a substring of a string RHS.
func membership(lhs, rhs any) (bool, error) {
	switch r := rhs.(type) {
	case []any:
		for _, elem := range r {
			if jsonEqual(lhs, elem) {
				return true, nil
			}
		}
		return false, nil
	case map[string]any:
		key, ok := lhs.(string)
		if !ok {
			return false, errs.New(errs.KindTypeMismatch, "membership key must be a string, got %T", lhs)
		}
		_, ok = r[key]
		return ok, nil
	case string:
		sub, ok := lhs.(string)
		if !ok {
			return false, errs.New(errs.KindTypeMismatch, "substring operand must be a string, got %T", lhs)
		}
		return strings.Contains(r, sub), nil
	default:
		return false, errs.New(errs.KindTypeMismatch, "type %T does not support membership", rhs)
	}
}
