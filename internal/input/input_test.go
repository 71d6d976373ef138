package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
)

func TestBuild(t *testing.T) {
	t.Run("Should produce no value for NoInput", func(t *testing.T) {
		v, err := Build(dag.NoInput{}, nil, nil)
		require.NoError(t, err)
		assert.False(t, v.Present)
	})
	t.Run("Should use a constant verbatim", func(t *testing.T) {
		v, err := Build(dag.ConstantInput{Value: float64(42)}, nil, nil)
		require.NoError(t, err)
		require.True(t, v.Present)
		assert.Equal(t, float64(42), v.Value)
	})
	t.Run("Should resolve from workflow input", func(t *testing.T) {
		wfInput := map[string]any{"spam": []any{float64(42)}, "eggs": nil}
		v, err := Build(dag.WorkflowInputRef{Path: "$.spam[0]"}, wfInput, nil)
		require.NoError(t, err)
		assert.Equal(t, float64(42), v.Value)
	})
	t.Run("Should apply a default on a missing workflow-input key", func(t *testing.T) {
		v, err := Build(dag.WorkflowInputRef{Path: "$.nope", HasDefault: true, Default: "fallback"}, map[string]any{}, nil)
		require.NoError(t, err)
		assert.Equal(t, "fallback", v.Value)
	})
	t.Run("Should fail MissingDependency for an unresolved dependency result", func(t *testing.T) {
		_, err := Build(dag.DependencyResultRef{TaskID: "foo", Path: "$"}, nil, Results{})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindMissingDependency))
	})
	t.Run("Should resolve a dependency result", func(t *testing.T) {
		results := Results{"foo": map[string]any{"a": float64(9), "b": "red"}}
		v, err := Build(dag.DependencyResultRef{TaskID: "foo", Path: "$.a"}, nil, results)
		require.NoError(t, err)
		assert.Equal(t, float64(9), v.Value)
	})
	t.Run("Should omit no-value object entries, not null them", func(t *testing.T) {
		ti := dag.ObjectInput{
			Keys: []string{"present", "absent"},
			Items: map[string]dag.TaskInput{
				"present": dag.ConstantInput{Value: float64(1)},
				"absent":  dag.NoInput{},
			},
		}
		v, err := Build(ti, nil, nil)
		require.NoError(t, err)
		obj, ok := v.Value.(map[string]any)
		require.True(t, ok)
		_, hasAbsent := obj["absent"]
		assert.False(t, hasAbsent)
		assert.Equal(t, float64(1), obj["present"])
	})
	t.Run("Should propagate InvalidPath from a malformed path", func(t *testing.T) {
		_, err := Build(dag.WorkflowInputRef{Path: "nope"}, nil, nil)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
}
