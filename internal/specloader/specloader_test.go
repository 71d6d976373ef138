package specloader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicWink/seddy/internal/dag"
	"github.com/EpicWink/seddy/internal/errs"
)

const sampleJSON = `{
  "version": "1.0",
  "workflows": [
    {
      "spec_type": "dag",
      "name": "pipeline",
      "version": "2",
      "description": "an example pipeline",
      "tasks": [
        {
          "id": "foo",
          "type": {"name": "foo-activity", "version": "1.0"},
          "input": {"type": "workflow-input", "path": "$"},
          "heartbeat": 60,
          "timeout": "NONE",
          "task_list": "eggs",
          "priority": 1
        },
        {
          "id": "bar",
          "type": {"name": "bar-activity", "version": "1.0"},
          "dependencies": ["foo"],
          "skip_if": {
            "type": "=",
            "lhs": {"type": "dependency-result", "id": "foo", "path": "$.ok"},
            "rhs": {"type": "constant", "value": false}
          }
        }
      ]
    }
  ]
}`

const sampleYAML = `
version: "1.0"
workflows:
  - spec_type: dag
    name: pipeline
    version: "2"
    tasks:
      - id: foo
        type: {name: foo-activity, version: "1.0"}
`

func TestLoad(t *testing.T) {
	t.Run("Should parse a JSON document into a built Workflow", func(t *testing.T) {
		workflows, err := Load([]byte(sampleJSON), FormatJSON)
		require.NoError(t, err)
		require.Len(t, workflows, 1)

		w := workflows[0]
		assert.Equal(t, "pipeline", w.Name)
		assert.Equal(t, "2", w.Version)
		assert.Equal(t, "an example pipeline", w.Description)
		assert.Equal(t, []string{"foo"}, w.Roots())
		assert.Equal(t, []string{"bar"}, w.Dependants("foo"))

		foo, ok := w.Task("foo")
		require.True(t, ok)
		assert.Equal(t, "foo-activity", foo.ActivityType.Name)
		assert.True(t, foo.Heartbeat.IsSet())
		assert.Equal(t, "60", foo.Heartbeat.String())
		assert.True(t, foo.Timeout.IsSet())
		assert.Equal(t, "NONE", foo.Timeout.String())
		assert.Equal(t, "eggs", foo.TaskList)
		assert.Equal(t, "1", foo.Priority)
		_, isRef := foo.Input.(dag.WorkflowInputRef)
		assert.True(t, isRef)

		bar, ok := w.Task("bar")
		require.True(t, ok)
		require.NotNil(t, bar.SkipIf)
		cmp, isCmp := bar.SkipIf.(dag.CompareCondition)
		require.True(t, isCmp)
		assert.Equal(t, dag.OpEqual, cmp.Op)
	})

	t.Run("Should parse an equivalent YAML document via the same path", func(t *testing.T) {
		workflows, err := Load([]byte(sampleYAML), FormatYAML)
		require.NoError(t, err)
		require.Len(t, workflows, 1)
		assert.Equal(t, "pipeline", workflows[0].Name)
	})

	t.Run("Should reject an unsupported major version", func(t *testing.T) {
		_, err := Load([]byte(`{"version":"2.0","workflows":[]}`), FormatJSON)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidSpec))
	})

	t.Run("Should reject a non-dag spec_type", func(t *testing.T) {
		data := `{"version":"1.0","workflows":[{"spec_type":"other","name":"n","version":"1","tasks":[]}]}`
		_, err := Load([]byte(data), FormatJSON)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidSpec))
	})

	t.Run("Should reject a cyclic dependency graph", func(t *testing.T) {
		data := `{"version":"1.0","workflows":[{"spec_type":"dag","name":"n","version":"1","tasks":[
			{"id":"a","type":{"name":"x","version":"1"},"dependencies":["b"]},
			{"id":"b","type":{"name":"x","version":"1"},"dependencies":["a"]}
		]}]}`
		_, err := Load([]byte(data), FormatJSON)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidSpec))
	})

	t.Run("Should reject a malformed timeout value", func(t *testing.T) {
		data := `{"version":"1.0","workflows":[{"spec_type":"dag","name":"n","version":"1","tasks":[
			{"id":"a","type":{"name":"x","version":"1"},"timeout":"soon"}
		]}]}`
		_, err := Load([]byte(data), FormatJSON)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidSpec))
	})
}

func TestRegistry(t *testing.T) {
	t.Run("Should load and retrieve workflows by name and version", func(t *testing.T) {
		reg, err := NewRegistry(8)
		require.NoError(t, err)

		loaded, err := reg.LoadDocument([]byte(sampleJSON), FormatJSON)
		require.NoError(t, err)
		require.Len(t, loaded, 1)

		w, ok := reg.Get("pipeline", "2")
		require.True(t, ok)
		assert.Equal(t, "pipeline", w.Name)
		assert.Equal(t, 1, reg.Len())

		_, ok = reg.Get("pipeline", "3")
		assert.False(t, ok)
	})

	t.Run("Should evict least-recently-used entries once full", func(t *testing.T) {
		reg, err := NewRegistry(1)
		require.NoError(t, err)

		_, err = reg.LoadDocument([]byte(`{"version":"1.0","workflows":[
			{"spec_type":"dag","name":"a","version":"1","tasks":[]}
		]}`), FormatJSON)
		require.NoError(t, err)

		_, err = reg.LoadDocument([]byte(`{"version":"1.0","workflows":[
			{"spec_type":"dag","name":"b","version":"1","tasks":[]}
		]}`), FormatJSON)
		require.NoError(t, err)

		assert.Equal(t, 1, reg.Len())
		_, ok := reg.Get("a", "1")
		assert.False(t, ok)
		_, ok = reg.Get("b", "1")
		assert.True(t, ok)
	})
}
