package dag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicWink/seddy/internal/errs"
)

func simpleTasks() []Task {
	return []Task{
		{ID: "foo"},
		{ID: "bar", Dependencies: []string{"foo"}},
		{ID: "yay", Dependencies: []string{"foo"}},
		{ID: "tin", Dependencies: []string{"bar", "yay"}},
	}
}

func TestBuild(t *testing.T) {
	t.Run("Should compute roots and dependants", func(t *testing.T) {
		w, err := Build("wf", "1.0", "", simpleTasks())
		require.NoError(t, err)
		assert.Equal(t, []string{"foo"}, w.Roots())
		assert.ElementsMatch(t, []string{"bar", "yay"}, w.Dependants("foo"))
		assert.Equal(t, []string{"tin"}, w.Dependants("bar"))
		assert.Equal(t, []string{"tin"}, w.Dependants("yay"))
		assert.Empty(t, w.Dependants("tin"))
	})
	t.Run("Should reject a duplicate task id", func(t *testing.T) {
		_, err := Build("wf", "1.0", "", []Task{{ID: "foo"}, {ID: "foo"}})
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidSpec))
	})
	t.Run("Should reject a self-loop", func(t *testing.T) {
		_, err := Build("wf", "1.0", "", []Task{{ID: "foo", Dependencies: []string{"foo"}}})
		require.Error(t, err)
	})
	t.Run("Should reject a dependency on an unknown task", func(t *testing.T) {
		_, err := Build("wf", "1.0", "", []Task{{ID: "foo", Dependencies: []string{"nope"}}})
		require.Error(t, err)
	})
	t.Run("Should reject a cycle", func(t *testing.T) {
		tasks := []Task{
			{ID: "a", Dependencies: []string{"b"}},
			{ID: "b", Dependencies: []string{"a"}},
		}
		_, err := Build("wf", "1.0", "", tasks)
		require.Error(t, err)
	})
	for _, bad := range []string{"has:colon", "has/slash", "has|pipe", "hasarnref", "bad\x01char", ""} {
		bad := bad
		t.Run("Should reject illegal task id "+bad, func(t *testing.T) {
			_, err := Build("wf", "1.0", "", []Task{{ID: bad}})
			require.Error(t, err)
			assert.True(t, errs.Is(err, errs.KindInvalidSpec))
		})
	}
}

func TestTimeout(t *testing.T) {
	t.Run("Should render seconds as a decimal string", func(t *testing.T) {
		assert.Equal(t, "86400", NewTimeoutSeconds(86400).String())
	})
	t.Run("Should render NONE literally", func(t *testing.T) {
		assert.Equal(t, "NONE", NewTimeoutNone().String())
	})
	t.Run("Should report unset", func(t *testing.T) {
		assert.False(t, NoTimeout().IsSet())
		assert.True(t, NewTimeoutSeconds(1).IsSet())
	})
}
