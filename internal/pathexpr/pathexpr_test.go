package pathexpr

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EpicWink/seddy/internal/errs"
)

func decode(t *testing.T, s string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(s), &v))
	return v
}

func TestParse(t *testing.T) {
	t.Run("Should parse root path", func(t *testing.T) {
		p, err := Parse("$")
		require.NoError(t, err)
		assert.Equal(t, "$", p.String())
	})
	t.Run("Should parse dotted keys and indices", func(t *testing.T) {
		_, err := Parse("$.foo[0].bar_baz[12]")
		require.NoError(t, err)
	})
	t.Run("Should reject a path missing the leading dollar", func(t *testing.T) {
		_, err := Parse("foo.bar")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
	t.Run("Should reject an empty key", func(t *testing.T) {
		_, err := Parse("$.")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
	t.Run("Should reject a stray separator", func(t *testing.T) {
		_, err := Parse("$..foo")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
	t.Run("Should reject an unclosed bracket", func(t *testing.T) {
		_, err := Parse("$[0")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
	t.Run("Should reject an illegal character", func(t *testing.T) {
		_, err := Parse("$.foo-bar")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
	t.Run("Should reject a non-numeric index", func(t *testing.T) {
		_, err := Parse("$[x]")
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindInvalidPath))
	})
}

func TestPath_Resolve(t *testing.T) {
	doc := decode(t, `{"spam":[42, {"eggs": null}], "eggs": null}`)

	t.Run("Should resolve the root", func(t *testing.T) {
		p, err := Parse("$")
		require.NoError(t, err)
		v, err := p.Resolve(doc, false, nil)
		require.NoError(t, err)
		assert.Equal(t, doc, v)
	})
	t.Run("Should resolve a key then an index", func(t *testing.T) {
		p, err := Parse("$.spam[0]")
		require.NoError(t, err)
		v, err := p.Resolve(doc, false, nil)
		require.NoError(t, err)
		assert.Equal(t, float64(42), v)
	})
	t.Run("Should resolve a nested key", func(t *testing.T) {
		p, err := Parse("$.spam[1].eggs")
		require.NoError(t, err)
		v, err := p.Resolve(doc, false, nil)
		require.NoError(t, err)
		assert.Nil(t, v)
	})
	t.Run("Should return MissingKey for an absent object key with no default", func(t *testing.T) {
		p, err := Parse("$.nope")
		require.NoError(t, err)
		_, err = p.Resolve(doc, false, nil)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindMissingKey))
	})
	t.Run("Should return the default for an absent key when supplied", func(t *testing.T) {
		p, err := Parse("$.nope")
		require.NoError(t, err)
		v, err := p.Resolve(doc, true, "fallback")
		require.NoError(t, err)
		assert.Equal(t, "fallback", v)
	})
	t.Run("Should return MissingKey for an out-of-range index", func(t *testing.T) {
		p, err := Parse("$.spam[9]")
		require.NoError(t, err)
		_, err = p.Resolve(doc, false, nil)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindMissingKey))
	})
	t.Run("Should return MissingKey when indexing a non-array", func(t *testing.T) {
		p, err := Parse("$.eggs[0]")
		require.NoError(t, err)
		_, err = p.Resolve(doc, false, nil)
		require.Error(t, err)
		assert.True(t, errs.Is(err, errs.KindMissingKey))
	})

	t.Run("Should round-trip a written value (property 6)", func(t *testing.T) {
		t.Run("simple key", func(t *testing.T) {
			p, err := Parse("$.a")
			require.NoError(t, err)
			doc := map[string]any{"a": "hello"}
			got, err := p.Resolve(doc, false, nil)
			require.NoError(t, err)
			assert.Equal(t, "hello", got)
		})
		t.Run("nested key", func(t *testing.T) {
			p, err := Parse("$.a.b")
			require.NoError(t, err)
			doc := map[string]any{"a": map[string]any{"b": float64(3)}}
			got, err := p.Resolve(doc, false, nil)
			require.NoError(t, err)
			assert.Equal(t, float64(3), got)
		})
		t.Run("key then index", func(t *testing.T) {
			p, err := Parse("$.list[2]")
			require.NoError(t, err)
			doc := map[string]any{"list": []any{nil, nil, true}}
			got, err := p.Resolve(doc, false, nil)
			require.NoError(t, err)
			assert.Equal(t, true, got)
		})
	})
}
