package load

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("valid schema keeps declaration order", func(t *testing.T) {
		classes, err := Load("testdata/valid.yml")
		require.NoError(t, err)
		require.Len(t, classes, 4)

		names := make([]string, 0, len(classes))
		for _, c := range classes {
			names = append(names, c.Name)
		}
		assert.Equal(t, []string{"Element", "Type", "Expr", "Call"}, names)

		element := classes[0]
		assert.True(t, element.HasPragma("qltest_skip"))
		assert.Equal(t, map[string]bool{"Type": true, "Expr": true}, element.Derived)

		call := classes[3]
		assert.Equal(t, []string{"Expr"}, call.Bases)
		assert.Equal(t, "expr", call.Dir)
		assert.Empty(t, call.Derived)
		require.Len(t, call.Properties, 4)

		assert.Equal(t, &Property{Name: "name", Type: "string", Kind: Single}, call.Properties[0])
		assert.Equal(t, &Property{Name: "is_implicit", Kind: Predicate}, call.Properties[1])
		assert.Equal(t, &Property{Name: "labels", Type: "string", Kind: Repeated, Pragmas: []string{"qltest_skip"}}, call.Properties[2])
		assert.Equal(t, &Property{Name: "arguments", Type: "Expr", Kind: Repeated, Child: true}, call.Properties[3])
	})

	t.Run("optional property", func(t *testing.T) {
		classes, err := Load("testdata/valid.yml")
		require.NoError(t, err)
		expr := classes[2]
		require.Len(t, expr.Properties, 1)
		assert.Equal(t, Optional, expr.Properties[0].Kind)
		assert.Equal(t, "Type", expr.Properties[0].Type)
	})

	t.Run("cycle is rejected", func(t *testing.T) {
		_, err := Load("testdata/cycle.yml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.Contains(t, err.Error(), "inheritance cycle")
	})

	t.Run("unknown base is rejected", func(t *testing.T) {
		_, err := Load("testdata/unknown_base.yml")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.Contains(t, err.Error(), `unknown base class "Missing"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load("testdata/nope.yml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read schema")
	})
}

func TestParse(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		classes, err := Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, classes)
	})

	t.Run("null class body", func(t *testing.T) {
		classes, err := Parse([]byte("Base:\nLeaf:\n  _extends: Base\n"))
		require.NoError(t, err)
		require.Len(t, classes, 2)
		assert.Empty(t, classes[0].Properties)
		assert.True(t, classes[0].Derived["Leaf"])
	})

	t.Run("top level reserved keys are ignored", func(t *testing.T) {
		classes, err := Parse([]byte("_includes: [other.yml]\nBase: {}\n"))
		require.NoError(t, err)
		require.Len(t, classes, 1)
		assert.Equal(t, "Base", classes[0].Name)
	})

	t.Run("duplicate property", func(t *testing.T) {
		_, err := Parse([]byte("Leaf:\n  name: string\n  _children:\n    name: Expr\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate property")
	})

	t.Run("duplicate class", func(t *testing.T) {
		err := Link([]*Class{{Name: "A"}, {Name: "A"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate class")
	})

	t.Run("unknown reserved class key", func(t *testing.T) {
		_, err := Parse([]byte("Leaf:\n  _bogus: 1\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown key "_bogus"`)
	})

	t.Run("malformed type", func(t *testing.T) {
		_, err := Parse([]byte("Leaf:\n  items: Item*?\n"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidSchema))
	})

	t.Run("root must be a mapping", func(t *testing.T) {
		_, err := Parse([]byte("- A\n- B\n"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected a mapping of classes")
	})
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "single", Single.String())
	assert.Equal(t, "optional", Optional.String())
	assert.Equal(t, "repeated", Repeated.String())
	assert.Equal(t, "predicate", Predicate.String())
	assert.Equal(t, "Kind(9)", Kind(9).String())
}
