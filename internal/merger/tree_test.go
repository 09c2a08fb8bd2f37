package merger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeSetCreatesNestedPath(t *testing.T) {
	tr := NewTree()
	tr.Set([]string{"a", "b", "c"}, ".", StringNode("v"))

	sub, ok := tr.Subtree("a")
	require.True(t, ok)

	sub, ok = sub.Subtree("b")
	require.True(t, ok)

	n, ok := sub.Get("c")
	require.True(t, ok)
	assert.Equal(t, "v", n.Str)
}

func TestTreeSetReusesFlatLiteral(t *testing.T) {
	// A flat dotted key already on disk keeps its shape.
	tr := NewTree()
	tr.Append("a.b", StringNode("old"))

	tr.Set([]string{"a", "b"}, ".", StringNode("new"))

	require.Equal(t, 1, tr.Len())
	n, ok := tr.Get("a.b")
	require.True(t, ok)
	assert.Equal(t, "new", n.Str)
}

func TestTreeSetLiteralBesideSubtree(t *testing.T) {
	tr := NewTree()
	tr.Set([]string{"a", "b"}, ".", StringNode("nested"))
	tr.Set([]string{"a"}, ".", StringNode("flat"))

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, KindTree, tr.Entries[0].Node.Kind)
	assert.Equal(t, "flat", tr.Entries[1].Node.Str)

	flats := tr.Flatten(".")
	require.Len(t, flats, 2)
	assert.Equal(t, "a.b", flats[0].Path)
	assert.Equal(t, "a", flats[1].Path)
}

func TestTreeSetOverwritesLeaf(t *testing.T) {
	tr := NewTree()
	tr.Set([]string{"k"}, ".", StringNode("one"))
	tr.Set([]string{"k"}, ".", StringNode("two"))

	require.Equal(t, 1, tr.Len())
	n, _ := tr.Get("k")
	assert.Equal(t, "two", n.Str)
}

func TestTreeFlattenDocumentOrder(t *testing.T) {
	tr := NewTree()
	tr.Set([]string{"z"}, ".", StringNode("1"))
	tr.Set([]string{"a", "y"}, ".", StringNode("2"))
	tr.Set([]string{"a", "x"}, ".", StringNode("3"))

	flats := tr.Flatten(".")
	require.Len(t, flats, 3)
	assert.Equal(t, "z", flats[0].Path)
	assert.Equal(t, "a.y", flats[1].Path)
	assert.Equal(t, "a.x", flats[2].Path)
}

func TestTreeSortRecursive(t *testing.T) {
	tr := NewTree()
	tr.Set([]string{"b", "two"}, ".", StringNode("2"))
	tr.Set([]string{"b", "one"}, ".", StringNode("1"))
	tr.Set([]string{"a"}, ".", StringNode("0"))

	tr.Sort(func(a, b string) bool { return a < b })

	assert.Equal(t, "a", tr.Entries[0].Key)
	assert.Equal(t, "b", tr.Entries[1].Key)

	sub, ok := tr.Subtree("b")
	require.True(t, ok)
	assert.Equal(t, "one", sub.Entries[0].Key)
	assert.Equal(t, "two", sub.Entries[1].Key)
}

func TestTreeEqual(t *testing.T) {
	build := func() *Tree {
		tr := NewTree()
		tr.Set([]string{"a"}, ".", StringNode("1"))
		tr.Set([]string{"b", "c"}, ".", StringNode("2"))
		tr.Append("raw", RawNode(float64(7)))

		return tr
	}

	assert.True(t, Equal(build(), build()))
	assert.True(t, Equal(nil, NewTree()))

	reordered := NewTree()
	reordered.Set([]string{"b", "c"}, ".", StringNode("2"))
	reordered.Set([]string{"a"}, ".", StringNode("1"))
	reordered.Append("raw", RawNode(float64(7)))
	assert.False(t, Equal(build(), reordered), "entry order is significant")

	changed := build()
	changed.Set([]string{"a"}, ".", StringNode("other"))
	assert.False(t, Equal(build(), changed))
}
