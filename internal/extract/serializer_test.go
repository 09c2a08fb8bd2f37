package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"locsync/internal/jsast"
)

func newTestSerializer() *Serializer {
	return NewSerializer([]string{"b", "br", "strong", "i"})
}

func TestSerializeKeptTagDoesNotConsumeIndex(t *testing.T) {
	// <T>Hello <b>{{name}}</b>!</T>
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "Hello "},
		&jsast.JSXElement{Name: "b", Children: []jsast.JSXChild{
			&jsast.JSXExpr{X: &jsast.ObjectLit{Props: []jsast.ObjectProp{
				{Key: "name", Value: &jsast.Ident{Name: "name"}, Shorthand: true},
			}}},
		}},
		&jsast.JSXText{Value: "!"},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "Hello <b>{{name}}</b>!", out)
}

func TestSerializeSelfClosingSpacing(t *testing.T) {
	s := newTestSerializer()

	spaced := []jsast.JSXChild{&jsast.JSXElement{Name: "br", SelfClosing: true, SpacedClose: true}}
	out, err := s.Serialize(spaced)
	require.NoError(t, err)
	assert.Equal(t, "<br />", out)

	tight := []jsast.JSXChild{&jsast.JSXElement{Name: "br", SelfClosing: true}}
	out, err = s.Serialize(tight)
	require.NoError(t, err)
	assert.Equal(t, "<br/>", out)
}

func TestSerializeNonKeptElementConsumesIndex(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "Go to "},
		&jsast.JSXElement{Name: "Link", Children: []jsast.JSXChild{
			&jsast.JSXText{Value: "settings"},
		}},
		&jsast.JSXText{Value: " now "},
		&jsast.JSXExpr{X: &jsast.Ident{Name: "user"}},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "Go to {{0}} now {{user}}", out)
}

func TestSerializeWhitespaceNormalization(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "\n      Hello\n      world\n    "},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestSerializeFormattingTextElided(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "\n  "},
		&jsast.JSXExpr{X: &jsast.Ident{Name: "count"}},
		&jsast.JSXText{Value: "\n"},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "{{count}}", out)
}

func TestSerializeExplicitSpaceExpression(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "a"},
		&jsast.JSXExpr{X: &jsast.StringLit{Value: " "}},
		&jsast.JSXText{Value: "b"},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "a b", out)
}

func TestSerializeCastStripped(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXExpr{X: &jsast.CastExpr{Arg: &jsast.Ident{Name: "total"}}},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "{{total}}", out)
}

func TestSerializeCommentElided(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXText{Value: "text"},
		&jsast.JSXExpr{},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "text", out)
}

func TestSerializeUnclassifiableIsError(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXExpr{X: &jsast.UnknownExpr{}},
	}

	_, err := newTestSerializer().Serialize(children)
	assert.Error(t, err)
}

func TestSerializeIndicesStableAcrossKeptTags(t *testing.T) {
	children := []jsast.JSXChild{
		&jsast.JSXExpr{X: &jsast.CondExpr{Cons: &jsast.StringLit{Value: "a"}, Alt: &jsast.StringLit{Value: "b"}}},
		&jsast.JSXElement{Name: "strong", Children: []jsast.JSXChild{
			&jsast.JSXExpr{X: &jsast.CallExpr{Callee: &jsast.Ident{Name: "fmt"}}},
		}},
		&jsast.JSXElement{Name: "Widget"},
	}

	out, err := newTestSerializer().Serialize(children)
	require.NoError(t, err)
	assert.Equal(t, "{{0}}<strong>{{1}}</strong>{{2}}", out)
}
