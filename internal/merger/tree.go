package merger

import (
	"reflect"
	"sort"
	"strings"
)

// Kind discriminates the value stored at a tree entry.
type Kind int

const (
	// KindString is a translatable string leaf.
	KindString Kind = iota
	// KindTree is a nested mapping.
	KindTree
	// KindRaw is a non-string, non-mapping leaf (number, bool, array,
	// null) carried through verbatim.
	KindRaw
)

// Node is one stored value.
type Node struct {
	Kind Kind
	Str  string
	Tree *Tree
	Raw  any
}

// Entry is one key/value pair. Entries with the same key may coexist:
// a flat literal segment can sit alongside a nested object of the same
// name when a key collision demotes one of them.
type Entry struct {
	Key  string
	Node Node
}

// Tree is an ordered translation mapping. Order is document order when
// decoded from disk and insertion order when built, until Sort runs.
type Tree struct {
	Entries []Entry
}

func NewTree() *Tree { return &Tree{} }

func StringNode(s string) Node { return Node{Kind: KindString, Str: s} }

func TreeNode(t *Tree) Node { return Node{Kind: KindTree, Tree: t} }

func RawNode(v any) Node { return Node{Kind: KindRaw, Raw: v} }

// Append adds an entry without any collision handling.
func (t *Tree) Append(key string, n Node) {
	t.Entries = append(t.Entries, Entry{Key: key, Node: n})
}

// Get returns the first entry stored under key.
func (t *Tree) Get(key string) (Node, bool) {
	for _, e := range t.Entries {
		if e.Key == key {
			return e.Node, true
		}
	}

	return Node{}, false
}

// Subtree returns the first nested mapping stored under key.
func (t *Tree) Subtree(key string) (*Tree, bool) {
	for _, e := range t.Entries {
		if e.Key == key && e.Node.Kind == KindTree {
			return e.Node.Tree, true
		}
	}

	return nil, false
}

func (t *Tree) Len() int { return len(t.Entries) }

// Set stores n at the segment path, creating intermediate mappings.
// Collisions never drop data: a leaf blocking a descent keeps its place
// and a sibling mapping is created under the same name, and a mapping
// occupying the final segment gains a sibling literal entry. A literal
// entry whose key equals the joined remaining path (a flat dotted key
// already present in the file) is reused instead of being re-nested.
func (t *Tree) Set(path []string, sep string, n Node) {
	if len(path) == 0 {
		return
	}

	if len(path) > 1 && sep != "" {
		flat := strings.Join(path, sep)
		for i, e := range t.Entries {
			if e.Key == flat && e.Node.Kind != KindTree {
				t.Entries[i].Node = n
				return
			}
		}
	}

	seg := path[0]

	if len(path) == 1 {
		for i, e := range t.Entries {
			if e.Key == seg {
				if e.Node.Kind == KindTree {
					// Nested wins the name; store the literal beside it.
					t.Append(seg, n)
					return
				}

				t.Entries[i].Node = n
				return
			}
		}

		t.Append(seg, n)
		return
	}

	if sub, ok := t.Subtree(seg); ok {
		sub.Set(path[1:], sep, n)
		return
	}

	sub := NewTree()
	t.Append(seg, TreeNode(sub))
	sub.Set(path[1:], sep, n)
}

// Flat is one flattened leaf.
type Flat struct {
	Path string
	Node Node
}

// Flatten lists every leaf in document order, joining segments with
// sep. Coexisting duplicate names yield duplicate paths; callers that
// build lookup maps keep the first.
func (t *Tree) Flatten(sep string) []Flat {
	var out []Flat
	t.flatten("", sep, &out)

	return out
}

func (t *Tree) flatten(prefix, sep string, out *[]Flat) {
	for _, e := range t.Entries {
		path := e.Key
		if prefix != "" {
			path = prefix + sep + path
		}

		if e.Node.Kind == KindTree {
			e.Node.Tree.flatten(path, sep, out)
			continue
		}

		*out = append(*out, Flat{Path: path, Node: e.Node})
	}
}

// Sort orders entries with less at every nesting level. The sort is
// stable so coexisting duplicate names keep their relative order.
func (t *Tree) Sort(less func(a, b string) bool) {
	sort.SliceStable(t.Entries, func(i, j int) bool {
		return less(t.Entries[i].Key, t.Entries[j].Key)
	})

	for _, e := range t.Entries {
		if e.Node.Kind == KindTree {
			e.Node.Tree.Sort(less)
		}
	}
}

// Equal reports structural equality including entry order, which is
// what a deterministic serializer would compare byte-wise.
func Equal(a, b *Tree) bool {
	if a == nil {
		a = &Tree{}
	}

	if b == nil {
		b = &Tree{}
	}

	if len(a.Entries) != len(b.Entries) {
		return false
	}

	for i := range a.Entries {
		ea, eb := a.Entries[i], b.Entries[i]
		if ea.Key != eb.Key || ea.Node.Kind != eb.Node.Kind {
			return false
		}

		switch ea.Node.Kind {
		case KindString:
			if ea.Node.Str != eb.Node.Str {
				return false
			}

		case KindTree:
			if !Equal(ea.Node.Tree, eb.Node.Tree) {
				return false
			}

		case KindRaw:
			if !reflect.DeepEqual(ea.Node.Raw, eb.Node.Raw) {
				return false
			}
		}
	}

	return true
}
