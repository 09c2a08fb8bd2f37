package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"locsync/internal/jsast"
)

// Serializer converts a markup component's children into the single
// template string the runtime would produce: kept inline tags re-emitted
// literally, every other dynamic child replaced by a numbered
// placeholder. Placeholder indices advance in document order and are
// unaffected by elided whitespace, kept tags, or cast wrappers.
type Serializer struct {
	KeepTags map[string]bool
}

// NewSerializer builds a Serializer keeping the given inline tags.
func NewSerializer(keepTags []string) *Serializer {
	keep := make(map[string]bool, len(keepTags))
	for _, t := range keepTags {
		keep[t] = true
	}

	return &Serializer{KeepTags: keep}
}

// Serialize walks children in document order and returns the template
// string. Failing to classify a child is an error; there is no silent
// fallback placeholder.
func (s *Serializer) Serialize(children []jsast.JSXChild) (string, error) {
	var b strings.Builder

	index := 0
	if err := s.writeChildren(&b, children, &index); err != nil {
		return "", err
	}

	return b.String(), nil
}

func (s *Serializer) writeChildren(b *strings.Builder, children []jsast.JSXChild, index *int) error {
	for _, child := range children {
		if err := s.writeChild(b, child, index); err != nil {
			return err
		}
	}

	return nil
}

func (s *Serializer) writeChild(b *strings.Builder, child jsast.JSXChild, index *int) error {
	switch c := child.(type) {
	case *jsast.JSXText:
		// Formatting-only text (indentation, bare newlines) is elided
		// and does not advance the placeholder counter.
		b.WriteString(normalizeJSXText(c.Value))
		return nil

	case *jsast.JSXFragment:
		return s.writeChildren(b, c.Children, index)

	case *jsast.JSXElement:
		return s.writeElement(b, c, index)

	case *jsast.JSXExpr:
		return s.writeExpr(b, c, index)
	}

	return fmt.Errorf("unclassifiable markup child %T", child)
}

func (s *Serializer) writeElement(b *strings.Builder, el *jsast.JSXElement, index *int) error {
	if s.KeepTags[el.Name] {
		if el.SelfClosing {
			if el.SpacedClose {
				fmt.Fprintf(b, "<%s />", el.Name)
			} else {
				fmt.Fprintf(b, "<%s/>", el.Name)
			}

			return nil
		}

		fmt.Fprintf(b, "<%s>", el.Name)

		if err := s.writeChildren(b, el.Children, index); err != nil {
			return err
		}

		fmt.Fprintf(b, "</%s>", el.Name)

		return nil
	}

	// A non-kept element is opaque to the template: it consumes the
	// next placeholder index.
	name := strconv.Itoa(*index)
	*index++

	fmt.Fprintf(b, "{{%s}}", name)

	return nil
}

func (s *Serializer) writeExpr(b *strings.Builder, c *jsast.JSXExpr, index *int) error {
	if c.X == nil {
		// Comment-only container.
		return nil
	}

	// Casts and assertions never shift placeholder indices.
	switch x := jsast.Unwrap(c.X).(type) {
	case *jsast.StringLit:
		// An explicitly authored string expression, typically {' '},
		// is preserved literally and consumes no index.
		b.WriteString(x.Value)
		return nil

	case *jsast.TemplateLit:
		if len(x.Parts) == 0 {
			b.WriteString(x.Quasis[0])
			return nil
		}

	case *jsast.ObjectLit:
		// Interpolation shorthand {{name}}: the object's key names the
		// placeholder.
		if len(x.Props) > 0 && !x.Props[0].Computed && !x.Props[0].Spread && x.Props[0].Key != "" {
			*index++

			fmt.Fprintf(b, "{{%s}}", x.Props[0].Key)

			return nil
		}

		return fmt.Errorf("unclassifiable object expression in markup at line %d", c.P.Line)

	case *jsast.Ident:
		*index++

		fmt.Fprintf(b, "{{%s}}", x.Name)

		return nil

	case *jsast.MemberExpr:
		if !x.Computed && x.Property != "" {
			*index++

			fmt.Fprintf(b, "{{%s}}", x.Property)

			return nil
		}

	case *jsast.CondExpr, *jsast.CallExpr, *jsast.BinaryExpr:
		name := strconv.Itoa(*index)
		*index++

		fmt.Fprintf(b, "{{%s}}", name)

		return nil

	case *jsast.JSXElement:
		return s.writeElement(b, x, index)

	case *jsast.JSXFragment:
		return s.writeChildren(b, x.Children, index)
	}

	return fmt.Errorf("unclassifiable expression child in markup at line %d", c.P.Line)
}

var (
	interiorSpace = regexp.MustCompile(`\s*\n\s*`)
)

// normalizeJSXText applies the runtime's whitespace rules: text that is
// pure formatting disappears, newline-spanning runs collapse to one
// space, and leading/trailing newline whitespace is trimmed.
func normalizeJSXText(text string) string {
	if strings.TrimSpace(text) == "" {
		if strings.Contains(text, "\n") {
			return ""
		}

		// Whitespace on a single line was authored deliberately.
		return text
	}

	out := interiorSpace.ReplaceAllString(text, " ")

	// Leading/trailing whitespace that included a newline was already
	// collapsed to a single space above; strip it at the edges.
	if hasNewlineEdge(text, true) {
		out = strings.TrimLeft(out, " ")
	}

	if hasNewlineEdge(text, false) {
		out = strings.TrimRight(out, " ")
	}

	return out
}

// hasNewlineEdge reports whether the leading (or trailing) whitespace of
// text contains a newline.
func hasNewlineEdge(text string, leading bool) bool {
	if leading {
		for _, r := range text {
			switch r {
			case '\n':
				return true
			case ' ', '\t', '\r':
				continue
			default:
				return false
			}
		}

		return false
	}

	for i := len(text) - 1; i >= 0; i-- {
		switch text[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}

	return false
}
