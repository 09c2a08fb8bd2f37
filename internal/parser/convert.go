package parser

import (
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"locsync/internal/jsast"
)

// converter carries the source bytes alongside the tree walk.
type converter struct {
	src []byte
}

func convertFile(name string, root *sitter.Node, source []byte) *jsast.File {
	c := &converter{src: source}

	f := &jsast.File{Name: name}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}

		f.Stmts = append(f.Stmts, c.stmt(child))
	}

	return f
}

func (c *converter) pos(n *sitter.Node) jsast.Position {
	p := n.StartPoint()
	return jsast.Position{Line: int(p.Row) + 1, Column: int(p.Column) + 1}
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

// stmt converts one statement node; anything outside the closed grammar
// becomes an UnknownStmt that still exposes its children.
func (c *converter) stmt(n *sitter.Node) jsast.Stmt {
	switch n.Type() {
	case "lexical_declaration", "variable_declaration":
		return c.varDecl(n)

	case "expression_statement":
		if x := n.NamedChild(0); x != nil {
			return &jsast.ExprStmt{P: c.pos(n), X: c.expr(x)}
		}

		return &jsast.ExprStmt{P: c.pos(n)}

	case "statement_block":
		return c.block(n)

	case "function_declaration", "generator_function_declaration":
		return c.funcDecl(n)

	case "return_statement":
		out := &jsast.ReturnStmt{P: c.pos(n)}
		if x := n.NamedChild(0); x != nil {
			out.X = c.expr(x)
		}

		return out

	case "enum_declaration":
		return c.enumDecl(n)

	case "export_statement":
		if decl := n.ChildByFieldName("declaration"); decl != nil {
			return c.stmt(decl)
		}

		return &jsast.UnknownStmt{P: c.pos(n), Children: c.children(n)}

	default:
		return &jsast.UnknownStmt{P: c.pos(n), Children: c.children(n)}
	}
}

func (c *converter) block(n *sitter.Node) *jsast.Block {
	b := &jsast.Block{P: c.pos(n)}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() == "comment" {
			continue
		}

		b.Stmts = append(b.Stmts, c.stmt(child))
	}

	return b
}

func (c *converter) varDecl(n *sitter.Node) *jsast.VarDecl {
	out := &jsast.VarDecl{P: c.pos(n)}

	if kw := n.Child(0); kw != nil {
		out.Kind = c.text(kw)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "variable_declarator" {
			continue
		}

		d := jsast.Declarator{P: c.pos(child)}

		if name := child.ChildByFieldName("name"); name != nil {
			d.Bindings = c.bindings(name)
		}

		if value := child.ChildByFieldName("value"); value != nil {
			d.Init = c.expr(value)
		}

		out.Decls = append(out.Decls, d)
	}

	return out
}

// bindings flattens a declarator's name or destructuring pattern.
func (c *converter) bindings(n *sitter.Node) []jsast.Binding {
	switch n.Type() {
	case "identifier":
		return []jsast.Binding{{Name: c.text(n)}}

	case "object_pattern":
		var out []jsast.Binding

		for i := 0; i < int(n.NamedChildCount()); i++ {
			p := n.NamedChild(i)

			switch p.Type() {
			case "shorthand_property_identifier_pattern":
				name := c.text(p)
				out = append(out, jsast.Binding{Name: name, Property: name})

			case "pair_pattern":
				key := p.ChildByFieldName("key")
				val := p.ChildByFieldName("value")

				if key != nil && val != nil && val.Type() == "identifier" {
					out = append(out, jsast.Binding{Name: c.text(val), Property: c.text(key)})
				}
			}
		}

		return out
	}

	return nil
}

func (c *converter) funcDecl(n *sitter.Node) *jsast.FuncDecl {
	out := &jsast.FuncDecl{P: c.pos(n)}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}

	out.Params = c.params(n.ChildByFieldName("parameters"))

	if body := n.ChildByFieldName("body"); body != nil {
		out.Body = c.block(body)
	}

	return out
}

func (c *converter) params(n *sitter.Node) []string {
	if n == nil {
		return nil
	}

	if n.Type() == "identifier" {
		return []string{c.text(n)}
	}

	var out []string

	for i := 0; i < int(n.NamedChildCount()); i++ {
		p := n.NamedChild(i)

		switch p.Type() {
		case "identifier":
			out = append(out, c.text(p))
		case "required_parameter", "optional_parameter":
			if pat := p.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
				out = append(out, c.text(pat))
			}
		}
	}

	return out
}

func (c *converter) enumDecl(n *sitter.Node) *jsast.EnumDecl {
	out := &jsast.EnumDecl{P: c.pos(n)}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return out
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		m := body.NamedChild(i)

		switch m.Type() {
		case "enum_assignment":
			member := jsast.EnumMember{}

			if name := m.ChildByFieldName("name"); name != nil {
				member.Name = c.text(name)
			}

			if value := m.ChildByFieldName("value"); value != nil && value.Type() == "string" {
				member.Value = c.stringValue(value)
				member.HasValue = true
			}

			out.Members = append(out.Members, member)

		case "property_identifier", "identifier":
			out.Members = append(out.Members, jsast.EnumMember{Name: c.text(m)})
		}
	}

	return out
}

// expr converts one expression node; anything outside the closed
// grammar becomes an UnknownExpr that still exposes its children.
func (c *converter) expr(n *sitter.Node) jsast.Expr {
	switch n.Type() {
	case "string":
		return &jsast.StringLit{P: c.pos(n), Value: c.stringValue(n)}

	case "template_string":
		return c.template(n)

	case "identifier", "true", "false", "undefined", "null", "this":
		return &jsast.Ident{P: c.pos(n), Name: c.text(n)}

	case "member_expression":
		out := &jsast.MemberExpr{P: c.pos(n)}

		if obj := n.ChildByFieldName("object"); obj != nil {
			out.Object = c.expr(obj)
		}

		if prop := n.ChildByFieldName("property"); prop != nil {
			out.Property = c.text(prop)
		}

		return out

	case "subscript_expression":
		out := &jsast.MemberExpr{P: c.pos(n), Computed: true}

		if obj := n.ChildByFieldName("object"); obj != nil {
			out.Object = c.expr(obj)
		}

		if idx := n.ChildByFieldName("index"); idx != nil {
			out.Index = c.expr(idx)
		}

		return out

	case "ternary_expression":
		out := &jsast.CondExpr{P: c.pos(n)}

		if t := n.ChildByFieldName("condition"); t != nil {
			out.Test = c.expr(t)
		}

		if cons := n.ChildByFieldName("consequence"); cons != nil {
			out.Cons = c.expr(cons)
		}

		if alt := n.ChildByFieldName("alternative"); alt != nil {
			out.Alt = c.expr(alt)
		}

		return out

	case "binary_expression":
		out := &jsast.BinaryExpr{P: c.pos(n)}

		if op := n.ChildByFieldName("operator"); op != nil {
			out.Op = c.text(op)
		}

		if l := n.ChildByFieldName("left"); l != nil {
			out.Left = c.expr(l)
		}

		if r := n.ChildByFieldName("right"); r != nil {
			out.Right = c.expr(r)
		}

		return out

	case "object":
		return c.object(n)

	case "array":
		out := &jsast.ArrayLit{P: c.pos(n)}

		for i := 0; i < int(n.NamedChildCount()); i++ {
			child := n.NamedChild(i)
			if child.Type() == "comment" {
				continue
			}

			out.Elems = append(out.Elems, c.expr(child))
		}

		return out

	case "call_expression":
		return c.call(n)

	case "arrow_function", "function_expression", "function":
		out := &jsast.FuncExpr{P: c.pos(n)}
		out.Params = c.params(n.ChildByFieldName("parameters"))

		if body := n.ChildByFieldName("body"); body != nil {
			if body.Type() == "statement_block" {
				out.Body = c.block(body)
			} else {
				out.Ret = c.expr(body)
			}
		}

		return out

	case "await_expression":
		out := &jsast.AwaitExpr{P: c.pos(n)}
		if x := n.NamedChild(0); x != nil {
			out.Arg = c.expr(x)
		}

		return out

	case "as_expression", "satisfies_expression", "non_null_expression",
		"type_assertion", "parenthesized_expression":
		out := &jsast.CastExpr{P: c.pos(n)}
		if x := n.NamedChild(0); x != nil {
			out.Arg = c.expr(x)
		}

		return out

	case "jsx_element":
		return c.jsxElement(n)

	case "jsx_self_closing_element":
		return c.jsxSelfClosing(n)

	case "jsx_fragment":
		out := &jsast.JSXFragment{P: c.pos(n)}
		out.Children = c.jsxChildren(n)

		return out

	default:
		return &jsast.UnknownExpr{P: c.pos(n), Children: c.children(n)}
	}
}

func (c *converter) object(n *sitter.Node) *jsast.ObjectLit {
	out := &jsast.ObjectLit{P: c.pos(n)}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "pair":
			prop := jsast.ObjectProp{P: c.pos(child)}

			if key := child.ChildByFieldName("key"); key != nil {
				switch key.Type() {
				case "computed_property_name":
					prop.Computed = true
					if x := key.NamedChild(0); x != nil {
						prop.KeyExpr = c.expr(x)
					}
				case "string":
					prop.Key = c.stringValue(key)
				default:
					prop.Key = c.text(key)
				}
			}

			if value := child.ChildByFieldName("value"); value != nil {
				prop.Value = c.expr(value)
			}

			out.Props = append(out.Props, prop)

		case "shorthand_property_identifier":
			name := c.text(child)
			out.Props = append(out.Props, jsast.ObjectProp{
				P:         c.pos(child),
				Key:       name,
				Value:     &jsast.Ident{P: c.pos(child), Name: name},
				Shorthand: true,
			})

		case "spread_element":
			prop := jsast.ObjectProp{P: c.pos(child), Spread: true}
			if x := child.NamedChild(0); x != nil {
				prop.Value = c.expr(x)
			}

			out.Props = append(out.Props, prop)
		}
	}

	return out
}

func (c *converter) call(n *sitter.Node) jsast.Expr {
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	// Tagged templates carry a template literal where the argument
	// list would be; those are not calls the engine understands.
	if fn == nil || args == nil || args.Type() != "arguments" {
		return &jsast.UnknownExpr{P: c.pos(n), Children: c.children(n)}
	}

	out := &jsast.CallExpr{P: c.pos(n), Callee: c.expr(fn)}

	for i := 0; i < int(args.NamedChildCount()); i++ {
		a := args.NamedChild(i)
		if a.Type() == "comment" {
			continue
		}

		out.Args = append(out.Args, c.expr(a))
	}

	return out
}

func (c *converter) template(n *sitter.Node) *jsast.TemplateLit {
	out := &jsast.TemplateLit{P: c.pos(n)}

	var quasi strings.Builder

	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)

		switch child.Type() {
		case "template_substitution":
			out.Quasis = append(out.Quasis, quasi.String())
			quasi.Reset()

			if x := child.NamedChild(0); x != nil {
				out.Parts = append(out.Parts, c.expr(x))
			} else {
				out.Parts = append(out.Parts, &jsast.UnknownExpr{P: c.pos(child)})
			}

		case "string_fragment":
			quasi.WriteString(c.text(child))

		case "escape_sequence":
			quasi.WriteString(unescape(c.text(child)))
		}
	}

	out.Quasis = append(out.Quasis, quasi.String())

	return out
}

func (c *converter) jsxElement(n *sitter.Node) jsast.Expr {
	opening := n.NamedChild(0)
	if opening == nil || opening.Type() != "jsx_opening_element" {
		return &jsast.UnknownExpr{P: c.pos(n), Children: c.children(n)}
	}

	name := opening.ChildByFieldName("name")
	if name == nil {
		// <>...</> parses as an element with a nameless opening tag in
		// grammars without a dedicated fragment node.
		return &jsast.JSXFragment{P: c.pos(n), Children: c.jsxChildren(n)}
	}

	out := &jsast.JSXElement{P: c.pos(n), Name: c.text(name)}
	out.Attrs = c.jsxAttrs(opening)
	out.Children = c.jsxChildren(n)

	return out
}

func (c *converter) jsxSelfClosing(n *sitter.Node) *jsast.JSXElement {
	out := &jsast.JSXElement{P: c.pos(n), SelfClosing: true}

	if name := n.ChildByFieldName("name"); name != nil {
		out.Name = c.text(name)
	}

	out.Attrs = c.jsxAttrs(n)

	raw := c.text(n)
	if idx := strings.LastIndex(raw, "/>"); idx > 0 {
		switch raw[idx-1] {
		case ' ', '\t', '\n', '\r':
			out.SpacedClose = true
		}
	}

	return out
}

func (c *converter) jsxAttrs(n *sitter.Node) []jsast.JSXAttr {
	var out []jsast.JSXAttr

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "jsx_attribute" {
			continue
		}

		attr := jsast.JSXAttr{P: c.pos(child)}

		if name := child.NamedChild(0); name != nil {
			attr.Name = c.text(name)
		}

		if child.NamedChildCount() > 1 {
			value := child.NamedChild(1)

			switch value.Type() {
			case "string":
				attr.Value = &jsast.StringLit{P: c.pos(value), Value: c.stringValue(value)}

			case "jsx_expression":
				if x := value.NamedChild(0); x != nil {
					attr.Value = c.expr(x)
				}

			default:
				attr.Value = c.expr(value)
			}
		}

		out = append(out, attr)
	}

	return out
}

// jsxChildren converts the children between an element's opening and
// closing tags.
func (c *converter) jsxChildren(n *sitter.Node) []jsast.JSXChild {
	var out []jsast.JSXChild

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "jsx_opening_element", "jsx_closing_element", "comment":
			continue

		case "jsx_text", "html_character_reference":
			out = append(out, &jsast.JSXText{P: c.pos(child), Value: c.text(child)})

		case "jsx_expression":
			jx := &jsast.JSXExpr{P: c.pos(child)}
			if x := child.NamedChild(0); x != nil && x.Type() != "comment" {
				jx.X = c.expr(x)
			}

			out = append(out, jx)

		case "jsx_element":
			if el := c.jsxElement(child); el != nil {
				switch v := el.(type) {
				case *jsast.JSXElement:
					out = append(out, v)
				case *jsast.JSXFragment:
					out = append(out, v)
				}
			}

		case "jsx_self_closing_element":
			out = append(out, c.jsxSelfClosing(child))

		case "jsx_fragment":
			out = append(out, &jsast.JSXFragment{P: c.pos(child), Children: c.jsxChildren(child)})
		}
	}

	return out
}

// children converts every named child for unknown-node arms so
// traversal can continue into constructs the grammar does not model.
func (c *converter) children(n *sitter.Node) []jsast.Node {
	var out []jsast.Node

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "comment":
			continue

		case "lexical_declaration", "variable_declaration", "statement_block",
			"expression_statement", "function_declaration", "return_statement",
			"enum_declaration", "export_statement", "if_statement", "for_statement",
			"for_in_statement", "while_statement", "do_statement", "try_statement",
			"switch_statement", "labeled_statement", "class_declaration":
			out = append(out, c.stmt(child))

		default:
			out = append(out, c.expr(child))
		}
	}

	return out
}

// stringValue unquotes a string literal and resolves its escapes.
func (c *converter) stringValue(n *sitter.Node) string {
	var b strings.Builder

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)

		switch child.Type() {
		case "string_fragment":
			b.WriteString(c.text(child))
		case "escape_sequence":
			b.WriteString(unescape(c.text(child)))
		}
	}

	return b.String()
}

// unescape resolves one escape sequence.
func unescape(s string) string {
	if len(s) < 2 || s[0] != '\\' {
		return s
	}

	switch s[1] {
	case 'n':
		return "\n"
	case 't':
		return "\t"
	case 'r':
		return "\r"
	case 'b':
		return "\b"
	case 'f':
		return "\f"
	case 'v':
		return "\v"
	case '0':
		return "\x00"
	case 'u', 'x':
		if r, ok := unescapeCodePoint(s); ok {
			return r
		}

		return s[1:]
	default:
		return s[1:]
	}
}

func unescapeCodePoint(s string) (string, bool) {
	var hex string

	switch {
	case strings.HasPrefix(s, `\u{`) && strings.HasSuffix(s, "}"):
		hex = s[3 : len(s)-1]
	case strings.HasPrefix(s, `\u`) && len(s) == 6:
		hex = s[2:]
	case strings.HasPrefix(s, `\x`) && len(s) == 4:
		hex = s[2:]
	default:
		return "", false
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return "", false
	}

	return string(rune(v)), true
}
