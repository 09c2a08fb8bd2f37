// Package jsast defines the syntax tree consumed by the extraction engine.
//
// The tree is a closed set of node kinds covering only the JavaScript,
// TypeScript, and JSX constructs relevant to localization-key discovery.
// Frontends (see internal/parser) convert full parse trees into this
// form; constructs outside the set are folded into UnknownExpr or
// UnknownStmt so that traversal can continue without guessing.
package jsast

// Position is a 1-based line and column in the source file.
type Position struct {
	Line   int
	Column int
}

// Node is implemented by every syntax tree node.
type Node interface {
	Pos() Position
}

// Expr is implemented by all expression nodes.
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by all statement nodes.
type Stmt interface {
	Node
	stmtNode()
}

// JSXChild is implemented by nodes that may appear as markup children.
type JSXChild interface {
	Node
	jsxChildNode()
}

// File is the root of a parsed source file.
type File struct {
	Name  string
	Stmts []Stmt
}

// ---- Expressions ----

// StringLit is a single- or double-quoted string literal with escapes
// already resolved.
type StringLit struct {
	P     Position
	Value string
}

// TemplateLit is a template literal. Quasis holds the literal segments;
// Parts holds the interpolated expressions between them, so
// len(Quasis) == len(Parts)+1 always.
type TemplateLit struct {
	P      Position
	Quasis []string
	Parts  []Expr
}

// Ident is a plain identifier reference.
type Ident struct {
	P    Position
	Name string
}

// MemberExpr is property access. For `a.b`, Object is `a` and Property
// is "b". For computed access `a[x]`, Computed is true and Index holds
// the key expression.
type MemberExpr struct {
	P        Position
	Object   Expr
	Property string
	Computed bool
	Index    Expr
}

// CondExpr is a ternary conditional.
type CondExpr struct {
	P    Position
	Test Expr
	Cons Expr
	Alt  Expr
}

// BinaryExpr covers binary operators the resolver understands, notably
// "??" and "+". Other operators still parse into this node; the
// resolver decides what it can evaluate.
type BinaryExpr struct {
	P     Position
	Op    string
	Left  Expr
	Right Expr
}

// ObjectProp is a single property inside an object literal.
// Shorthand marks `{ name }`; Computed marks `{ [k]: v }`, in which
// case KeyExpr holds the key expression and Key is empty.
type ObjectProp struct {
	P         Position
	Key       string
	KeyExpr   Expr
	Value     Expr
	Shorthand bool
	Computed  bool
	Spread    bool
}

// ObjectLit is an object literal.
type ObjectLit struct {
	P     Position
	Props []ObjectProp
}

// ArrayLit is an array literal.
type ArrayLit struct {
	P     Position
	Elems []Expr
}

// CallExpr is a function call.
type CallExpr struct {
	P      Position
	Callee Expr
	Args   []Expr
}

// FuncExpr is a function or arrow-function expression. Arrow functions
// with an expression body set Ret and leave Body nil.
type FuncExpr struct {
	P      Position
	Params []string
	Body   *Block
	Ret    Expr
}

// AwaitExpr wraps an awaited expression.
type AwaitExpr struct {
	P   Position
	Arg Expr
}

// CastExpr wraps TypeScript casts and assertions (`x as T`, `x!`,
// `<T>x`, `x satisfies T`) and parenthesized expressions. Frontends
// must produce it so the engine can strip casts uniformly.
type CastExpr struct {
	P   Position
	Arg Expr
}

// UnknownExpr is the explicit default arm for expressions outside the
// closed grammar. Children lets traversal continue into nested nodes.
type UnknownExpr struct {
	P        Position
	Children []Node
}

func (x *StringLit) Pos() Position   { return x.P }
func (x *TemplateLit) Pos() Position { return x.P }
func (x *Ident) Pos() Position       { return x.P }
func (x *MemberExpr) Pos() Position  { return x.P }
func (x *CondExpr) Pos() Position    { return x.P }
func (x *BinaryExpr) Pos() Position  { return x.P }
func (x *ObjectLit) Pos() Position   { return x.P }
func (x *ArrayLit) Pos() Position    { return x.P }
func (x *CallExpr) Pos() Position    { return x.P }
func (x *FuncExpr) Pos() Position    { return x.P }
func (x *AwaitExpr) Pos() Position   { return x.P }
func (x *CastExpr) Pos() Position    { return x.P }
func (x *UnknownExpr) Pos() Position { return x.P }

func (*StringLit) exprNode()   {}
func (*TemplateLit) exprNode() {}
func (*Ident) exprNode()       {}
func (*MemberExpr) exprNode()  {}
func (*CondExpr) exprNode()    {}
func (*BinaryExpr) exprNode()  {}
func (*ObjectLit) exprNode()   {}
func (*ArrayLit) exprNode()    {}
func (*CallExpr) exprNode()    {}
func (*FuncExpr) exprNode()    {}
func (*AwaitExpr) exprNode()   {}
func (*CastExpr) exprNode()    {}
func (*UnknownExpr) exprNode() {}

// ---- JSX ----

// JSXElement is a markup element. SpacedClose records whether a
// self-closing tag was written `<br />` (true) rather than `<br/>`.
type JSXElement struct {
	P           Position
	Name        string
	Attrs       []JSXAttr
	Children    []JSXChild
	SelfClosing bool
	SpacedClose bool
}

// JSXAttr is a markup attribute. Value is nil for bare attributes,
// a *StringLit for quoted values, or the inner expression for
// brace-wrapped values.
type JSXAttr struct {
	P     Position
	Name  string
	Value Expr
}

// JSXText is raw text between markup children.
type JSXText struct {
	P     Position
	Value string
}

// JSXExpr is a braced expression child `{expr}`. X is nil when the
// braces contain only a comment.
type JSXExpr struct {
	P Position
	X Expr
}

// JSXFragment is `<>...</>`.
type JSXFragment struct {
	P        Position
	Children []JSXChild
}

func (x *JSXElement) Pos() Position  { return x.P }
func (x *JSXText) Pos() Position     { return x.P }
func (x *JSXExpr) Pos() Position     { return x.P }
func (x *JSXFragment) Pos() Position { return x.P }

func (*JSXElement) exprNode()  {}
func (*JSXFragment) exprNode() {}

func (*JSXElement) jsxChildNode()  {}
func (*JSXText) jsxChildNode()     {}
func (*JSXExpr) jsxChildNode()     {}
func (*JSXFragment) jsxChildNode() {}

// ---- Statements ----

// Binding is one name introduced by a declarator. Property is empty for
// a plain binding (`const t = ...`); for destructured bindings it names
// the source property, with Name holding the local alias
// (`const { t: tr } = ...` → {Name: "tr", Property: "t"}).
type Binding struct {
	Name     string
	Property string
}

// Declarator is one `name = init` unit of a variable declaration.
type Declarator struct {
	P        Position
	Bindings []Binding
	Init     Expr
}

// VarDecl is a `var`/`let`/`const` declaration.
type VarDecl struct {
	P     Position
	Kind  string
	Decls []Declarator
}

// ExprStmt is an expression used as a statement.
type ExprStmt struct {
	P Position
	X Expr
}

// Block is a braced statement list. Blocks delimit lexical scopes.
type Block struct {
	P     Position
	Stmts []Stmt
}

// FuncDecl is a named function declaration.
type FuncDecl struct {
	P      Position
	Name   string
	Params []string
	Body   *Block
}

// ReturnStmt is a return statement; X may be nil.
type ReturnStmt struct {
	P Position
	X Expr
}

// EnumMember is one member of a TypeScript enum. HasValue is false for
// members without a static string initializer; such members never
// contribute resolved strings.
type EnumMember struct {
	Name     string
	Value    string
	HasValue bool
}

// EnumDecl is a TypeScript enum declaration.
type EnumDecl struct {
	P       Position
	Name    string
	Members []EnumMember
}

// UnknownStmt is the explicit default arm for statements outside the
// closed grammar (if/for/class/...). Children lets traversal continue
// into nested blocks and expressions.
type UnknownStmt struct {
	P        Position
	Children []Node
}

func (s *VarDecl) Pos() Position     { return s.P }
func (s *ExprStmt) Pos() Position    { return s.P }
func (s *Block) Pos() Position       { return s.P }
func (s *FuncDecl) Pos() Position    { return s.P }
func (s *ReturnStmt) Pos() Position  { return s.P }
func (s *EnumDecl) Pos() Position    { return s.P }
func (s *UnknownStmt) Pos() Position { return s.P }

func (*VarDecl) stmtNode()     {}
func (*ExprStmt) stmtNode()    {}
func (*Block) stmtNode()       {}
func (*FuncDecl) stmtNode()    {}
func (*ReturnStmt) stmtNode()  {}
func (*EnumDecl) stmtNode()    {}
func (*UnknownStmt) stmtNode() {}

// Unwrap strips cast and await wrappers so callers classify the
// underlying expression. It never returns a *CastExpr or *AwaitExpr.
func Unwrap(e Expr) Expr {
	for {
		switch x := e.(type) {
		case *CastExpr:
			e = x.Arg
		case *AwaitExpr:
			e = x.Arg
		default:
			return e
		}
	}
}
