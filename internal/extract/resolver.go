package extract

import (
	"sort"

	"locsync/internal/jsast"
)

// maxResolveDepth bounds recursion through aliased declarations so a
// cyclic symbol table cannot hang the resolver.
const maxResolveDepth = 16

// Resolver statically evaluates the bounded expression grammar used for
// keys, contexts, and namespaces. Anything outside the grammar resolves
// to the empty set, which callers treat as "dynamic: leave existing
// data untouched".
type Resolver struct {
	// ExpansionLimit caps the template-literal cross product. When a
	// cross product would exceed it, the whole expression resolves to
	// nothing rather than a truncated subset.
	ExpansionLimit int

	vars  map[string]jsast.Expr
	enums map[string]map[string]string
}

// NewResolver returns a Resolver with an empty per-file symbol table.
func NewResolver(expansionLimit int) *Resolver {
	if expansionLimit <= 0 {
		expansionLimit = 32
	}

	return &Resolver{
		ExpansionLimit: expansionLimit,
		vars:           map[string]jsast.Expr{},
		enums:          map[string]map[string]string{},
	}
}

// DeclareVar records a variable whose initializer is a string, array,
// or object literal. The symbol table is per file and flat; this is a
// deliberate approximation, not a dataflow engine.
func (r *Resolver) DeclareVar(name string, init jsast.Expr) {
	if name == "" || init == nil {
		return
	}

	switch jsast.Unwrap(init).(type) {
	case *jsast.StringLit, *jsast.TemplateLit, *jsast.ArrayLit, *jsast.ObjectLit:
		r.vars[name] = init
	}
}

// DeclareEnum records the statically-initialized string members of an
// enum-like construct.
func (r *Resolver) DeclareEnum(name string, members []jsast.EnumMember) {
	if name == "" {
		return
	}

	m := map[string]string{}

	for _, mem := range members {
		if mem.HasValue {
			m[mem.Name] = mem.Value
		}
	}

	r.enums[name] = m
}

// ResolveStrings returns the sorted set of string values expr may
// statically produce. An empty result means the expression is dynamic.
func (r *Resolver) ResolveStrings(expr jsast.Expr) []string {
	set := map[string]bool{}
	r.resolve(expr, set, 0)

	out := make([]string, 0, len(set))
	for s := range set {
		out = append(out, s)
	}

	sort.Strings(out)

	return out
}

// ResolveContexts is the narrower sibling used for context values:
// empty-string branches mean "no context" and are excluded so they can
// never produce a trailing-separator key. HasEmpty reports whether an
// empty branch was present, which keeps the context-less base key alive.
func (r *Resolver) ResolveContexts(expr jsast.Expr) (contexts []string, hasEmpty bool) {
	for _, s := range r.ResolveStrings(expr) {
		if s == "" {
			hasEmpty = true
			continue
		}

		contexts = append(contexts, s)
	}

	return contexts, hasEmpty
}

func (r *Resolver) resolve(expr jsast.Expr, out map[string]bool, depth int) {
	if expr == nil || depth > maxResolveDepth {
		return
	}

	switch x := jsast.Unwrap(expr).(type) {
	case *jsast.StringLit:
		out[x.Value] = true

	case *jsast.CondExpr:
		r.resolve(x.Cons, out, depth+1)
		r.resolve(x.Alt, out, depth+1)

	case *jsast.BinaryExpr:
		// Nullish coalescing: conservatively the union of both sides,
		// since the left side's nullishness is not statically known.
		if x.Op == "??" {
			r.resolve(x.Left, out, depth+1)
			r.resolve(x.Right, out, depth+1)
		}

	case *jsast.TemplateLit:
		for _, s := range r.expandTemplate(x, depth) {
			if s != "" {
				out[s] = true
			}
		}

	case *jsast.Ident:
		if init, ok := r.vars[x.Name]; ok {
			r.resolve(init, out, depth+1)
		}

	case *jsast.ArrayLit:
		for _, el := range x.Elems {
			r.resolve(el, out, depth+1)
		}

	case *jsast.MemberExpr:
		r.resolveMember(x, out, depth)
	}
}

// resolveMember handles member access into enum declarations and into
// variables bound to object literals.
func (r *Resolver) resolveMember(x *jsast.MemberExpr, out map[string]bool, depth int) {
	obj, ok := jsast.Unwrap(x.Object).(*jsast.Ident)
	if !ok {
		return
	}

	props := r.memberProps(x, depth)
	if len(props) == 0 {
		return
	}

	if members, ok := r.enums[obj.Name]; ok {
		for _, p := range props {
			if v, ok := members[p]; ok {
				out[v] = true
			}
		}

		return
	}

	init, ok := r.vars[obj.Name]
	if !ok {
		return
	}

	lit, ok := jsast.Unwrap(init).(*jsast.ObjectLit)
	if !ok {
		return
	}

	for _, p := range props {
		for _, prop := range lit.Props {
			if !prop.Computed && prop.Key == p {
				r.resolve(prop.Value, out, depth+1)
			}
		}
	}
}

// memberProps returns the candidate property names of a member access:
// the literal property for `a.b`, or the resolved strings of the index
// expression for `a[k]`.
func (r *Resolver) memberProps(x *jsast.MemberExpr, depth int) []string {
	if !x.Computed {
		return []string{x.Property}
	}

	set := map[string]bool{}
	r.resolve(x.Index, set, depth+1)

	props := make([]string, 0, len(set))
	for p := range set {
		props = append(props, p)
	}

	sort.Strings(props)

	return props
}

// expandTemplate computes the cross product of literal segments and
// each interpolation's resolved set. A part with no resolution, or a
// product larger than ExpansionLimit, makes the whole template dynamic.
func (r *Resolver) expandTemplate(t *jsast.TemplateLit, depth int) []string {
	results := []string{t.Quasis[0]}

	for i, part := range t.Parts {
		set := map[string]bool{}
		r.resolve(part, set, depth+1)

		if len(set) == 0 {
			return nil
		}

		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}

		sort.Strings(vals)

		if len(results)*len(vals) > r.ExpansionLimit {
			return nil
		}

		next := make([]string, 0, len(results)*len(vals))
		for _, prefix := range results {
			for _, v := range vals {
				next = append(next, prefix+v+t.Quasis[i+1])
			}
		}

		results = next
	}

	return results
}
