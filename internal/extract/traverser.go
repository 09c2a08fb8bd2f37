package extract

import (
	"fmt"
	"regexp"
	"strings"

	"locsync/internal/config"
	"locsync/internal/jsast"
)

type traverseState int

const (
	stateIdle traverseState = iota
	stateScanning
	stateDone
)

// keyAttr is the markup attribute naming a component's key.
const keyAttr = "i18nKey"

// Traverser walks one parsed file at a time, driving the scope manager,
// resolver, and serializer, and hands every match to the collector.
// Scope state is rebuilt per file and never leaks across files.
type Traverser struct {
	cfg        *config.Config
	collector  *Collector
	serializer *Serializer
	extensions []Extension

	scopes   *ScopeManager
	resolver *Resolver
	file     string
	state    traverseState
	warnings []string
	bindings map[string]ScopeInfo

	exactFuncs  map[string]bool
	memberFuncs map[string]bool
	suffixFuncs map[string]bool
	components  map[string]bool
	hooksByName map[string]config.Hook
}

// NewTraverser builds a traverser for one run. Extensions are invoked
// inline during the pass and observe live scope state.
func NewTraverser(cfg *config.Config, collector *Collector, extensions ...Extension) *Traverser {
	t := &Traverser{
		cfg:         cfg,
		collector:   collector,
		serializer:  NewSerializer(cfg.KeepTags),
		extensions:  extensions,
		exactFuncs:  map[string]bool{},
		memberFuncs: map[string]bool{},
		suffixFuncs: map[string]bool{},
		components:  map[string]bool{},
		hooksByName: map[string]config.Hook{},
	}

	for _, fn := range cfg.Functions {
		switch {
		case strings.HasPrefix(fn, "*."):
			t.suffixFuncs[strings.TrimPrefix(fn, "*.")] = true
		case strings.Contains(fn, "."):
			t.memberFuncs[fn] = true
		default:
			t.exactFuncs[fn] = true
		}
	}

	for _, c := range cfg.Components {
		t.components[c] = true
	}

	for _, h := range cfg.Hooks {
		t.hooksByName[h.Name] = h
	}

	return t
}

// TraverseFile runs the single extraction pass over one file. The scope
// stack and per-file symbol table are fresh on entry and remain
// queryable (file-level frame only) until the next call, so the comment
// scanner can reuse them.
func (t *Traverser) TraverseFile(f *jsast.File) {
	t.file = f.Name
	t.scopes = NewScopeManager()
	t.resolver = NewResolver(t.cfg.TemplateExpansionLimit)
	t.state = stateScanning
	t.warnings = nil
	t.bindings = map[string]ScopeInfo{}

	for _, s := range f.Stmts {
		t.collectSymbols(s)
	}

	t.prebindHooks(f.Stmts)

	for _, s := range f.Stmts {
		t.walkNode(s)
	}

	t.state = stateDone
}

// Warnings returns the non-fatal problems hit in the last file.
func (t *Traverser) Warnings() []string { return t.warnings }

// HookBindings returns every translator binding seen anywhere in the
// last file, regardless of the scope it was made in. First binding of a
// name wins. The comment scanner uses this to resolve bare translator
// names in commented-out calls.
func (t *Traverser) HookBindings() map[string]ScopeInfo { return t.bindings }

// AddKey lets extensions contribute out-of-band keys.
func (t *Traverser) AddKey(k Key) { t.collector.Add(k) }

// ScopeFor exposes scope bindings to extensions.
func (t *Traverser) ScopeFor(name string) (ScopeInfo, bool) {
	if t.scopes == nil {
		return ScopeInfo{}, false
	}

	return t.scopes.Lookup(name)
}

// SetScopeFor lets extensions inject a scope binding into the current
// frame.
func (t *Traverser) SetScopeFor(name string, info ScopeInfo) {
	if t.scopes != nil {
		t.scopes.Bind(name, info)
	}
}

// collectSymbols populates the per-file symbol table: string, array,
// and object literal declarations plus enum-like constructs. The table
// is flat per file; shadowed redeclarations simply overwrite.
func (t *Traverser) collectSymbols(n jsast.Node) {
	switch x := n.(type) {
	case *jsast.VarDecl:
		for _, d := range x.Decls {
			if len(d.Bindings) == 1 && d.Bindings[0].Property == "" {
				t.resolver.DeclareVar(d.Bindings[0].Name, d.Init)
			}
		}

	case *jsast.EnumDecl:
		t.resolver.DeclareEnum(x.Name, x.Members)
	}

	for _, c := range nodeChildren(n) {
		t.collectSymbols(c)
	}
}

// prebindHooks registers translator bindings for every hook-call
// declaration directly inside a statement list, before the list is
// traversed. This makes resolution hoisting-tolerant: a call site may
// precede the declaration that binds its translator variable.
func (t *Traverser) prebindHooks(stmts []jsast.Stmt) {
	for _, s := range stmts {
		if vd, ok := s.(*jsast.VarDecl); ok {
			for _, d := range vd.Decls {
				t.bindIfHook(d)
			}
		}
	}
}

// bindIfHook inspects one declarator and, when its initializer is a
// configured translator-producing hook call (plain, destructured,
// aliased, or awaited), binds scope info for every introduced name.
func (t *Traverser) bindIfHook(d jsast.Declarator) {
	call, ok := jsast.Unwrap(d.Init).(*jsast.CallExpr)
	if !ok {
		return
	}

	name := calleeName(call.Callee)

	hook, ok := t.hooksByName[name]
	if !ok {
		return
	}

	info := ScopeInfo{}

	if hook.NsArg >= 0 && hook.NsArg < len(call.Args) {
		info.DefaultNamespace = t.firstString(call.Args[hook.NsArg])
	}

	if hook.OptionsArg >= 0 && hook.OptionsArg < len(call.Args) && hook.KeyPrefixOption != "" {
		if obj, ok := jsast.Unwrap(call.Args[hook.OptionsArg]).(*jsast.ObjectLit); ok {
			for _, p := range obj.Props {
				if !p.Computed && p.Key == hook.KeyPrefixOption {
					info.KeyPrefix = t.firstString(p.Value)
				}
			}
		}
	}

	for _, b := range d.Bindings {
		t.scopes.Bind(b.Name, info)

		if _, seen := t.bindings[b.Name]; !seen {
			t.bindings[b.Name] = info
		}
	}
}

// firstString resolves expr and returns one string: the first element
// for array literals (a namespace list defaults to its head), otherwise
// the first resolved value.
func (t *Traverser) firstString(expr jsast.Expr) string {
	if arr, ok := jsast.Unwrap(expr).(*jsast.ArrayLit); ok {
		if len(arr.Elems) == 0 {
			return ""
		}

		expr = arr.Elems[0]
	}

	vals := t.resolver.ResolveStrings(expr)
	if len(vals) == 0 {
		return ""
	}

	return vals[0]
}

// calleeName renders the name a call is matched by: the identifier
// itself, or the final property of a member chain.
func calleeName(callee jsast.Expr) string {
	switch x := jsast.Unwrap(callee).(type) {
	case *jsast.Ident:
		return x.Name
	case *jsast.MemberExpr:
		if !x.Computed {
			return x.Property
		}
	}

	return ""
}

// walkNode is the single depth-first dispatch over the closed node set.
func (t *Traverser) walkNode(n jsast.Node) {
	if n == nil {
		return
	}

	for _, e := range t.extensions {
		if o, ok := e.(NodeObserver); ok {
			safeNodeHook(e.Name(), func() { o.BeforeNode(n) })
		}
	}

	switch x := n.(type) {
	case *jsast.Block:
		t.scopes.Push()
		t.prebindHooks(x.Stmts)

		for _, s := range x.Stmts {
			t.walkNode(s)
		}

		t.scopes.Pop()

	case *jsast.VarDecl:
		for _, d := range x.Decls {
			t.bindIfHook(d)
			t.walkNode(d.Init)
		}

	case *jsast.FuncDecl:
		t.walkNode(x.Body)

	case *jsast.FuncExpr:
		if x.Body != nil {
			t.walkNode(x.Body)
		} else {
			t.scopes.Push()
			t.walkNode(x.Ret)
			t.scopes.Pop()
		}

	case *jsast.ExprStmt:
		t.walkNode(x.X)

	case *jsast.ReturnStmt:
		t.walkNode(x.X)

	case *jsast.CallExpr:
		t.handleCall(x)
		t.walkNode(x.Callee)

		for _, a := range x.Args {
			t.walkNode(a)
		}

	case *jsast.JSXElement:
		if t.components[x.Name] {
			t.handleComponent(x)
		}

		for _, a := range x.Attrs {
			t.walkNode(a.Value)
		}

		for _, c := range x.Children {
			t.walkNode(c)
		}

	case *jsast.JSXFragment:
		for _, c := range x.Children {
			t.walkNode(c)
		}

	case *jsast.JSXExpr:
		t.walkNode(x.X)

	case *jsast.CondExpr:
		t.walkNode(x.Test)
		t.walkNode(x.Cons)
		t.walkNode(x.Alt)

	case *jsast.BinaryExpr:
		t.walkNode(x.Left)
		t.walkNode(x.Right)

	case *jsast.TemplateLit:
		for _, p := range x.Parts {
			t.walkNode(p)
		}

	case *jsast.MemberExpr:
		t.walkNode(x.Object)
		t.walkNode(x.Index)

	case *jsast.ObjectLit:
		for _, p := range x.Props {
			t.walkNode(p.KeyExpr)
			t.walkNode(p.Value)
		}

	case *jsast.ArrayLit:
		for _, el := range x.Elems {
			t.walkNode(el)
		}

	case *jsast.AwaitExpr:
		t.walkNode(x.Arg)

	case *jsast.CastExpr:
		t.walkNode(x.Arg)

	case *jsast.UnknownStmt:
		for _, c := range x.Children {
			t.walkNode(c)
		}

	case *jsast.UnknownExpr:
		for _, c := range x.Children {
			t.walkNode(c)
		}
	}

	for _, e := range t.extensions {
		if o, ok := e.(NodeObserver); ok {
			safeNodeHook(e.Name(), func() { o.AfterNode(n) })
		}
	}
}

// translatorScope decides whether a call targets a translator and, if
// bound through a hook, which scope binding applies.
func (t *Traverser) translatorScope(call *jsast.CallExpr) (ScopeInfo, bool, bool) {
	switch x := jsast.Unwrap(call.Callee).(type) {
	case *jsast.Ident:
		if info, ok := t.scopes.Lookup(x.Name); ok && t.exactFuncs[x.Name] {
			return info, true, true
		}

		if t.exactFuncs[x.Name] {
			return ScopeInfo{}, false, true
		}

		if info, ok := t.scopes.Lookup(x.Name); ok {
			// A bound translator under a local alias matches even when
			// the alias is not in the function list.
			return info, true, true
		}

	case *jsast.MemberExpr:
		if x.Computed {
			return ScopeInfo{}, false, false
		}

		if obj, ok := jsast.Unwrap(x.Object).(*jsast.Ident); ok {
			// Variable-declared hook result: tr.t(...) resolves the
			// object's binding.
			if info, ok := t.scopes.Lookup(obj.Name); ok && (t.exactFuncs[x.Property] || t.suffixFuncs[x.Property]) {
				return info, true, true
			}

			if t.memberFuncs[obj.Name+"."+x.Property] {
				return ScopeInfo{}, false, true
			}
		}

		if t.suffixFuncs[x.Property] {
			return ScopeInfo{}, false, true
		}
	}

	return ScopeInfo{}, false, false
}

// callOptions is the subset of a call's options argument the engine
// understands.
type callOptions struct {
	defaultValue    string
	explicitDefault bool
	namespace       string
	hasNamespace    bool
	contexts        []string
	contextEmpty    bool
	hasContext      bool
	hasCount        bool
	ordinal         bool
}

// handleCall extracts keys from a matched translator call site.
func (t *Traverser) handleCall(call *jsast.CallExpr) {
	info, scoped, matched := t.translatorScope(call)
	if !matched || len(call.Args) == 0 {
		return
	}

	keys := t.resolver.ResolveStrings(call.Args[0])
	keys = append(keys, t.contributedKeys(call.Args[0])...)

	if len(keys) == 0 {
		// Outside the statically-resolvable grammar: leave existing
		// translation data for this call site untouched.
		return
	}

	opts := t.parseCallOptions(call)

	pos := call.Args[0].Pos()
	loc := Location{File: t.file, Line: pos.Line, Column: pos.Column}

	for _, key := range keys {
		t.emitKey(key, opts, info, scoped, loc)
	}
}

// parseCallOptions reads the default-value and options arguments,
// supporting both t(key, options) and t(key, defaultValue, options).
func (t *Traverser) parseCallOptions(call *jsast.CallExpr) callOptions {
	var opts callOptions

	optsIdx := 1

	if len(call.Args) >= 2 {
		switch jsast.Unwrap(call.Args[1]).(type) {
		case *jsast.StringLit, *jsast.TemplateLit:
			if vals := t.resolver.ResolveStrings(call.Args[1]); len(vals) == 1 {
				opts.defaultValue = vals[0]
				opts.explicitDefault = true
				optsIdx = 2
			}
		}
	}

	if optsIdx >= len(call.Args) {
		return opts
	}

	obj, ok := jsast.Unwrap(call.Args[optsIdx]).(*jsast.ObjectLit)
	if !ok {
		return opts
	}

	for _, p := range obj.Props {
		if p.Computed || p.Spread {
			continue
		}

		switch p.Key {
		case "defaultValue":
			if vals := t.resolver.ResolveStrings(p.Value); len(vals) == 1 {
				opts.defaultValue = vals[0]
				opts.explicitDefault = true
			}

		case "ns":
			if ns := t.firstString(p.Value); ns != "" {
				opts.namespace = ns
				opts.hasNamespace = true
			}

		case "context":
			opts.hasContext = true
			opts.contexts, opts.contextEmpty = t.resolver.ResolveContexts(p.Value)
			opts.contexts = append(opts.contexts, t.contributedContexts(p.Value)...)

		case "count":
			opts.hasCount = true

		case "ordinal":
			if id, ok := jsast.Unwrap(p.Value).(*jsast.Ident); ok && id.Name == "true" {
				opts.ordinal = true
			}
		}
	}

	return opts
}

// emitKey applies namespace/prefix resolution and context expansion for
// one resolved key string, then feeds the collector.
func (t *Traverser) emitKey(key string, opts callOptions, info ScopeInfo, scoped bool, loc Location) {
	ns := t.cfg.DefaultNamespace
	implicit := true

	switch {
	case opts.hasNamespace:
		// Explicit always wins over inferred.
		ns = opts.namespace
		implicit = false

	case t.cfg.NamespaceSeparator != "" && strings.Contains(key, t.cfg.NamespaceSeparator):
		parts := strings.SplitN(key, t.cfg.NamespaceSeparator, 2)
		if parts[0] != "" && parts[1] != "" {
			ns = parts[0]
			key = parts[1]
			implicit = false
		}

	case scoped && info.DefaultNamespace != "":
		ns = info.DefaultNamespace
	}

	if scoped && info.KeyPrefix != "" {
		key = info.KeyPrefix + t.cfg.KeySeparator + key
	}

	if key == "" {
		return
	}

	base := Key{
		Key:               key,
		Namespace:         ns,
		NamespaceImplicit: implicit,
		DefaultValue:      opts.defaultValue,
		ExplicitDefault:   opts.explicitDefault,
		HasCount:          opts.hasCount,
		IsOrdinal:         opts.ordinal,
		UsedWithoutCount:  !opts.hasCount,
		Locations:         []Location{loc},
	}

	if len(opts.contexts) == 0 {
		t.collector.Add(base)
		t.addNestedKeys(base.DefaultValue, ns, loc)

		return
	}

	// Context variants share the call site's explicit default.
	for _, ctx := range opts.contexts {
		variant := base
		variant.Key = key + t.cfg.ContextSeparator + ctx
		variant.ContextBaseKey = key
		t.collector.Add(variant)
	}

	if opts.contextEmpty || t.cfg.GenerateBasePluralForms {
		t.collector.Add(base)
	}

	t.addNestedKeys(base.DefaultValue, ns, loc)
}

// nestedKeyPattern matches the in-string nesting syntax $t(key) or
// $t(key, options) inside literal/default values.
var nestedKeyPattern = regexp.MustCompile(`\$t\(\s*([^),]+?)\s*[,)]`)

// addNestedKeys recursively collects keys referenced through the
// in-string nesting syntax embedded in a default value.
func (t *Traverser) addNestedKeys(value, ns string, loc Location) {
	if value == "" || !strings.Contains(value, "$t(") {
		return
	}

	for _, m := range nestedKeyPattern.FindAllStringSubmatch(value, -1) {
		key := strings.Trim(m[1], `'"`)
		if key == "" {
			continue
		}

		nestedNS, implicit := ns, true
		if t.cfg.NamespaceSeparator != "" && strings.Contains(key, t.cfg.NamespaceSeparator) {
			parts := strings.SplitN(key, t.cfg.NamespaceSeparator, 2)
			if parts[0] != "" && parts[1] != "" {
				nestedNS, key, implicit = parts[0], parts[1], false
			}
		}

		t.collector.Add(Key{
			Key:               key,
			Namespace:         nestedNS,
			NamespaceImplicit: implicit,
			UsedWithoutCount:  true,
			Locations:         []Location{loc},
		})
	}
}

// handleComponent extracts a key from a matched markup component.
func (t *Traverser) handleComponent(el *jsast.JSXElement) {
	attrs := map[string]jsast.Expr{}
	for _, a := range el.Attrs {
		attrs[a.Name] = a.Value
	}

	serialized, err := t.serializer.Serialize(el.Children)
	if err != nil {
		t.warnings = append(t.warnings, fmt.Sprintf("%s:%d: %v", t.file, el.P.Line, err))
		return
	}

	var opts callOptions

	if v, ok := attrs["ns"]; ok {
		if ns := t.firstString(v); ns != "" {
			opts.namespace = ns
			opts.hasNamespace = true
		}
	}

	if v, ok := attrs["context"]; ok {
		opts.hasContext = true
		opts.contexts, opts.contextEmpty = t.resolver.ResolveContexts(v)
	}

	if _, ok := attrs["count"]; ok {
		opts.hasCount = true
	}

	if v, ok := attrs["tOptions"]; ok {
		t.mergeOptionsObject(&opts, v)
	}

	if v, ok := attrs["defaults"]; ok {
		if vals := t.resolver.ResolveStrings(v); len(vals) == 1 {
			opts.defaultValue = vals[0]
			opts.explicitDefault = true
		}
	}

	if !opts.explicitDefault && serialized != "" {
		opts.defaultValue = serialized
		opts.explicitDefault = true
	}

	key := t.componentKey(attrs[keyAttr])
	if key == "" {
		// Without an explicit key the serialized children are the key,
		// matching the runtime's fallback.
		key = opts.defaultValue
	}

	if key == "" {
		return
	}

	// An explicit namespace prop duplicated as a key prefix is
	// redundant; strip it so the key is stored once.
	if opts.hasNamespace && t.cfg.NamespaceSeparator != "" {
		key = strings.TrimPrefix(key, opts.namespace+t.cfg.NamespaceSeparator)
	}

	loc := Location{File: t.file, Line: el.P.Line, Column: el.P.Column}
	t.emitKey(key, opts, ScopeInfo{}, false, loc)
}

// mergeOptionsObject folds an options-object attribute into opts, the
// same fields a call site's options argument may carry.
func (t *Traverser) mergeOptionsObject(opts *callOptions, v jsast.Expr) {
	obj, ok := jsast.Unwrap(v).(*jsast.ObjectLit)
	if !ok {
		return
	}

	for _, p := range obj.Props {
		if p.Computed || p.Spread {
			continue
		}

		switch p.Key {
		case "context":
			if !opts.hasContext {
				opts.hasContext = true
				opts.contexts, opts.contextEmpty = t.resolver.ResolveContexts(p.Value)
			}

		case "count":
			opts.hasCount = true

		case "ordinal":
			if id, ok := jsast.Unwrap(p.Value).(*jsast.Ident); ok && id.Name == "true" {
				opts.ordinal = true
			}

		case "ns":
			if !opts.hasNamespace {
				if ns := t.firstString(p.Value); ns != "" {
					opts.namespace = ns
					opts.hasNamespace = true
				}
			}
		}
	}
}

// componentKey resolves a key attribute: a literal/static expression,
// or the functional selector form ($) => $.a.b.c.
func (t *Traverser) componentKey(v jsast.Expr) string {
	if v == nil {
		return ""
	}

	if fn, ok := jsast.Unwrap(v).(*jsast.FuncExpr); ok && fn.Ret != nil {
		return t.selectorKey(fn.Ret)
	}

	if vals := t.resolver.ResolveStrings(v); len(vals) > 0 {
		return vals[0]
	}

	return ""
}

// selectorKey flattens a selector body's member chain into a dotted
// key: ($) => $.account.title yields "account.title".
func (t *Traverser) selectorKey(ret jsast.Expr) string {
	var segs []string

	expr := jsast.Unwrap(ret)
	for {
		m, ok := expr.(*jsast.MemberExpr)
		if !ok || m.Computed {
			break
		}

		segs = append([]string{m.Property}, segs...)
		expr = jsast.Unwrap(m.Object)
	}

	if _, ok := expr.(*jsast.Ident); !ok || len(segs) == 0 {
		return ""
	}

	return strings.Join(segs, t.cfg.KeySeparator)
}

func (t *Traverser) contributedKeys(expr jsast.Expr) []string {
	var out []string

	for _, e := range t.extensions {
		if kc, ok := e.(KeyContributor); ok {
			out = append(out, safeContribute(e.Name(), func() []string { return kc.ContributeKeys(expr) })...)
		}
	}

	return out
}

func (t *Traverser) contributedContexts(expr jsast.Expr) []string {
	var out []string

	for _, e := range t.extensions {
		if cc, ok := e.(ContextContributor); ok {
			out = append(out, safeContribute(e.Name(), func() []string { return cc.ContributeContexts(expr) })...)
		}
	}

	return out
}

// nodeChildren enumerates a node's direct children for generic walks.
func nodeChildren(n jsast.Node) []jsast.Node {
	switch x := n.(type) {
	case *jsast.Block:
		out := make([]jsast.Node, 0, len(x.Stmts))
		for _, s := range x.Stmts {
			out = append(out, s)
		}

		return out

	case *jsast.VarDecl:
		var out []jsast.Node
		for _, d := range x.Decls {
			if d.Init != nil {
				out = append(out, d.Init)
			}
		}

		return out

	case *jsast.FuncDecl:
		if x.Body != nil {
			return []jsast.Node{x.Body}
		}

	case *jsast.FuncExpr:
		if x.Body != nil {
			return []jsast.Node{x.Body}
		}

		if x.Ret != nil {
			return []jsast.Node{x.Ret}
		}

	case *jsast.ExprStmt:
		return []jsast.Node{x.X}

	case *jsast.ReturnStmt:
		if x.X != nil {
			return []jsast.Node{x.X}
		}

	case *jsast.CallExpr:
		out := []jsast.Node{x.Callee}
		for _, a := range x.Args {
			out = append(out, a)
		}

		return out

	case *jsast.CondExpr:
		return []jsast.Node{x.Test, x.Cons, x.Alt}

	case *jsast.BinaryExpr:
		return []jsast.Node{x.Left, x.Right}

	case *jsast.TemplateLit:
		out := make([]jsast.Node, 0, len(x.Parts))
		for _, p := range x.Parts {
			out = append(out, p)
		}

		return out

	case *jsast.MemberExpr:
		out := []jsast.Node{x.Object}
		if x.Index != nil {
			out = append(out, x.Index)
		}

		return out

	case *jsast.ObjectLit:
		var out []jsast.Node
		for _, p := range x.Props {
			if p.KeyExpr != nil {
				out = append(out, p.KeyExpr)
			}

			if p.Value != nil {
				out = append(out, p.Value)
			}
		}

		return out

	case *jsast.ArrayLit:
		out := make([]jsast.Node, 0, len(x.Elems))
		for _, el := range x.Elems {
			out = append(out, el)
		}

		return out

	case *jsast.AwaitExpr:
		return []jsast.Node{x.Arg}

	case *jsast.CastExpr:
		return []jsast.Node{x.Arg}

	case *jsast.JSXElement:
		var out []jsast.Node
		for _, a := range x.Attrs {
			if a.Value != nil {
				out = append(out, a.Value)
			}
		}

		for _, c := range x.Children {
			out = append(out, c)
		}

		return out

	case *jsast.JSXFragment:
		out := make([]jsast.Node, 0, len(x.Children))
		for _, c := range x.Children {
			out = append(out, c)
		}

		return out

	case *jsast.JSXExpr:
		if x.X != nil {
			return []jsast.Node{x.X}
		}

	case *jsast.UnknownStmt:
		return x.Children

	case *jsast.UnknownExpr:
		return x.Children
	}

	return nil
}
