// Package extract implements the key extraction engine: a scope-aware
// traversal of parsed source files that discovers localization keys,
// resolves statically-determinable dynamic expressions, expands plural
// and context variants, and serializes markup children into template
// strings.
package extract

// Location is a source reference for a discovered key.
type Location struct {
	File   string
	Line   int
	Column int
}

// Key is the unit of discovery. Identity is the (Namespace, Key) pair;
// everything else is metadata merged across call sites.
type Key struct {
	// Key may contain nesting separators; splitting happens at merge
	// time.
	Key string

	Namespace string

	// NamespaceImplicit is true while the namespace was only ever
	// derived (scope info or the configured default), never written at
	// a call site.
	NamespaceImplicit bool

	DefaultValue string

	// ExplicitDefault is true only if the source literally supplied a
	// default value, distinguishing developer intent from derived
	// placeholders.
	ExplicitDefault bool

	HasCount  bool
	IsOrdinal bool

	// UsedWithoutCount records that at least one call site referenced
	// the key with no count option, so the bare key is emitted next to
	// any plural family.
	UsedWithoutCount bool

	// ContextBaseKey is set on context variants and names the key the
	// variant was expanded from.
	ContextBaseKey string

	Locations []Location
}
