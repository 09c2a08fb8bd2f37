package merger

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"

	"locsync/internal/config"
	"locsync/internal/extract"
)

// Outcome reports one (locale, namespace) reconciliation.
type Outcome struct {
	Tree    *Tree
	Dirty   bool
	Added   int
	Removed int
	Updated int
}

// Merger reconciles collected keys against existing translation trees,
// one (locale, namespace) pair at a time.
type Merger struct {
	cfg      *config.Config
	expander *extract.Expander
}

func New(cfg *config.Config) *Merger {
	return &Merger{
		cfg: cfg,
		expander: &extract.Expander{
			PluralSeparator: cfg.PluralSeparator,
			DisablePlurals:  cfg.DisablePlurals,
		},
	}
}

// desiredEntry is one expanded output key with its source metadata.
type desiredEntry struct {
	path     string
	segments []string
	key      *extract.Key
}

// mergeRun carries the state of one Merge call.
type mergeRun struct {
	m            *Merger
	locale       string
	namespace    string
	isPrimary    bool
	desired      map[string]*desiredEntry
	contextBases map[string]bool
	consumed     map[string]bool
	primaryFlat  map[string]Node
	res          Outcome
}

// Merge computes the desired tree for one locale and namespace.
// existing may be nil when no file was on disk. primary carries the
// primary locale's already-merged tree and is nil while merging the
// primary locale itself; it feeds the sync policies.
func (m *Merger) Merge(locale, namespace string, keys []*extract.Key, existing, primary *Tree) Outcome {
	if existing == nil {
		existing = NewTree()
	}

	existingFlat := map[string]Node{}
	for _, f := range existing.Flatten(m.cfg.KeySeparator) {
		if _, ok := existingFlat[f.Path]; !ok {
			existingFlat[f.Path] = f.Node
		}
	}

	hasExisting := func(key string) bool {
		_, ok := existingFlat[key]
		return ok
	}

	r := &mergeRun{
		m:            m,
		locale:       locale,
		namespace:    namespace,
		isPrimary:    locale == m.cfg.PrimaryLocale(),
		contextBases: map[string]bool{},
		consumed:     map[string]bool{},
	}

	r.expand(keys, hasExisting)

	if primary != nil {
		r.primaryFlat = map[string]Node{}
		for _, f := range primary.Flatten(m.cfg.KeySeparator) {
			if _, ok := r.primaryFlat[f.Path]; !ok {
				r.primaryFlat[f.Path] = f.Node
			}
		}
	}

	out := NewTree()
	r.carryExisting(existing, out, "")

	for _, d := range r.desiredOrder() {
		if r.consumed[d.path] {
			continue
		}

		out.Set(d.segments, m.cfg.KeySeparator, r.value(d, nil))
		r.res.Added++
	}

	if m.cfg.Sort || m.cfg.SortFunc != nil {
		out.Sort(lessFor(locale, m.cfg.SortFunc))
	}

	r.res.Tree = out
	r.res.Dirty = !Equal(out, existing)

	return r.res
}

// expand turns the namespace's collected keys into the full desired key
// set, applying plural expansion for this locale and validating
// segments.
func (r *mergeRun) expand(keys []*extract.Key, hasExisting func(string) bool) {
	r.desired = map[string]*desiredEntry{}

	for _, k := range keys {
		if k.ContextBaseKey != "" {
			r.contextBases[k.ContextBaseKey] = true
		}
	}

	for _, k := range keys {
		for _, variant := range r.m.expander.Expand(k, r.locale, hasExisting) {
			segments, ok := r.splitKey(variant)
			if !ok {
				log.Warn().Str("namespace", r.namespace).Str("key", variant).
					Msg("skipping key with empty segment")
				continue
			}

			if _, ok := r.desired[variant]; !ok {
				r.desired[variant] = &desiredEntry{path: variant, segments: segments, key: k}
			}
		}
	}
}

func (r *mergeRun) splitKey(key string) ([]string, bool) {
	if r.m.cfg.KeySeparator == "" {
		return []string{key}, key != ""
	}

	segments := strings.Split(key, r.m.cfg.KeySeparator)
	for _, s := range segments {
		if s == "" {
			return nil, false
		}
	}

	return segments, true
}

// desiredOrder lists the desired entries by key so appends of new keys
// are deterministic regardless of discovery order.
func (r *mergeRun) desiredOrder() []*desiredEntry {
	out := make([]*desiredEntry, 0, len(r.desired))
	for _, d := range r.desired {
		out = append(out, d)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].path < out[j].path })

	return out
}

// carryExisting rebuilds the existing tree in document order, updating
// leaves the desired set claims and applying the removal policy to the
// rest.
func (r *mergeRun) carryExisting(src, dst *Tree, prefix string) {
	for _, e := range src.Entries {
		path := e.Key
		if prefix != "" {
			path = prefix + r.m.cfg.KeySeparator + path
		}

		if e.Node.Kind == KindTree {
			sub := NewTree()
			r.carryExisting(e.Node.Tree, sub, path)

			if sub.Len() > 0 {
				dst.Append(e.Key, TreeNode(sub))
			}

			continue
		}

		if d, ok := r.desired[path]; ok && !r.consumed[path] {
			r.consumed[path] = true
			node := r.value(d, &e.Node)

			if !sameNode(node, e.Node) {
				r.res.Updated++
			}

			dst.Append(e.Key, node)
			continue
		}

		if !r.m.cfg.RemoveUnusedKeys || r.preserved(path) {
			dst.Append(e.Key, e.Node)
			continue
		}

		r.res.Removed++
	}
}

// value resolves the stored node for one desired key under the
// default-value and sync policies. existing is nil for new keys.
// Existing non-string values are carried verbatim, never coerced.
func (r *mergeRun) value(d *desiredEntry, existing *Node) Node {
	if r.isPrimary {
		if d.key.ExplicitDefault {
			return StringNode(d.key.DefaultValue)
		}

		if existing != nil {
			return *existing
		}

		return StringNode(r.derivedDefault(d))
	}

	if r.m.cfg.SyncAll || (r.m.cfg.SyncPrimaryWithDefaults && d.key.ExplicitDefault) {
		if n, ok := r.primaryFlat[d.path]; ok {
			return n
		}

		if d.key.ExplicitDefault {
			return StringNode(d.key.DefaultValue)
		}
	}

	if existing != nil {
		return *existing
	}

	return StringNode(r.derivedDefault(d))
}

// derivedDefault is the fallback for a key nothing else supplies a
// value for: the configured function, then the configured string, then
// the key itself for the primary locale and empty for the rest.
func (r *mergeRun) derivedDefault(d *desiredEntry) string {
	if r.m.cfg.DefaultValueFunc != nil {
		return r.m.cfg.DefaultValueFunc(r.locale, r.namespace, d.path)
	}

	if r.m.cfg.DefaultValue != "" {
		return r.m.cfg.DefaultValue
	}

	if r.isPrimary {
		return d.path
	}

	return ""
}

// preserved reports whether an unused existing key escapes removal via
// a preservation pattern or as a live context-variant sibling.
func (r *mergeRun) preserved(path string) bool {
	for _, p := range r.m.cfg.PreservePatterns {
		keyGlob := p

		if ns, kg, ok := strings.Cut(p, ":"); ok {
			if matched, err := doublestar.Match(ns, r.namespace); err != nil || !matched {
				continue
			}

			keyGlob = kg
		}

		if matched, err := doublestar.Match(keyGlob, path); err == nil && matched {
			return true
		}
	}

	if r.m.cfg.PreserveContextVariants && r.m.cfg.ContextSeparator != "" {
		for base := range r.contextBases {
			if strings.HasPrefix(path, base+r.m.cfg.ContextSeparator) {
				return true
			}
		}
	}

	return false
}

func sameNode(a, b Node) bool {
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.Str == b.Str
	case KindTree:
		return Equal(a.Tree, b.Tree)
	default:
		return true
	}
}
