package extract

import "sort"

type keyIdent struct {
	ns  string
	key string
}

// Collector accumulates discovered keys, deduplicated by
// (namespace, key). Metadata merges later-wins, except an explicitly
// authored default always beats a derived one, and usage flags are
// sticky so the result is independent of file order.
//
// A Collector is rebuilt from scratch on every run; it never persists
// between runs.
type Collector struct {
	keys map[keyIdent]*Key
}

// NewCollector returns an empty Collector.
func NewCollector() *Collector {
	return &Collector{keys: make(map[keyIdent]*Key)}
}

// Add merges k into the collected set.
func (c *Collector) Add(k Key) {
	if k.Key == "" {
		return
	}

	id := keyIdent{ns: k.Namespace, key: k.Key}

	old, ok := c.keys[id]
	if !ok {
		kc := k
		kc.Locations = append([]Location(nil), k.Locations...)
		c.keys[id] = &kc

		return
	}

	if k.ExplicitDefault {
		old.DefaultValue = k.DefaultValue
		old.ExplicitDefault = true
	} else if !old.ExplicitDefault && k.DefaultValue != "" {
		old.DefaultValue = k.DefaultValue
	}

	old.HasCount = old.HasCount || k.HasCount
	old.IsOrdinal = old.IsOrdinal || k.IsOrdinal
	old.UsedWithoutCount = old.UsedWithoutCount || k.UsedWithoutCount
	old.NamespaceImplicit = old.NamespaceImplicit && k.NamespaceImplicit

	if k.ContextBaseKey != "" {
		old.ContextBaseKey = k.ContextBaseKey
	}

	for _, loc := range k.Locations {
		if !hasLocation(old.Locations, loc) {
			old.Locations = append(old.Locations, loc)
		}
	}
}

// Has reports whether the (namespace, key) pair was collected.
func (c *Collector) Has(ns, key string) bool {
	_, ok := c.keys[keyIdent{ns: ns, key: key}]
	return ok
}

// Len returns the number of distinct collected keys.
func (c *Collector) Len() int { return len(c.keys) }

// Keys returns all collected keys sorted by (namespace, key), so the
// result does not depend on discovery order.
func (c *Collector) Keys() []*Key {
	out := make([]*Key, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, k)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Namespace != out[j].Namespace {
			return out[i].Namespace < out[j].Namespace
		}

		return out[i].Key < out[j].Key
	})

	return out
}

// Namespaces returns the sorted set of namespaces with at least one key.
func (c *Collector) Namespaces() []string {
	seen := map[string]bool{}
	for id := range c.keys {
		seen[id.ns] = true
	}

	out := make([]string, 0, len(seen))
	for ns := range seen {
		out = append(out, ns)
	}

	sort.Strings(out)

	return out
}

// ByNamespace returns the sorted keys belonging to one namespace.
func (c *Collector) ByNamespace(ns string) []*Key {
	var out []*Key

	for id, k := range c.keys {
		if id.ns == ns {
			out = append(out, k)
		}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })

	return out
}

func hasLocation(locs []Location, l Location) bool {
	for _, got := range locs {
		if got == l {
			return true
		}
	}

	return false
}
