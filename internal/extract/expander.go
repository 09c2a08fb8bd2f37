package extract

import (
	"locsync/internal/plurals"
)

// Expander turns one collected key into the concrete key names written
// for a given locale. Plural categories come from the target locale's
// own CLDR rule, never from the primary locale.
type Expander struct {
	PluralSeparator string
	DisablePlurals  bool
}

// ordinalInfix sits between the key and the category for ordinal
// plurals: key_ordinal_one.
const ordinalInfix = "ordinal"

// Expand returns the concrete keys for k in locale, in canonical order
// (bare key first, then plural categories zero..other). hasExisting
// reports whether a candidate key is already stored for the locale,
// which decides the optional `zero` category.
func (e *Expander) Expand(k *Key, locale string, hasExisting func(key string) bool) []string {
	if !k.HasCount || e.DisablePlurals {
		return []string{k.Key}
	}

	var out []string

	if k.UsedWithoutCount {
		out = append(out, k.Key)
	}

	var cats []plurals.Category
	if k.IsOrdinal {
		cats = plurals.Ordinal(locale)
	} else {
		cats = plurals.Cardinal(locale)
	}

	required := map[plurals.Category]bool{}
	for _, c := range cats {
		required[c] = true
	}

	for _, c := range plurals.CanonicalOrder {
		name := e.variant(k.Key, k.IsOrdinal, c)

		switch {
		case required[c]:
			out = append(out, name)
		case c == plurals.Zero && hasExisting != nil && hasExisting(name):
			// `zero` is optional: keep it when the catalog already
			// stores it, even for locales whose rule omits it.
			out = append(out, name)
		}
	}

	return out
}

func (e *Expander) variant(key string, ordinal bool, c plurals.Category) string {
	if ordinal {
		return key + e.PluralSeparator + ordinalInfix + e.PluralSeparator + string(c)
	}

	return key + e.PluralSeparator + string(c)
}
