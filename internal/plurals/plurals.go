// Package plurals derives each locale's plural category set from the
// CLDR rules shipped with golang.org/x/text. Category sets are always
// per-locale; nothing in this package assumes the primary locale's
// categories apply anywhere else.
package plurals

import (
	"sync"

	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// Category is a CLDR plural category.
type Category string

const (
	Zero  Category = "zero"
	One   Category = "one"
	Two   Category = "two"
	Few   Category = "few"
	Many  Category = "many"
	Other Category = "other"
)

// CanonicalOrder is the fixed emission order for plural suffixes,
// independent of the order in which categories are discovered.
var CanonicalOrder = []Category{Zero, One, Two, Few, Many, Other}

var formCategory = map[plural.Form]Category{
	plural.Zero:  Zero,
	plural.One:   One,
	plural.Two:   Two,
	plural.Few:   Few,
	plural.Many:  Many,
	plural.Other: Other,
}

var (
	mu    sync.Mutex
	cache = map[string][]Category{}
)

// Cardinal returns the locale's cardinal plural categories in canonical
// order. Unknown locales fall back to the root rule.
func Cardinal(locale string) []Category {
	return categories("c:"+locale, locale, plural.Cardinal)
}

// Ordinal returns the locale's ordinal plural categories in canonical
// order.
func Ordinal(locale string) []Category {
	return categories("o:"+locale, locale, plural.Ordinal)
}

// Required reports whether cat belongs to the locale's cardinal rule
// set. Used for the optional `zero` category decision.
func Required(locale string, cat Category) bool {
	for _, c := range Cardinal(locale) {
		if c == cat {
			return true
		}
	}

	return false
}

// categories probes the CLDR rule for every category reachable from a
// representative sample of operand values. The sample covers the
// integer ranges CLDR rules condition on (mod 10 and mod 100 classes)
// plus fractional operands, so every category a rule can produce is
// observed.
func categories(cacheKey, locale string, rules *plural.Rules) []Category {
	mu.Lock()
	if got, ok := cache[cacheKey]; ok {
		mu.Unlock()
		return got
	}
	mu.Unlock()

	tag := language.Make(locale)

	seen := map[Category]bool{}

	// Integers 0..399 cover all mod-10/mod-100 rule classes; the larger
	// values hit rules keyed on magnitude.
	for i := 0; i < 400; i++ {
		seen[formCategory[rules.MatchPlural(tag, i, 0, 0, 0, 0)]] = true
	}

	for _, i := range []int{1000, 10000, 1000000} {
		seen[formCategory[rules.MatchPlural(tag, i, 0, 0, 0, 0)]] = true
	}

	// Fractional samples: 0.5, 1.5, 2.5, 10.0.
	for _, s := range [][5]int{
		{0, 1, 1, 5, 5},
		{1, 1, 1, 5, 5},
		{2, 1, 1, 5, 5},
		{10, 1, 1, 0, 0},
	} {
		seen[formCategory[rules.MatchPlural(tag, s[0], s[1], s[2], s[3], s[4])]] = true
	}

	out := make([]Category, 0, len(seen))
	for _, c := range CanonicalOrder {
		if seen[c] {
			out = append(out, c)
		}
	}

	mu.Lock()
	cache[cacheKey] = out
	mu.Unlock()

	return out
}
